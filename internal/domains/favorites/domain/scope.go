package domain

import (
	"fmt"
	"strings"
)

// Scope decides whose favorites a slot holds.
type Scope string

const (
	// ScopeUser keeps one set per signed-in user.
	ScopeUser Scope = "user"
	// ScopeGlobal shares one set across the deployment.
	ScopeGlobal Scope = "global"
)

// GlobalKey is the slot used by ScopeGlobal.
const GlobalKey = "petFavorites"

// ParseScope maps a configuration value to a scope. Empty means user.
func ParseScope(raw string) (Scope, error) {
	switch s := Scope(strings.ToLower(strings.TrimSpace(raw))); s {
	case "":
		return ScopeUser, nil
	case ScopeUser, ScopeGlobal:
		return s, nil
	default:
		return "", fmt.Errorf("unknown favorites scope %q", raw)
	}
}

// Key returns the slot holding userID's favorites under s.
func (s Scope) Key(userID string) string {
	if s == ScopeGlobal {
		return GlobalKey
	}
	return "favorites_" + userID
}
