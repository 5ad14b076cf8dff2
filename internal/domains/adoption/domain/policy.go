package domain

import (
	"fmt"
	"strings"
)

// ApprovalPolicy decides what approving one request means for the pet's other requests.
type ApprovalPolicy string

const (
	// PolicyKeepPending leaves other requests untouched.
	PolicyKeepPending ApprovalPolicy = "keep-pending"
	// PolicyRejectOthers rejects every other pending request for the pet after an approval.
	PolicyRejectOthers ApprovalPolicy = "reject-others"
	// PolicyExclusive refuses an approval while another request for the pet is approved.
	PolicyExclusive ApprovalPolicy = "exclusive"
)

// ParseApprovalPolicy maps a configuration value to a policy. Empty means keep-pending.
func ParseApprovalPolicy(raw string) (ApprovalPolicy, error) {
	switch p := ApprovalPolicy(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return PolicyKeepPending, nil
	case PolicyKeepPending, PolicyRejectOthers, PolicyExclusive:
		return p, nil
	default:
		return "", fmt.Errorf("unknown approval policy %q", raw)
	}
}
