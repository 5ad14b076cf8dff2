package domain

import (
	"errors"
	"strings"
)

var (
	ErrMissingUserID = errors.New("profile user id is required")
	ErrNameTooLong   = errors.New("profile name must be at most 120 characters")
)

const maxNameLength = 120

// Profile is the public contact card of a user. Its ID is the identity provider's user id.
type Profile struct {
	ID           string
	Name         string
	ContactEmail string
	ContactPhone string
	Location     string
}

// NewProfile builds an empty profile for userID, seeding the contact email.
func NewProfile(userID, email string) (*Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrMissingUserID
	}
	return &Profile{ID: userID, ContactEmail: strings.TrimSpace(email)}, nil
}

// Rename sets the display name.
func (p *Profile) Rename(name string) error {
	name = strings.TrimSpace(name)
	if len([]rune(name)) > maxNameLength {
		return ErrNameTooLong
	}
	p.Name = name
	return nil
}

// UpdateContact replaces the contact fields. Email syntax is checked by the caller.
func (p *Profile) UpdateContact(email, phone, location string) {
	p.ContactEmail = strings.TrimSpace(email)
	p.ContactPhone = strings.TrimSpace(phone)
	p.Location = strings.TrimSpace(location)
}

// Clone returns a copy safe to hand across layers.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}
