package mapper

import (
	"time"

	usertypes "github.com/Apurer/pet-adoption-api/internal/domains/users/application/types"
	userdomain "github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
)

// Profile represents the transport-level profile payload.
type Profile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ContactEmail string `json:"contactEmail"`
	ContactPhone string `json:"contactPhone"`
	Location     string `json:"location"`
}

// ProfileUpdate is the body accepted by the profile update endpoint.
type ProfileUpdate struct {
	Name         string `json:"name"`
	ContactEmail string `json:"contactEmail"`
	ContactPhone string `json:"contactPhone"`
	Location     string `json:"location"`
}

// Session is returned after sign-in.
type Session struct {
	Token     string `json:"token"`
	UserID    string `json:"userId"`
	ExpiresAt string `json:"expiresAt"`
}

// ToUpdateProfileInput converts a transport update into the application input.
func ToUpdateProfileInput(userID string, model ProfileUpdate) usertypes.UpdateProfileInput {
	return usertypes.UpdateProfileInput{
		UserID:       userID,
		Name:         model.Name,
		ContactEmail: model.ContactEmail,
		ContactPhone: model.ContactPhone,
		Location:     model.Location,
	}
}

// FromDomainProfile converts a domain profile into a transport representation.
func FromDomainProfile(profile *userdomain.Profile) Profile {
	if profile == nil {
		return Profile{}
	}
	return Profile{
		ID:           profile.ID,
		Name:         profile.Name,
		ContactEmail: profile.ContactEmail,
		ContactPhone: profile.ContactPhone,
		Location:     profile.Location,
	}
}

// FromDomainSession converts a session into its transport representation.
func FromDomainSession(session *userdomain.Session) Session {
	if session == nil {
		return Session{}
	}
	return Session{
		Token:     session.Token,
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
	}
}
