package types

// UpdateProfileInput replaces the caller's profile fields.
type UpdateProfileInput struct {
	UserID       string `json:"-"`
	Name         string `json:"name" validate:"max=120"`
	ContactEmail string `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone string `json:"contactPhone" validate:"max=32"`
	Location     string `json:"location" validate:"max=120"`
}
