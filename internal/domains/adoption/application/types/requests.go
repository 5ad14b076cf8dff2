package types

// SubmitInput carries an adoption request submission.
type SubmitInput struct {
	PetID        string `json:"petId"`
	RequesterID  string `json:"-"`
	ContactEmail string `json:"contactEmail" validate:"required,email"`
	ContactPhone string `json:"contactPhone" validate:"max=32"`
	Message      string `json:"message" validate:"min_runes=20,max=4000"`
}

// StatusInput asks to move a request to Status on behalf of ActingUserID.
type StatusInput struct {
	RequestID    string
	Status       string
	ActingUserID string
}

// RequestIdentifier references a request on behalf of ActingUserID.
type RequestIdentifier struct {
	ID           string
	ActingUserID string
}
