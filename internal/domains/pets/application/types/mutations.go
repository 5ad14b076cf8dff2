package types

// PetMutationInput carries listing fields; nil pointers leave a field untouched on update.
type PetMutationInput struct {
	Name        *string
	Species     *string
	Breed       *string
	AgeMonths   *int
	Size        *string
	Gender      *string
	Color       *string
	Description *string
	ImageURL    *string
	Location    *string
	GoodWith    *[]string
	MedicalInfo *string
	AdoptionFee *float64
}

// AddPetInput lists a new pet on behalf of OwnerID.
type AddPetInput struct {
	OwnerID string
	PetMutationInput
}

// UpdatePetInput patches a listing; only its owner may do so.
type UpdatePetInput struct {
	ID           string
	ActingUserID string
	PetMutationInput
}

// RemovePetInput deletes a listing and every adoption request referencing it.
type RemovePetInput struct {
	ID           string
	ActingUserID string
}
