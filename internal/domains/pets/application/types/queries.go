package types

// BrowsePetsInput filters the public listing. "all" or empty means no filter.
type BrowsePetsInput struct {
	Species string
	Size    string
	Query   string
}

// PetIdentifier references a listing by id.
type PetIdentifier struct {
	ID string
}

// OwnerPetsInput lists the pets a user has put up for adoption.
type OwnerPetsInput struct {
	OwnerID string
}
