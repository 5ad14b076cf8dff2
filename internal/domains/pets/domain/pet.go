package domain

import (
	"errors"
	"strings"
)

// Species is the kind of animal listed for adoption.
type Species string

const (
	SpeciesDog     Species = "dog"
	SpeciesCat     Species = "cat"
	SpeciesBird    Species = "bird"
	SpeciesRabbit  Species = "rabbit"
	SpeciesHamster Species = "hamster"
	SpeciesOther   Species = "other"
)

// Size buckets a pet for browsing.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// Gender of the listed pet.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// DefaultMedicalInfo is recorded when the owner leaves medical info blank.
const DefaultMedicalInfo = "Vaccinated and healthy"

// Pet is a listing owned by the user who created it.
type Pet struct {
	ID          string
	OwnerID     string
	Name        string
	Species     Species
	Breed       string
	AgeMonths   int
	Size        Size
	Gender      Gender
	Color       string
	Description string
	ImageURL    string
	Location    string
	GoodWith    []string
	MedicalInfo string
	AdoptionFee float64
}

var (
	ErrEmptyName      = errors.New("pet name is required")
	ErrMissingOwner   = errors.New("pet owner is required")
	ErrInvalidSpecies = errors.New("pet species must be one of dog, cat, bird, rabbit, hamster, other")
	ErrInvalidSize    = errors.New("pet size must be one of small, medium, large")
	ErrInvalidGender  = errors.New("pet gender must be male or female")
	ErrInvalidAge     = errors.New("pet age must be greater or equal to zero")
	ErrInvalidFee     = errors.New("adoption fee must be greater or equal to zero")
)

// NewPet validates the invariants and builds a listing.
func NewPet(id, ownerID, name string, species Species) (*Pet, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrMissingOwner
	}
	p := &Pet{ID: id, OwnerID: ownerID, MedicalInfo: DefaultMedicalInfo}
	if err := p.Rename(name); err != nil {
		return nil, err
	}
	if err := p.ChangeSpecies(species); err != nil {
		return nil, err
	}
	return p, nil
}

// OwnedBy reports whether userID listed the pet.
func (p *Pet) OwnedBy(userID string) bool {
	return p != nil && userID != "" && p.OwnerID == userID
}

func (p *Pet) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	p.Name = name
	return nil
}

func (p *Pet) ChangeSpecies(species Species) error {
	species = Species(strings.ToLower(strings.TrimSpace(string(species))))
	switch species {
	case SpeciesDog, SpeciesCat, SpeciesBird, SpeciesRabbit, SpeciesHamster, SpeciesOther:
		p.Species = species
		return nil
	default:
		return ErrInvalidSpecies
	}
}

// Resize accepts an empty size to clear it.
func (p *Pet) Resize(size Size) error {
	size = Size(strings.ToLower(strings.TrimSpace(string(size))))
	switch size {
	case "", SizeSmall, SizeMedium, SizeLarge:
		p.Size = size
		return nil
	default:
		return ErrInvalidSize
	}
}

// SetGender accepts an empty gender to clear it.
func (p *Pet) SetGender(gender Gender) error {
	gender = Gender(strings.ToLower(strings.TrimSpace(string(gender))))
	switch gender {
	case "", GenderMale, GenderFemale:
		p.Gender = gender
		return nil
	default:
		return ErrInvalidGender
	}
}

func (p *Pet) SetAge(months int) error {
	if months < 0 {
		return ErrInvalidAge
	}
	p.AgeMonths = months
	return nil
}

func (p *Pet) SetAdoptionFee(fee float64) error {
	if fee < 0 {
		return ErrInvalidFee
	}
	p.AdoptionFee = fee
	return nil
}

// SetMedicalInfo falls back to DefaultMedicalInfo when info is blank.
func (p *Pet) SetMedicalInfo(info string) {
	info = strings.TrimSpace(info)
	if info == "" {
		info = DefaultMedicalInfo
	}
	p.MedicalInfo = info
}

// ReplaceGoodWith stores lower-cased, de-duplicated compatibility tags.
func (p *Pet) ReplaceGoodWith(tags []string) {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	p.GoodWith = out
}

// Clone returns a deep copy.
func (p *Pet) Clone() *Pet {
	if p == nil {
		return nil
	}
	clone := *p
	if p.GoodWith != nil {
		clone.GoodWith = append([]string{}, p.GoodWith...)
	}
	return &clone
}
