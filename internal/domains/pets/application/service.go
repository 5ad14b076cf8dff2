package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	types "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
)

// Service orchestrates the pets bounded context use cases.
type Service struct {
	repo   ports.Repository
	purger ports.RequestPurger
	newID  func() string
}

// Option customises the service.
type Option func(*Service)

// WithRequestPurger wires the adoption request store so removals cascade.
func WithRequestPurger(purger ports.RequestPurger) Option {
	return func(s *Service) {
		s.purger = purger
	}
}

// WithIDGenerator overrides listing id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewService wires the pets service with its dependencies.
func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, newID: uuid.NewString}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// AddPet lists a new pet owned by the caller.
func (s *Service) AddPet(ctx context.Context, input types.AddPetInput) (*types.PetProjection, error) {
	if strings.TrimSpace(input.OwnerID) == "" {
		return nil, identity.ErrUnauthenticated
	}
	if input.Name == nil || input.Species == nil {
		return nil, fmt.Errorf("%w: name and species are required", ErrInvalidInput)
	}
	pet, err := domain.NewPet(s.newID(), input.OwnerID, *input.Name, domain.Species(*input.Species))
	if err != nil {
		return nil, mapError(err)
	}
	if err := applyMutation(pet, input.PetMutationInput); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, pet)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// UpdatePet patches a listing owned by the acting user.
func (s *Service) UpdatePet(ctx context.Context, input types.UpdatePetInput) (*types.PetProjection, error) {
	if strings.TrimSpace(input.ActingUserID) == "" {
		return nil, identity.ErrUnauthenticated
	}
	existing, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	if !existing.Entity.OwnedBy(input.ActingUserID) {
		return nil, ErrForbidden
	}
	pet := existing.Entity.Clone()
	if err := applyMutation(pet, input.PetMutationInput); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, pet)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// GetByID loads a single listing.
func (s *Service) GetByID(ctx context.Context, input types.PetIdentifier) (*types.PetProjection, error) {
	projection, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return projection, nil
}

// Browse returns listings matching the filters, newest first.
func (s *Service) Browse(ctx context.Context, input types.BrowsePetsInput) ([]*types.PetProjection, error) {
	criteria := domain.Criteria{
		Species: domain.Species(input.Species),
		Size:    domain.Size(input.Size),
		Query:   input.Query,
	}.Normalize()
	result, err := s.repo.Search(ctx, criteria)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

// ListByOwner returns the caller's own listings.
func (s *Service) ListByOwner(ctx context.Context, input types.OwnerPetsInput) ([]*types.PetProjection, error) {
	if strings.TrimSpace(input.OwnerID) == "" {
		return nil, identity.ErrUnauthenticated
	}
	result, err := s.repo.ListByOwner(ctx, input.OwnerID)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

// AuthorizeRemoval loads the pet and checks the acting user owns it.
func (s *Service) AuthorizeRemoval(ctx context.Context, input types.RemovePetInput) (*types.PetProjection, error) {
	if strings.TrimSpace(input.ActingUserID) == "" {
		return nil, identity.ErrUnauthenticated
	}
	existing, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	if !existing.Entity.OwnedBy(input.ActingUserID) {
		return nil, ErrForbidden
	}
	return existing, nil
}

// Remove deletes every adoption request for the pet, then the pet itself.
func (s *Service) Remove(ctx context.Context, input types.RemovePetInput) error {
	if _, err := s.AuthorizeRemoval(ctx, input); err != nil {
		return err
	}
	if s.purger != nil {
		if _, err := s.purger.DeleteByPet(ctx, input.ID); err != nil {
			return fmt.Errorf("purge adoption requests: %w", err)
		}
	}
	if err := s.repo.Delete(ctx, input.ID); err != nil {
		return mapError(err)
	}
	return nil
}

func applyMutation(target *domain.Pet, input types.PetMutationInput) error {
	if input.Name != nil {
		if err := target.Rename(*input.Name); err != nil {
			return err
		}
	}
	if input.Species != nil {
		if err := target.ChangeSpecies(domain.Species(*input.Species)); err != nil {
			return err
		}
	}
	if input.Size != nil {
		if err := target.Resize(domain.Size(*input.Size)); err != nil {
			return err
		}
	}
	if input.Gender != nil {
		if err := target.SetGender(domain.Gender(*input.Gender)); err != nil {
			return err
		}
	}
	if input.AgeMonths != nil {
		if err := target.SetAge(*input.AgeMonths); err != nil {
			return err
		}
	}
	if input.AdoptionFee != nil {
		if err := target.SetAdoptionFee(*input.AdoptionFee); err != nil {
			return err
		}
	}
	if input.MedicalInfo != nil {
		target.SetMedicalInfo(*input.MedicalInfo)
	}
	if input.GoodWith != nil {
		target.ReplaceGoodWith(*input.GoodWith)
	}
	assignTrimmed(&target.Breed, input.Breed)
	assignTrimmed(&target.Color, input.Color)
	assignTrimmed(&target.Description, input.Description)
	assignTrimmed(&target.ImageURL, input.ImageURL)
	assignTrimmed(&target.Location, input.Location)
	return nil
}

func assignTrimmed(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

var _ ports.Service = (*Service)(nil)
