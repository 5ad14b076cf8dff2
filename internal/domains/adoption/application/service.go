package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoption/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoption/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoption/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
	"github.com/Apurer/pet-adoption-api/internal/shared/sanitize"
	"github.com/Apurer/pet-adoption-api/internal/shared/validation"
)

// Service gates the creation and status transitions of adoption requests.
// Notifications are not sent from here; they follow from the repository's change events.
type Service struct {
	repo   ports.Repository
	pets   ports.PetDirectory
	policy domain.ApprovalPolicy
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// Option customises the service.
type Option func(*Service)

// WithApprovalPolicy selects what approving a request does to the pet's other requests.
func WithApprovalPolicy(policy domain.ApprovalPolicy) Option {
	return func(s *Service) {
		if policy != "" {
			s.policy = policy
		}
	}
}

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides request id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewService wires the adoption engine.
func NewService(repo ports.Repository, pets ports.PetDirectory, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		pets:   pets,
		policy: domain.PolicyKeepPending,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Policy reports the configured approval policy.
func (s *Service) Policy() domain.ApprovalPolicy { return s.policy }

// SubmitRequest records a pending request from the requester for the pet.
func (s *Service) SubmitRequest(ctx context.Context, input adoptiontypes.SubmitInput) (*domain.Request, error) {
	if strings.TrimSpace(input.RequesterID) == "" {
		return nil, identity.ErrUnauthenticated
	}
	pet, err := s.pets.Lookup(ctx, input.PetID)
	if err != nil {
		return nil, mapError(err)
	}
	if pet.OwnerID == input.RequesterID {
		return nil, ErrSelfAdoption
	}

	input.Message = sanitize.Text(input.Message)
	input.ContactEmail = strings.TrimSpace(input.ContactEmail)
	input.ContactPhone = sanitize.Text(input.ContactPhone)
	if err := validation.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	// The unique (pet, requester) key in the store is authoritative; this lookup only
	// gives the common case a clean error without a failed write.
	if _, err := s.repo.FindByPetAndRequester(ctx, pet.ID, input.RequesterID); err == nil {
		return nil, ErrDuplicateRequest
	} else if !errors.Is(err, ports.ErrNotFound) {
		return nil, mapError(err)
	}

	request, err := domain.NewRequest(s.newID(), pet.ID, input.RequesterID, pet.OwnerID,
		input.Message, input.ContactEmail, input.ContactPhone, s.now().UTC())
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Insert(ctx, request)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// SetRequestStatus approves or rejects a pending request on behalf of the pet owner.
func (s *Service) SetRequestStatus(ctx context.Context, input adoptiontypes.StatusInput) (*domain.Request, error) {
	if strings.TrimSpace(input.ActingUserID) == "" {
		return nil, identity.ErrUnauthenticated
	}
	status := domain.Status(strings.ToLower(strings.TrimSpace(input.Status)))
	if !status.Decision() {
		return nil, fmt.Errorf("%w: %w", ErrValidation, domain.ErrInvalidStatus)
	}
	current, err := s.repo.GetByID(ctx, input.RequestID)
	if err != nil {
		return nil, mapError(err)
	}
	if current.OwnerID != input.ActingUserID {
		return nil, ErrUnauthorized
	}
	if current.Status != domain.StatusPending {
		return nil, ErrInvalidTransition
	}
	if status == domain.StatusApproved && s.policy == domain.PolicyExclusive {
		if err := s.ensureNoOtherApproval(ctx, current); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.CompareAndSetStatus(ctx, current.ID, domain.StatusPending, status, s.now().UTC())
	if err != nil {
		return nil, mapError(err)
	}
	if status == domain.StatusApproved && s.policy == domain.PolicyRejectOthers {
		s.rejectOthers(ctx, updated)
	}
	return updated, nil
}

// GetRequest loads a request visible to its owner or requester.
func (s *Service) GetRequest(ctx context.Context, input adoptiontypes.RequestIdentifier) (*domain.Request, error) {
	if strings.TrimSpace(input.ActingUserID) == "" {
		return nil, identity.ErrUnauthenticated
	}
	request, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	if !request.Involves(input.ActingUserID) {
		// Hide existence from third parties.
		return nil, fmt.Errorf("%w: %w", ErrNotFound, ports.ErrNotFound)
	}
	return request, nil
}

// ListReceived returns the requests for pets owned by ownerID.
func (s *Service) ListReceived(ctx context.Context, ownerID string) ([]*domain.Request, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, identity.ErrUnauthenticated
	}
	list, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, mapError(err)
	}
	return list, nil
}

// ListSent returns the requests submitted by requesterID.
func (s *Service) ListSent(ctx context.Context, requesterID string) ([]*domain.Request, error) {
	if strings.TrimSpace(requesterID) == "" {
		return nil, identity.ErrUnauthenticated
	}
	list, err := s.repo.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, mapError(err)
	}
	return list, nil
}

func (s *Service) ensureNoOtherApproval(ctx context.Context, current *domain.Request) error {
	siblings, err := s.repo.ListByPet(ctx, current.PetID)
	if err != nil {
		return mapError(err)
	}
	for _, other := range siblings {
		if other.ID != current.ID && other.Status == domain.StatusApproved {
			return fmt.Errorf("%w: request %s for this pet is already approved", ErrInvalidTransition, other.ID)
		}
	}
	return nil
}

// rejectOthers is best effort: the approval has committed, so failures are logged.
func (s *Service) rejectOthers(ctx context.Context, approved *domain.Request) {
	siblings, err := s.repo.ListByPet(ctx, approved.PetID)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "could not list requests to reject",
			slog.String("pet.id", approved.PetID), slog.String("error", err.Error()))
		return
	}
	for _, other := range siblings {
		if other.ID == approved.ID || other.Status != domain.StatusPending {
			continue
		}
		_, err := s.repo.CompareAndSetStatus(ctx, other.ID, domain.StatusPending, domain.StatusRejected, s.now().UTC())
		if err != nil && !errors.Is(err, ports.ErrStatusConflict) {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "could not reject competing request",
				slog.String("request.id", other.ID), slog.String("error", err.Error()))
		}
	}
}

var _ ports.Service = (*Service)(nil)
