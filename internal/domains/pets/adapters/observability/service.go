package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
)

const tracerName = "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/observability/service"

// Service decorates a pets application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// AddPet lists a new pet with instrumentation.
func (s *Service) AddPet(ctx context.Context, input pettypes.AddPetInput) (*pettypes.PetProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.AddPet", attribute.String("pet.owner_id", input.OwnerID))
	defer span.End()

	s.logInfo(ctx, "adding pet", slog.String("pet.owner_id", input.OwnerID))
	result, err := s.inner.AddPet(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to add pet", slog.String("pet.owner_id", input.OwnerID))
	}
	if result != nil && result.Entity != nil {
		span.SetAttributes(attribute.String("pet.id", result.Entity.ID))
		s.metrics.recordCreated(ctx, result.Entity.Species)
		s.logInfo(ctx, "pet added", slog.String("pet.id", result.Entity.ID), slog.String("species", string(result.Entity.Species)))
	}
	return result, nil
}

// UpdatePet patches an existing listing.
func (s *Service) UpdatePet(ctx context.Context, input pettypes.UpdatePetInput) (*pettypes.PetProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.UpdatePet", attribute.String("pet.id", input.ID))
	defer span.End()

	s.logInfo(ctx, "updating pet", slog.String("pet.id", input.ID))
	result, err := s.inner.UpdatePet(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update pet", slog.String("pet.id", input.ID))
	}
	if result != nil && result.Entity != nil {
		s.metrics.recordUpdated(ctx, result.Entity.Species)
		s.logInfo(ctx, "pet updated", slog.String("pet.id", result.Entity.ID))
	}
	return result, nil
}

// GetByID loads a single listing.
func (s *Service) GetByID(ctx context.Context, input pettypes.PetIdentifier) (*pettypes.PetProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.GetByID", attribute.String("pet.id", input.ID))
	defer span.End()

	result, err := s.inner.GetByID(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load pet", slog.String("pet.id", input.ID))
	}
	return result, nil
}

// Browse searches the public listing.
func (s *Service) Browse(ctx context.Context, input pettypes.BrowsePetsInput) ([]*pettypes.PetProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.Browse",
		attribute.String("pet.filter.species", input.Species),
		attribute.String("pet.filter.size", input.Size),
	)
	defer span.End()

	s.logInfo(ctx, "browsing pets", slog.String("species", input.Species), slog.String("size", input.Size), slog.String("query", input.Query))
	result, err := s.inner.Browse(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to browse pets")
	}
	span.SetAttributes(attribute.Int("pet.result.count", len(result)))
	s.logInfo(ctx, "browsed pets", slog.Int("count", len(result)))
	return result, nil
}

// ListByOwner returns the caller's listings.
func (s *Service) ListByOwner(ctx context.Context, input pettypes.OwnerPetsInput) ([]*pettypes.PetProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.ListByOwner", attribute.String("pet.owner_id", input.OwnerID))
	defer span.End()

	result, err := s.inner.ListByOwner(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list owner pets", slog.String("pet.owner_id", input.OwnerID))
	}
	span.SetAttributes(attribute.Int("pet.result.count", len(result)))
	return result, nil
}

// AuthorizeRemoval checks ownership ahead of a removal.
func (s *Service) AuthorizeRemoval(ctx context.Context, input pettypes.RemovePetInput) (*pettypes.PetProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.AuthorizeRemoval", attribute.String("pet.id", input.ID))
	defer span.End()

	result, err := s.inner.AuthorizeRemoval(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "pet removal rejected", slog.String("pet.id", input.ID), slog.String("user.id", input.ActingUserID))
	}
	return result, nil
}

// Remove deletes a listing and its adoption requests.
func (s *Service) Remove(ctx context.Context, input pettypes.RemovePetInput) error {
	ctx, span := s.startSpan(ctx, "Service.Remove", attribute.String("pet.id", input.ID))
	defer span.End()

	s.logInfo(ctx, "removing pet", slog.String("pet.id", input.ID))
	if err := s.inner.Remove(ctx, input); err != nil {
		return s.handleError(ctx, span, err, "failed to remove pet", slog.String("pet.id", input.ID))
	}
	s.metrics.recordDeleted(ctx)
	s.logInfo(ctx, "pet removed", slog.String("pet.id", input.ID))
	return nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	petsCreated metric.Int64Counter
	petsUpdated metric.Int64Counter
	petsDeleted metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	petsCreated, _ := m.Int64Counter("pets.service.created", metric.WithDescription("Number of pets listed"))
	petsUpdated, _ := m.Int64Counter("pets.service.updated", metric.WithDescription("Number of listings updated"))
	petsDeleted, _ := m.Int64Counter("pets.service.deleted", metric.WithDescription("Number of listings removed"))
	return serviceMetrics{
		petsCreated: petsCreated,
		petsUpdated: petsUpdated,
		petsDeleted: petsDeleted,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context, species domain.Species) {
	addCounter(ctx, m.petsCreated, 1, attribute.String("pet.species", string(species)))
}

func (m serviceMetrics) recordUpdated(ctx context.Context, species domain.Species) {
	addCounter(ctx, m.petsUpdated, 1, attribute.String("pet.species", string(species)))
}

func (m serviceMetrics) recordDeleted(ctx context.Context) {
	addCounter(ctx, m.petsDeleted, 1)
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
