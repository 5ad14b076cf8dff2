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

	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoption/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoption/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoption/ports"
)

const tracerName = "github.com/Apurer/pet-adoption-api/internal/domains/adoption/adapters/observability/service"

// Service decorates the adoption application port with tracing, logging, and metrics.
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
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
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
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

func (s *Service) SubmitRequest(ctx context.Context, input adoptiontypes.SubmitInput) (*domain.Request, error) {
	ctx, span := s.tracer.Start(ctx, "Service.SubmitRequest", trace.WithAttributes(
		attribute.String("pet.id", input.PetID),
		attribute.String("adoption.requester_id", input.RequesterID),
	))
	defer span.End()

	result, err := s.inner.SubmitRequest(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, "submit", err)
		return nil, s.handleError(ctx, span, err, "adoption request not submitted",
			slog.String("pet.id", input.PetID), slog.String("user.id", input.RequesterID))
	}
	span.SetAttributes(attribute.String("adoption.request_id", result.ID))
	s.metrics.recordSubmitted(ctx)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "adoption request submitted",
		slog.String("adoption.request_id", result.ID), slog.String("pet.id", result.PetID))
	return result, nil
}

func (s *Service) SetRequestStatus(ctx context.Context, input adoptiontypes.StatusInput) (*domain.Request, error) {
	ctx, span := s.tracer.Start(ctx, "Service.SetRequestStatus", trace.WithAttributes(
		attribute.String("adoption.request_id", input.RequestID),
		attribute.String("adoption.status", input.Status),
	))
	defer span.End()

	result, err := s.inner.SetRequestStatus(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, "decide", err)
		return nil, s.handleError(ctx, span, err, "adoption request status unchanged",
			slog.String("adoption.request_id", input.RequestID), slog.String("user.id", input.ActingUserID))
	}
	s.metrics.recordDecided(ctx, result.Status)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "adoption request decided",
		slog.String("adoption.request_id", result.ID), slog.String("adoption.status", string(result.Status)))
	return result, nil
}

func (s *Service) GetRequest(ctx context.Context, input adoptiontypes.RequestIdentifier) (*domain.Request, error) {
	ctx, span := s.tracer.Start(ctx, "Service.GetRequest", trace.WithAttributes(attribute.String("adoption.request_id", input.ID)))
	defer span.End()

	result, err := s.inner.GetRequest(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load adoption request", slog.String("adoption.request_id", input.ID))
	}
	return result, nil
}

func (s *Service) ListReceived(ctx context.Context, ownerID string) ([]*domain.Request, error) {
	ctx, span := s.tracer.Start(ctx, "Service.ListReceived", trace.WithAttributes(attribute.String("user.id", ownerID)))
	defer span.End()

	result, err := s.inner.ListReceived(ctx, ownerID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list received requests", slog.String("user.id", ownerID))
	}
	span.SetAttributes(attribute.Int("adoption.result.count", len(result)))
	return result, nil
}

func (s *Service) ListSent(ctx context.Context, requesterID string) ([]*domain.Request, error) {
	ctx, span := s.tracer.Start(ctx, "Service.ListSent", trace.WithAttributes(attribute.String("user.id", requesterID)))
	defer span.End()

	result, err := s.inner.ListSent(ctx, requesterID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list sent requests", slog.String("user.id", requesterID))
	}
	span.SetAttributes(attribute.Int("adoption.result.count", len(result)))
	return result, nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
	return err
}

type serviceMetrics struct {
	submitted metric.Int64Counter
	decided   metric.Int64Counter
	rejected  metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	submitted, _ := m.Int64Counter("adoption.requests.submitted", metric.WithDescription("Adoption requests accepted"))
	decided, _ := m.Int64Counter("adoption.requests.decided", metric.WithDescription("Adoption requests approved or rejected"))
	rejected, _ := m.Int64Counter("adoption.requests.refused", metric.WithDescription("Adoption operations refused by the engine"))
	return serviceMetrics{submitted: submitted, decided: decided, rejected: rejected}
}

func (m serviceMetrics) recordSubmitted(ctx context.Context) {
	addCounter(ctx, m.submitted, 1)
}

func (m serviceMetrics) recordDecided(ctx context.Context, status domain.Status) {
	addCounter(ctx, m.decided, 1, attribute.String("adoption.status", string(status)))
}

func (m serviceMetrics) recordRejected(ctx context.Context, op string, err error) {
	addCounter(ctx, m.rejected, 1, attribute.String("operation", op), attribute.String("reason", reason(err)))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
