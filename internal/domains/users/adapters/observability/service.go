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

	usertypes "github.com/Apurer/pet-adoption-api/internal/domains/users/application/types"
	userdomain "github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
)

const tracerName = "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/observability/service"

// Service decorates the user service with tracing, logging, and metrics.
type Service struct {
	inner   userports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core user service.
func New(inner userports.Service, opts ...Option) userports.Service {
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

func (s *Service) GetProfile(ctx context.Context, userID string) (*userdomain.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetProfile", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()
	return s.inner.GetProfile(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, input usertypes.UpdateProfileInput) (*userdomain.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.UpdateProfile", trace.WithAttributes(attribute.String("user.id", input.UserID)))
	defer span.End()
	result, err := s.inner.UpdateProfile(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update profile", slog.String("user.id", input.UserID))
	}
	s.metrics.recordUpdated(ctx)
	return result, nil
}

func (s *Service) EnsureProfile(ctx context.Context, principal identity.Principal) (*userdomain.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.EnsureProfile", trace.WithAttributes(attribute.String("user.id", principal.UserID)))
	defer span.End()
	result, err := s.inner.EnsureProfile(ctx, principal)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to ensure profile", slog.String("user.id", principal.UserID))
	}
	return result, nil
}

func (s *Service) SignIn(ctx context.Context, principal identity.Principal) (*userdomain.Session, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.SignIn", trace.WithAttributes(attribute.String("user.id", principal.UserID)))
	defer span.End()
	s.logInfo(ctx, "signing in", slog.String("user.id", principal.UserID))
	session, err := s.inner.SignIn(ctx, principal)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "sign in failed", slog.String("user.id", principal.UserID))
	}
	s.metrics.recordSignIn(ctx)
	return session, nil
}

func (s *Service) SignOut(ctx context.Context, userID string) error {
	ctx, span := s.tracer.Start(ctx, "UserService.SignOut", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()
	if err := s.inner.SignOut(ctx, userID); err != nil {
		return s.handleError(ctx, span, err, "sign out failed", slog.String("user.id", userID))
	}
	s.logInfo(ctx, "signed out", slog.String("user.id", userID))
	return nil
}

func (s *Service) ResolveSession(ctx context.Context, token string) (identity.Principal, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.ResolveSession")
	defer span.End()
	principal, err := s.inner.ResolveSession(ctx, token)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return identity.Principal{}, err
	}
	return principal, nil
}

func (s *Service) PurgeExpiredSessions(ctx context.Context) (int, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.PurgeExpiredSessions")
	defer span.End()
	removed, err := s.inner.PurgeExpiredSessions(ctx)
	if err != nil {
		return 0, s.handleError(ctx, span, err, "failed to purge sessions")
	}
	span.SetAttributes(attribute.Int("session.purged", removed))
	s.logInfo(ctx, "purged expired sessions", slog.Int("count", removed))
	return removed, nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
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

type serviceMetrics struct {
	profilesUpdated metric.Int64Counter
	signIns         metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	updated, _ := m.Int64Counter("users.service.profiles_updated", metric.WithDescription("Number of profile updates"))
	signIns, _ := m.Int64Counter("users.service.sign_ins", metric.WithDescription("Number of successful sign-ins"))
	return serviceMetrics{profilesUpdated: updated, signIns: signIns}
}

func (m serviceMetrics) recordUpdated(ctx context.Context) {
	if m.profilesUpdated != nil {
		m.profilesUpdated.Add(ctx, 1)
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (m serviceMetrics) recordSignIn(ctx context.Context) {
	if m.signIns != nil {
		m.signIns.Add(ctx, 1)
	}
}

var _ userports.Service = (*Service)(nil)
