package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	adoption "github.com/Apurer/pet-adoption-api/internal/domains/adoption/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/notifications/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/notifications/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/changefeed"
	"github.com/Apurer/pet-adoption-api/internal/platform/localstate"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
)

var (
	// ErrNotActive signals the user has no notification session.
	ErrNotActive = errors.New("notification session not active")
	// ErrStateUnavailable signals the inbox could not be loaded.
	ErrStateUnavailable = errors.New("notification state unavailable")
	// ErrClosed signals the manager is shutting down.
	ErrClosed = errors.New("notification manager closed")
)

// Manager owns one Session per signed-in user and wires each to the adoption change feed.
type Manager struct {
	feed     changefeed.Subscriber[adoption.Request]
	store    localstate.Store
	renderer *Renderer
	pusher   ports.Pusher
	logger   *slog.Logger
	metrics  dispatcherMetrics
	newID    func() string
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// Option customises the manager.
type Option func(*Manager)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMeter registers the dispatcher counters on m.
func WithMeter(meter metric.Meter) Option {
	return func(m *Manager) {
		m.metrics = newDispatcherMetrics(meter)
	}
}

// WithPusher forwards every inbox change to connected clients.
func WithPusher(p ports.Pusher) Option {
	return func(m *Manager) {
		m.pusher = p
	}
}

// WithLookupTimeout bounds each enrichment lookup.
func WithLookupTimeout(timeout time.Duration) Option {
	return func(m *Manager) {
		m.renderer.timeout = timeout
		if timeout <= 0 {
			m.renderer.timeout = DefaultLookupTimeout
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithIDGenerator overrides notification id generation.
func WithIDGenerator(gen func() string) Option {
	return func(m *Manager) {
		if gen != nil {
			m.newID = gen
		}
	}
}

func NewManager(feed changefeed.Subscriber[adoption.Request], store localstate.Store, lookups ports.Lookups, opts ...Option) *Manager {
	m := &Manager{
		feed:     feed,
		store:    store,
		renderer: NewRenderer(lookups, DefaultLookupTimeout),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:  newDispatcherMetrics(nil),
		newID:    uuid.NewString,
		now:      time.Now,
		sessions: map[string]*Session{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Activate loads userID's inbox and subscribes to their streams. Activating an
// active user is a no-op.
func (m *Manager) Activate(ctx context.Context, userID string) error {
	_, err := m.Ensure(ctx, userID)
	return err
}

// Ensure returns userID's session, activating it first when needed.
func (m *Manager) Ensure(ctx context.Context, userID string) (*Session, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, identity.ErrUnauthenticated
	}
	if s, err := m.Session(userID); err == nil {
		return s, nil
	} else if errors.Is(err, ErrClosed) {
		return nil, err
	}

	inbox, err := m.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	s := &Session{
		userID: userID,
		store:  m.store,
		pusher: m.pusher,
		logger: m.logger,
		newID:  m.newID,
		now:    m.now,
		inbox:  inbox,
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	if existing, ok := m.sessions[userID]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	m.sessions[userID] = s
	s.subs = []changefeed.Subscription{
		m.feed.Subscribe(changefeed.KindUpdate, RequesterFilter(userID), m.handler(s, PlanStatusChange)),
		m.feed.Subscribe(changefeed.KindInsert, OwnerFilter(userID), m.handler(s, PlanNewRequest)),
	}
	m.mu.Unlock()

	m.logger.LogAttrs(ctx, slog.LevelInfo, "notification session activated",
		slog.String("user.id", userID), slog.Int("notifications", inbox.Len()))
	return s, nil
}

// Session returns the active session for userID.
func (m *Manager) Session(userID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	s, ok := m.sessions[userID]
	if !ok {
		return nil, ErrNotActive
	}
	return s, nil
}

// Deactivate tears down userID's subscriptions and drops the in-memory inbox.
// The persisted slot is kept for the next sign-in.
func (m *Manager) Deactivate(userID string) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()
	if ok {
		s.teardown()
		m.logger.Info("notification session deactivated", slog.String("user.id", userID))
	}
}

// ActiveSessions reports how many users currently have a session.
func (m *Manager) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close tears down every session and rejects further activations.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	sessions := m.sessions
	m.sessions = map[string]*Session{}
	m.mu.Unlock()
	for _, s := range sessions {
		s.teardown()
	}
}

func (m *Manager) load(ctx context.Context, userID string) (*domain.Inbox, error) {
	blob, ok, err := m.store.Get(ctx, SlotKey(userID))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStateUnavailable, err)
	}
	if !ok {
		return domain.NewInbox(nil), nil
	}
	inbox, err := domain.DecodeInbox(blob)
	if err != nil {
		m.logger.LogAttrs(ctx, slog.LevelWarn, "discarding corrupt notification list",
			slog.String("user.id", userID), slog.String("error", err.Error()))
	}
	return inbox, nil
}

type planner func(userID string, ev changefeed.Event[adoption.Request]) []Intent

// handler synthesises the notifications an event calls for. Skips and degraded
// lookups are logged; retryable lookup failures go back to the feed as transient.
func (m *Manager) handler(s *Session, plan planner) changefeed.Handler[adoption.Request] {
	return func(ctx context.Context, ev changefeed.Event[adoption.Request]) error {
		for _, intent := range plan(s.userID, ev) {
			attrs := []slog.Attr{
				slog.String("user.id", s.userID),
				slog.String("adoption.request_id", intent.RequestID),
				slog.String("intent", string(intent.Kind)),
			}
			draft, degraded, err := m.renderer.Render(ctx, intent)
			if errors.Is(err, errSkip) {
				m.metrics.recordSkipped(ctx, intent.Kind)
				m.logger.LogAttrs(ctx, slog.LevelWarn, "notification skipped", append(attrs, slog.String("error", err.Error()))...)
				continue
			}
			if err != nil {
				m.metrics.recordLookupFailure(ctx, intent.Kind)
				return changefeed.Transient(err)
			}
			if degraded != nil {
				m.metrics.recordLookupFailure(ctx, intent.Kind)
				m.logger.LogAttrs(ctx, slog.LevelWarn, "owner contact unavailable, using placeholders",
					append(attrs, slog.String("error", degraded.Error()))...)
			}
			if _, err := s.Add(ctx, draft); err != nil {
				m.logger.LogAttrs(ctx, slog.LevelError, "notification rejected", append(attrs, slog.String("error", err.Error()))...)
				continue
			}
			m.metrics.recordSynthesized(ctx, draft.Type)
		}
		return nil
	}
}

type dispatcherMetrics struct {
	synthesized    metric.Int64Counter
	skipped        metric.Int64Counter
	lookupFailures metric.Int64Counter
}

func newDispatcherMetrics(m metric.Meter) dispatcherMetrics {
	if m == nil {
		return dispatcherMetrics{}
	}
	synthesized, _ := m.Int64Counter("notifications.synthesized", metric.WithDescription("Notifications added to inboxes from change events"))
	skipped, _ := m.Int64Counter("notifications.skipped", metric.WithDescription("Change events dropped because the pet no longer exists"))
	lookupFailures, _ := m.Int64Counter("notifications.lookup_failures", metric.WithDescription("Failed enrichment lookups"))
	return dispatcherMetrics{synthesized: synthesized, skipped: skipped, lookupFailures: lookupFailures}
}

func (d dispatcherMetrics) recordSynthesized(ctx context.Context, t domain.Type) {
	addCounter(ctx, d.synthesized, attribute.String("notification.type", string(t)))
}

func (d dispatcherMetrics) recordSkipped(ctx context.Context, kind IntentKind) {
	addCounter(ctx, d.skipped, attribute.String("intent", string(kind)))
}

func (d dispatcherMetrics) recordLookupFailure(ctx context.Context, kind IntentKind) {
	addCounter(ctx, d.lookupFailures, attribute.String("intent", string(kind)))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}
