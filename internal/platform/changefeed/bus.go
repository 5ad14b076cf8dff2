package changefeed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultRetryMaxElapsed bounds redelivery of transient handler failures.
const DefaultRetryMaxElapsed = 10 * time.Second

type options struct {
	logger          *slog.Logger
	retryMaxElapsed time.Duration
	retryInitial    time.Duration
}

// Option configures a Bus.
type Option func(*options)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRetry overrides the backoff used for transient handler failures.
func WithRetry(initial, maxElapsed time.Duration) Option {
	return func(o *options) {
		if initial > 0 {
			o.retryInitial = initial
		}
		if maxElapsed > 0 {
			o.retryMaxElapsed = maxElapsed
		}
	}
}

// Bus is an in-process change feed for one table.
type Bus[T any] struct {
	name string
	opts options

	mu     sync.RWMutex
	subs   map[uint64]*subscription[T]
	nextID uint64
	closed bool
}

// NewBus creates a bus for the named table.
func NewBus[T any](name string, opts ...Option) *Bus[T] {
	o := options{
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		retryMaxElapsed: DefaultRetryMaxElapsed,
		retryInitial:    100 * time.Millisecond,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Bus[T]{name: name, opts: o, subs: map[uint64]*subscription[T]{}}
}

// Publish fans ev out to every matching subscription without blocking.
func (b *Bus[T]) Publish(ev Event[T]) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, s := range b.subs {
		if s.matches(ev) {
			s.enqueue(ev)
		}
	}
}

// Subscribe registers handler for events of kind that pass filter.
// A nil filter accepts every event of the kind.
func (b *Bus[T]) Subscribe(kind Kind, filter Filter[T], handler Handler[T]) Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	s := &subscription[T]{
		kind:    kind,
		filter:  filter,
		handler: handler,
		bus:     b,
		wake:    make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		cancel()
		close(s.done)
		return s
	}
	b.nextID++
	s.id = b.nextID
	b.subs[s.id] = s
	b.mu.Unlock()

	go s.run()
	return s
}

// Subscribers returns the number of live subscriptions.
func (b *Bus[T]) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close tears down every subscription and rejects further publishes.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	b.closed = true
	subs := make([]*subscription[T], 0, len(b.subs))
	for _, s := range b.subs {
		subs = append(subs, s)
	}
	b.subs = map[uint64]*subscription[T]{}
	b.mu.Unlock()
	for _, s := range subs {
		s.Unsubscribe()
	}
}

func (b *Bus[T]) remove(id uint64) {
	b.mu.Lock()
	delete(b.subs, id)
	b.mu.Unlock()
}

type subscription[T any] struct {
	id      uint64
	kind    Kind
	filter  Filter[T]
	handler Handler[T]
	bus     *Bus[T]

	mu    sync.Mutex
	queue []Event[T]
	wake  chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (s *subscription[T]) matches(ev Event[T]) bool {
	if s.kind != KindAny && s.kind != ev.Kind {
		return false
	}
	return s.filter == nil || s.filter(ev)
}

func (s *subscription[T]) enqueue(ev Event[T]) {
	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, ev)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscription[T]) next() (Event[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil || len(s.queue) == 0 {
		var zero Event[T]
		return zero, false
	}
	ev := s.queue[0]
	s.queue[0] = Event[T]{}
	s.queue = s.queue[1:]
	return ev, true
}

func (s *subscription[T]) run() {
	defer close(s.done)
	for {
		ev, ok := s.next()
		if !ok {
			select {
			case <-s.wake:
				continue
			case <-s.ctx.Done():
				return
			}
		}
		s.deliver(ev)
	}
}

func (s *subscription[T]) deliver(ev Event[T]) {
	logger := s.bus.opts.logger
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.bus.opts.retryInitial
	policy.MaxElapsedTime = s.bus.opts.retryMaxElapsed

	op := func() error {
		err := s.invoke(ev)
		if err == nil || IsTransient(err) {
			return err
		}
		return backoff.Permanent(err)
	}
	notify := func(err error, wait time.Duration) {
		logger.LogAttrs(s.ctx, slog.LevelWarn, "change handler failed, retrying",
			slog.String("table", s.bus.name),
			slog.String("kind", string(ev.Kind)),
			slog.Duration("wait", wait),
			slog.String("error", err.Error()),
		)
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(policy, s.ctx), notify); err != nil && s.ctx.Err() == nil {
		logger.LogAttrs(s.ctx, slog.LevelError, "change event dropped",
			slog.String("table", s.bus.name),
			slog.String("kind", string(ev.Kind)),
			slog.String("error", err.Error()),
		)
	}
}

func (s *subscription[T]) invoke(ev Event[T]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("change handler panic: %v", r)
		}
	}()
	return s.handler(s.ctx, ev)
}

func (s *subscription[T]) Unsubscribe() {
	s.once.Do(func() {
		s.bus.remove(s.id)
		s.mu.Lock()
		s.cancel()
		s.queue = nil
		s.mu.Unlock()
	})
}

func (s *subscription[T]) Wait() {
	<-s.done
}

var (
	_ Publisher[struct{}]  = (*Bus[struct{}])(nil)
	_ Subscriber[struct{}] = (*Bus[struct{}])(nil)
)
