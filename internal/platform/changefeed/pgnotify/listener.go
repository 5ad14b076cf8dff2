// Package pgnotify consumes PostgreSQL LISTEN/NOTIFY channels.
package pgnotify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/lib/pq"
)

// Handler receives the raw payload of one notification.
type Handler func(ctx context.Context, payload []byte) error

// Listener keeps a dedicated connection listening on one channel.
type Listener struct {
	dsn          string
	channel      string
	logger       *slog.Logger
	minReconnect time.Duration
	maxReconnect time.Duration
	pingInterval time.Duration
}

// Option configures a Listener.
type Option func(*Listener)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Listener) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithReconnect sets the reconnect interval bounds used by the driver.
func WithReconnect(min, max time.Duration) Option {
	return func(l *Listener) {
		if min > 0 && max >= min {
			l.minReconnect = min
			l.maxReconnect = max
		}
	}
}

// New creates a listener for channel on the database at dsn.
func New(dsn, channel string, opts ...Option) *Listener {
	l := &Listener{
		dsn:          dsn,
		channel:      channel,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		minReconnect: 500 * time.Millisecond,
		maxReconnect: 30 * time.Second,
		pingInterval: 90 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Run listens until ctx is cancelled, passing each payload to handle.
// Handler errors are logged; they never stop the listener.
func (l *Listener) Run(ctx context.Context, handle Handler) error {
	listener := pq.NewListener(l.dsn, l.minReconnect, l.maxReconnect, l.report)
	defer listener.Close()

	listen := func() error {
		err := listener.Listen(l.channel)
		if errors.Is(err, pq.ErrChannelAlreadyOpen) {
			return nil
		}
		return err
	}
	if err := backoff.Retry(listen, backoff.WithContext(backoff.NewExponentialBackOff(), ctx)); err != nil {
		return fmt.Errorf("listen on %s: %w", l.channel, err)
	}
	l.logger.Info("listening for change notifications", slog.String("channel", l.channel))

	ticker := time.NewTicker(l.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			if n == nil {
				// the driver sends nil after a reconnect
				l.logger.Warn("change notification connection re-established, events may have been missed",
					slog.String("channel", l.channel))
				continue
			}
			if err := handle(ctx, []byte(n.Extra)); err != nil {
				l.logger.Error("change notification rejected",
					slog.String("channel", l.channel),
					slog.String("error", err.Error()))
			}
		case <-ticker.C:
			go func() {
				if err := listener.Ping(); err != nil {
					l.logger.Warn("change notification ping failed", slog.String("error", err.Error()))
				}
			}()
		}
	}
}

func (l *Listener) report(ev pq.ListenerEventType, err error) {
	attrs := []any{slog.String("channel", l.channel)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	switch ev {
	case pq.ListenerEventConnected:
		l.logger.Info("change listener connected", attrs...)
	case pq.ListenerEventDisconnected:
		l.logger.Warn("change listener disconnected", attrs...)
	case pq.ListenerEventReconnected:
		l.logger.Info("change listener reconnected", attrs...)
	case pq.ListenerEventConnectionAttemptFailed:
		l.logger.Warn("change listener connection attempt failed", attrs...)
	}
}
