// Package changefeed delivers typed row change events to in-process subscribers.
//
// Each subscription owns a FIFO queue drained by a single goroutine, so events
// reach a handler in the order they were published and a slow handler never
// blocks the publisher or other subscribers.
package changefeed

import (
	"context"
	"errors"
	"time"
)

// Kind identifies the row operation that produced an event.
type Kind string

const (
	KindInsert Kind = "insert"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
	// KindAny subscribes to every operation.
	KindAny Kind = "*"
)

// Valid reports whether k names a concrete row operation.
func (k Kind) Valid() bool {
	switch k {
	case KindInsert, KindUpdate, KindDelete:
		return true
	default:
		return false
	}
}

// Event carries the row image before and after a committed change.
// Old is nil for inserts and New is nil for deletes.
type Event[T any] struct {
	Kind Kind
	Old  *T
	New  *T
	At   time.Time
}

// Filter selects the events a subscription is interested in.
type Filter[T any] func(Event[T]) bool

// Handler consumes a delivered event. Returning an error wrapped with
// Transient asks the feed to redeliver with backoff.
type Handler[T any] func(ctx context.Context, ev Event[T]) error

// Subscription is the teardown handle returned by Subscribe.
type Subscription interface {
	// Unsubscribe stops delivery and discards queued events. It is idempotent.
	Unsubscribe()
	// Wait blocks until the handler has returned for the last time after
	// Unsubscribe. It must not be called from inside the handler.
	Wait()
}

// Publisher accepts committed change events.
type Publisher[T any] interface {
	Publish(ev Event[T])
}

// Subscriber registers handlers for change events.
type Subscriber[T any] interface {
	Subscribe(kind Kind, filter Filter[T], handler Handler[T]) Subscription
}

type transientError struct {
	err error
}

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

// Transient marks err as retryable by the delivery loop.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return transientError{err: err}
}

// IsTransient reports whether err was marked with Transient.
func IsTransient(err error) bool {
	var t transientError
	return errors.As(err, &t)
}
