package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/notifications/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/notifications/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/changefeed"
	"github.com/Apurer/pet-adoption-api/internal/platform/localstate"
)

// SlotKey is the local state slot holding userID's inbox.
func SlotKey(userID string) string {
	return "notifications_" + userID
}

// Session owns one signed-in user's inbox and the subscriptions feeding it.
// Only the owning user's requests and change events mutate it.
type Session struct {
	userID string
	store  localstate.Store
	pusher ports.Pusher
	logger *slog.Logger
	newID  func() string
	now    func() time.Time

	mu     sync.Mutex
	inbox  *domain.Inbox
	subs   []changefeed.Subscription
	closed bool
}

func (s *Session) UserID() string { return s.userID }

// Notifications returns the inbox, most recent first.
func (s *Session) Notifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inbox.Items()
}

func (s *Session) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inbox.UnreadCount()
}

func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inbox.Snapshot()
}

// MarkAsRead is a no-op when id is unknown or already read.
func (s *Session) MarkAsRead(ctx context.Context, id string) {
	s.mutate(ctx, func(in *domain.Inbox) bool { return in.MarkAsRead(id) })
}

func (s *Session) MarkAllAsRead(ctx context.Context) {
	s.mutate(ctx, func(in *domain.Inbox) bool { return in.MarkAllAsRead() })
}

// Clear removes the notification; it reports whether it existed.
func (s *Session) Clear(ctx context.Context, id string) bool {
	return s.mutate(ctx, func(in *domain.Inbox) bool { return in.Clear(id) })
}

// Add stamps draft and puts it at the head of the inbox.
func (s *Session) Add(ctx context.Context, draft domain.Draft) (domain.Notification, error) {
	if err := draft.Validate(); err != nil {
		return domain.Notification{}, err
	}
	n := draft.Stamp(s.newID(), s.now().UTC())
	added := s.mutate(ctx, func(in *domain.Inbox) bool {
		in.Prepend(n)
		return true
	})
	if !added {
		return domain.Notification{}, ErrNotActive
	}
	return n, nil
}

// mutate applies fn and, when it changed the inbox, persists the whole list
// and pushes a snapshot. A failed write is logged; the next mutation rewrites the slot.
// A torn-down session no longer writes its slot.
func (s *Session) mutate(ctx context.Context, fn func(*domain.Inbox) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !fn(s.inbox) {
		return false
	}
	blob, err := s.inbox.Encode()
	if err == nil {
		err = s.store.Put(ctx, SlotKey(s.userID), blob)
	}
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "could not persist notifications",
			slog.String("user.id", s.userID), slog.String("error", err.Error()))
	}
	if s.pusher != nil {
		s.pusher.Push(s.userID, s.inbox.Snapshot())
	}
	return true
}

// teardown returns once no handler of the session is running.
func (s *Session) teardown() {
	s.mu.Lock()
	s.closed = true
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()
	for _, sub := range subs {
		sub.Unsubscribe()
	}
	for _, sub := range subs {
		sub.Wait()
	}
}
