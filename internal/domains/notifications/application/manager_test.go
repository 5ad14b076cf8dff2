package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	adoptionmemory "github.com/Apurer/pet-adoption-api/internal/domains/adoption/adapters/memory"
	adoption "github.com/Apurer/pet-adoption-api/internal/domains/adoption/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/notifications/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/notifications/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/changefeed"
	"github.com/Apurer/pet-adoption-api/internal/platform/localstate"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
)

type recordingPusher struct {
	mu        sync.Mutex
	snapshots map[string][]domain.Snapshot
}

func (p *recordingPusher) Push(userID string, snapshot domain.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snapshots == nil {
		p.snapshots = map[string][]domain.Snapshot{}
	}
	p.snapshots[userID] = append(p.snapshots[userID], snapshot)
}

func (p *recordingPusher) count(userID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.snapshots[userID])
}

type fixture struct {
	bus     *changefeed.Bus[adoption.Request]
	repo    *adoptionmemory.Repository
	store   *localstate.MemoryStore
	lookups *stubLookups
	pusher  *recordingPusher
	manager *Manager
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		bus:     changefeed.NewBus[adoption.Request]("adoption_requests", changefeed.WithRetry(5*time.Millisecond, 200*time.Millisecond)),
		store:   localstate.NewMemoryStore(),
		lookups: newLookups(),
		pusher:  &recordingPusher{},
	}
	f.repo = adoptionmemory.NewRepository(f.bus)
	var n atomic.Int64
	opts = append([]Option{
		WithPusher(f.pusher),
		WithIDGenerator(func() string { return fmt.Sprintf("n-%d", n.Add(1)) }),
	}, opts...)
	f.manager = NewManager(f.bus, f.store, f.lookups, opts...)
	t.Cleanup(func() {
		f.manager.Close()
		f.bus.Close()
	})
	return f
}

func (f *fixture) submit(t *testing.T, id, requester string) *adoption.Request {
	t.Helper()
	req, err := adoption.NewRequest(id, "pet-1", requester, "olga", "We have a fenced yard and time.", requester+"@example.com", "", time.Now().UTC())
	require.NoError(t, err)
	saved, err := f.repo.Insert(context.Background(), req)
	require.NoError(t, err)
	return saved
}

func (f *fixture) decide(t *testing.T, id string, status adoption.Status) {
	t.Helper()
	_, err := f.repo.CompareAndSetStatus(context.Background(), id, adoption.StatusPending, status, time.Now().UTC())
	require.NoError(t, err)
}

func waitForInbox(t *testing.T, s *Session, n int) []domain.Notification {
	t.Helper()
	require.Eventually(t, func() bool { return len(s.Notifications()) >= n }, 2*time.Second, 5*time.Millisecond)
	return s.Notifications()
}

func TestApprovalNotifiesRequesterWithOwnerContact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.submit(t, "req-1", "alice")

	alice, err := f.manager.Ensure(ctx, "alice")
	require.NoError(t, err)
	before := alice.UnreadCount()

	f.decide(t, req.ID, adoption.StatusApproved)

	items := waitForInbox(t, alice, 1)
	require.Equal(t, domain.TypeAdoptionApproved, items[0].Type)
	require.Contains(t, items[0].Message, "olga@example.com")
	require.Contains(t, items[0].Message, "555-0101")
	require.Equal(t, req.ID, items[0].RelatedID)
	require.False(t, items[0].Read)
	require.Equal(t, before+1, alice.UnreadCount())
}

func TestRejectionNotifiesRequesterWithoutContact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.submit(t, "req-1", "alice")
	alice, err := f.manager.Ensure(ctx, "alice")
	require.NoError(t, err)

	f.decide(t, req.ID, adoption.StatusRejected)

	items := waitForInbox(t, alice, 1)
	require.Equal(t, domain.TypeAdoptionRejected, items[0].Type)
	require.NotContains(t, items[0].Message, "olga@example.com")
	require.NotContains(t, items[0].Message, "Contact the owner")
}

func TestNewRequestNotifiesOwner(t *testing.T) {
	f := newFixture(t)
	olga, err := f.manager.Ensure(context.Background(), "olga")
	require.NoError(t, err)

	req := f.submit(t, "req-1", "alice")

	items := waitForInbox(t, olga, 1)
	require.Equal(t, domain.TypeAdoptionRequest, items[0].Type)
	require.Contains(t, items[0].Message, "Rex")
	require.Equal(t, req.ID, items[0].RelatedID)
}

func TestOtherUsersEventsAreIgnored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bob, err := f.manager.Ensure(ctx, "bob")
	require.NoError(t, err)
	olga, err := f.manager.Ensure(ctx, "olga")
	require.NoError(t, err)

	req := f.submit(t, "req-1", "alice")
	f.decide(t, req.ID, adoption.StatusApproved)

	waitForInbox(t, olga, 1)
	// the owner is not told about her own decision and bob hears nothing
	time.Sleep(50 * time.Millisecond)
	require.Len(t, olga.Notifications(), 1)
	require.Empty(t, bob.Notifications())
}

func TestNotificationsAreMostRecentFirstAndPersisted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	olga, err := f.manager.Ensure(ctx, "olga")
	require.NoError(t, err)

	f.submit(t, "req-1", "alice")
	waitForInbox(t, olga, 1)
	f.submit(t, "req-2", "bob")
	items := waitForInbox(t, olga, 2)
	require.Equal(t, "req-2", items[0].RelatedID)
	require.Equal(t, "req-1", items[1].RelatedID)

	blob, ok, err := f.store.Get(ctx, SlotKey("olga"))
	require.NoError(t, err)
	require.True(t, ok)
	persisted, err := domain.DecodeInbox(blob)
	require.NoError(t, err)
	require.Equal(t, items, persisted.Items())
	require.Equal(t, 2, f.pusher.count("olga"))
}

func TestSessionOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, err := f.manager.Ensure(ctx, "alice")
	require.NoError(t, err)

	first, err := s.Add(ctx, domain.Draft{Type: domain.TypeMessage, Title: "Hello", Message: "first"})
	require.NoError(t, err)
	second, err := s.Add(ctx, domain.Draft{Type: domain.TypeMessage, Title: "Hello", Message: "second"})
	require.NoError(t, err)
	require.Equal(t, 2, s.UnreadCount())

	s.MarkAsRead(ctx, first.ID)
	s.MarkAsRead(ctx, first.ID)
	require.Len(t, s.Notifications(), 2)
	require.Equal(t, 1, s.UnreadCount())

	s.MarkAllAsRead(ctx)
	require.Zero(t, s.UnreadCount())

	require.True(t, s.Clear(ctx, second.ID))
	require.False(t, s.Clear(ctx, second.ID))
	require.Len(t, s.Notifications(), 1)

	_, err = s.Add(ctx, domain.Draft{Type: "alert", Title: "x"})
	require.ErrorIs(t, err, domain.ErrInvalidType)
}

func TestActivateReloadsPersistedInbox(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, err := f.manager.Ensure(ctx, "alice")
	require.NoError(t, err)
	_, err = s.Add(ctx, domain.Draft{Type: domain.TypeMessage, Title: "Kept"})
	require.NoError(t, err)

	f.manager.Deactivate("alice")
	_, err = f.manager.Session("alice")
	require.ErrorIs(t, err, ErrNotActive)

	require.NoError(t, f.manager.Activate(ctx, "alice"))
	s, err = f.manager.Session("alice")
	require.NoError(t, err)
	require.Len(t, s.Notifications(), 1)
	require.Equal(t, "Kept", s.Notifications()[0].Title)
}

func TestDeactivatedSessionNoLongerWritesItsSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	old, err := f.manager.Ensure(ctx, "alice")
	require.NoError(t, err)
	_, err = old.Add(ctx, domain.Draft{Type: domain.TypeMessage, Title: "Kept"})
	require.NoError(t, err)
	f.manager.Deactivate("alice")

	current, err := f.manager.Ensure(ctx, "alice")
	require.NoError(t, err)
	_, err = current.Add(ctx, domain.Draft{Type: domain.TypeMessage, Title: "Fresh"})
	require.NoError(t, err)

	_, err = old.Add(ctx, domain.Draft{Type: domain.TypeMessage, Title: "Stale"})
	require.ErrorIs(t, err, ErrNotActive)
	old.MarkAllAsRead(ctx)

	f.manager.Deactivate("alice")
	reloaded, err := f.manager.Ensure(ctx, "alice")
	require.NoError(t, err)
	titles := []string{}
	for _, n := range reloaded.Notifications() {
		titles = append(titles, n.Title)
	}
	require.Equal(t, []string{"Fresh", "Kept"}, titles)
	require.Equal(t, 2, reloaded.UnreadCount())
}

func TestActivateWithCorruptBlobStartsEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, blob := range []string{"{{{", `[{},{"type":"bogus","read":false}]`} {
		require.NoError(t, f.store.Put(ctx, SlotKey("alice"), []byte(blob)))

		s, err := f.manager.Ensure(ctx, "alice")
		require.NoError(t, err)
		require.Empty(t, s.Notifications(), blob)
		require.Zero(t, s.UnreadCount(), blob)
		f.manager.Deactivate("alice")
	}
}

func TestActivateRequiresUser(t *testing.T) {
	f := newFixture(t)
	require.ErrorIs(t, f.manager.Activate(context.Background(), ""), identity.ErrUnauthenticated)
}

func TestDeactivateStopsDelivery(t *testing.T) {
	f := newFixture(t)
	_, err := f.manager.Ensure(context.Background(), "olga")
	require.NoError(t, err)
	require.Equal(t, 2, f.bus.Subscribers())

	f.manager.Deactivate("olga")
	f.manager.Deactivate("olga")
	require.Zero(t, f.bus.Subscribers())
	require.Zero(t, f.manager.ActiveSessions())
}

func TestMissingPetIsSkippedWithoutBreakingTheStream(t *testing.T) {
	f := newFixture(t)
	olga, err := f.manager.Ensure(context.Background(), "olga")
	require.NoError(t, err)

	gone, err := adoption.NewRequest("req-gone", "pet-404", "bob", "olga", "We have a fenced yard and time.", "b@example.com", "", time.Now().UTC())
	require.NoError(t, err)
	_, err = f.repo.Insert(context.Background(), gone)
	require.NoError(t, err)
	f.submit(t, "req-1", "alice")

	items := waitForInbox(t, olga, 1)
	require.Len(t, items, 1)
	require.Equal(t, "req-1", items[0].RelatedID)
}

type flakyLookups struct {
	*stubLookups
	failures atomic.Int32
}

func (f *flakyLookups) PetName(ctx context.Context, petID string) (string, error) {
	if f.failures.Add(-1) >= 0 {
		return "", fmt.Errorf("%w: connection reset", ports.ErrLookupUnavailable)
	}
	return f.stubLookups.PetName(ctx, petID)
}

func TestTransientLookupFailureIsRetried(t *testing.T) {
	f := newFixture(t)
	flaky := &flakyLookups{stubLookups: newLookups()}
	flaky.failures.Store(2)
	f.manager.renderer = NewRenderer(flaky, time.Second)

	olga, err := f.manager.Ensure(context.Background(), "olga")
	require.NoError(t, err)
	f.submit(t, "req-1", "alice")

	items := waitForInbox(t, olga, 1)
	require.Equal(t, domain.TypeAdoptionRequest, items[0].Type)
}

type failingStore struct {
	localstate.Store
}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("disk unavailable")
}

func TestActivateFailsWhenStateCannotBeLoaded(t *testing.T) {
	bus := changefeed.NewBus[adoption.Request]("adoption_requests")
	defer bus.Close()
	m := NewManager(bus, failingStore{}, newLookups())
	_, err := m.Ensure(context.Background(), "alice")
	require.ErrorIs(t, err, ErrStateUnavailable)
	require.Zero(t, bus.Subscribers())
}

func TestClosedManagerRejectsActivation(t *testing.T) {
	f := newFixture(t)
	_, err := f.manager.Ensure(context.Background(), "alice")
	require.NoError(t, err)
	f.manager.Close()
	require.Zero(t, f.bus.Subscribers())
	_, err = f.manager.Ensure(context.Background(), "alice")
	require.ErrorIs(t, err, ErrClosed)
}
