package changefeed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type row struct {
	ID    int
	Owner string
}

type recorder struct {
	mu   sync.Mutex
	seen []int
}

func (r *recorder) handle(_ context.Context, ev Event[row]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, ev.New.ID)
	return nil
}

func (r *recorder) snapshot() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.seen...)
}

func insert(id int, owner string) Event[row] {
	return Event[row]{Kind: KindInsert, New: &row{ID: id, Owner: owner}}
}

func TestBus_DeliversInPublishOrder(t *testing.T) {
	bus := NewBus[row]("rows")
	defer bus.Close()
	rec := &recorder{}
	sub := bus.Subscribe(KindInsert, nil, rec.handle)
	defer sub.Unsubscribe()

	for i := 1; i <= 200; i++ {
		bus.Publish(insert(i, "a"))
	}

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 200 }, 2*time.Second, 5*time.Millisecond)
	seen := rec.snapshot()
	for i, id := range seen {
		require.Equal(t, i+1, id)
	}
}

func TestBus_FilterAndKindSelectEvents(t *testing.T) {
	bus := NewBus[row]("rows")
	defer bus.Close()
	rec := &recorder{}
	sub := bus.Subscribe(KindInsert, func(ev Event[row]) bool { return ev.New.Owner == "alice" }, rec.handle)
	defer sub.Unsubscribe()

	bus.Publish(insert(1, "bob"))
	bus.Publish(Event[row]{Kind: KindUpdate, Old: &row{ID: 2}, New: &row{ID: 2, Owner: "alice"}})
	bus.Publish(insert(3, "alice"))

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, []int{3}, rec.snapshot())
}

func TestBus_UnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus[row]("rows")
	defer bus.Close()
	rec := &recorder{}
	sub := bus.Subscribe(KindAny, nil, rec.handle)
	require.Equal(t, 1, bus.Subscribers())

	sub.Unsubscribe()
	sub.Unsubscribe()
	require.Equal(t, 0, bus.Subscribers())

	bus.Publish(insert(1, "a"))
	time.Sleep(20 * time.Millisecond)
	require.Empty(t, rec.snapshot())
}

func TestBus_WaitBlocksUntilHandlerReturns(t *testing.T) {
	bus := NewBus[row]("rows")
	defer bus.Close()
	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	sub := bus.Subscribe(KindAny, nil, func(context.Context, Event[row]) error {
		close(started)
		<-release
		finished.Store(true)
		return nil
	})
	bus.Publish(insert(1, "a"))
	<-started

	sub.Unsubscribe()
	waited := make(chan struct{})
	go func() {
		sub.Wait()
		close(waited)
	}()
	select {
	case <-waited:
		t.Fatal("Wait returned while the handler was still running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	require.Eventually(t, func() bool {
		select {
		case <-waited:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
	require.True(t, finished.Load())
}

func TestBus_RetriesTransientFailures(t *testing.T) {
	bus := NewBus[row]("rows", WithRetry(time.Millisecond, time.Second))
	defer bus.Close()
	var attempts atomic.Int32
	delivered := make(chan int, 1)
	sub := bus.Subscribe(KindInsert, nil, func(_ context.Context, ev Event[row]) error {
		if attempts.Add(1) < 3 {
			return Transient(errors.New("store unavailable"))
		}
		delivered <- ev.New.ID
		return nil
	})
	defer sub.Unsubscribe()

	bus.Publish(insert(7, "a"))

	select {
	case id := <-delivered:
		require.Equal(t, 7, id)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not redelivered")
	}
	require.Equal(t, int32(3), attempts.Load())
}

func TestBus_PermanentFailureDoesNotBlockLaterEvents(t *testing.T) {
	bus := NewBus[row]("rows")
	defer bus.Close()
	rec := &recorder{}
	sub := bus.Subscribe(KindInsert, nil, func(ctx context.Context, ev Event[row]) error {
		if ev.New.ID == 1 {
			panic("boom")
		}
		if ev.New.ID == 2 {
			return errors.New("lookup failed")
		}
		return rec.handle(ctx, ev)
	})
	defer sub.Unsubscribe()

	bus.Publish(insert(1, "a"))
	bus.Publish(insert(2, "a"))
	bus.Publish(insert(3, "a"))

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, []int{3}, rec.snapshot())
}

func TestBus_CloseRejectsSubscribers(t *testing.T) {
	bus := NewBus[row]("rows")
	bus.Close()
	sub := bus.Subscribe(KindAny, nil, func(context.Context, Event[row]) error { return nil })
	sub.Unsubscribe()
	require.Equal(t, 0, bus.Subscribers())
}

func TestTransient(t *testing.T) {
	base := errors.New("timeout")
	err := Transient(base)
	require.True(t, IsTransient(err))
	require.ErrorIs(t, err, base)
	require.False(t, IsTransient(base))
	require.NoError(t, Transient(nil))
}
