package tracking

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFeed hands the session's delivery func back to the test so pushed
// events can be injected directly.
type fakeFeed struct {
	mu       sync.Mutex
	deliver  func(StatusEvent)
	released bool
	err      error
}

func (f *fakeFeed) Subscribe(orderID string, deliver func(StatusEvent)) (func(), error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	f.deliver = deliver
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.released = true
		f.mu.Unlock()
	}, nil
}

func (f *fakeFeed) push(e StatusEvent) {
	f.mu.Lock()
	deliver := f.deliver
	f.mu.Unlock()
	if deliver != nil {
		deliver(e)
	}
}

func (f *fakeFeed) wasReleased() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.released
}

func waitForStatus(t *testing.T, s *Session, want Status) {
	t.Helper()
	require.Eventually(t, func() bool {
		got, ok := s.CurrentStatus()
		return ok && got == want
	}, 2*time.Second, 2*time.Millisecond)
}

func TestSession_LifecycleStates(t *testing.T) {
	s := NewSession("order-1")
	assert.Equal(t, SessionIdle, s.State())

	require.NoError(t, s.Open(Options{}, nil))
	assert.Equal(t, SessionSubscribing, s.State())

	s.Enqueue(ev(StatusPending, "push"))
	waitForStatus(t, s, StatusPending)
	assert.Equal(t, SessionLive, s.State())

	s.Close()
	assert.Equal(t, SessionClosed, s.State())
}

func TestSession_OpenTwice(t *testing.T) {
	s := NewSession("order-1")
	require.NoError(t, s.Open(Options{}, nil))
	defer s.Close()

	assert.ErrorIs(t, s.Open(Options{}, nil), ErrAlreadyOpen)
}

func TestSession_OpenAfterClose(t *testing.T) {
	s := NewSession("order-1")
	require.NoError(t, s.Open(Options{}, nil))
	s.Close()

	assert.ErrorIs(t, s.Open(Options{}, nil), ErrSessionClosed)
}

func TestSession_SeedGoesThroughApplyPath(t *testing.T) {
	s := NewSession("order-1")
	seed := ev(StatusShipped, "fetch")
	require.NoError(t, s.Open(Options{}, &seed))
	defer s.Close()

	waitForStatus(t, s, StatusShipped)

	// A regression pushed after the seed is still dropped.
	s.Enqueue(ev(StatusPending, "push"))
	time.Sleep(20 * time.Millisecond)
	got, _ := s.CurrentStatus()
	assert.Equal(t, StatusShipped, got)
}

func TestSession_MergesPushEvents(t *testing.T) {
	feed := &fakeFeed{}
	s := NewSession("order-1")
	require.NoError(t, s.Open(Options{Feed: feed}, nil))
	defer s.Close()

	feed.push(ev(StatusPending, "push"))
	feed.push(ev(StatusProcessing, "push"))
	feed.push(ev(StatusProcessing, "push")) // redelivery
	waitForStatus(t, s, StatusProcessing)

	assert.Len(t, s.Timeline(), 2)
}

func TestSession_SubscribeFailureDegrades(t *testing.T) {
	feed := &fakeFeed{err: assert.AnError}
	s := NewSession("order-1")

	// The view must not fail on transport grounds.
	require.NoError(t, s.Open(Options{Feed: feed}, nil))
	defer s.Close()

	s.Enqueue(ev(StatusPending, "simulator"))
	waitForStatus(t, s, StatusPending)
}

func TestSession_CloseReleasesSubscription(t *testing.T) {
	feed := &fakeFeed{}
	s := NewSession("order-1")
	require.NoError(t, s.Open(Options{Feed: feed}, nil))

	s.Close()
	assert.True(t, feed.wasReleased())

	// Close is idempotent.
	s.Close()
}

func TestSession_ClosedGuardDropsInFlightEvents(t *testing.T) {
	s := NewSession("order-1")
	require.NoError(t, s.Open(Options{}, nil))

	s.Enqueue(ev(StatusPending, "push"))
	waitForStatus(t, s, StatusPending)
	before := s.Timeline()

	s.Close()

	// A tick that was already queued fires after teardown: it must be
	// dropped without touching the detached timeline.
	assert.False(t, s.Enqueue(ev(StatusProcessing, "simulator")))
	assert.Equal(t, before, s.Timeline())
}

func TestSession_SimulatorProgresses(t *testing.T) {
	s := NewSession("order-1")
	require.NoError(t, s.Open(Options{SimulatorInterval: 2 * time.Millisecond}, nil))
	defer s.Close()

	// With no push source the simulator walks the whole progression.
	waitForStatus(t, s, StatusDelivered)

	entries := s.Timeline()
	require.Len(t, entries, 5)
	assert.Equal(t, StatusPending, entries[0].Status)
	assert.Equal(t, SourceSimulator, entries[0].SourceID)
}

func TestSession_SimulatorStopsAtTerminal(t *testing.T) {
	s := NewSession("order-1")
	seed := ev(StatusDelivered, "fetch")
	require.NoError(t, s.Open(Options{SimulatorInterval: 2 * time.Millisecond}, &seed))
	defer s.Close()

	waitForStatus(t, s, StatusDelivered)
	time.Sleep(20 * time.Millisecond)

	assert.Len(t, s.Timeline(), 1)
}

func TestSession_PushSupersedesSimulator(t *testing.T) {
	feed := &fakeFeed{}
	s := NewSession("order-1")
	require.NoError(t, s.Open(Options{Feed: feed, SimulatorInterval: 50 * time.Millisecond}, nil))
	defer s.Close()

	// Push lands well before the first simulator tick.
	feed.push(ev(StatusShipped, "push"))
	waitForStatus(t, s, StatusShipped)

	// The simulator's next fabrication builds on the pushed head, so the
	// rank never regresses even with both sources running.
	require.Eventually(t, func() bool {
		got, ok := s.CurrentStatus()
		return ok && got == StatusOutForDelivery
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSession_AnnotationsStayOffTimeline(t *testing.T) {
	s := NewSession("order-1")
	require.NoError(t, s.Open(Options{}, nil))
	defer s.Close()

	s.Enqueue(ev(StatusPending, "push"))
	waitForStatus(t, s, StatusPending)

	s.Annotate("vendor-7", "package weighed")
	s.Annotate("admin-2", "priority bumped")

	// Notes are readable from the audit log but invisible to the ranked
	// timeline and the rendered status.
	require.Len(t, s.Audit(), 2)
	assert.Len(t, s.Timeline(), 1)
	got, _ := s.CurrentStatus()
	assert.Equal(t, StatusPending, got)
}

func TestSession_OnApplyFiresOnAcceptedEventsOnly(t *testing.T) {
	var mu sync.Mutex
	var applied []Status

	s := NewSession("order-1")
	require.NoError(t, s.Open(Options{
		OnApply: func(e StatusEvent) {
			mu.Lock()
			applied = append(applied, e.Status)
			mu.Unlock()
		},
	}, nil))
	defer s.Close()

	s.Enqueue(ev(StatusPending, "push"))
	s.Enqueue(ev(StatusPending, "push")) // dropped duplicate
	s.Enqueue(ev(StatusProcessing, "push"))
	waitForStatus(t, s, StatusProcessing)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Status{StatusPending, StatusProcessing}, applied)
}
