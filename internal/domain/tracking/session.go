package tracking

import (
	"errors"
	"log"
	"sync"
	"time"
)

type SessionState string

const (
	SessionIdle        SessionState = "idle"
	SessionSubscribing SessionState = "subscribing"
	SessionLive        SessionState = "live"
	SessionClosed      SessionState = "closed"
)

var (
	ErrSessionClosed = errors.New("tracking session is closed")
	ErrAlreadyOpen   = errors.New("tracking session is already open")
)

// Feed is the push side of the merge: a server-driven stream of status
// events for one order. Subscribe returns a release func that must be
// safe to call more than once.
type Feed interface {
	Subscribe(orderID string, deliver func(StatusEvent)) (release func(), err error)
}

// Options configures one tracking session.
type Options struct {
	// Feed is the push channel. A nil feed, or a feed whose subscribe
	// fails, degrades the session to simulator-only; the view never
	// fails on transport grounds.
	Feed Feed

	// SimulatorInterval arms the local fallback progression. Zero or
	// negative disables it.
	SimulatorInterval time.Duration

	// OnApply is invoked after each event the timeline accepts, off the
	// caller's thread. Used to keep the last-known-status cache warm.
	OnApply func(StatusEvent)
}

// Session owns one timeline and funnels both update sources through a
// single serialized apply loop. The loop is the only writer of the
// timeline; the merge needs no arbitration beyond the timeline's own
// rank rules.
type Session struct {
	orderID string

	mu       sync.RWMutex
	state    SessionState
	timeline *Timeline
	audit    *AuditLog

	queue     chan StatusEvent
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	release func()
	sim     *Simulator
	onApply func(StatusEvent)
}

func NewSession(orderID string) *Session {
	return &Session{
		orderID:  orderID,
		state:    SessionIdle,
		timeline: NewTimeline(orderID),
		audit:    NewAuditLog(orderID),
		queue:    make(chan StatusEvent, 16),
		done:     make(chan struct{}),
	}
}

func (s *Session) OrderID() string { return s.orderID }

// Open starts the apply loop, attaches the push feed and arms the
// simulator. The optional seed is the authoritative starting head from
// the order-detail fetch; it goes through the same apply path as
// everything else.
func (s *Session) Open(opts Options, seed *StatusEvent) error {
	s.mu.Lock()
	switch s.state {
	case SessionClosed:
		s.mu.Unlock()
		return ErrSessionClosed
	case SessionSubscribing, SessionLive:
		s.mu.Unlock()
		return ErrAlreadyOpen
	}
	s.state = SessionSubscribing
	s.onApply = opts.OnApply
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run()

	if seed != nil {
		s.Enqueue(*seed)
	}

	if opts.Feed != nil {
		release, err := opts.Feed.Subscribe(s.orderID, func(e StatusEvent) { s.Enqueue(e) })
		if err != nil {
			// Degrade, don't fail: the simulator keeps the view moving.
			log.Printf("[Tracking] Push subscribe failed for order %s, simulator only: %v", s.orderID, err)
		} else {
			s.release = release
		}
	}

	if opts.SimulatorInterval > 0 {
		s.sim = NewSimulator(opts.SimulatorInterval)
		go s.sim.Run(s.CurrentStatus, func(e StatusEvent) { s.Enqueue(e) })
	}

	return nil
}

// Enqueue hands an event to the apply loop. Events arriving after Close
// are dropped, including ticks and deliveries already in flight.
func (s *Session) Enqueue(event StatusEvent) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.queue <- event:
		return true
	case <-s.done:
		return false
	}
}

func (s *Session) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case event := <-s.queue:
			s.apply(event)
		}
	}
}

func (s *Session) apply(event StatusEvent) {
	s.mu.Lock()
	if s.state == SessionClosed {
		// The closed guard, not just a stopped timer: a tick may already
		// be queued when Close runs.
		s.mu.Unlock()
		return
	}

	applied := s.timeline.Apply(event)
	if applied && s.state == SessionSubscribing {
		s.state = SessionLive
	}
	s.mu.Unlock()

	if applied && s.onApply != nil {
		s.onApply(event)
	}
}

// Close releases the push subscription and the simulator on every exit
// path and marks the session terminal. A reopened view builds a new
// session with a fresh timeline.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = SessionClosed
		s.mu.Unlock()

		if s.sim != nil {
			s.sim.Stop()
		}
		if s.release != nil {
			s.release()
		}

		close(s.done)
		s.wg.Wait()
	})
}

func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// CurrentStatus is the rendered status: the timeline head. It is
// non-decreasing in rank for the lifetime of the session.
func (s *Session) CurrentStatus() (Status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	head, ok := s.timeline.Head()
	if !ok {
		return "", false
	}
	return head.Status, true
}

// Timeline returns a copy of the applied entries.
func (s *Session) Timeline() []StatusEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timeline.Entries()
}

// Annotate records a vendor/admin note against the order. Annotations
// live in the audit log only; they carry no rank and never touch the
// timeline or the rendered status.
func (s *Session) Annotate(actor, note string) AuditEntry {
	return s.audit.Append(actor, note)
}

// Audit returns the annotations recorded so far.
func (s *Session) Audit() []AuditEntry {
	return s.audit.Entries()
}
