package tracking

import "time"

// StatusEvent is one status observation from either source. SourceID is
// an opaque origin token kept for diagnostics; deduplication is by
// status code alone.
type StatusEvent struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	SourceID  string    `json:"source_id,omitempty"`
}

// Timeline is the ordered, deduplicated status history of one order.
// Entries are monotonic in rank except that Cancelled may follow any
// non-Delivered state. All mutation goes through Apply.
type Timeline struct {
	orderID string
	entries []StatusEvent
}

func NewTimeline(orderID string) *Timeline {
	return &Timeline{orderID: orderID}
}

func (t *Timeline) OrderID() string { return t.orderID }

// Apply merges one event under the reconciliation contract and reports
// whether it was appended. Events that would regress the head rank,
// duplicate the head status, or land after a terminal state are
// dropped, never errored, since both sources deliver at-least-once.
func (t *Timeline) Apply(event StatusEvent) bool {
	if !event.Status.Valid() {
		return false
	}

	head, ok := t.Head()
	if !ok {
		t.entries = append(t.entries, event)
		return true
	}

	if head.Status.Terminal() {
		return false
	}
	if event.Status == head.Status {
		return false
	}
	if event.Status == StatusCancelled {
		t.entries = append(t.entries, event)
		return true
	}

	eventRank, ok := event.Status.Rank()
	if !ok {
		return false
	}
	headRank, ok := head.Status.Rank()
	if !ok {
		// Head is Cancelled, which Terminal() already covers.
		return false
	}
	if eventRank < headRank {
		return false
	}

	t.entries = append(t.entries, event)
	return true
}

// Head returns the latest entry; this is the rendered current status.
func (t *Timeline) Head() (StatusEvent, bool) {
	if len(t.entries) == 0 {
		return StatusEvent{}, false
	}
	return t.entries[len(t.entries)-1], true
}

// Terminal reports whether the timeline accepts no further events.
func (t *Timeline) Terminal() bool {
	head, ok := t.Head()
	return ok && head.Status.Terminal()
}

// Entries returns a copy of the timeline.
func (t *Timeline) Entries() []StatusEvent {
	out := make([]StatusEvent, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Timeline) Len() int { return len(t.entries) }
