package store

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventRelay forwards journaled events to a telemetry topic. The relay
// is best-effort: a publish failure never fails the append.
type EventRelay interface {
	Publish(ctx context.Context, key string, payload any) error
}

// Event is one entry in the client's local event journal.
type Event struct {
	ID            string          `json:"id"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	EventType     string          `json:"event_type"`
	Data          json.RawMessage `json:"data"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
}

// MemoryEventStore keeps the event journal in memory for the lifetime
// of the session. Appended events are optionally relayed to a telemetry
// topic; relay failures do not fail the append.
type MemoryEventStore struct {
	mu        sync.RWMutex
	events    map[string][]Event // aggregateID -> events
	snapshots map[string]*Snapshot
	relay     EventRelay
}

func NewMemoryEventStore(relay EventRelay) *MemoryEventStore {
	return &MemoryEventStore{
		events:    make(map[string][]Event),
		snapshots: make(map[string]*Snapshot),
		relay:     relay,
	}
}

func (es *MemoryEventStore) Append(ctx context.Context, aggregateID, aggregateType, eventType string, data any) (*Event, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	es.mu.Lock()
	version := len(es.events[aggregateID]) + 1
	event := Event{
		ID:            uuid.New().String(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          jsonData,
		Timestamp:     time.Now(),
		Version:       version,
	}
	es.events[aggregateID] = append(es.events[aggregateID], event)
	es.mu.Unlock()

	if es.relay != nil {
		if err := es.relay.Publish(ctx, aggregateID, event); err != nil {
			log.Printf("[EventStore] Telemetry relay failed for %s: %v", aggregateID, err)
		}
	}

	return &event, nil
}

// GetEvents returns all events for an aggregate.
func (es *MemoryEventStore) GetEvents(aggregateID string) []Event {
	es.mu.RLock()
	defer es.mu.RUnlock()
	return es.events[aggregateID]
}

// GetEventsFromVersion returns events with a version strictly greater
// than the given one.
func (es *MemoryEventStore) GetEventsFromVersion(aggregateID string, version int) []Event {
	es.mu.RLock()
	defer es.mu.RUnlock()

	var tail []Event
	for _, event := range es.events[aggregateID] {
		if event.Version > version {
			tail = append(tail, event)
		}
	}
	return tail
}

// GetSnapshot returns the latest snapshot for an aggregate, or nil.
func (es *MemoryEventStore) GetSnapshot(aggregateID string) (*Snapshot, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()
	return es.snapshots[aggregateID], nil
}

func (es *MemoryEventStore) SaveSnapshot(ctx context.Context, snapshot *Snapshot) error {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.snapshots[snapshot.AggregateID] = snapshot
	return nil
}
