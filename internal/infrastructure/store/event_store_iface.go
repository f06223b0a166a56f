package store

import "context"

// EventStoreInterface is the journal the client's aggregates are
// rebuilt from.
type EventStoreInterface interface {
	Append(ctx context.Context, aggregateID, aggregateType, eventType string, data any) (*Event, error)
	GetEvents(aggregateID string) []Event
	GetEventsFromVersion(aggregateID string, version int) []Event
	GetSnapshot(aggregateID string) (*Snapshot, error)
	SaveSnapshot(ctx context.Context, snapshot *Snapshot) error
}
