package store

import (
	"encoding/json"
	"time"
)

// SnapshotThreshold is the number of journal events after which a
// snapshot of the aggregate state is taken.
const SnapshotThreshold = 10

// Snapshot is a point-in-time serialization of an aggregate, used to
// shortcut replay on load.
type Snapshot struct {
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	Version       int             `json:"version"`
	State         json.RawMessage `json:"state"`
	CreatedAt     time.Time       `json:"created_at"`
}
