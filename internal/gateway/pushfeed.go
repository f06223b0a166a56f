package gateway

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/example/ec-client-core/internal/domain/tracking"
	"github.com/example/ec-client-core/internal/infrastructure/kafka"
)

// statusPayload is the wire shape of a pushed status update. The
// embedded timeline is deliberately ignored: the server is
// authoritative for occurrence, the local timeline for ordering.
type statusPayload struct {
	OrderID  string          `json:"order_id"`
	Status   string          `json:"status"`
	EventID  string          `json:"event_id"`
	At       time.Time       `json:"timestamp"`
	Timeline json.RawMessage `json:"timeline,omitempty"`
}

// PushFeed routes pushed status updates to open tracking sessions by
// order id. One consumer serves all sessions; orders nobody is watching
// are dropped on the floor.
type PushFeed struct {
	consumer *kafka.Consumer

	mu   sync.RWMutex
	subs map[string]func(tracking.StatusEvent)
}

func NewPushFeed(consumer *kafka.Consumer) *PushFeed {
	return &PushFeed{
		consumer: consumer,
		subs:     make(map[string]func(tracking.StatusEvent)),
	}
}

// Run consumes the status topic until ctx is cancelled.
func (f *PushFeed) Run(ctx context.Context) error {
	return f.consumer.Consume(ctx, f.HandleMessage)
}

// Subscribe registers the delivery func for one order id. The returned
// release is idempotent and must run on every session exit path.
func (f *PushFeed) Subscribe(orderID string, deliver func(tracking.StatusEvent)) (func(), error) {
	f.mu.Lock()
	f.subs[orderID] = deliver
	f.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, orderID)
			f.mu.Unlock()
		})
	}
	return release, nil
}

// HandleMessage decodes one pushed payload and forwards it as a single
// StatusEvent. Malformed or unknown payloads are logged and skipped;
// the stream is at-least-once so redelivery will not hurt.
func (f *PushFeed) HandleMessage(ctx context.Context, key, value []byte) error {
	var payload statusPayload
	if err := json.Unmarshal(value, &payload); err != nil {
		log.Printf("[PushFeed] Dropping malformed payload: %v", err)
		return nil
	}

	f.mu.RLock()
	deliver, ok := f.subs[payload.OrderID]
	f.mu.RUnlock()
	if !ok {
		return nil
	}

	status := tracking.Status(payload.Status)
	if !status.Valid() {
		log.Printf("[PushFeed] Dropping unknown status %q for order %s", payload.Status, payload.OrderID)
		return nil
	}

	at := payload.At
	if at.IsZero() {
		at = time.Now()
	}

	deliver(tracking.StatusEvent{
		Status:    status,
		Timestamp: at,
		SourceID:  "push:" + payload.EventID,
	})
	return nil
}
