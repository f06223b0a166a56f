package store

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRelay struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (r *stubRelay) Publish(ctx context.Context, key string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.keys = append(r.keys, key)
	return nil
}

func TestMemoryEventStore_AppendAssignsVersions(t *testing.T) {
	es := NewMemoryEventStore(nil)
	ctx := context.Background()

	first, err := es.Append(ctx, "cart-1", "Cart", "CartItemAdded", map[string]string{"product_id": "p-1"})
	require.NoError(t, err)
	second, err := es.Append(ctx, "cart-1", "Cart", "CartItemAdded", map[string]string{"product_id": "p-2"})
	require.NoError(t, err)

	assert.Equal(t, 1, first.Version)
	assert.Equal(t, 2, second.Version)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "Cart", first.AggregateType)
}

func TestMemoryEventStore_VersionsArePerAggregate(t *testing.T) {
	es := NewMemoryEventStore(nil)
	ctx := context.Background()

	_, err := es.Append(ctx, "cart-1", "Cart", "CartItemAdded", nil)
	require.NoError(t, err)
	other, err := es.Append(ctx, "cart-2", "Cart", "CartItemAdded", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, other.Version)
	assert.Len(t, es.GetEvents("cart-1"), 1)
	assert.Len(t, es.GetEvents("cart-2"), 1)
}

func TestMemoryEventStore_GetEventsFromVersion(t *testing.T) {
	es := NewMemoryEventStore(nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := es.Append(ctx, "cart-1", "Cart", "CartItemAdded", nil)
		require.NoError(t, err)
	}

	tail := es.GetEventsFromVersion("cart-1", 3)
	require.Len(t, tail, 2)
	assert.Equal(t, 4, tail[0].Version)
	assert.Equal(t, 5, tail[1].Version)

	assert.Empty(t, es.GetEventsFromVersion("cart-1", 5))
	assert.Len(t, es.GetEventsFromVersion("cart-1", 0), 5)
}

func TestMemoryEventStore_RelaysAppendedEvents(t *testing.T) {
	relay := &stubRelay{}
	es := NewMemoryEventStore(relay)

	_, err := es.Append(context.Background(), "cart-1", "Cart", "CartItemAdded", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"cart-1"}, relay.keys)
}

func TestMemoryEventStore_RelayFailureDoesNotFailAppend(t *testing.T) {
	relay := &stubRelay{err: assert.AnError}
	es := NewMemoryEventStore(relay)

	event, err := es.Append(context.Background(), "cart-1", "Cart", "CartItemAdded", nil)
	require.NoError(t, err)
	require.NotNil(t, event)

	// The journal keeps the event even when telemetry is down.
	assert.Len(t, es.GetEvents("cart-1"), 1)
}

func TestMemoryEventStore_GetEventsUnknownAggregate(t *testing.T) {
	es := NewMemoryEventStore(nil)

	assert.Empty(t, es.GetEvents("cart-missing"))
	assert.Empty(t, es.GetEventsFromVersion("cart-missing", 0))
}

func TestMemoryEventStore_Snapshots(t *testing.T) {
	es := NewMemoryEventStore(nil)
	ctx := context.Background()

	got, err := es.GetSnapshot("cart-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	state, err := json.Marshal(map[string]int{"items": 3})
	require.NoError(t, err)

	require.NoError(t, es.SaveSnapshot(ctx, &Snapshot{
		AggregateID: "cart-1",
		Version:     10,
		State:       state,
	}))

	got, err = es.GetSnapshot("cart-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 10, got.Version)

	// A later snapshot replaces the earlier one.
	require.NoError(t, es.SaveSnapshot(ctx, &Snapshot{
		AggregateID: "cart-1",
		Version:     20,
		State:       state,
	}))
	got, err = es.GetSnapshot("cart-1")
	require.NoError(t, err)
	assert.Equal(t, 20, got.Version)
}
