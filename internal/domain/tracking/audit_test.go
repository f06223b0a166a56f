package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLog_AppendOnlyOrdering(t *testing.T) {
	l := NewAuditLog("order-1")

	first := l.Append("vendor-7", "picked up from warehouse")
	second := l.Append("admin-2", "address re-verified")

	entries := l.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, first, entries[0])
	assert.Equal(t, second, entries[1])
	assert.Equal(t, "order-1", entries[0].OrderID)
	assert.False(t, entries[1].At.Before(entries[0].At))
}

func TestAuditLog_EntriesReturnsCopy(t *testing.T) {
	l := NewAuditLog("order-1")
	l.Append("vendor-7", "picked up from warehouse")

	entries := l.Entries()
	entries[0].Note = "tampered"

	assert.Equal(t, "picked up from warehouse", l.Entries()[0].Note)
}

func TestAuditLog_Empty(t *testing.T) {
	l := NewAuditLog("order-1")

	assert.Empty(t, l.Entries())
}
