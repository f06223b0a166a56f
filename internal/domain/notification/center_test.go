package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInbox() []Notification {
	now := time.Now()
	return []Notification{
		{ID: "n-1", Message: "Order placed", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "n-2", Message: "Order shipped", CreatedAt: now.Add(-time.Hour)},
		{ID: "n-3", Message: "Out for delivery", Read: true, CreatedAt: now},
	}
}

func TestCenter_Reload(t *testing.T) {
	c := NewCenter()
	c.Reload(testInbox())

	assert.Equal(t, 2, c.Unread())
	assert.Len(t, c.All(), 3)
}

func TestCenter_AllNewestFirst(t *testing.T) {
	c := NewCenter()
	c.Reload(testInbox())

	all := c.All()
	require.Len(t, all, 3)
	assert.Equal(t, "n-3", all[0].ID)
	assert.Equal(t, "n-1", all[2].ID)
}

func TestCenter_MarkRead(t *testing.T) {
	c := NewCenter()
	c.Reload(testInbox())

	assert.True(t, c.MarkRead("n-1"))
	assert.Equal(t, 1, c.Unread())
}

func TestCenter_MarkReadIsIdempotent(t *testing.T) {
	c := NewCenter()
	c.Reload(testInbox())

	assert.True(t, c.MarkRead("n-1"))
	assert.False(t, c.MarkRead("n-1"))
	assert.False(t, c.MarkRead("n-3")) // already read on load
	assert.Equal(t, 1, c.Unread())
}

func TestCenter_IsUnread(t *testing.T) {
	c := NewCenter()
	c.Reload(testInbox())

	assert.True(t, c.IsUnread("n-1"))
	assert.False(t, c.IsUnread("n-3")) // read on load
	assert.False(t, c.IsUnread("n-missing"))

	c.MarkRead("n-1")
	assert.False(t, c.IsUnread("n-1"))
}

func TestCenter_MarkReadUnknownID(t *testing.T) {
	c := NewCenter()
	c.Reload(testInbox())

	assert.False(t, c.MarkRead("n-missing"))
	assert.Equal(t, 2, c.Unread())
}

func TestCenter_MarkAllRead(t *testing.T) {
	c := NewCenter()
	c.Reload(testInbox())

	c.MarkAllRead()

	assert.Equal(t, 0, c.Unread())
	for _, n := range c.All() {
		assert.True(t, n.Read)
	}
}

func TestCenter_ReloadResyncsCount(t *testing.T) {
	c := NewCenter()
	c.Reload(testInbox())
	c.MarkAllRead()
	require.Equal(t, 0, c.Unread())

	// A wholesale reload is the source of truth again.
	c.Reload(testInbox())
	assert.Equal(t, 2, c.Unread())
}

func TestCenter_EmptyCenter(t *testing.T) {
	c := NewCenter()

	assert.Equal(t, 0, c.Unread())
	assert.Empty(t, c.All())
	assert.False(t, c.MarkRead("n-1"))
	c.MarkAllRead()
}
