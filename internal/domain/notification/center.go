package notification

import (
	"sort"
	"sync"
	"time"
)

// Notification is one entry in the user's inbox. The only mutation is
// flipping Read from false to true.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Center holds the read/unread map. The unread count is always
// recomputed from the map, never cached separately, so a wholesale
// reload can never leave a counter out of sync.
type Center struct {
	mu    sync.RWMutex
	items map[string]Notification
}

func NewCenter() *Center {
	return &Center{items: make(map[string]Notification)}
}

// Reload replaces the whole inbox from a backend list response.
func (c *Center) Reload(list []Notification) {
	items := make(map[string]Notification, len(list))
	for _, n := range list {
		items[n.ID] = n
	}

	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
}

// MarkRead flips one notification to read and reports whether anything
// changed. Marking an already-read or unknown id is a no-op.
func (c *Center) MarkRead(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.items[id]
	if !ok || n.Read {
		return false
	}
	n.Read = true
	c.items[id] = n
	return true
}

// IsUnread reports whether the id is in the inbox and not yet read.
func (c *Center) IsUnread(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n, ok := c.items[id]
	return ok && !n.Read
}

// MarkAllRead flips every entry to read.
func (c *Center) MarkAllRead() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, n := range c.items {
		n.Read = true
		c.items[id] = n
	}
}

// Unread counts the unread entries.
func (c *Center) Unread() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var count int
	for _, n := range c.items {
		if !n.Read {
			count++
		}
	}
	return count
}

// All returns the inbox, newest first.
func (c *Center) All() []Notification {
	c.mu.RLock()
	out := make([]Notification, 0, len(c.items))
	for _, n := range c.items {
		out = append(out, n)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
