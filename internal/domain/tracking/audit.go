package tracking

import (
	"sync"
	"time"
)

// AuditEntry is one free-text status annotation from a vendor or admin
// tool. These live outside the ranked customer timeline: they carry no
// rank and are never merged into it.
type AuditEntry struct {
	OrderID string    `json:"order_id"`
	Actor   string    `json:"actor"`
	Note    string    `json:"note"`
	At      time.Time `json:"at"`
}

// AuditLog is an append-only record of vendor/admin annotations for one
// order.
type AuditLog struct {
	mu      sync.RWMutex
	orderID string
	entries []AuditEntry
}

func NewAuditLog(orderID string) *AuditLog {
	return &AuditLog{orderID: orderID}
}

func (l *AuditLog) Append(actor, note string) AuditEntry {
	entry := AuditEntry{
		OrderID: l.orderID,
		Actor:   actor,
		Note:    note,
		At:      time.Now(),
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()

	return entry
}

func (l *AuditLog) Entries() []AuditEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
