package cache

import (
	"context"
	"errors"
)

// StatusCache holds the last known status per order so a reopened
// tracking view can render immediately while the authoritative fetch
// is in flight.
type StatusCache interface {
	GetStatus(ctx context.Context, orderID string) (string, error)
	SetStatus(ctx context.Context, orderID, status string) error
	Delete(ctx context.Context, orderID string) error
}

var ErrCacheMiss = errors.New("cache miss")
