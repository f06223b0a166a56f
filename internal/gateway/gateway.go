package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/example/ec-client-core/internal/domain/checkout"
	"github.com/example/ec-client-core/internal/domain/notification"
	"github.com/example/ec-client-core/internal/domain/tracking"
)

// ErrTransport wraps network-level failures. Callers degrade rather
// than fail the view: tracking falls back to the local simulator.
var ErrTransport = errors.New("transport failure")

// OrderSnapshot is the backend's authoritative view of an order, used
// to seed a reopened tracking session.
type OrderSnapshot struct {
	OrderID  string          `json:"order_id"`
	Status   tracking.Status `json:"status"`
	Total    int             `json:"total"`
	PlacedAt time.Time       `json:"placed_at"`
}

// OrderGateway is the backend order API the client consumes. The
// backend may reject a draft whose contents conflict with server-side
// pricing or stock; the draft's total is not authoritative after
// CreateOrder returns.
type OrderGateway interface {
	CreateOrder(ctx context.Context, draft *checkout.OrderDraft) (string, error)
	FetchOrder(ctx context.Context, orderID string) (*OrderSnapshot, error)
}

// NotificationGateway is the backend notification API. Plain
// request/response, no ordering hazard.
type NotificationGateway interface {
	List(ctx context.Context) ([]notification.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
}
