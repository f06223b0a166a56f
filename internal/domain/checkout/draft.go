package checkout

import (
	"errors"
	"sort"
	"time"

	"github.com/example/ec-client-core/internal/domain/cart"
	"github.com/google/uuid"
)

var (
	ErrEmptyCart       = errors.New("cart has no active items")
	ErrMissingShipping = errors.New("shipping information is required")
)

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cod"
	PaymentCard           PaymentMethod = "card"
	PaymentUPI            PaymentMethod = "upi"
)

type DraftItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     int    `json:"price"`
}

// OrderDraft is a point-in-time snapshot of cart, shipping and pricing.
// The total is locked at build time; later cart or price changes do not
// touch an existing draft. A draft is submitted once and discarded.
type OrderDraft struct {
	ID        string        `json:"id"`
	Items     []DraftItem   `json:"items"`
	Shipping  ShippingInfo  `json:"shipping"`
	Total     int           `json:"total"`
	Payment   PaymentMethod `json:"payment_method"`
	CreatedAt time.Time     `json:"created_at"`
}

// BuildDraft assembles an order-creation request from the cart's active
// list and validated shipping info.
func BuildDraft(c *cart.Cart, shipping *ShippingInfo, method PaymentMethod) (*OrderDraft, error) {
	if c == nil || len(c.Active) == 0 {
		return nil, ErrEmptyCart
	}
	if shipping == nil {
		return nil, ErrMissingShipping
	}

	items := make([]DraftItem, 0, len(c.Active))
	for _, item := range c.Active {
		items = append(items, DraftItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.UnitPrice(),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	return &OrderDraft{
		ID:        uuid.New().String(),
		Items:     items,
		Shipping:  *shipping,
		Total:     c.Subtotal(),
		Payment:   method,
		CreatedAt: time.Now(),
	}, nil
}
