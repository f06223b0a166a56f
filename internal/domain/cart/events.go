package cart

import "time"

const (
	EventItemAdded         = "CartItemAdded"
	EventItemRemoved       = "CartItemRemoved"
	EventQuantitySet       = "CartQuantitySet"
	EventItemSavedForLater = "CartItemSavedForLater"
	EventItemMovedToActive = "CartItemMovedToActive"
	EventCleared           = "CartCleared"
)

type ItemAdded struct {
	CartID        string    `json:"cart_id"`
	UserID        string    `json:"user_id"`
	ProductID     string    `json:"product_id"`
	Price         int       `json:"price"`
	DiscountPrice int       `json:"discount_price,omitempty"`
	AddedAt       time.Time `json:"added_at"`
}

type ItemRemoved struct {
	CartID    string    `json:"cart_id"`
	ProductID string    `json:"product_id"`
	RemovedAt time.Time `json:"removed_at"`
}

type QuantitySet struct {
	CartID    string    `json:"cart_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	SetAt     time.Time `json:"set_at"`
}

type ItemSavedForLater struct {
	CartID    string    `json:"cart_id"`
	ProductID string    `json:"product_id"`
	SavedAt   time.Time `json:"saved_at"`
}

type ItemMovedToActive struct {
	CartID    string    `json:"cart_id"`
	ProductID string    `json:"product_id"`
	MovedAt   time.Time `json:"moved_at"`
}

type Cleared struct {
	CartID    string    `json:"cart_id"`
	ClearedAt time.Time `json:"cleared_at"`
}
