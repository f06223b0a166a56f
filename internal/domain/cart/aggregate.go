package cart

import (
	"encoding/json"

	"github.com/example/ec-client-core/internal/infrastructure/store"
)

const AggregateType = "Cart"

// LineItem is one product entry with its price snapshot taken when the
// item entered the cart.
type LineItem struct {
	ProductID     string `json:"product_id"`
	Quantity      int    `json:"quantity"`
	Price         int    `json:"price"`
	DiscountPrice int    `json:"discount_price,omitempty"` // 0 when no discount applies
}

// UnitPrice is the price the subtotal is computed from.
func (li LineItem) UnitPrice() int {
	if li.DiscountPrice > 0 {
		return li.DiscountPrice
	}
	return li.Price
}

// Cart holds the active and saved-for-later lists. A product id lives
// in at most one of the two maps at any time; transfers between them
// happen inside a single event application.
type Cart struct {
	ID      string              `json:"id"`
	UserID  string              `json:"user_id"`
	Active  map[string]LineItem `json:"active"` // productID -> item
	Saved   map[string]LineItem `json:"saved"`  // productID -> item
	Version int                 `json:"version"`
}

func NewCart(id string) *Cart {
	return &Cart{
		ID:     id,
		Active: make(map[string]LineItem),
		Saved:  make(map[string]LineItem),
	}
}

func (c *Cart) GetID() string   { return c.ID }
func (c *Cart) GetVersion() int { return c.Version }

// Subtotal is derived from the active list alone, never stored.
func (c *Cart) Subtotal() int {
	var total int
	for _, item := range c.Active {
		total += item.Quantity * item.UnitPrice()
	}
	return total
}

// ItemCount is the number of units across active line items.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Active {
		count += item.Quantity
	}
	return count
}

// ApplyEvent is the reducer: it folds one journal event into the cart
// state. Events that do not apply to the current state reduce to
// no-ops rather than errors, so replaying a journal never fails on
// state grounds.
func (c *Cart) ApplyEvent(event store.Event) error {
	if c.Active == nil {
		c.Active = make(map[string]LineItem)
	}
	if c.Saved == nil {
		c.Saved = make(map[string]LineItem)
	}

	switch event.EventType {
	case EventItemAdded:
		var data ItemAdded
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		c.ID = data.CartID
		c.UserID = data.UserID
		c.applyAdd(data)

	case EventItemRemoved:
		var data ItemRemoved
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		delete(c.Active, data.ProductID)

	case EventQuantitySet:
		var data QuantitySet
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if item, ok := c.Active[data.ProductID]; ok {
			item.Quantity = data.Quantity
			if item.Quantity < 1 {
				item.Quantity = 1
			}
			c.Active[data.ProductID] = item
		}

	case EventItemSavedForLater:
		var data ItemSavedForLater
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		transfer(c.Active, c.Saved, data.ProductID)

	case EventItemMovedToActive:
		var data ItemMovedToActive
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		transfer(c.Saved, c.Active, data.ProductID)

	case EventCleared:
		var data Cleared
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		c.Active = make(map[string]LineItem)
		c.Saved = make(map[string]LineItem)
	}

	c.Version = event.Version
	return nil
}

// applyAdd increments an existing active line by one unit or inserts a
// fresh one. A matching saved-for-later line is folded into the active
// line first, so the product never exists in both lists.
func (c *Cart) applyAdd(data ItemAdded) {
	item, ok := c.Active[data.ProductID]
	if !ok {
		item = LineItem{ProductID: data.ProductID}
	}

	if saved, inSaved := c.Saved[data.ProductID]; inSaved {
		item.Quantity += saved.Quantity
		delete(c.Saved, data.ProductID)
	}

	item.Quantity++
	item.Price = data.Price
	item.DiscountPrice = data.DiscountPrice
	c.Active[data.ProductID] = item
}

// transfer moves a line between the two lists in one step. When the
// destination already holds the product, quantities are summed and the
// destination's price snapshot wins.
func transfer(from, to map[string]LineItem, productID string) {
	item, ok := from[productID]
	if !ok {
		return
	}
	delete(from, productID)

	if existing, ok := to[productID]; ok {
		existing.Quantity += item.Quantity
		to[productID] = existing
		return
	}
	to[productID] = item
}
