package cart

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/example/ec-client-core/internal/domain/aggregate"
	"github.com/example/ec-client-core/internal/infrastructure/store"
)

var ErrInvalidProduct = errors.New("product_id is required")

// Service is the command side of the cart: it validates a command
// against current state, emits the event, and lets the reducer fold it
// back in on the next load.
type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

// GetCartID returns the cart ID for a user (one cart per user).
func GetCartID(userID string) string {
	return "cart-" + userID
}

// Get returns the current cart state for a user. A user with no journal
// gets an empty cart.
func (s *Service) Get(userID string) (*Cart, error) {
	cartID := GetCartID(userID)
	cart, found, err := aggregate.Load(s.eventStore, cartID, func() *Cart {
		return NewCart(cartID)
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return NewCart(cartID), nil
	}
	return cart, nil
}

// AddItem adds one unit of a product to the active list. Adding a
// product that is already active increments its quantity; the price
// snapshot travels with the event.
func (s *Service) AddItem(ctx context.Context, userID, productID string, price, discountPrice int) error {
	if productID == "" {
		return ErrInvalidProduct
	}

	cartID := GetCartID(userID)
	event := ItemAdded{
		CartID:        cartID,
		UserID:        userID,
		ProductID:     productID,
		Price:         price,
		DiscountPrice: discountPrice,
		AddedAt:       time.Now(),
	}

	return s.append(ctx, userID, EventItemAdded, event)
}

// RemoveItem deletes a product from the active list. Removing a product
// that is not there is a no-op, not an error.
func (s *Service) RemoveItem(ctx context.Context, userID, productID string) error {
	if productID == "" {
		return ErrInvalidProduct
	}

	cart, err := s.Get(userID)
	if err != nil {
		return err
	}
	if _, ok := cart.Active[productID]; !ok {
		return nil
	}

	event := ItemRemoved{
		CartID:    cart.ID,
		ProductID: productID,
		RemovedAt: time.Now(),
	}

	return s.append(ctx, userID, EventItemRemoved, event)
}

// SetQuantity sets an active line's quantity, clamped to a minimum of
// one. No-op when the product is not in the active list.
func (s *Service) SetQuantity(ctx context.Context, userID, productID string, quantity int) error {
	if productID == "" {
		return ErrInvalidProduct
	}
	if quantity < 1 {
		quantity = 1
	}

	cart, err := s.Get(userID)
	if err != nil {
		return err
	}
	if _, ok := cart.Active[productID]; !ok {
		return nil
	}

	event := QuantitySet{
		CartID:    cart.ID,
		ProductID: productID,
		Quantity:  quantity,
		SetAt:     time.Now(),
	}

	return s.append(ctx, userID, EventQuantitySet, event)
}

// SaveForLater transfers an active line to the saved list. No-op when
// the product is not active.
func (s *Service) SaveForLater(ctx context.Context, userID, productID string) error {
	if productID == "" {
		return ErrInvalidProduct
	}

	cart, err := s.Get(userID)
	if err != nil {
		return err
	}
	if _, ok := cart.Active[productID]; !ok {
		return nil
	}

	event := ItemSavedForLater{
		CartID:    cart.ID,
		ProductID: productID,
		SavedAt:   time.Now(),
	}

	return s.append(ctx, userID, EventItemSavedForLater, event)
}

// MoveToActive transfers a saved line back to the active list. No-op
// when the product is not saved.
func (s *Service) MoveToActive(ctx context.Context, userID, productID string) error {
	if productID == "" {
		return ErrInvalidProduct
	}

	cart, err := s.Get(userID)
	if err != nil {
		return err
	}
	if _, ok := cart.Saved[productID]; !ok {
		return nil
	}

	event := ItemMovedToActive{
		CartID:    cart.ID,
		ProductID: productID,
		MovedAt:   time.Now(),
	}

	return s.append(ctx, userID, EventItemMovedToActive, event)
}

// Clear empties both lists, used after a successful order placement.
func (s *Service) Clear(ctx context.Context, userID string) error {
	event := Cleared{
		CartID:    GetCartID(userID),
		ClearedAt: time.Now(),
	}

	return s.append(ctx, userID, EventCleared, event)
}

func (s *Service) append(ctx context.Context, userID, eventType string, data any) error {
	cartID := GetCartID(userID)

	storedEvent, err := s.eventStore.Append(ctx, cartID, AggregateType, eventType, data)
	if err != nil {
		return err
	}

	if storedEvent != nil && storedEvent.Version%store.SnapshotThreshold == 0 {
		cart, err := s.Get(userID)
		if err == nil {
			if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, cart, AggregateType); err != nil {
				log.Printf("[Cart] Failed to create snapshot for cart %s: %v", cartID, err)
			}
		}
	}

	return nil
}
