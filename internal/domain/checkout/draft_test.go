package checkout

import (
	"testing"

	"github.com/example/ec-client-core/internal/domain/cart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCart() *cart.Cart {
	c := cart.NewCart("cart-user-1")
	c.Active["prod-b"] = cart.LineItem{ProductID: "prod-b", Quantity: 1, Price: 250, DiscountPrice: 199}
	c.Active["prod-a"] = cart.LineItem{ProductID: "prod-a", Quantity: 2, Price: 100}
	return c
}

func TestBuildDraft_Success(t *testing.T) {
	shipping, err := ValidateShipping(validShipping())
	require.NoError(t, err)

	draft, err := BuildDraft(testCart(), shipping, PaymentCard)

	require.NoError(t, err)
	assert.NotEmpty(t, draft.ID)
	assert.Equal(t, PaymentCard, draft.Payment)
	assert.Equal(t, 2*100+199, draft.Total)

	// Items are ordered deterministically by product id.
	require.Len(t, draft.Items, 2)
	assert.Equal(t, "prod-a", draft.Items[0].ProductID)
	assert.Equal(t, "prod-b", draft.Items[1].ProductID)

	// Discounted unit price is the locked-in one.
	assert.Equal(t, 199, draft.Items[1].Price)
}

func TestBuildDraft_EmptyCart(t *testing.T) {
	shipping, err := ValidateShipping(validShipping())
	require.NoError(t, err)

	draft, err := BuildDraft(cart.NewCart("cart-user-1"), shipping, PaymentUPI)

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, draft)
}

func TestBuildDraft_NilCart(t *testing.T) {
	shipping, err := ValidateShipping(validShipping())
	require.NoError(t, err)

	draft, err := BuildDraft(nil, shipping, PaymentUPI)

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, draft)
}

func TestBuildDraft_SavedItemsExcluded(t *testing.T) {
	c := cart.NewCart("cart-user-1")
	c.Active["prod-a"] = cart.LineItem{ProductID: "prod-a", Quantity: 1, Price: 100}
	c.Saved["prod-b"] = cart.LineItem{ProductID: "prod-b", Quantity: 5, Price: 999}

	shipping, err := ValidateShipping(validShipping())
	require.NoError(t, err)

	draft, err := BuildDraft(c, shipping, PaymentCashOnDelivery)

	require.NoError(t, err)
	require.Len(t, draft.Items, 1)
	assert.Equal(t, 100, draft.Total)
}

func TestBuildDraft_MissingShipping(t *testing.T) {
	draft, err := BuildDraft(testCart(), nil, PaymentCard)

	assert.ErrorIs(t, err, ErrMissingShipping)
	assert.Nil(t, draft)
}

func TestBuildDraft_TotalLockedAtBuildTime(t *testing.T) {
	c := testCart()
	shipping, err := ValidateShipping(validShipping())
	require.NoError(t, err)

	draft, err := BuildDraft(c, shipping, PaymentCard)
	require.NoError(t, err)
	lockedTotal := draft.Total

	// Later cart changes must not reach the draft.
	item := c.Active["prod-a"]
	item.Quantity = 10
	c.Active["prod-a"] = item

	assert.Equal(t, lockedTotal, draft.Total)
	assert.NotEqual(t, c.Subtotal(), draft.Total)
}
