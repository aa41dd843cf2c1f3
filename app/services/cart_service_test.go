package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCreatesOneCartPerUser(t *testing.T) {
	setupDB(t)
	svc := NewCartService()
	user := seedUser(t, "buyer@test.dev")

	first, err := svc.Get(user.ID)
	require.NoError(t, err)
	second, err := svc.Get(user.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Empty(t, second.Items)
}

func TestAddItemSumsQuantities(t *testing.T) {
	setupDB(t)
	svc := NewCartService()
	user := seedUser(t, "buyer@test.dev")
	choc := seedProduct(t, "Chocolate Chip", 2.50, 10, true)

	_, err := svc.AddItem(user.ID, choc.ID, 2)
	require.NoError(t, err)

	cart, err := svc.AddItem(user.ID, choc.ID, 3)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.True(t, cart.Total().Equal(decimal.NewFromFloat(12.50)), "total %s", cart.Total())
}

func TestAddItemChecksCombinedQuantity(t *testing.T) {
	setupDB(t)
	svc := NewCartService()
	user := seedUser(t, "buyer@test.dev")
	choc := seedProduct(t, "Chocolate Chip", 2.50, 5, true)

	_, err := svc.AddItem(user.ID, choc.ID, 3)
	require.NoError(t, err)

	_, err = svc.AddItem(user.ID, choc.ID, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 6, stockErr.Requested)
	assert.Equal(t, 5, stockErr.Available)

	// The original line is untouched.
	cart, err := svc.Get(user.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
}

func TestAddItemRejectsBadInput(t *testing.T) {
	setupDB(t)
	svc := NewCartService()
	user := seedUser(t, "buyer@test.dev")
	retired := seedProduct(t, "Retired", 2.50, 10, false)
	choc := seedProduct(t, "Chocolate Chip", 2.50, 10, true)

	_, err := svc.AddItem(user.ID, choc.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.AddItem(user.ID, retired.ID, 1)
	assert.ErrorIs(t, err, ErrProductUnavailable)

	_, err = svc.AddItem(user.ID, 999, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestUpdateItemReplacesQuantity(t *testing.T) {
	setupDB(t)
	svc := NewCartService()
	user := seedUser(t, "buyer@test.dev")
	choc := seedProduct(t, "Chocolate Chip", 2.50, 10, true)

	_, err := svc.UpdateItem(user.ID, 1, 2)
	assert.ErrorIs(t, err, ErrItemNotFound)

	added, err := svc.AddItem(user.ID, choc.ID, 2)
	require.NoError(t, err)
	require.Len(t, added.Items, 1)
	itemID := added.Items[0].ID

	cart, err := svc.UpdateItem(user.ID, itemID, 7)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 7, cart.Items[0].Quantity)

	_, err = svc.UpdateItem(user.ID, itemID, 11)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

// Cart lines are addressed by the line id the cart payload exposes, not
// by product id. With only the second product in the cart the line id
// and the product id diverge, and the line id must win.
func TestCartLinesAddressedByLineID(t *testing.T) {
	setupDB(t)
	svc := NewCartService()
	user := seedUser(t, "buyer@test.dev")
	seedProduct(t, "Chocolate Chip", 2.50, 10, true)
	oat := seedProduct(t, "Oatmeal", 2.25, 10, true)

	cart, err := svc.AddItem(user.ID, oat.ID, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	line := cart.Items[0]
	require.NotEqual(t, line.ProductID, line.ID)

	cart, err = svc.UpdateItem(user.ID, line.ID, 5)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, oat.ID, cart.Items[0].ProductID)
	assert.Equal(t, 5, cart.Items[0].Quantity)

	// The product id does not name a line.
	_, err = svc.UpdateItem(user.ID, oat.ID, 2)
	assert.ErrorIs(t, err, ErrItemNotFound)
	_, err = svc.RemoveItem(user.ID, oat.ID)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestItemIDsScopedToOwnCart(t *testing.T) {
	setupDB(t)
	svc := NewCartService()
	alice := seedUser(t, "alice@test.dev")
	bob := seedUser(t, "bob@test.dev")
	choc := seedProduct(t, "Chocolate Chip", 2.50, 10, true)

	cart, err := svc.AddItem(alice.ID, choc.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	aliceLine := cart.Items[0].ID

	_, err = svc.UpdateItem(bob.ID, aliceLine, 9)
	assert.ErrorIs(t, err, ErrItemNotFound)
	_, err = svc.RemoveItem(bob.ID, aliceLine)
	assert.ErrorIs(t, err, ErrItemNotFound)

	cart, err = svc.Get(alice.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestRemoveItemAndClear(t *testing.T) {
	setupDB(t)
	svc := NewCartService()
	user := seedUser(t, "buyer@test.dev")
	choc := seedProduct(t, "Chocolate Chip", 2.50, 10, true)
	oat := seedProduct(t, "Oatmeal", 2.25, 10, true)

	cart, err := svc.AddItem(user.ID, choc.ID, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	chocLine := cart.Items[0].ID
	_, err = svc.AddItem(user.ID, oat.ID, 1)
	require.NoError(t, err)

	cart, err = svc.RemoveItem(user.ID, chocLine)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, oat.ID, cart.Items[0].ProductID)

	_, err = svc.RemoveItem(user.ID, chocLine)
	assert.ErrorIs(t, err, ErrItemNotFound)

	require.NoError(t, svc.Clear(user.ID))
	cart, err = svc.Get(user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	// A removed product can be added again.
	cart, err = svc.AddItem(user.ID, choc.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}
