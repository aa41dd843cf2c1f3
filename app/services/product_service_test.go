package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweetcrumb/shop/app/models"
	"github.com/sweetcrumb/shop/pkg/database"
)

func TestCatalogExcludesInactive(t *testing.T) {
	setupDB(t)
	svc := NewProductService()
	seedProduct(t, "Chocolate Chip", 2.50, 10, true)
	seedProduct(t, "Retired", 2.50, 10, false)

	catalog, err := svc.Catalog()
	require.NoError(t, err)
	require.Len(t, catalog, 1)
	assert.Equal(t, "Chocolate Chip", catalog[0].Name)
}

func TestDeleteWithoutHistoryRemovesRow(t *testing.T) {
	setupDB(t)
	svc := NewProductService()
	choc := seedProduct(t, "Chocolate Chip", 2.50, 10, true)

	require.NoError(t, svc.Delete(choc.ID))

	_, err := svc.Get(choc.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestDeleteWithHistoryDeactivates(t *testing.T) {
	setupDB(t)
	products := NewProductService()
	orders := NewOrderService()
	user := seedUser(t, "buyer@test.dev")
	choc := seedProduct(t, "Chocolate Chip", 2.50, 10, true)

	order, err := orders.Checkout(context.Background(), user.ID, CheckoutInput{
		Items: []OrderLine{{ProductID: choc.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, products.Delete(choc.ID))

	// Row survives, deactivated, and the order snapshot is intact.
	got, err := products.Get(choc.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	reloaded, err := orders.Get(user.ID, false, order.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.True(t, reloaded.Items[0].UnitPrice.Equal(decimal.NewFromFloat(2.50)))
}

func TestUpdateProduct(t *testing.T) {
	setupDB(t)
	svc := NewProductService()
	choc := seedProduct(t, "Chocolate Chip", 2.50, 10, true)

	inactive := false
	got, err := svc.Update(choc.ID, ProductInput{
		Name:   "Chocolate Chunk",
		Price:  decimal.NewFromFloat(2.75),
		Stock:  12,
		SKU:    choc.SKU,
		Active: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Chocolate Chunk", got.Name)
	assert.Equal(t, 12, got.Stock)
	assert.False(t, got.Active)

	var stored models.Product
	require.NoError(t, database.DB.First(&stored, choc.ID).Error)
	assert.True(t, stored.Price.Equal(decimal.NewFromFloat(2.75)))
}
