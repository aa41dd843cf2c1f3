package services

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sweetcrumb/shop/app/models"
	"github.com/sweetcrumb/shop/pkg/database"
	"github.com/sweetcrumb/shop/pkg/logger"
)

func TestCheckoutCreatesOrder(t *testing.T) {
	setupDB(t)
	svc := NewOrderService()
	user := seedUser(t, "buyer@test.dev")
	choc := seedProduct(t, "Chocolate Chip", 2.50, 10, true)
	oat := seedProduct(t, "Oatmeal", 2.25, 5, true)

	order, err := svc.Checkout(context.Background(), user.ID, CheckoutInput{
		Items: []OrderLine{
			{ProductID: choc.ID, Quantity: 2},
			{ProductID: oat.ID, Quantity: 1},
		},
		PaymentMethod: "card",
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, user.ID, order.UserID)
	assert.True(t, order.Total.Equal(decimal.NewFromFloat(7.25)), "total %s", order.Total)
	require.Len(t, order.Items, 2)

	for _, item := range order.Items {
		switch item.ProductID {
		case choc.ID:
			assert.True(t, item.UnitPrice.Equal(decimal.NewFromFloat(2.50)))
			assert.True(t, item.Subtotal.Equal(decimal.NewFromFloat(5.00)))
		case oat.ID:
			assert.True(t, item.UnitPrice.Equal(decimal.NewFromFloat(2.25)))
			assert.True(t, item.Subtotal.Equal(decimal.NewFromFloat(2.25)))
		default:
			t.Fatalf("unexpected product %d", item.ProductID)
		}
	}

	assert.Equal(t, 8, reloadProduct(t, choc.ID).Stock)
	assert.Equal(t, 4, reloadProduct(t, oat.ID).Stock)
}

func TestCheckoutMergesDuplicateLines(t *testing.T) {
	setupDB(t)
	svc := NewOrderService()
	user := seedUser(t, "buyer@test.dev")
	choc := seedProduct(t, "Chocolate Chip", 2.50, 10, true)

	order, err := svc.Checkout(context.Background(), user.ID, CheckoutInput{
		Items: []OrderLine{
			{ProductID: choc.ID, Quantity: 2},
			{ProductID: choc.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.Equal(t, 5, order.Items[0].Quantity)
	assert.Equal(t, 5, reloadProduct(t, choc.ID).Stock)
}

func TestCheckoutInsufficientStock(t *testing.T) {
	setupDB(t)
	svc := NewOrderService()
	user := seedUser(t, "buyer@test.dev")
	choc := seedProduct(t, "Chocolate Chip", 2.50, 3, true)

	_, err := svc.Checkout(context.Background(), user.ID, CheckoutInput{
		Items: []OrderLine{{ProductID: choc.ID, Quantity: 4}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Chocolate Chip", stockErr.ProductName)
	assert.Equal(t, 4, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)

	// Nothing committed.
	assert.Equal(t, 3, reloadProduct(t, choc.ID).Stock)
	var count int64
	database.DB.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count)
}

func TestCheckoutRollsBackWholeOrder(t *testing.T) {
	setupDB(t)
	svc := NewOrderService()
	user := seedUser(t, "buyer@test.dev")
	choc := seedProduct(t, "Chocolate Chip", 2.50, 10, true)
	oat := seedProduct(t, "Oatmeal", 2.25, 1, true)

	_, err := svc.Checkout(context.Background(), user.ID, CheckoutInput{
		Items: []OrderLine{
			{ProductID: choc.ID, Quantity: 2},
			{ProductID: oat.ID, Quantity: 5},
		},
	})
	require.Error(t, err)

	// The sufficient line must not have touched stock either.
	assert.Equal(t, 10, reloadProduct(t, choc.ID).Stock)
	assert.Equal(t, 1, reloadProduct(t, oat.ID).Stock)
}

func TestCheckoutInactiveProduct(t *testing.T) {
	setupDB(t)
	svc := NewOrderService()
	user := seedUser(t, "buyer@test.dev")
	retired := seedProduct(t, "Retired", 2.50, 10, false)

	_, err := svc.Checkout(context.Background(), user.ID, CheckoutInput{
		Items: []OrderLine{{ProductID: retired.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestCheckoutUnknownProduct(t *testing.T) {
	setupDB(t)
	svc := NewOrderService()
	user := seedUser(t, "buyer@test.dev")

	_, err := svc.Checkout(context.Background(), user.ID, CheckoutInput{
		Items: []OrderLine{{ProductID: 999, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCheckoutEmptyOrder(t *testing.T) {
	setupDB(t)
	svc := NewOrderService()
	user := seedUser(t, "buyer@test.dev")

	_, err := svc.Checkout(context.Background(), user.ID, CheckoutInput{})
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestCheckoutClearsPurchasedCartLines(t *testing.T) {
	setupDB(t)
	orders := NewOrderService()
	carts := NewCartService()
	user := seedUser(t, "buyer@test.dev")
	choc := seedProduct(t, "Chocolate Chip", 2.50, 10, true)
	oat := seedProduct(t, "Oatmeal", 2.25, 10, true)

	_, err := carts.AddItem(user.ID, choc.ID, 2)
	require.NoError(t, err)
	_, err = carts.AddItem(user.ID, oat.ID, 1)
	require.NoError(t, err)

	_, err = orders.Checkout(context.Background(), user.ID, CheckoutInput{
		Items: []OrderLine{{ProductID: choc.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	cart, err := carts.Get(user.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, oat.ID, cart.Items[0].ProductID)
}

func TestOrderTotalFrozenAfterPriceChange(t *testing.T) {
	setupDB(t)
	svc := NewOrderService()
	user := seedUser(t, "buyer@test.dev")
	choc := seedProduct(t, "Chocolate Chip", 2.50, 10, true)

	order, err := svc.Checkout(context.Background(), user.ID, CheckoutInput{
		Items: []OrderLine{{ProductID: choc.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	choc.Price = decimal.NewFromFloat(9.99)
	require.NoError(t, database.DB.Save(&choc).Error)

	got, err := svc.Get(user.ID, false, order.ID)
	require.NoError(t, err)
	assert.True(t, got.Total.Equal(decimal.NewFromFloat(5.00)))
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].UnitPrice.Equal(decimal.NewFromFloat(2.50)))
}

func TestCancelRestoresStock(t *testing.T) {
	setupDB(t)
	svc := NewOrderService()
	user := seedUser(t, "buyer@test.dev")
	choc := seedProduct(t, "Chocolate Chip", 2.50, 10, true)

	order, err := svc.Checkout(context.Background(), user.ID, CheckoutInput{
		Items: []OrderLine{{ProductID: choc.ID, Quantity: 4}},
	})
	require.NoError(t, err)
	require.Equal(t, 6, reloadProduct(t, choc.ID).Stock)

	cancelled, err := svc.Cancel(context.Background(), user.ID, false, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 10, reloadProduct(t, choc.ID).Stock)
}

func TestCancelTwice(t *testing.T) {
	setupDB(t)
	svc := NewOrderService()
	user := seedUser(t, "buyer@test.dev")
	choc := seedProduct(t, "Chocolate Chip", 2.50, 10, true)

	order, err := svc.Checkout(context.Background(), user.ID, CheckoutInput{
		Items: []OrderLine{{ProductID: choc.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), user.ID, false, order.ID)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), user.ID, false, order.ID)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)

	// Stock released exactly once.
	assert.Equal(t, 10, reloadProduct(t, choc.ID).Stock)
}

func TestCancelShippedOrder(t *testing.T) {
	setupDB(t)
	svc := NewOrderService()
	user := seedUser(t, "buyer@test.dev")
	choc := seedProduct(t, "Chocolate Chip", 2.50, 10, true)

	order, err := svc.Checkout(context.Background(), user.ID, CheckoutInput{
		Items: []OrderLine{{ProductID: choc.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	admin := seedUser(t, "admin@test.dev")
	_, err = svc.UpdateStatus(context.Background(), admin.ID, order.ID, "shipped")
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), user.ID, false, order.ID)
	assert.ErrorIs(t, err, ErrNotCancellable)
	assert.Equal(t, 9, reloadProduct(t, choc.ID).Stock)
}

func TestCancelScopedToOwner(t *testing.T) {
	setupDB(t)
	svc := NewOrderService()
	owner := seedUser(t, "owner@test.dev")
	other := seedUser(t, "other@test.dev")
	choc := seedProduct(t, "Chocolate Chip", 2.50, 10, true)

	order, err := svc.Checkout(context.Background(), owner.ID, CheckoutInput{
		Items: []OrderLine{{ProductID: choc.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), other.ID, false, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	// Admin may cancel anyone's order.
	_, err = svc.Cancel(context.Background(), other.ID, true, order.ID)
	assert.NoError(t, err)
}

func TestUpdateStatusForwardOnly(t *testing.T) {
	setupDB(t)
	svc := NewOrderService()
	user := seedUser(t, "buyer@test.dev")
	choc := seedProduct(t, "Chocolate Chip", 2.50, 10, true)

	order, err := svc.Checkout(context.Background(), user.ID, CheckoutInput{
		Items: []OrderLine{{ProductID: choc.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	admin := seedUser(t, "admin@test.dev")

	order, err = svc.UpdateStatus(context.Background(), admin.ID, order.ID, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)

	order, err = svc.UpdateStatus(context.Background(), admin.ID, order.ID, "delivered")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, order.Status)

	_, err = svc.UpdateStatus(context.Background(), admin.ID, order.ID, "processing")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateStatus(context.Background(), admin.ID, order.ID, "misplaced")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestUpdateStatusToCancelledRestoresStock(t *testing.T) {
	setupDB(t)
	svc := NewOrderService()
	user := seedUser(t, "buyer@test.dev")
	choc := seedProduct(t, "Chocolate Chip", 2.50, 10, true)

	order, err := svc.Checkout(context.Background(), user.ID, CheckoutInput{
		Items: []OrderLine{{ProductID: choc.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	admin := seedUser(t, "admin@test.dev")
	order, err = svc.UpdateStatus(context.Background(), admin.ID, order.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
	assert.Equal(t, 10, reloadProduct(t, choc.ID).Stock)
}

func TestSecondCheckoutLosesLastUnit(t *testing.T) {
	setupDB(t)
	svc := NewOrderService()
	first := seedUser(t, "first@test.dev")
	second := seedUser(t, "second@test.dev")
	choc := seedProduct(t, "Chocolate Chip", 2.50, 1, true)

	_, err := svc.Checkout(context.Background(), first.ID, CheckoutInput{
		Items: []OrderLine{{ProductID: choc.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.Checkout(context.Background(), second.ID, CheckoutInput{
		Items: []OrderLine{{ProductID: choc.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	assert.Equal(t, 0, reloadProduct(t, choc.ID).Stock)
	var count int64
	database.DB.Model(&models.Order{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestListScopedAndFiltered(t *testing.T) {
	setupDB(t)
	svc := NewOrderService()
	alice := seedUser(t, "alice@test.dev")
	bob := seedUser(t, "bob@test.dev")
	choc := seedProduct(t, "Chocolate Chip", 2.50, 100, true)

	aliceOrder, err := svc.Checkout(context.Background(), alice.ID, CheckoutInput{
		Items: []OrderLine{{ProductID: choc.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = svc.Checkout(context.Background(), bob.ID, CheckoutInput{
		Items: []OrderLine{{ProductID: choc.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), alice.ID, false, aliceOrder.ID)
	require.NoError(t, err)

	mine, _, err := svc.List(alice.ID, false, "", 1, 10)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	cancelled, _, err := svc.List(alice.ID, false, "cancelled", 1, 10)
	require.NoError(t, err)
	assert.Len(t, cancelled, 1)

	pending, _, err := svc.List(alice.ID, false, "pending", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	all, _, err := svc.List(alice.ID, true, "", 1, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, _, err = svc.List(alice.ID, false, "bogus", 1, 10)
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

// A failed re-read after commit must not turn a durable order into an
// apparent failure; the caller gets the in-memory copy instead.
func TestReloadAfterCommitFallsBack(t *testing.T) {
	setupDB(t)
	svc := NewOrderService()

	fallback := models.Order{
		Model:  gorm.Model{ID: 4321},
		UserID: 7,
		Status: models.OrderStatusPending,
		Total:  decimal.NewFromFloat(5.00),
	}

	got := svc.reloadOrder(context.Background(), fallback)
	assert.Equal(t, fallback.ID, got.ID)
	assert.Equal(t, models.OrderStatusPending, got.Status)
	assert.True(t, got.Total.Equal(fallback.Total))
}

// logCapture records slog output so tests can assert on audit fields.
type logCapture struct {
	mu      sync.Mutex
	records []map[string]any
}

func (h *logCapture) Enabled(context.Context, slog.Level) bool { return true }

func (h *logCapture) Handle(_ context.Context, rec slog.Record) error {
	entry := map[string]any{"msg": rec.Message}
	rec.Attrs(func(a slog.Attr) bool {
		entry[a.Key] = a.Value.Any()
		return true
	})
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, entry)
	return nil
}

func (h *logCapture) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *logCapture) WithGroup(string) slog.Handler      { return h }

func (h *logCapture) field(msg, key string) any {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, rec := range h.records {
		if rec["msg"] == msg {
			return rec[key]
		}
	}
	return nil
}

func TestCancelViaStatusLogsActingAdmin(t *testing.T) {
	setupDB(t)
	capture := &logCapture{}
	prev := logger.L
	logger.L = slog.New(capture)
	t.Cleanup(func() { logger.L = prev })

	svc := NewOrderService()
	buyer := seedUser(t, "buyer@test.dev")
	admin := seedUser(t, "admin@test.dev")
	choc := seedProduct(t, "Chocolate Chip", 2.50, 10, true)

	order, err := svc.Checkout(context.Background(), buyer.ID, CheckoutInput{
		Items: []OrderLine{{ProductID: choc.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), admin.ID, order.ID, "cancelled")
	require.NoError(t, err)

	logged := capture.field("order cancelled", "user_id")
	require.NotNil(t, logged)
	assert.EqualValues(t, admin.ID, logged)
}
