package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sweetcrumb/shop/app/models"
	"github.com/sweetcrumb/shop/app/repositories"
	"github.com/sweetcrumb/shop/pkg/collection"
	"github.com/sweetcrumb/shop/pkg/event"
	"github.com/sweetcrumb/shop/pkg/logger"
	"github.com/sweetcrumb/shop/pkg/metrics"
	"github.com/sweetcrumb/shop/pkg/orm"
)

// Events fired by the order service after a committed transaction.
const (
	EventOrderCreated   = "order.created"
	EventOrderCancelled = "order.cancelled"
)

type OrderService struct {
	orders   *repositories.OrderRepository
	products *repositories.ProductRepository
	carts    *repositories.CartRepository
}

func NewOrderService() *OrderService {
	return &OrderService{
		orders:   repositories.NewOrderRepository(),
		products: repositories.NewProductRepository(),
		carts:    repositories.NewCartRepository(),
	}
}

// OrderLine is one requested product/quantity pair at checkout.
type OrderLine struct {
	ProductID uint `json:"product_id" validate:"required,gt=0"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

// CheckoutInput is the body of a checkout request.
type CheckoutInput struct {
	Items         []OrderLine `json:"items" validate:"required"`
	PaymentMethod string      `json:"payment_method" validate:"nullable,max=50"`
}

// Checkout turns a list of requested lines into a committed order.
//
// Inside one transaction it snapshots unit prices and subtotals, creates
// the order in the pending state, decrements each product's stock with a
// guarded UPDATE, and removes the purchased lines from the buyer's cart.
// A guarded decrement that matches zero rows means another checkout won
// the remaining stock after our availability check; the whole unit rolls
// back and the caller gets a conflict to retry.
func (s *OrderService) Checkout(ctx context.Context, userID uint, in CheckoutInput) (models.Order, error) {
	lines := mergeLines(in.Items)
	if len(lines) == 0 {
		metrics.CheckoutRejections.WithLabelValues("empty_order").Inc()
		return models.Order{}, ErrEmptyOrder
	}
	for _, line := range lines {
		if line.Quantity < 1 {
			return models.Order{}, ErrInvalidQuantity
		}
	}

	var order models.Order
	err := orm.Transaction(func(tx *gorm.DB) error {
		ids := collection.Pluck(lines, func(l OrderLine) uint { return l.ProductID })
		products, err := s.products.FindManyByIDs(tx, ids)
		if err != nil {
			return err
		}
		byID := collection.KeyBy(products, func(p models.Product) uint { return p.ID })

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			product, ok := byID[line.ProductID]
			if !ok {
				metrics.CheckoutRejections.WithLabelValues("product_unavailable").Inc()
				return fmt.Errorf("product %d: %w", line.ProductID, ErrProductNotFound)
			}
			if !product.Sellable() {
				metrics.CheckoutRejections.WithLabelValues("product_unavailable").Inc()
				return fmt.Errorf("product %q: %w", product.Name, ErrProductUnavailable)
			}
			if line.Quantity > product.Stock {
				metrics.CheckoutRejections.WithLabelValues("insufficient_stock").Inc()
				return &StockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   line.Quantity,
					Available:   product.Stock,
				}
			}

			subtotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Quantity:  line.Quantity,
				UnitPrice: product.Price,
				Subtotal:  subtotal,
			})
			total = total.Add(subtotal)
		}

		order = models.Order{
			UserID:        userID,
			Total:         total,
			Status:        models.OrderStatusPending,
			PaymentMethod: in.PaymentMethod,
			Items:         items,
		}
		if err := s.orders.Create(tx, &order); err != nil {
			return err
		}

		for _, line := range lines {
			reserved, err := s.products.Reserve(tx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if !reserved {
				metrics.CheckoutRejections.WithLabelValues("conflict").Inc()
				return fmt.Errorf("product %d: %w", line.ProductID, ErrConcurrencyConflict)
			}
		}

		return s.clearPurchasedLines(tx, userID, ids)
	})
	if err != nil {
		return models.Order{}, err
	}

	order = s.reloadOrder(ctx, order)

	metrics.OrdersCreated.Inc()
	metrics.OrderRevenue.Add(order.Total.InexactFloat64())
	logger.WithCtx(ctx).Info("order created",
		"order_id", order.ID, "user_id", userID, "total", order.Total.String())
	event.Fire(EventOrderCreated, order)

	return order, nil
}

// Cancel moves an order to cancelled and returns its stock. Customers can
// only cancel their own orders; admins can cancel anyone's.
func (s *OrderService) Cancel(ctx context.Context, userID uint, isAdmin bool, orderID uint) (models.Order, error) {
	var order models.Order
	err := orm.Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.orders.FindByIDForUpdate(tx, orderID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		if !isAdmin && order.UserID != userID {
			return ErrOrderNotFound
		}

		if order.Status == models.OrderStatusCancelled {
			return ErrAlreadyCancelled
		}
		if !order.Status.Cancellable() {
			return ErrNotCancellable
		}

		for _, item := range order.Items {
			if err := s.products.Release(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return s.orders.UpdateStatus(tx, order.ID, models.OrderStatusCancelled)
	})
	if err != nil {
		return models.Order{}, err
	}

	order.Status = models.OrderStatusCancelled
	order = s.reloadOrder(ctx, order)

	metrics.OrdersCancelled.Inc()
	logger.WithCtx(ctx).Info("order cancelled", "order_id", order.ID, "user_id", userID)
	event.Fire(EventOrderCancelled, order)

	return order, nil
}

// UpdateStatus advances an order along its lifecycle on behalf of the
// acting admin. A target of cancelled goes through Cancel so stock is
// restored.
func (s *OrderService) UpdateStatus(ctx context.Context, actorID, orderID uint, raw string) (models.Order, error) {
	next, err := models.ParseOrderStatus(raw)
	if err != nil {
		return models.Order{}, fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	if next == models.OrderStatusCancelled {
		return s.Cancel(ctx, actorID, true, orderID)
	}

	var order models.Order
	err = orm.Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.orders.FindByIDForUpdate(tx, orderID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		if !order.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, order.Status, next)
		}
		return s.orders.UpdateStatus(tx, order.ID, next)
	})
	if err != nil {
		return models.Order{}, err
	}

	logger.WithCtx(ctx).Info("order status updated",
		"order_id", orderID, "status", string(next), "user_id", actorID)

	order.Status = next
	return s.reloadOrder(ctx, order), nil
}

// reloadOrder re-reads a committed order with its lines and products.
// The transaction has already committed, so a failed read must not look
// like a failed operation: the caller gets the in-memory copy instead.
func (s *OrderService) reloadOrder(ctx context.Context, fallback models.Order) models.Order {
	order, err := s.orders.FindByID(fallback.ID)
	if err != nil {
		logger.WithCtx(ctx).Warn("order reload after commit failed",
			"order_id", fallback.ID, "error", err)
		return fallback
	}
	return order
}

// Get loads a single order scoped to the caller.
func (s *OrderService) Get(userID uint, isAdmin bool, orderID uint) (models.Order, error) {
	order, err := s.orders.FindByID(orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, err
	}
	if !isAdmin && order.UserID != userID {
		return models.Order{}, ErrOrderNotFound
	}
	return order, nil
}

// List returns one page of orders scoped to the caller, optionally
// filtered by status.
func (s *OrderService) List(userID uint, isAdmin bool, status string, page, limit int) ([]models.Order, orm.Pagination, error) {
	if status != "" {
		if _, err := models.ParseOrderStatus(status); err != nil {
			return nil, orm.Pagination{}, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
		}
	}
	if isAdmin {
		return s.orders.All(status, page, limit)
	}
	return s.orders.ByUser(userID, status, page, limit)
}

// clearPurchasedLines drops the buyer's cart lines for the products that
// were just ordered. Lines for other products stay in the cart.
func (s *OrderService) clearPurchasedLines(tx *gorm.DB, userID uint, productIDs []uint) error {
	var cart models.Cart
	err := orm.Tx(tx).Model(&models.Cart{}).Where("user_id = ?", userID).First(&cart)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.carts.DeleteItemsByProducts(tx, cart.ID, productIDs)
}

// mergeLines collapses duplicate product IDs by summing their quantities.
func mergeLines(lines []OrderLine) []OrderLine {
	merged := make([]OrderLine, 0, len(lines))
	index := map[uint]int{}
	for _, line := range lines {
		if i, ok := index[line.ProductID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	return merged
}
