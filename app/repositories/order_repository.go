package repositories

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sweetcrumb/shop/app/models"
	"github.com/sweetcrumb/shop/pkg/orm"
)

// OrderRepository handles database operations for Order and OrderItem.
type OrderRepository struct{}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

// Create persists a new order with its items inside an open transaction.
func (r *OrderRepository) Create(tx *gorm.DB, order *models.Order) error {
	return orm.Tx(tx).Create(order)
}

// FindByID loads one order with its items and product snapshots.
func (r *OrderRepository) FindByID(id uint) (models.Order, error) {
	var order models.Order
	err := orm.DB().
		Model(&models.Order{}).
		Preload("Items").
		Preload("Items.Product").
		Where("id = ?", id).
		First(&order)
	return order, err
}

// FindByIDForUpdate loads one order inside a transaction with a row lock,
// so a status change and a concurrent cancel cannot interleave.
func (r *OrderRepository) FindByIDForUpdate(tx *gorm.DB, id uint) (models.Order, error) {
	var order models.Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	return order, err
}

// ByUser returns one page of a user's orders, newest first.
func (r *OrderRepository) ByUser(userID uint, status string, page, limit int) ([]models.Order, orm.Pagination, error) {
	q := orm.DB().
		Model(&models.Order{}).
		Preload("Items").
		Preload("Items.Product").
		Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var orders []models.Order
	pagination, err := q.Order("id desc").GetWithPagination(&orders, page, limit)
	return orders, pagination, err
}

// All returns one page of every order in the system, newest first.
func (r *OrderRepository) All(status string, page, limit int) ([]models.Order, orm.Pagination, error) {
	q := orm.DB().
		Model(&models.Order{}).
		Preload("Items").
		Preload("Items.Product")
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var orders []models.Order
	pagination, err := q.Order("id desc").GetWithPagination(&orders, page, limit)
	return orders, pagination, err
}

// UpdateStatus sets the order status inside an open transaction.
func (r *OrderRepository) UpdateStatus(tx *gorm.DB, orderID uint, status models.OrderStatus) error {
	_, err := orm.Tx(tx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{"status": status})
	return err
}
