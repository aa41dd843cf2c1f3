package repositories

import (
	"gorm.io/gorm"

	"github.com/sweetcrumb/shop/app/models"
	"github.com/sweetcrumb/shop/pkg/orm"
)

// CartRepository handles database operations for Cart and CartItem.
type CartRepository struct{}

func NewCartRepository() *CartRepository {
	return &CartRepository{}
}

// FindOrCreateByUser returns the user's cart, creating an empty one on
// first use. The unique index on user_id keeps this to one cart per user.
func (r *CartRepository) FindOrCreateByUser(userID uint) (models.Cart, error) {
	cart := models.Cart{UserID: userID}
	if err := orm.DB().Where("user_id = ?", userID).FirstOrCreate(&cart); err != nil {
		return models.Cart{}, err
	}
	return r.reload(cart.ID)
}

// FindByUser returns the user's cart with its items and products loaded.
func (r *CartRepository) FindByUser(userID uint) (models.Cart, error) {
	var cart models.Cart
	err := orm.DB().
		Model(&models.Cart{}).
		Preload("Items").
		Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&cart)
	return cart, err
}

// FindItem returns the cart line for a product, if one exists.
func (r *CartRepository) FindItem(cartID, productID uint) (models.CartItem, error) {
	var item models.CartItem
	err := orm.DB().
		Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item)
	return item, err
}

// FindItemByID returns a cart line by its own primary key, scoped to the
// cart so one user cannot address another user's lines.
func (r *CartRepository) FindItemByID(cartID, itemID uint) (models.CartItem, error) {
	var item models.CartItem
	err := orm.DB().
		Model(&models.CartItem{}).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		First(&item)
	return item, err
}

// CreateItem inserts a new cart line.
func (r *CartRepository) CreateItem(item *models.CartItem) error {
	return orm.DB().Create(item)
}

// UpdateItem persists changes to a cart line.
func (r *CartRepository) UpdateItem(item *models.CartItem) error {
	return orm.DB().Save(item)
}

// DeleteItem removes a single cart line.
func (r *CartRepository) DeleteItem(item *models.CartItem) error {
	return orm.DB().Delete(item)
}

// Clear removes every line from the cart.
func (r *CartRepository) Clear(cartID uint) error {
	return orm.DB().
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{})
}

// DeleteItemsByProducts removes the cart lines for the given products
// inside an open transaction. Checkout uses this so purchased lines
// disappear atomically with the order.
func (r *CartRepository) DeleteItemsByProducts(tx *gorm.DB, cartID uint, productIDs []uint) error {
	if len(productIDs) == 0 {
		return nil
	}
	return orm.Tx(tx).
		Where("cart_id = ? AND product_id IN ?", cartID, productIDs).
		Delete(&models.CartItem{})
}

func (r *CartRepository) reload(cartID uint) (models.Cart, error) {
	var cart models.Cart
	err := orm.DB().
		Model(&models.Cart{}).
		Preload("Items").
		Preload("Items.Product").
		Where("id = ?", cartID).
		First(&cart)
	return cart, err
}
