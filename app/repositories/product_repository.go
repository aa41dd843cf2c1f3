package repositories

import (
	"time"

	"gorm.io/gorm"

	"github.com/sweetcrumb/shop/app/models"
	"github.com/sweetcrumb/shop/pkg/cache"
	"github.com/sweetcrumb/shop/pkg/orm"
)

// catalogCacheKey caches the active catalog listing. Every write through
// this repository forgets it.
const catalogCacheKey = "catalog:active"

// ProductRepository handles database operations for Product.
type ProductRepository struct{}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

// Active returns the sellable catalog, served from cache when warm.
func (r *ProductRepository) Active() ([]models.Product, error) {
	var products []models.Product
	err := orm.DB().
		Model(&models.Product{}).
		Where("active = ?", true).
		Order("name asc").
		Cache(catalogCacheKey, 5*time.Minute, &products)
	return products, err
}

// All returns every product, active or not, with pagination.
func (r *ProductRepository) All(page, limit int) ([]models.Product, orm.Pagination, error) {
	var products []models.Product
	pagination, err := orm.DB().
		Model(&models.Product{}).
		Order("id asc").
		GetWithPagination(&products, page, limit)
	return products, pagination, err
}

// FindByID looks up a product by primary key.
func (r *ProductRepository) FindByID(id uint) (models.Product, error) {
	var product models.Product
	err := orm.DB().Model(&models.Product{}).Where("id = ?", id).First(&product)
	return product, err
}

// FindManyByIDs loads the given products inside an open transaction.
func (r *ProductRepository) FindManyByIDs(tx *gorm.DB, ids []uint) ([]models.Product, error) {
	var products []models.Product
	err := orm.Tx(tx).Model(&models.Product{}).Where("id IN ?", ids).Get(&products)
	return products, err
}

// Create persists a new product and invalidates the catalog cache.
func (r *ProductRepository) Create(product *models.Product) error {
	if err := orm.DB().Create(product); err != nil {
		return err
	}
	cache.Forget(catalogCacheKey)
	return nil
}

// Update persists changes to an existing product.
func (r *ProductRepository) Update(product *models.Product) error {
	if err := orm.DB().Save(product); err != nil {
		return err
	}
	cache.Forget(catalogCacheKey)
	return nil
}

// Delete removes a product row entirely.
func (r *ProductRepository) Delete(product *models.Product) error {
	if err := orm.DB().Delete(product); err != nil {
		return err
	}
	cache.Forget(catalogCacheKey)
	return nil
}

// HasOrderHistory reports whether any order item references the product.
func (r *ProductRepository) HasOrderHistory(productID uint) (bool, error) {
	var count int64
	err := orm.DB().
		Model(&models.OrderItem{}).
		Where("product_id = ?", productID).
		Count(&count)
	return count > 0, err
}

// Reserve decrements stock only when enough remains, reporting whether
// the decrement happened. Running the guard inside the UPDATE itself
// keeps two concurrent checkouts from both taking the last unit.
func (r *ProductRepository) Reserve(tx *gorm.DB, productID uint, qty int) (bool, error) {
	rows, err := orm.Tx(tx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Updates(map[string]interface{}{"stock": gorm.Expr("stock - ?", qty)})
	if err != nil {
		return false, err
	}
	cache.Forget(catalogCacheKey)
	return rows > 0, nil
}

// Release returns previously reserved stock to the product.
func (r *ProductRepository) Release(tx *gorm.DB, productID uint, qty int) error {
	_, err := orm.Tx(tx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{"stock": gorm.Expr("stock + ?", qty)})
	if err != nil {
		return err
	}
	cache.Forget(catalogCacheKey)
	return nil
}
