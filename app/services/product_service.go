package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sweetcrumb/shop/app/models"
	"github.com/sweetcrumb/shop/app/repositories"
	"github.com/sweetcrumb/shop/pkg/orm"
)

type ProductService struct {
	products *repositories.ProductRepository
}

func NewProductService() *ProductService {
	return &ProductService{products: repositories.NewProductRepository()}
}

// ProductInput carries the writable fields of a product.
type ProductInput struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description" validate:"nullable,max=2000"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Stock       int             `json:"stock" validate:"gte=0"`
	SKU         string          `json:"sku" validate:"required,max=64"`
	Active      *bool           `json:"active" validate:"nullable"`
}

// Catalog returns the publicly visible products.
func (s *ProductService) Catalog() ([]models.Product, error) {
	return s.products.Active()
}

// All returns every product for the admin listing.
func (s *ProductService) All(page, limit int) ([]models.Product, orm.Pagination, error) {
	return s.products.All(page, limit)
}

// Get loads one product by ID.
func (s *ProductService) Get(id uint) (models.Product, error) {
	product, err := s.products.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Product{}, ErrProductNotFound
	}
	return product, err
}

// Create adds a product to the catalog.
func (s *ProductService) Create(in ProductInput) (models.Product, error) {
	if !in.Price.IsPositive() {
		return models.Product{}, errors.New("price must be positive")
	}

	product := models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		SKU:         in.SKU,
		Active:      true,
	}
	if in.Active != nil {
		product.Active = *in.Active
	}
	if err := s.products.Create(&product); err != nil {
		return models.Product{}, err
	}
	return product, nil
}

// Update replaces the writable fields of an existing product.
func (s *ProductService) Update(id uint, in ProductInput) (models.Product, error) {
	product, err := s.Get(id)
	if err != nil {
		return models.Product{}, err
	}
	if !in.Price.IsPositive() {
		return models.Product{}, errors.New("price must be positive")
	}

	product.Name = in.Name
	product.Description = in.Description
	product.Price = in.Price
	product.Stock = in.Stock
	product.SKU = in.SKU
	if in.Active != nil {
		product.Active = *in.Active
	}
	if err := s.products.Update(&product); err != nil {
		return models.Product{}, err
	}
	return product, nil
}

// Delete removes a product from sale. A product referenced by past
// orders is deactivated instead of deleted, so order history keeps its
// product snapshots intact.
func (s *ProductService) Delete(id uint) error {
	product, err := s.Get(id)
	if err != nil {
		return err
	}

	ordered, err := s.products.HasOrderHistory(id)
	if err != nil {
		return err
	}
	if ordered {
		product.Active = false
		return s.products.Update(&product)
	}
	return s.products.Delete(&product)
}
