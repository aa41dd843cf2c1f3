package services

import (
	"errors"
	"sync"

	"gorm.io/gorm"

	"github.com/sweetcrumb/shop/app/models"
	"github.com/sweetcrumb/shop/app/repositories"
)

// cartLocks serializes mutations per user so two requests from the same
// client cannot interleave a read-modify-write on the same cart line.
var cartLocks sync.Map

func lockCart(userID uint) func() {
	v, _ := cartLocks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

type CartService struct {
	carts    *repositories.CartRepository
	products *repositories.ProductRepository
}

func NewCartService() *CartService {
	return &CartService{
		carts:    repositories.NewCartRepository(),
		products: repositories.NewProductRepository(),
	}
}

// Get returns the user's cart, creating an empty one on first access.
func (s *CartService) Get(userID uint) (models.Cart, error) {
	return s.carts.FindOrCreateByUser(userID)
}

// AddItem puts qty units of a product in the cart. Adding a product
// already in the cart sums the quantities, and the combined quantity is
// checked against current stock before anything is written.
func (s *CartService) AddItem(userID, productID uint, qty int) (models.Cart, error) {
	if qty < 1 {
		return models.Cart{}, ErrInvalidQuantity
	}
	defer lockCart(userID)()

	product, err := s.sellableProduct(productID)
	if err != nil {
		return models.Cart{}, err
	}

	cart, err := s.carts.FindOrCreateByUser(userID)
	if err != nil {
		return models.Cart{}, err
	}

	item, err := s.carts.FindItem(cart.ID, productID)
	switch {
	case err == nil:
		combined := item.Quantity + qty
		if combined > product.Stock {
			return models.Cart{}, s.stockErr(product, combined)
		}
		item.Quantity = combined
		if err := s.carts.UpdateItem(&item); err != nil {
			return models.Cart{}, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if qty > product.Stock {
			return models.Cart{}, s.stockErr(product, qty)
		}
		item = models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: qty}
		if err := s.carts.CreateItem(&item); err != nil {
			return models.Cart{}, err
		}
	default:
		return models.Cart{}, err
	}

	return s.carts.FindByUser(userID)
}

// UpdateItem replaces the quantity of an existing cart line. The line is
// addressed by its own id as returned in the cart payload, never by
// product id, and only within the caller's cart.
func (s *CartService) UpdateItem(userID, itemID uint, qty int) (models.Cart, error) {
	if qty < 1 {
		return models.Cart{}, ErrInvalidQuantity
	}
	defer lockCart(userID)()

	cart, err := s.carts.FindOrCreateByUser(userID)
	if err != nil {
		return models.Cart{}, err
	}

	item, err := s.carts.FindItemByID(cart.ID, itemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Cart{}, ErrItemNotFound
	}
	if err != nil {
		return models.Cart{}, err
	}

	product, err := s.sellableProduct(item.ProductID)
	if err != nil {
		return models.Cart{}, err
	}
	if qty > product.Stock {
		return models.Cart{}, s.stockErr(product, qty)
	}

	item.Quantity = qty
	if err := s.carts.UpdateItem(&item); err != nil {
		return models.Cart{}, err
	}
	return s.carts.FindByUser(userID)
}

// RemoveItem drops a single line from the cart, addressed by its line id.
func (s *CartService) RemoveItem(userID, itemID uint) (models.Cart, error) {
	defer lockCart(userID)()

	cart, err := s.carts.FindOrCreateByUser(userID)
	if err != nil {
		return models.Cart{}, err
	}

	item, err := s.carts.FindItemByID(cart.ID, itemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Cart{}, ErrItemNotFound
	}
	if err != nil {
		return models.Cart{}, err
	}

	if err := s.carts.DeleteItem(&item); err != nil {
		return models.Cart{}, err
	}
	return s.carts.FindByUser(userID)
}

// Clear empties the cart.
func (s *CartService) Clear(userID uint) error {
	defer lockCart(userID)()

	cart, err := s.carts.FindOrCreateByUser(userID)
	if err != nil {
		return err
	}
	return s.carts.Clear(cart.ID)
}

func (s *CartService) sellableProduct(productID uint) (models.Product, error) {
	product, err := s.products.FindByID(productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Product{}, ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, err
	}
	if !product.Sellable() {
		return models.Product{}, ErrProductUnavailable
	}
	return product, nil
}

func (s *CartService) stockErr(product models.Product, requested int) error {
	return &StockError{
		ProductID:   product.ID,
		ProductName: product.Name,
		Requested:   requested,
		Available:   product.Stock,
	}
}
