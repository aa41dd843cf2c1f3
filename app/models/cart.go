package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cart is the single active cart of one user (enforced by the unique
// index on UserID; created lazily on first access).
//
// Total and ItemCount are derived on read from the current line items and
// live product prices. Nothing is persisted, so a price change shows up
// in the cart immediately.
type Cart struct {
	gorm.Model
	UserID uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Items  []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
}

// CartItem is one product+quantity line inside a cart. The product is a
// weak reference: it may be deactivated or repriced after the line is
// added, which is why stock is re-validated at checkout.
//
// No soft delete here: a soft-deleted line would keep holding the
// cart+product unique index and block re-adding the product.
type CartItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CartID    uint      `gorm:"index;uniqueIndex:idx_cart_product;not null" json:"cart_id"`
	ProductID uint      `gorm:"uniqueIndex:idx_cart_product;not null"       json:"product_id"`
	Product   Product   `gorm:"foreignKey:ProductID" json:"product"`
	Quantity  int       `gorm:"not null" json:"quantity"`
}

// Total sums price × quantity over the loaded line items.
// Items must be preloaded with their Product.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(c.lineTotal(item))
	}
	return total
}

// ItemCount is the total quantity across all line items.
func (c *Cart) ItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) lineTotal(item CartItem) decimal.Decimal {
	return item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
}
