package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a product in the catalogue.
//
// Stock is the live inventory count; it only ever moves through the
// repository's guarded updates, so it can never go negative. Price is
// read at cart/checkout time and order lines freeze their own copy.
type Product struct {
	gorm.Model
	Name        string          `gorm:"size:255;not null;index" json:"name"`
	Description string          `gorm:"type:text"               json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0"      json:"stock"`
	Active      bool            `gorm:"not null;default:true"   json:"active"`
	SKU         string          `gorm:"size:100;uniqueIndex"    json:"sku"`
}

// Sellable reports whether the product can currently be ordered at all
// (quantity availability is checked separately against Stock).
func (p *Product) Sellable() bool {
	return p.Active && p.Price.IsPositive()
}
