package seeders

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sweetcrumb/shop/app/models"
	"github.com/sweetcrumb/shop/pkg/auth"
)

func init() {
	Register("admin", SeedAdmin)
	Register("catalog", SeedCatalog)
}

// SeedAdmin creates the default admin account if none exists.
func SeedAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword("changeme123")
	if err != nil {
		return err
	}
	return db.Create(&models.User{
		Name:     "Admin",
		Email:    "admin@sweetcrumb.test",
		Password: hash,
		Role:     models.RoleAdmin,
	}).Error
}

// SeedCatalog inserts the starter cookie catalog. Existing SKUs are
// left untouched.
func SeedCatalog(db *gorm.DB) error {
	products := []models.Product{
		{Name: "Chocolate Chip", Description: "Classic chocolate chip cookie", Price: decimal.NewFromFloat(2.50), Stock: 120, SKU: "CKY-CHOC", Active: true},
		{Name: "Oatmeal Raisin", Description: "Chewy oatmeal with raisins", Price: decimal.NewFromFloat(2.25), Stock: 80, SKU: "CKY-OAT", Active: true},
		{Name: "Double Fudge", Description: "Dense double chocolate fudge", Price: decimal.NewFromFloat(3.00), Stock: 60, SKU: "CKY-FUDGE", Active: true},
		{Name: "Snickerdoodle", Description: "Cinnamon sugar coated", Price: decimal.NewFromFloat(2.40), Stock: 90, SKU: "CKY-SNICK", Active: true},
		{Name: "Peanut Butter", Description: "Roasted peanut butter cookie", Price: decimal.NewFromFloat(2.75), Stock: 70, SKU: "CKY-PB", Active: true},
		{Name: "Gingerbread", Description: "Spiced seasonal gingerbread", Price: decimal.NewFromFloat(2.60), Stock: 0, SKU: "CKY-GINGER", Active: true},
	}

	for _, p := range products {
		var count int64
		if err := db.Model(&models.Product{}).Where("sku = ?", p.SKU).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&p).Error; err != nil {
			return err
		}
	}
	return nil
}
