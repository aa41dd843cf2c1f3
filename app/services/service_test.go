package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sweetcrumb/shop/app/models"
	"github.com/sweetcrumb/shop/pkg/database"
	"github.com/sweetcrumb/shop/pkg/event"
)

var testDBSeq int64

// setupDB points the shared connection at a fresh in-memory database.
func setupDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:shoptest%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	))

	database.DB = db
	t.Cleanup(func() {
		event.Flush()
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
		database.DB = nil
	})
}

func seedProduct(t *testing.T, name string, price float64, stock int, active bool) models.Product {
	t.Helper()

	p := models.Product{
		Name:   name,
		Price:  decimal.NewFromFloat(price),
		Stock:  stock,
		Active: active,
		SKU:    fmt.Sprintf("SKU-%s-%d", name, atomic.AddInt64(&testDBSeq, 1)),
	}
	require.NoError(t, database.DB.Create(&p).Error)
	return p
}

func seedUser(t *testing.T, email string) models.User {
	t.Helper()

	u := models.User{Name: "Test", Email: email, Password: "x", Role: models.RoleUser}
	require.NoError(t, database.DB.Create(&u).Error)
	return u
}

func reloadProduct(t *testing.T, id uint) models.Product {
	t.Helper()

	var p models.Product
	require.NoError(t, database.DB.First(&p, id).Error)
	return p
}
