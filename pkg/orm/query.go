// Package orm is a thin fluent wrapper over the shared gorm connection.
//
// Read path:
//
//	orm.DB().Model(&models.Product{}).Where("active = ?", true).Get(&products)
//
// Write path inside a unit of work:
//
//	orm.Transaction(func(tx *gorm.DB) error {
//	    ...
//	})
//
// Every repository method that participates in a transaction accepts the
// *gorm.DB handle via orm.Tx(tx), so the transactional boundary stays
// explicit at the service layer.
package orm

import (
	"math"
	"time"

	"github.com/sweetcrumb/shop/pkg/database"
	"github.com/sweetcrumb/shop/pkg/metrics"
	"gorm.io/gorm"
)

// Cacher is implemented by pkg/cache and injected by the app kernel
// (keeps orm and cache from importing each other).
type Cacher interface {
	Get(key string, dest interface{}) bool
	Set(key string, value interface{}, ttl time.Duration) error
}

// CacheStore is set once at startup by pkg/app.
var CacheStore Cacher

// Pagination describes one page of a paginated listing.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

type Query struct {
	db *gorm.DB
}

// DB returns a Query bound to the global connection.
func DB() *Query {
	return &Query{db: database.DB}
}

// Tx returns a Query bound to an open transaction handle.
func Tx(tx *gorm.DB) *Query {
	return &Query{db: tx}
}

// Transaction runs fn inside a database transaction on the global
// connection. A non-nil error from fn rolls the whole unit back.
func Transaction(fn func(tx *gorm.DB) error) error {
	return database.DB.Transaction(fn)
}

func (q *Query) Model(v interface{}) *Query {
	return &Query{db: q.db.Model(v)}
}

func (q *Query) Where(query string, args ...interface{}) *Query {
	return &Query{db: q.db.Where(query, args...)}
}

func (q *Query) Preload(relation string, args ...interface{}) *Query {
	return &Query{db: q.db.Preload(relation, args...)}
}

func (q *Query) Order(value interface{}) *Query {
	return &Query{db: q.db.Order(value)}
}

func (q *Query) Limit(n int) *Query {
	return &Query{db: q.db.Limit(n)}
}

func (q *Query) Get(dest interface{}) error {
	defer metrics.ObserveDBQuery("find", time.Now())
	return q.db.Find(dest).Error
}

func (q *Query) First(dest interface{}) error {
	defer metrics.ObserveDBQuery("first", time.Now())
	return q.db.First(dest).Error
}

func (q *Query) Count(n *int64) error {
	defer metrics.ObserveDBQuery("count", time.Now())
	return q.db.Count(n).Error
}

func (q *Query) Create(value interface{}) error {
	defer metrics.ObserveDBQuery("create", time.Now())
	return q.db.Create(value).Error
}

func (q *Query) Save(value interface{}) error {
	defer metrics.ObserveDBQuery("save", time.Now())
	return q.db.Save(value).Error
}

func (q *Query) Delete(value interface{}) error {
	defer metrics.ObserveDBQuery("delete", time.Now())
	return q.db.Delete(value).Error
}

// FirstOrCreate fetches the first row matching the chained conditions,
// inserting dest when no row exists yet.
func (q *Query) FirstOrCreate(dest interface{}) error {
	return q.db.FirstOrCreate(dest).Error
}

// Updates applies a column map and reports how many rows matched.
// The affected-row count is how callers detect a lost conditional update.
func (q *Query) Updates(values map[string]interface{}) (int64, error) {
	defer metrics.ObserveDBQuery("update", time.Now())
	res := q.db.Updates(values)
	return res.RowsAffected, res.Error
}

// GetWithPagination fills dest with one page and returns the page metadata.
func (q *Query) GetWithPagination(dest interface{}, page, limit int) (Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var total int64
	if err := q.db.Count(&total).Error; err != nil {
		return Pagination{}, err
	}

	offset := (page - 1) * limit
	if err := q.db.Offset(offset).Limit(limit).Find(dest).Error; err != nil {
		return Pagination{}, err
	}

	return Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// Cache reads dest from the cache store under key, falling back to the
// database and populating the cache on a miss.
func (q *Query) Cache(key string, ttl time.Duration, dest interface{}) error {
	if CacheStore != nil && CacheStore.Get(key, dest) {
		return nil
	}

	if err := q.db.Find(dest).Error; err != nil {
		return err
	}

	if CacheStore != nil {
		_ = CacheStore.Set(key, dest, ttl)
	}
	return nil
}
