// Package app builds the HTTP kernel: the global middleware stack plus
// the route registrations supplied by the caller.
package app

import (
	"net/http"
	"time"

	"github.com/sweetcrumb/shop/config"
	"github.com/sweetcrumb/shop/pkg/cache"
	"github.com/sweetcrumb/shop/pkg/metrics"
	"github.com/sweetcrumb/shop/pkg/middleware"
	"github.com/sweetcrumb/shop/pkg/orm"
	"github.com/sweetcrumb/shop/pkg/reqid"
	"github.com/sweetcrumb/shop/pkg/router"
)

// BuildHandler constructs the HTTP handler. It wires the cache into the
// ORM, applies the global middleware stack, then runs every
// route-registration callback.
//
// Middleware order, outermost first:
//  1. metrics    for accurate total latency
//  2. recovery   catches panics before they kill the goroutine
//  3. request ID injected before anything logs
//  4. logger     reads request_id from context
//  5. CORS
//  6. rate limit rejects abusers before any handler work
func BuildHandler(routeFns ...func(*router.Router)) http.Handler {
	orm.CacheStore = &ormCache{}

	r := router.New()

	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(config.RateLimit(), time.Minute))

	for _, fn := range routeFns {
		fn(r)
	}

	return r.Handler()
}

// ormCache bridges pkg/cache to the orm.Cacher interface. Lives here so
// neither orm nor cache imports the other.
type ormCache struct{}

func (c *ormCache) Get(key string, dest interface{}) bool {
	return cache.Get(key, dest)
}

func (c *ormCache) Set(key string, value interface{}, ttl time.Duration) error {
	return cache.Set(key, value, ttl)
}
