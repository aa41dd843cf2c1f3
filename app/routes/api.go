package routes

import (
	"net/http"

	"github.com/sweetcrumb/shop/app/controllers"
	appgraphql "github.com/sweetcrumb/shop/app/graphql"
	"github.com/sweetcrumb/shop/app/models"
	"github.com/sweetcrumb/shop/app/services"
	"github.com/sweetcrumb/shop/pkg/logger"
	"github.com/sweetcrumb/shop/pkg/metrics"
	"github.com/sweetcrumb/shop/pkg/middleware"
	"github.com/sweetcrumb/shop/pkg/rbac"
	"github.com/sweetcrumb/shop/pkg/response"
	"github.com/sweetcrumb/shop/pkg/router"
)

// RegisterAPI wires the HTTP surface: public catalog and auth, the
// authenticated cart/order endpoints, the admin product and order
// management routes, the GraphQL read surface, and the admin order feed.
func RegisterAPI(r *router.Router) {
	authController := controllers.NewAuthController()
	productController := controllers.NewProductController()
	cartController := controllers.NewCartController()
	orderController := controllers.NewOrderController()
	orderFeed := controllers.NewOrderFeedController()

	api := r.Group("/api")

	api.Post("/register", "auth.register", authController.Register)
	api.Post("/login", "auth.login", authController.Login)

	api.Get("/products", "products.index", productController.Index)
	api.Get("/products/{id}", "products.show", productController.Show)

	protected := api.Group("", middleware.AuthMiddleware)

	protected.Get("/cart", "cart.show", cartController.Show)
	protected.Post("/cart/items", "cart.items.add", cartController.AddItem)
	protected.Put("/cart/items/{id}", "cart.items.update", cartController.UpdateItem)
	protected.Delete("/cart/items/{id}", "cart.items.remove", cartController.RemoveItem)
	protected.Delete("/cart", "cart.clear", cartController.Clear)

	protected.Post("/orders", "orders.store", orderController.Store)
	protected.Get("/orders", "orders.index", orderController.Index)
	protected.Get("/orders/{id}", "orders.show", orderController.Show)
	protected.Put("/orders/{id}/cancel", "orders.cancel", orderController.Cancel)

	admin := api.Group("/admin", middleware.AuthMiddleware, rbac.HasRole(models.RoleAdmin))

	admin.Get("/products", "admin.products.index", productController.AdminIndex)
	admin.Post("/products", "admin.products.store", productController.Store)
	admin.Put("/products/{id}", "admin.products.update", productController.Update)
	admin.Delete("/products/{id}", "admin.products.destroy", productController.Destroy)
	admin.Put("/orders/{id}/status", "admin.orders.status", orderController.UpdateStatus)

	schema, err := appgraphql.NewSchema(services.NewProductService(), services.NewOrderService())
	if err != nil {
		logger.Error("graphql schema setup failed", "error", err)
	} else {
		protected.Post("/graphql", "graphql.query", appgraphql.Handler(schema))
	}

	r.Get("/ws/admin/orders", "admin.orders.feed", orderFeed.Connect,
		middleware.AuthMiddleware, rbac.HasRole(models.RoleAdmin))

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/health", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.Message(w, "ok")
	})
}
