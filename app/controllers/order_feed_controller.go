package controllers

import (
	"net/http"

	"github.com/sweetcrumb/shop/app/models"
	"github.com/sweetcrumb/shop/app/services"
	"github.com/sweetcrumb/shop/pkg/event"
	"github.com/sweetcrumb/shop/pkg/ws"
)

// OrderFeedController pushes order lifecycle events to connected admin
// dashboards over WebSocket.
type OrderFeedController struct {
	hub *ws.Hub
}

func NewOrderFeedController() *OrderFeedController {
	c := &OrderFeedController{hub: ws.NewHub()}
	go c.hub.Run()

	event.Listen(services.EventOrderCreated, func(payload interface{}) {
		c.broadcast("order.created", payload)
	})
	event.Listen(services.EventOrderCancelled, func(payload interface{}) {
		c.broadcast("order.cancelled", payload)
	})

	return c
}

// Connect upgrades the request to a WebSocket subscription.
func (c *OrderFeedController) Connect(w http.ResponseWriter, r *http.Request) {
	ws.Upgrade(w, r, c.hub)
}

func (c *OrderFeedController) broadcast(name string, payload interface{}) {
	order, ok := payload.(models.Order)
	if !ok {
		return
	}
	c.hub.BroadcastJSON(map[string]interface{}{
		"event": name,
		"order": order,
	})
}
