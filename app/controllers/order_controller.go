package controllers

import (
	"net/http"

	"github.com/sweetcrumb/shop/app/models"
	"github.com/sweetcrumb/shop/app/services"
	"github.com/sweetcrumb/shop/pkg/bind"
	"github.com/sweetcrumb/shop/pkg/middleware"
	"github.com/sweetcrumb/shop/pkg/response"
)

type OrderController struct {
	service *services.OrderService
}

func NewOrderController() *OrderController {
	return &OrderController{
		service: services.NewOrderService(),
	}
}

func principal(r *http.Request) (userID uint, isAdmin bool, ok bool) {
	userID, ok = middleware.UserIDFromCtx(r)
	if !ok {
		return 0, false, false
	}
	role, _ := middleware.RoleFromCtx(r)
	return userID, role == models.RoleAdmin, true
}

// Store runs a checkout for the authenticated user.
func (c *OrderController) Store(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := principal(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	var in services.CheckoutInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	order, err := c.service.Checkout(r.Context(), userID, in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	response.Created(w, order)
}

// Index lists the caller's orders; admins see every order.
func (c *OrderController) Index(w http.ResponseWriter, r *http.Request) {
	userID, isAdmin, ok := principal(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	status := r.URL.Query().Get("status")
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)

	orders, pagination, err := c.service.List(userID, isAdmin, status, page, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	response.Paginated(w, orders, pagination)
}

func (c *OrderController) Show(w http.ResponseWriter, r *http.Request) {
	userID, isAdmin, ok := principal(r)
	if !ok {
		response.Unauthorized(w)
		return
	}
	orderID, ok := urlID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := c.service.Get(userID, isAdmin, orderID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	response.Success(w, order)
}

// UpdateStatus advances an order's lifecycle. Admin only.
func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := principal(r)
	if !ok {
		response.Unauthorized(w)
		return
	}
	orderID, ok := urlID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var body struct {
		Status string `json:"status" validate:"required"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	order, err := c.service.UpdateStatus(r.Context(), userID, orderID, body.Status)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	response.Success(w, order)
}

// Cancel cancels an order and restores its stock.
func (c *OrderController) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, isAdmin, ok := principal(r)
	if !ok {
		response.Unauthorized(w)
		return
	}
	orderID, ok := urlID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := c.service.Cancel(r.Context(), userID, isAdmin, orderID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	response.Success(w, order)
}
