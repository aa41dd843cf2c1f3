package controllers

import (
	"net/http"

	"github.com/sweetcrumb/shop/app/services"
	"github.com/sweetcrumb/shop/pkg/bind"
	"github.com/sweetcrumb/shop/pkg/middleware"
	"github.com/sweetcrumb/shop/pkg/response"
)

type CartController struct {
	service *services.CartService
}

func NewCartController() *CartController {
	return &CartController{
		service: services.NewCartService(),
	}
}

func (c *CartController) Show(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	cart, err := c.service.Get(userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	response.Success(w, cart)
}

func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	var body struct {
		ProductID uint `json:"product_id" validate:"required,gt=0"`
		Quantity  int  `json:"quantity" validate:"required,gt=0"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	cart, err := c.service.AddItem(userID, body.ProductID, body.Quantity)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	response.Success(w, cart)
}

// UpdateItem changes the quantity of a cart line. The path id is the
// line's own id from the cart payload, not a product id.
func (c *CartController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}
	itemID, ok := urlID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var body struct {
		Quantity int `json:"quantity" validate:"required,gt=0"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	cart, err := c.service.UpdateItem(userID, itemID, body.Quantity)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	response.Success(w, cart)
}

func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}
	itemID, ok := urlID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid item id")
		return
	}

	cart, err := c.service.RemoveItem(userID, itemID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	response.Success(w, cart)
}

func (c *CartController) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	if err := c.service.Clear(userID); err != nil {
		respondServiceError(w, err)
		return
	}
	response.Message(w, "cart cleared")
}
