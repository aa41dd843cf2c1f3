package controllers

import (
	"net/http"

	"github.com/sweetcrumb/shop/app/services"
	"github.com/sweetcrumb/shop/pkg/bind"
	"github.com/sweetcrumb/shop/pkg/response"
)

type ProductController struct {
	service *services.ProductService
}

func NewProductController() *ProductController {
	return &ProductController{
		service: services.NewProductService(),
	}
}

// Index lists the public catalog (active products only).
func (c *ProductController) Index(w http.ResponseWriter, r *http.Request) {
	products, err := c.service.Catalog()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	response.Success(w, products)
}

// AdminIndex lists all products including inactive ones.
func (c *ProductController) AdminIndex(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)

	products, pagination, err := c.service.All(page, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	response.Paginated(w, products, pagination)
}

func (c *ProductController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := c.service.Get(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	response.Success(w, product)
}

func (c *ProductController) Store(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	product, err := c.service.Create(in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	response.Created(w, product)
}

func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var in services.ProductInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	product, err := c.service.Update(id, in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	response.Success(w, product)
}

// Destroy deletes a product, or deactivates it when order history
// references it.
func (c *ProductController) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := c.service.Delete(id); err != nil {
		respondServiceError(w, err)
		return
	}
	response.Message(w, "product removed")
}
