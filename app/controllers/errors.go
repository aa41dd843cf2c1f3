package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sweetcrumb/shop/app/services"
	"github.com/sweetcrumb/shop/pkg/response"
)

// respondServiceError maps a service error onto the HTTP surface.
// Unknown errors become a 500 without leaking internals.
func respondServiceError(w http.ResponseWriter, err error) {
	var stockErr *services.StockError

	switch {
	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrCartNotFound),
		errors.Is(err, services.ErrItemNotFound):
		response.Error(w, http.StatusNotFound, err.Error())

	case errors.As(err, &stockErr):
		response.Error(w, http.StatusConflict, stockErr.Error())

	case errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrConcurrencyConflict),
		errors.Is(err, services.ErrAlreadyCancelled),
		errors.Is(err, services.ErrEmailTaken):
		response.Error(w, http.StatusConflict, err.Error())

	case errors.Is(err, services.ErrProductUnavailable),
		errors.Is(err, services.ErrEmptyOrder),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrUnknownStatus):
		response.Error(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrNotCancellable):
		response.Error(w, http.StatusUnprocessableEntity, err.Error())

	case errors.Is(err, services.ErrInvalidCredentials):
		response.Error(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, services.ErrForbidden):
		response.Forbidden(w)

	default:
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}

// urlID parses the {id} route parameter.
func urlID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// queryInt reads an integer query parameter with a fallback.
func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
