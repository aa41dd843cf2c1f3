package controllers

import (
	"net/http"

	"github.com/sweetcrumb/shop/app/services"
	"github.com/sweetcrumb/shop/pkg/bind"
	"github.com/sweetcrumb/shop/pkg/response"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController() *AuthController {
	return &AuthController{
		service: services.NewAuthService(),
	}
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name" validate:"required,max=255"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	user, err := c.service.Register(body.Name, body.Email, body.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	response.Created(w, user)
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	token, user, err := c.service.Login(body.Email, body.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	response.Success(w, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}
