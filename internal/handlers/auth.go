package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ar_furniture/internal/service"
	"github.com/Skotchmaster/ar_furniture/pkg/apperr"
	"github.com/Skotchmaster/ar_furniture/pkg/logging"
)

type AuthHandler struct {
	Auth *service.AuthService
}

func (h *AuthHandler) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "signup")

	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("signup_error", "status", 400, "reason", "bad json", "error", err)
		return apperr.Wrap(apperr.KindValidation, "invalid request body", err)
	}

	if err := h.Auth.Signup(ctx, req.Username, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "User registered successfully"})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "login")

	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "bad json", "error", err)
		return apperr.Wrap(apperr.KindValidation, "invalid request body", err)
	}

	res, err := h.Auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loginResponse{Token: res.Token, Role: res.Role, Cart: res.Cart})
}
