package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ar_furniture/internal/service"
	"github.com/Skotchmaster/ar_furniture/pkg/apperr"
	"github.com/Skotchmaster/ar_furniture/pkg/logging"
	authmw "github.com/Skotchmaster/ar_furniture/pkg/middleware/auth"
)

type OrderHandler struct {
	Orders *service.OrderService
}

func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "place_order")

	id, ok := authmw.IdentityFromContext(ctx)
	if !ok {
		return apperr.New(apperr.KindMissingToken, "no token provided")
	}

	var req orderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("place_order_error", "status", 400, "reason", "bad json", "error", err)
		return apperr.Wrap(apperr.KindValidation, "invalid request body", err)
	}

	lines := make([]service.OrderLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, service.OrderLine{ProductID: it.Product, Quantity: it.Quantity, Price: it.Price})
	}

	order, err := h.Orders.PlaceOrder(ctx, id.UserID, lines)
	if err != nil {
		return err
	}
	if req.TotalAmount != order.TotalAmount {
		l.Info("order_total_adjusted", "client_total", req.TotalAmount, "total", order.TotalAmount)
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	id, ok := authmw.IdentityFromContext(ctx)
	if !ok {
		return apperr.New(apperr.KindMissingToken, "no token provided")
	}

	orders, err := h.Orders.ListOrders(ctx, id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}
