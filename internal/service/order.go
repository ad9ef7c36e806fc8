package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/ar_furniture/internal/events"
	"github.com/Skotchmaster/ar_furniture/internal/models"
	"github.com/Skotchmaster/ar_furniture/pkg/apperr"
	"github.com/Skotchmaster/ar_furniture/pkg/logging"
	authmw "github.com/Skotchmaster/ar_furniture/pkg/middleware/auth"
)

type OrderLine struct {
	ProductID string
	Quantity  int
	Price     float64
}

type OrderService struct {
	Orders OrderStore
	Events events.Publisher
	Now    func() time.Time
}

func NewOrderService(orders OrderStore, pub events.Publisher) *OrderService {
	return &OrderService{Orders: orders, Events: pub, Now: time.Now}
}

// PlaceOrder stores the order and empties the caller's cart. The total is
// always computed from the lines.
func (s *OrderService) PlaceOrder(ctx context.Context, rawUserID string, lines []OrderLine) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.place", "user_id", rawUserID)

	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return nil, apperr.New(apperr.KindInvalidToken, "token subject is not a user id")
	}
	if len(lines) == 0 {
		return nil, apperr.New(apperr.KindValidation, "order has no items")
	}

	items := make([]models.OrderItem, 0, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	var total float64
	for _, line := range lines {
		pid, err := uuid.Parse(strings.TrimSpace(line.ProductID))
		if err != nil {
			return nil, apperr.New(apperr.KindValidation, "invalid product id "+line.ProductID)
		}
		if line.Quantity <= 0 {
			return nil, apperr.New(apperr.KindValidation, "quantity must be positive")
		}
		if line.Price < 0 || math.IsNaN(line.Price) || math.IsInf(line.Price, 0) {
			return nil, apperr.New(apperr.KindValidation, "price must not be negative")
		}
		items = append(items, models.OrderItem{ProductID: pid, Quantity: uint(line.Quantity), Price: line.Price})
		ids = append(ids, pid)
		total += line.Price * float64(line.Quantity)
	}

	missing, err := s.Orders.MissingProducts(ctx, ids)
	if err != nil {
		l.Error("place_order_error", "status", 500, "reason", "product lookup failed", "error", err)
		return nil, apperr.Wrap(apperr.KindStore, "cannot check products", err)
	}
	if len(missing) > 0 {
		l.Warn("place_order_error", "status", 400, "reason", "unknown product", "product_id", missing[0])
		return nil, apperr.New(apperr.KindValidation, "unknown product "+missing[0].String())
	}

	order := &models.Order{UserID: userID, TotalAmount: total, Items: items}
	if err := s.Orders.CreateOrder(ctx, order); err != nil {
		l.Error("place_order_error", "status", 500, "reason", "insert failed", "error", err)
		return nil, apperr.Wrap(apperr.KindStore, "cannot place order", err)
	}

	l.Info("order_placed", "order_id", order.ID, "total", total)
	events.Emit(ctx, s.Events, events.TopicOrders, userID.String(), events.OrderEvent{
		Type:        events.TypeOrderPlaced,
		OrderID:     order.ID.String(),
		UserID:      userID.String(),
		TotalAmount: total,
		Items:       len(items),
		Timestamp:   s.Now().UTC(),
	})
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, rawUserID string) ([]models.Order, error) {
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return nil, apperr.New(apperr.KindInvalidToken, "token subject is not a user id")
	}
	orders, err := s.Orders.ListOrders(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).With("svc", "order.list", "user_id", rawUserID).
			Error("list_orders_error", "status", 500, "reason", "query failed", "error", err)
		return nil, apperr.Wrap(apperr.KindStore, "cannot list orders", err)
	}
	return orders, nil
}

func callerID(ctx context.Context) string {
	if id, ok := authmw.IdentityFromContext(ctx); ok {
		return id.UserID
	}
	return ""
}
