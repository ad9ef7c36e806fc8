package events

import "time"

type UserEvent struct {
	Type      string    `json:"type"`
	UserID    string    `json:"userID"`
	Username  string    `json:"username"`
	Role      string    `json:"role,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ProductEvent struct {
	Type      string    `json:"type"`
	ProductID string    `json:"productID"`
	UserID    string    `json:"userID"`
	Name      string    `json:"name,omitempty"`
	Price     float64   `json:"price,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type OrderEvent struct {
	Type        string    `json:"type"`
	OrderID     string    `json:"orderID"`
	UserID      string    `json:"userID"`
	TotalAmount float64   `json:"totalAmount"`
	Items       int       `json:"items"`
	Timestamp   time.Time `json:"timestamp"`
}

const (
	TypeUserRegistered = "user_registered"
	TypeUserLoggedIn   = "user_logged_in"
	TypeProductCreated = "product_created"
	TypeProductUpdated = "product_updated"
	TypeProductDeleted = "product_deleted"
	TypeOrderPlaced    = "order_placed"
)
