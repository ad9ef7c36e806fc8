package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"  json:"username"`
	PasswordHash string    `gorm:"not null"              json:"-"`
	Role         string    `gorm:"not null;default:user" json:"role"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"       json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"   json:"-"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"         json:"productId"`
	Quantity  uint      `gorm:"default:1;check:quantity>0" json:"quantity"`
}

func (ci *CartItem) BeforeCreate(*gorm.DB) error {
	if ci.ID == uuid.Nil {
		ci.ID = uuid.New()
	}
	return nil
}

// Product keeps the storefront's JSON keys (_id, imageUrl, modelUrl).
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"_id"`
	Name        string    `gorm:"not null"             json:"name"`
	Price       float64   `gorm:"not null"             json:"price"`
	Description string    `json:"description"`
	Category    string    `gorm:"index"                json:"category"`
	ImageURL    string    `json:"imageUrl"`
	ModelURL    string    `json:"modelUrl"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type Order struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey"     json:"_id"`
	UserID      uuid.UUID   `gorm:"type:uuid;index;not null" json:"userId"`
	TotalAmount float64     `gorm:"not null"                 json:"totalAmount"`
	Items       []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt   time.Time   `json:"createdAt"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"       json:"-"`
	OrderID   uuid.UUID `gorm:"type:uuid;index;not null"   json:"-"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"         json:"product"`
	Quantity  uint      `gorm:"not null;check:quantity>0"  json:"quantity"`
	Price     float64   `gorm:"not null"                   json:"price"`
}

func (oi *OrderItem) BeforeCreate(*gorm.DB) error {
	if oi.ID == uuid.Nil {
		oi.ID = uuid.New()
	}
	return nil
}
