package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/ar_furniture/internal/media"
	"github.com/Skotchmaster/ar_furniture/internal/models"
)

type UserStore interface {
	CreateUserIfNotExists(ctx context.Context, u *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
}

type ProductStore interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	SaveProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type OrderStore interface {
	MissingProducts(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
	CreateOrder(ctx context.Context, o *models.Order) error
	ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
}

// AssetStore is what the catalog needs from media ingestion.
type AssetStore interface {
	Ingest(ctx context.Context, a media.Assets) (media.Refs, error)
	Remove(ctx context.Context, urls ...string) error
}

// ProductIndex mirrors the catalog into the search backend.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}
