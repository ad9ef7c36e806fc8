package service

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/ar_furniture/internal/events"
	"github.com/Skotchmaster/ar_furniture/internal/media"
	"github.com/Skotchmaster/ar_furniture/internal/models"
	"github.com/Skotchmaster/ar_furniture/pkg/apperr"
	"github.com/Skotchmaster/ar_furniture/pkg/logging"
)

// ProductFields are the text fields of the product form, as submitted.
type ProductFields struct {
	Name        string
	Price       string
	Description string
	Category    string
}

type validFields struct {
	name, description, category string
	price                       float64
}

func (f ProductFields) validate() (validFields, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return validFields{}, apperr.New(apperr.KindValidation, "name is required")
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(f.Price), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return validFields{}, apperr.New(apperr.KindValidation, "price must be a number")
	}
	if price < 0 {
		return validFields{}, apperr.New(apperr.KindValidation, "price must not be negative")
	}

	return validFields{
		name:        name,
		price:       price,
		description: f.Description,
		category:    strings.TrimSpace(f.Category),
	}, nil
}

type CatalogService struct {
	Products ProductStore
	Media    AssetStore
	Index    ProductIndex
	Events   events.Publisher
	Now      func() time.Time
}

func NewCatalogService(products ProductStore, assets AssetStore, index ProductIndex, pub events.Publisher) *CatalogService {
	return &CatalogService{Products: products, Media: assets, Index: index, Events: pub, Now: time.Now}
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	items, err := s.Products.ListProducts(ctx)
	if err != nil {
		logging.FromContext(ctx).With("svc", "catalog.list").
			Error("list_products_error", "status", 500, "reason", "query failed", "error", err)
		return nil, apperr.Wrap(apperr.KindStore, "cannot list products", err)
	}
	return items, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, f ProductFields, assets media.Assets) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create")

	v, err := f.validate()
	if err != nil {
		l.Warn("create_product_error", "status", 400, "reason", apperr.Message(err))
		return nil, err
	}
	if !assets.Complete() {
		l.Warn("create_product_error", "status", 400, "reason", "missing asset")
		return nil, apperr.New(apperr.KindMissingAsset, "image and model files are required")
	}

	refs, err := s.Media.Ingest(ctx, assets)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        v.name,
		Price:       v.price,
		Description: v.description,
		Category:    v.category,
		ImageURL:    refs.ImageURL,
		ModelURL:    refs.ModelURL,
	}
	if err := s.Products.CreateProduct(ctx, product); err != nil {
		l.Error("create_product_error", "status", 500, "reason", "insert failed", "error", err)
		s.discard(ctx, refs)
		return nil, apperr.Wrap(apperr.KindStore, "cannot create product", err)
	}

	l.Info("product_created", "product_id", product.ID)
	s.published(ctx, events.TypeProductCreated, product)
	return product, nil
}

// UpdateProduct overwrites every text field and replaces only the asset
// slots that carry a new file.
func (s *CatalogService) UpdateProduct(ctx context.Context, rawID string, f ProductFields, assets media.Assets) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update", "product_id", rawID)

	product, err := s.load(ctx, rawID)
	if err != nil {
		return nil, err
	}

	v, err := f.validate()
	if err != nil {
		l.Warn("update_product_error", "status", 400, "reason", apperr.Message(err))
		return nil, err
	}

	var refs media.Refs
	if !assets.Empty() {
		if refs, err = s.Media.Ingest(ctx, assets); err != nil {
			return nil, err
		}
	}

	product.Name = v.name
	product.Price = v.price
	product.Description = v.description
	product.Category = v.category
	if refs.ImageURL != "" {
		product.ImageURL = refs.ImageURL
	}
	if refs.ModelURL != "" {
		product.ModelURL = refs.ModelURL
	}

	if err := s.Products.SaveProduct(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// deleted between load and save
			l.Warn("update_product_error", "status", 404, "reason", "product deleted concurrently")
			s.discard(ctx, refs)
			return nil, productNotFound()
		}
		l.Error("update_product_error", "status", 500, "reason", "save failed", "error", err)
		s.discard(ctx, refs)
		return nil, apperr.Wrap(apperr.KindStore, "cannot update product", err)
	}

	l.Info("product_updated")
	s.published(ctx, events.TypeProductUpdated, product)
	return product, nil
}

// DeleteProduct removes the record only; stored assets stay in the bucket.
func (s *CatalogService) DeleteProduct(ctx context.Context, rawID string) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete", "product_id", rawID)

	id, err := uuid.Parse(rawID)
	if err != nil {
		l.Warn("delete_product_error", "status", 404, "reason", "malformed id")
		return productNotFound()
	}

	if err := s.Products.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("delete_product_error", "status", 404, "reason", "no such product")
			return productNotFound()
		}
		l.Error("delete_product_error", "status", 500, "reason", "delete failed", "error", err)
		return apperr.Wrap(apperr.KindStore, "cannot delete product", err)
	}

	l.Info("product_deleted")
	s.published(ctx, events.TypeProductDeleted, &models.Product{ID: id})
	return nil
}

func (s *CatalogService) load(ctx context.Context, rawID string) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.load", "product_id", rawID)

	id, err := uuid.Parse(rawID)
	if err != nil {
		l.Warn("load_product_error", "status", 404, "reason", "malformed id")
		return nil, productNotFound()
	}

	product, err := s.Products.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("load_product_error", "status", 404, "reason", "no such product")
			return nil, productNotFound()
		}
		l.Error("load_product_error", "status", 500, "reason", "query failed", "error", err)
		return nil, apperr.Wrap(apperr.KindStore, "cannot load product", err)
	}
	return product, nil
}

func (s *CatalogService) discard(ctx context.Context, refs media.Refs) {
	urls := refs.URLs()
	if len(urls) == 0 {
		return
	}
	if err := s.Media.Remove(ctx, urls...); err != nil {
		logging.FromContext(ctx).With("svc", "catalog.discard").
			Error("orphan_cleanup_failed", "urls", urls, "error", err)
	}
}

// published fans a committed mutation out to the event stream and the search index.
func (s *CatalogService) published(ctx context.Context, typ string, p *models.Product) {
	events.Emit(ctx, s.Events, events.TopicProducts, p.ID.String(), events.ProductEvent{
		Type:      typ,
		ProductID: p.ID.String(),
		UserID:    callerID(ctx),
		Name:      p.Name,
		Price:     p.Price,
		Timestamp: s.Now().UTC(),
	})

	if s.Index == nil {
		return
	}
	var err error
	if typ == events.TypeProductDeleted {
		err = s.Index.DeleteProduct(ctx, p.ID)
	} else {
		err = s.Index.IndexProduct(ctx, p)
	}
	if err != nil {
		logging.FromContext(ctx).With("svc", "catalog.index").
			Warn("index_sync_failed", "product_id", p.ID, "type", typ, "error", err)
	}
}

func productNotFound() error {
	return apperr.New(apperr.KindNotFound, "product not found")
}
