package service_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/ar_furniture/internal/events/eventstest"
	"github.com/Skotchmaster/ar_furniture/internal/media"
	"github.com/Skotchmaster/ar_furniture/internal/media/mediatest"
	"github.com/Skotchmaster/ar_furniture/internal/models"
	"github.com/Skotchmaster/ar_furniture/internal/repo"
	"github.com/Skotchmaster/ar_furniture/internal/service"
	pkgdb "github.com/Skotchmaster/ar_furniture/pkg/db"
)

var testSecret = []byte("test-secret")

const assetBase = "http://assets.test/furniture"

type fixture struct {
	repo    *repo.GormRepo
	storage *mediatest.Storage
	events  *eventstest.Recorder
	index   *fakeIndex

	auth    *service.AuthService
	catalog *service.CatalogService
	orders  *service.OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := pkgdb.Open(context.Background(), "sqlite::memory:")
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(db))
	t.Cleanup(func() { _ = pkgdb.Close(db) })

	f := &fixture{
		repo:    &repo.GormRepo{DB: db},
		storage: mediatest.NewStorage(),
		events:  &eventstest.Recorder{},
		index:   &fakeIndex{docs: map[uuid.UUID]models.Product{}},
	}
	ingestor := media.NewIngestor(f.storage, assetBase, "ar-furniture", 1<<20)

	f.auth = service.NewAuthService(f.repo, f.events, testSecret)
	f.catalog = service.NewCatalogService(f.repo, ingestor, f.index, f.events)
	f.orders = service.NewOrderService(f.repo, f.events)
	return f
}

func upload(name string, data []byte) *media.File {
	return &media.File{Filename: name, Size: int64(len(data)), Content: bytes.NewReader(data)}
}

func bothAssets() media.Assets {
	return media.Assets{
		Image: upload("img1.png", mediatest.PNG()),
		Model: upload("mdl1.glb", mediatest.GLB()),
	}
}

type fakeIndex struct {
	mu   sync.Mutex
	docs map[uuid.UUID]models.Product
	err  error
}

func (f *fakeIndex) IndexProduct(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.docs[p.ID] = *p
	return nil
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeIndex) get(id uuid.UUID) (models.Product, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.docs[id]
	return p, ok
}

// failingWrites lets reads through and fails every product write.
type failingWrites struct {
	*repo.GormRepo
}

var errWrite = errors.New("disk full")

func (failingWrites) CreateProduct(context.Context, *models.Product) error { return errWrite }
func (failingWrites) SaveProduct(context.Context, *models.Product) error   { return errWrite }

// deletedAfterLoad removes the row right after handing it out, as a
// concurrent delete landing between load and save would.
type deletedAfterLoad struct {
	*repo.GormRepo
}

func (d deletedAfterLoad) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := d.GormRepo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return p, d.GormRepo.DeleteProduct(ctx, id)
}
