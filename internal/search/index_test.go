package search

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/ar_furniture/internal/models"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   map[string]any
}

func fakeES(t *testing.T, handle func(w http.ResponseWriter, r *http.Request)) (*elasticsearch.Client, func() []recordedRequest) {
	t.Helper()

	var (
		mu   sync.Mutex
		reqs []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path}
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.Body)
		}
		mu.Lock()
		reqs = append(reqs, rec)
		mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handle(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	return es, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), reqs...)
	}
}

func TestIndexProduct_UsesProductIDAsDocumentID(t *testing.T) {
	es, requests := fakeES(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)
	})
	ix := NewIndex(es, "products")

	p := &models.Product{ID: uuid.New(), Name: "Oak Chair", Price: 150, Category: "Chair"}
	require.NoError(t, ix.IndexProduct(context.Background(), p))

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPut, reqs[0].Method)
	assert.Equal(t, "/products/_doc/"+p.ID.String(), reqs[0].Path)
	assert.Equal(t, "Oak Chair", reqs[0].Body["name"])
	assert.NotContains(t, reqs[0].Body, "_id")
	assert.Equal(t, p.ID.String(), reqs[0].Body["id"], "id is kept in the source for decoding hits")
}

func TestDeleteProduct_MissingDocumentIsNotAnError(t *testing.T) {
	es, _ := fakeES(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"result":"not_found"}`)
	})

	assert.NoError(t, NewIndex(es, "products").DeleteProduct(context.Background(), uuid.New()))
}

func TestSearch_DecodesHits(t *testing.T) {
	id := uuid.New()
	es, requests := fakeES(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"hits":{"total":{"value":7},"hits":[{"_id":"`+id.String()+`","_source":{"id":"`+id.String()+`","name":"Linen Sofa","price":420,"category":"Sofa"}}]}}`)
	})

	res, err := NewIndex(es, "products").Search(context.Background(), "sofa", 10, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 7, res.Total)
	require.Len(t, res.Products, 1)
	assert.Equal(t, id, res.Products[0].ID)
	assert.Equal(t, "Linen Sofa", res.Products[0].Name)

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/products/_search", reqs[0].Path)
	assert.EqualValues(t, 10, reqs[0].Body["from"])
	assert.EqualValues(t, 5, reqs[0].Body["size"])
}

func TestSearch_ErrorStatus(t *testing.T) {
	es, _ := fakeES(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"bad query"}`)
	})

	_, err := NewIndex(es, "products").Search(context.Background(), "x", 0, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad query")
}

func TestPage(t *testing.T) {
	tests := []struct {
		page, size       int
		wantFrom, wantSz int
	}{
		{page: 0, size: 0, wantFrom: 0, wantSz: DefaultPageSize},
		{page: 3, size: 20, wantFrom: 40, wantSz: 20},
		{page: 2, size: 500, wantFrom: DefaultPageSize, wantSz: DefaultPageSize},
	}
	for _, tt := range tests {
		from, size := Page(tt.page, tt.size)
		assert.Equal(t, tt.wantFrom, from)
		assert.Equal(t, tt.wantSz, size)
	}
}
