package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/ar_furniture/internal/events/eventstest"
	"github.com/Skotchmaster/ar_furniture/internal/handlers"
	"github.com/Skotchmaster/ar_furniture/internal/media"
	"github.com/Skotchmaster/ar_furniture/internal/media/mediatest"
	"github.com/Skotchmaster/ar_furniture/internal/repo"
	"github.com/Skotchmaster/ar_furniture/internal/search"
	"github.com/Skotchmaster/ar_furniture/internal/service"
	httpserver "github.com/Skotchmaster/ar_furniture/internal/transport/http"
	"github.com/Skotchmaster/ar_furniture/pkg/config"
	pkgdb "github.com/Skotchmaster/ar_furniture/pkg/db"
	"github.com/Skotchmaster/ar_furniture/pkg/logging"
	authmw "github.com/Skotchmaster/ar_furniture/pkg/middleware/auth"
)

var jwtSecret = []byte("http-test-secret")

type testEnv struct {
	e       *echo.Echo
	repo    *repo.GormRepo
	storage *mediatest.Storage
	events  *eventstest.Recorder
	auth    *service.AuthService
}

type fakeSearcher struct {
	query      string
	from, size int
	result     search.Result
}

func (f *fakeSearcher) Search(_ context.Context, q string, from, size int) (search.Result, error) {
	f.query, f.from, f.size = q, from, size
	return f.result, nil
}

func newTestEnv(t *testing.T, searcher handlers.Searcher) *testEnv {
	t.Helper()

	db, err := pkgdb.Open(context.Background(), "sqlite::memory:")
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(db))
	t.Cleanup(func() { _ = pkgdb.Close(db) })

	env := &testEnv{
		repo:    &repo.GormRepo{DB: db},
		storage: mediatest.NewStorage(),
		events:  &eventstest.Recorder{},
	}
	cfg := config.Config{CORSOrigins: []string{"*"}, MaxUploadBytes: 1 << 20, JWTSecret: jwtSecret}

	ingestor := media.NewIngestor(env.storage, "http://assets.test/furniture", "ar-furniture", cfg.MaxUploadBytes)
	env.auth = service.NewAuthService(env.repo, env.events, jwtSecret)

	deps := &httpserver.Deps{
		AuthHandler:    &handlers.AuthHandler{Auth: env.auth},
		ProductHandler: &handlers.ProductHandler{Catalog: service.NewCatalogService(env.repo, ingestor, nil, env.events)},
		OrderHandler:   &handlers.OrderHandler{Orders: service.NewOrderService(env.repo, env.events)},
		Guard:          authmw.NewGuard(jwtSecret),
	}
	if searcher != nil {
		deps.SearchHandler = &handlers.SearchHandler{Index: searcher}
	}

	env.e = httpserver.New(cfg, logging.NewWithWriter(io.Discard, "error"), deps)
	return env
}

func (env *testEnv) do(method, path string, body io.Reader, contentType, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) doJSON(method, path string, payload any, token string) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	}
	return env.do(method, path, body, echo.MIMEApplicationJSON, token)
}

func (env *testEnv) doForm(method, path string, fields map[string]string, files map[string][]byte, token string) *httptest.ResponseRecorder {
	body, contentType := multipartBody(fields, files)
	return env.do(method, path, body, contentType, token)
}

func multipartBody(fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	for field, data := range files {
		fw, _ := w.CreateFormFile(field, field+".bin")
		_, _ = fw.Write(data)
	}
	_ = w.Close()
	return &buf, w.FormDataContentType()
}

func (env *testEnv) userToken(t *testing.T, username, password string) string {
	t.Helper()
	rec := env.doJSON(http.MethodPost, "/api/signup", map[string]string{"username": username, "password": password}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return env.login(t, username, password)
}

func (env *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	_, err := env.auth.EnsureAdmin(context.Background(), "admin", "admin-pw")
	require.NoError(t, err)
	return env.login(t, "admin", "admin-pw")
}

func (env *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := env.doJSON(http.MethodPost, "/api/login", map[string]string{"username": username, "password": password}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type message struct {
	Message string `json:"message"`
}
