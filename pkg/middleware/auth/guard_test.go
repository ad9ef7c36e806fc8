package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/ar_furniture/pkg/apperr"
	"github.com/Skotchmaster/ar_furniture/pkg/tokens"
)

var testSecret = []byte("test-jwt-secret")

func issue(t *testing.T, role string, at time.Time) string {
	t.Helper()
	tok, _, err := tokens.IssueAccessToken(testSecret, uuid.NewString(), role, at)
	require.NoError(t, err)
	return tok
}

func runGuard(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (bool, echo.Context, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/products", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	return called, c, err
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	guard := NewGuard(testSecret)
	now := time.Now()

	tests := []struct {
		name     string
		header   string
		wantKind apperr.Kind
		admitted bool
	}{
		{name: "admin token admitted", header: "Bearer " + issue(t, "admin", now), admitted: true},
		{name: "lowercase scheme admitted", header: "bearer " + issue(t, "admin", now), admitted: true},
		{name: "missing header", header: "", wantKind: apperr.KindMissingToken},
		{name: "raw token without scheme", header: issue(t, "admin", now), wantKind: apperr.KindInvalidToken},
		{name: "empty bearer", header: "Bearer ", wantKind: apperr.KindInvalidToken},
		{name: "garbage token", header: "Bearer abc.def.ghi", wantKind: apperr.KindInvalidToken},
		{name: "expired admin token", header: "Bearer " + issue(t, "admin", now.Add(-2*time.Hour)), wantKind: apperr.KindInvalidToken},
		{name: "user role forbidden", header: "Bearer " + issue(t, "user", now), wantKind: apperr.KindForbidden},
		{name: "expired user token is invalid not forbidden", header: "Bearer " + issue(t, "user", now.Add(-2*time.Hour)), wantKind: apperr.KindInvalidToken},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			called, c, err := runGuard(t, guard.RequireAdmin, tt.header)
			if tt.admitted {
				require.NoError(t, err)
				assert.True(t, called)
				assert.Equal(t, "admin", c.Get(CtxRole))
				assert.NotEmpty(t, c.Get(CtxUserID))

				id, ok := IdentityFromContext(c.Request().Context())
				require.True(t, ok)
				assert.Equal(t, "admin", id.Role)
				return
			}
			require.Error(t, err)
			assert.False(t, called)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
		})
	}
}

func TestRequireAdmin_TokenFromOtherSecretIsInvalid(t *testing.T) {
	t.Parallel()

	other, _, err := tokens.IssueAccessToken([]byte("someone-else"), uuid.NewString(), "admin", time.Now())
	require.NoError(t, err)

	called, _, err := runGuard(t, NewGuard(testSecret).RequireAdmin, "Bearer "+other)
	require.Error(t, err)
	assert.False(t, called)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestRequireAuth_AdmitsAnyRole(t *testing.T) {
	t.Parallel()

	guard := NewGuard(testSecret)
	for _, role := range []string{"user", "admin"} {
		called, c, err := runGuard(t, guard.RequireAuth, "Bearer "+issue(t, role, time.Now()))
		require.NoError(t, err)
		assert.True(t, called)
		assert.Equal(t, role, c.Get(CtxRole))
	}

	called, _, err := runGuard(t, guard.RequireAuth, "")
	assert.False(t, called)
	assert.ErrorIs(t, err, apperr.ErrMissingToken)
}
