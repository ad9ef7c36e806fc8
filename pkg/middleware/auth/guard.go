package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ar_furniture/pkg/apperr"
	"github.com/Skotchmaster/ar_furniture/pkg/logging"
	"github.com/Skotchmaster/ar_furniture/pkg/metrics"
	"github.com/Skotchmaster/ar_furniture/pkg/tokens"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"

	RoleAdmin = "admin"

	bearerPrefix = "Bearer "
)

type identityKey struct{}

// Identity is the verified caller attached to the request context.
type Identity struct {
	UserID string
	Role   string
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

type Guard struct {
	JWTSecret []byte
}

func NewGuard(secret []byte) *Guard {
	return &Guard{JWTSecret: secret}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

// RequireAuth admits any caller holding a valid bearer token.
func (g *Guard) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return g.requireWithValidator(next, nil)
}

// RequireAdmin admits only callers whose token carries the admin role.
func (g *Guard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return g.requireWithValidator(next, func(claims *tokens.AccessClaims) error {
		if claims.Role != RoleAdmin {
			return apperr.New(apperr.KindForbidden, "access denied, admins only")
		}
		return nil
	})
}

func (g *Guard) requireWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("mw", "auth_guard")

		header := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
		if header == "" {
			metrics.RecordGuardDecision("missing_token")
			l.Warn("guard_rejected", "status", 403, "reason", "no token provided")
			return apperr.New(apperr.KindMissingToken, "no token provided")
		}

		raw, ok := bearerToken(header)
		if !ok {
			metrics.RecordGuardDecision("invalid_token")
			l.Warn("guard_rejected", "status", 401, "reason", "authorization header is not a bearer token")
			return apperr.New(apperr.KindInvalidToken, "invalid token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, g.JWTSecret)
		if err != nil {
			metrics.RecordGuardDecision("invalid_token")
			l.Warn("guard_rejected", "status", 401, "reason", "token verification failed", "error", err)
			return apperr.Wrap(apperr.KindInvalidToken, "invalid token", err)
		}

		if validator != nil {
			if err := validator(claims); err != nil {
				metrics.RecordGuardDecision("forbidden")
				l.Warn("guard_rejected", "status", 403, "reason", "role not allowed", "role", claims.Role)
				return err
			}
		}

		metrics.RecordGuardDecision("admitted")
		setUserContext(c, claims)
		return next(c)
	}
}

func bearerToken(header string) (string, bool) {
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(CtxUserID, claims.Subject)
	c.Set(CtxRole, claims.Role)

	ctx := context.WithValue(c.Request().Context(), identityKey{}, Identity{
		UserID: claims.Subject,
		Role:   claims.Role,
	})
	c.SetRequest(c.Request().WithContext(ctx))
}
