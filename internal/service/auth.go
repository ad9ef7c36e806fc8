package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Skotchmaster/ar_furniture/internal/events"
	"github.com/Skotchmaster/ar_furniture/internal/models"
	"github.com/Skotchmaster/ar_furniture/internal/repo"
	"github.com/Skotchmaster/ar_furniture/pkg/apperr"
	"github.com/Skotchmaster/ar_furniture/pkg/hash"
	"github.com/Skotchmaster/ar_furniture/pkg/logging"
	"github.com/Skotchmaster/ar_furniture/pkg/tokens"
)

type AuthService struct {
	Users     UserStore
	Events    events.Publisher
	JWTSecret []byte
	Now       func() time.Time
}

func NewAuthService(users UserStore, pub events.Publisher, secret []byte) *AuthService {
	return &AuthService{Users: users, Events: pub, JWTSecret: secret, Now: time.Now}
}

type LoginResult struct {
	Token     string
	Role      string
	ExpiresAt time.Time
	Cart      []models.CartItem
}

func (s *AuthService) Signup(ctx context.Context, username, password string) error {
	l := logging.FromContext(ctx).With("svc", "auth.signup", "username", username)

	if err := requireCredentials(username, password); err != nil {
		return err
	}

	user, err := s.createUser(ctx, username, password, models.RoleUser)
	if err != nil {
		return err
	}

	l.Info("user_registered", "user_id", user.ID)
	events.Emit(ctx, s.Events, events.TopicUsers, user.ID.String(), events.UserEvent{
		Type:      events.TypeUserRegistered,
		UserID:    user.ID.String(),
		Username:  user.Username,
		Role:      user.Role,
		Timestamp: s.Now().UTC(),
	})
	return nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	if err := requireCredentials(username, password); err != nil {
		return nil, err
	}

	user, err := s.Users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login_error", "status", 400, "reason", "unknown user")
			return nil, apperr.New(apperr.KindUnknownUser, "user not found")
		}
		l.Error("login_error", "status", 500, "reason", "user lookup failed", "error", err)
		return nil, apperr.Wrap(apperr.KindStore, "cannot load user", err)
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_error", "status", 400, "reason", "password mismatch")
		return nil, apperr.New(apperr.KindInvalidCredentials, "invalid credentials")
	}

	token, exp, err := tokens.IssueAccessToken(s.JWTSecret, user.ID.String(), user.Role, s.Now())
	if err != nil {
		l.Error("login_error", "status", 500, "reason", "sign token", "error", err)
		return nil, apperr.Wrap(apperr.KindStore, "cannot issue token", err)
	}

	cart, err := s.Users.GetCart(ctx, user.ID)
	if err != nil {
		l.Error("login_error", "status", 500, "reason", "cart lookup failed", "error", err)
		return nil, apperr.Wrap(apperr.KindStore, "cannot load cart", err)
	}

	l.Info("login_success", "user_id", user.ID, "role", user.Role)
	events.Emit(ctx, s.Events, events.TopicUsers, user.ID.String(), events.UserEvent{
		Type:      events.TypeUserLoggedIn,
		UserID:    user.ID.String(),
		Username:  user.Username,
		Timestamp: s.Now().UTC(),
	})

	return &LoginResult{Token: token, Role: user.Role, ExpiresAt: exp, Cart: cart}, nil
}

// EnsureAdmin creates an admin account unless one with that username already
// exists. A non-admin account holding the username is reported as a conflict.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	l := logging.FromContext(ctx).With("svc", "auth.ensure_admin", "username", username)

	if err := requireCredentials(username, password); err != nil {
		return false, err
	}

	_, err := s.createUser(ctx, username, password, models.RoleAdmin)
	if err == nil {
		l.Info("admin_created")
		return true, nil
	}
	if !errors.Is(err, apperr.ErrDuplicateUsername) {
		return false, err
	}

	existing, lookupErr := s.Users.GetUserByUsername(ctx, username)
	if lookupErr != nil {
		return false, apperr.Wrap(apperr.KindStore, "cannot load user", lookupErr)
	}
	if existing.Role != models.RoleAdmin {
		return false, apperr.New(apperr.KindDuplicateUsername, "username belongs to a non-admin account")
	}
	l.Info("admin_exists")
	return false, nil
}

func (s *AuthService) createUser(ctx context.Context, username, password, role string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.create_user", "username", username)

	hashed, err := hash.HashPassword(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, apperr.New(apperr.KindValidation, "password must be at most 72 bytes")
	}
	if err != nil {
		l.Error("create_user_error", "status", 500, "reason", "hash failed", "error", err)
		return nil, apperr.Wrap(apperr.KindStore, "cannot hash password", err)
	}

	user := &models.User{Username: username, PasswordHash: hashed, Role: role}
	if err := s.Users.CreateUserIfNotExists(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("create_user_error", "status", 400, "reason", "username taken")
			return nil, apperr.New(apperr.KindDuplicateUsername, "user already exists")
		}
		l.Error("create_user_error", "status", 500, "reason", "insert failed", "error", err)
		return nil, apperr.Wrap(apperr.KindStore, "cannot create user", err)
	}
	return user, nil
}

func requireCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return apperr.New(apperr.KindValidation, "username and password are required")
	}
	return nil
}
