package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"taskflow/internal/domain"
	"taskflow/internal/logger"
	"taskflow/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8
	confirmCodeTTL    = 24 * time.Hour
	resetTokenTTL     = time.Hour
)

var (
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidCode        = errors.New("invalid or expired code")
	ErrSessionRevoked     = errors.New("session revoked")
)

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	SetPassword(ctx context.Context, id, hash string) error
	Confirm(ctx context.Context, id string) error
}

type tokenStore interface {
	Create(ctx context.Context, t *domain.AuthToken) error
	Consume(ctx context.Context, token, purpose string) (string, error)
}

type revocationStore interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Session is what a successful sign-in or code exchange hands back to the client.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

// AuthService handles sign-up, sign-in, sign-out and password resets.
type AuthService struct {
	users   userStore
	tokens  tokenStore
	revoked revocationStore
	cost    int
}

func NewAuthService(users userStore, tokens tokenStore, revoked revocationStore) *AuthService {
	return &AuthService{users: users, tokens: tokens, revoked: revoked, cost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *AuthService) WithHashCost(cost int) *AuthService {
	s.cost = cost
	return s
}

// SignUp registers a user and returns the one-time confirmation code for the auth callback.
func (s *AuthService) SignUp(ctx context.Context, email, password, confirm string) (*domain.User, string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, "", err
	}
	if err := checkPassword(password, confirm); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{ID: uuid.NewString(), Email: email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	code, err := s.issueToken(ctx, u.ID, domain.TokenPurposeConfirm, confirmCodeTTL)
	if err != nil {
		return nil, "", err
	}

	logger.WithContext(ctx).Info("user signed up", "user_id", u.ID)
	return u, code, nil
}

// SignIn checks the password and issues a session token.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.newSession(u)
}

// SignOut revokes the session behind token. Invalid tokens are ignored.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	claims, err := ParseJWT(token)
	if err != nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// ExchangeCode confirms the user behind a sign-up code and starts a session.
func (s *AuthService) ExchangeCode(ctx context.Context, code string) (*Session, error) {
	userID, err := s.consume(ctx, code, domain.TokenPurposeConfirm)
	if err != nil {
		return nil, err
	}
	if err := s.users.Confirm(ctx, userID); err != nil {
		return nil, fmt.Errorf("confirm user: %w", err)
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return s.newSession(u)
}

// RequestPasswordReset returns a reset token when the email is registered and
// an empty string otherwise; callers must not reveal which case occurred.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("load user: %w", err)
	}
	return s.issueToken(ctx, u.ID, domain.TokenPurposeReset, resetTokenTTL)
}

// ResetPassword consumes a reset token and stores the new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, password, confirm string) error {
	if err := checkPassword(password, confirm); err != nil {
		return err
	}
	userID, err := s.consume(ctx, token, domain.TokenPurposeReset)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.SetPassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	logger.WithContext(ctx).Info("password reset", "user_id", userID)
	return nil
}

// Authenticate resolves a session token to its claims, rejecting revoked sessions.
func (s *AuthService) Authenticate(ctx context.Context, token string) (SessionClaims, error) {
	claims, err := ParseJWT(token)
	if err != nil {
		return SessionClaims{}, err
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		// fail-open like the rate limiter: the signature and expiry already checked out
		logger.WithContext(ctx).Warn("revocation lookup failed", "error", err)
		return claims, nil
	}
	if revoked {
		return SessionClaims{}, ErrSessionRevoked
	}
	return claims, nil
}

// User loads the signed-in user's record.
func (s *AuthService) User(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *AuthService) newSession(u *domain.User) (*Session, error) {
	token, claims, err := GenerateJWT(u.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt, User: u}, nil
}

func (s *AuthService) issueToken(ctx context.Context, userID, purpose string, ttl time.Duration) (string, error) {
	t := &domain.AuthToken{
		Token:     uuid.NewString(),
		UserID:    userID,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.tokens.Create(ctx, t); err != nil {
		return "", fmt.Errorf("store %s token: %w", purpose, err)
	}
	return t.Token, nil
}

func (s *AuthService) consume(ctx context.Context, token, purpose string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", ErrInvalidCode
	}
	userID, err := s.tokens.Consume(ctx, token, purpose)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCode
		}
		return "", fmt.Errorf("consume %s token: %w", purpose, err)
	}
	return userID, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func checkPassword(password, confirm string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}
