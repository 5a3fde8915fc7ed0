package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrJWTNotConfigured = errors.New("jwt secret is not configured")
	ErrInvalidToken     = errors.New("invalid token")
)

var (
	jwtSecret  []byte
	sessionTTL = 24 * time.Hour
)

// InitJWT sets the signing secret and session lifetime. A non-positive ttl keeps the default.
func InitJWT(secret string, ttl time.Duration) {
	if secret == "" {
		panic("JWT_SECRET is not set")
	}
	jwtSecret = []byte(secret)
	if ttl > 0 {
		sessionTTL = ttl
	}
}

// JWTConfigured reports whether InitJWT has been called.
func JWTConfigured() bool {
	return len(jwtSecret) > 0
}

// SessionClaims identifies a signed-in user. ID (jti) is what SignOut revokes.
type SessionClaims struct {
	UserID    string
	ID        string
	ExpiresAt time.Time
}

func GenerateJWT(userID string) (string, SessionClaims, error) {
	if !JWTConfigured() {
		return "", SessionClaims{}, ErrJWTNotConfigured
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret)
	if err != nil {
		return "", SessionClaims{}, err
	}
	return signed, SessionClaims{UserID: userID, ID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// ParseJWT validates signature, method and time-based claims.
func ParseJWT(tokenString string) (SessionClaims, error) {
	if !JWTConfigured() {
		return SessionClaims{}, ErrJWTNotConfigured
	}

	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return SessionClaims{}, ErrInvalidToken
	}
	if claims.Subject == "" || claims.ID == "" {
		return SessionClaims{}, ErrInvalidToken
	}

	return SessionClaims{UserID: claims.Subject, ID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}
