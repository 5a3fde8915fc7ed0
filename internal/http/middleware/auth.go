package middleware

import (
	"context"
	"net/http"
	"strings"

	"taskflow/internal/logger"
	"taskflow/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	SessionCookie = "session"
	ContextUserID = "user_id"
	ContextToken  = "session_token"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (service.SessionClaims, error)
}

// TokenFromRequest returns the bearer token, falling back to the session cookie.
func TokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	token, _ := c.Cookie(SessionCookie)
	return token
}

// JWT rejects requests without a valid, unrevoked session and stores the
// user id under ContextUserID.
func JWT(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextToken, token)
		c.Request = c.Request.WithContext(logger.NewContext(c.Request.Context(), "user_id", claims.UserID))
		c.Next()
	}
}

// UserID returns the id stored by JWT, or "" on unauthenticated routes.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
