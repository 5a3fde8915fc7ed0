package ws

import (
	"context"
	"net/http"

	"taskflow/internal/http/middleware"
	"taskflow/internal/logger"
	"taskflow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type authenticator interface {
	Authenticate(ctx context.Context, token string) (service.SessionClaims, error)
}

// HandleWS upgrades an authenticated request into a board event stream. The
// token comes from the query string (browsers cannot set headers on upgrade),
// then from a Bearer header or the session cookie.
func HandleWS(hub *Hub, auth authenticator, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = middleware.TokenFromRequest(c)
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade error", "error", err)
			return
		}

		client := NewClient(claims.UserID, conn, hub)
		go client.Run()
	}
}
