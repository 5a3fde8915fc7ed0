package middleware

import (
	"net/http"
	"net/url"
	"path"
	"strings"

	"taskflow/internal/logger"

	"github.com/gin-gonic/gin"
)

var publicPages = map[string]bool{
	"/":                true,
	"/login":           true,
	"/signup":          true,
	"/forgot-password": true,
	"/reset-password":  true,
	"/auth/callback":   true,
}

// signed-in users are bounced from these to the dashboard
var authPages = map[string]bool{
	"/login":           true,
	"/signup":          true,
	"/forgot-password": true,
}

var assetExt = map[string]bool{
	".js": true, ".css": true, ".map": true, ".ico": true, ".svg": true, ".png": true,
	".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".woff": true, ".woff2": true,
}

// PageRedirect decides where a page request should go. It returns "" when the
// request may proceed.
func PageRedirect(p string, signedIn bool) string {
	if strings.HasPrefix(p, "/api/") || isAsset(p) {
		return ""
	}
	if !signedIn && !publicPages[p] {
		return "/login?redirect=" + url.QueryEscape(p)
	}
	if signedIn && authPages[p] {
		return "/dashboard"
	}
	return ""
}

func isAsset(p string) bool {
	return strings.HasPrefix(p, "/assets/") || assetExt[strings.ToLower(path.Ext(p))]
}

// PageGuard redirects page requests according to PageRedirect. A failing
// session lookup counts as signed out.
func PageGuard(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path

		signedIn := false
		if token, _ := c.Cookie(SessionCookie); token != "" {
			if _, err := auth.Authenticate(c.Request.Context(), token); err == nil {
				signedIn = true
			} else {
				logger.WithContext(c.Request.Context()).Debug("page guard: session rejected", "error", err)
			}
		}

		if target := PageRedirect(p, signedIn); target != "" {
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Next()
	}
}
