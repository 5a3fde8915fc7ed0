package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// Pages serves the static frontend from dir. A page path such as /dashboard
// maps to dashboard.html when present, otherwise to index.html so the client
// router can take over. Unknown /api paths get a JSON 404.
func Pages(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if strings.HasPrefix(p, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Status(http.StatusMethodNotAllowed)
			return
		}

		clean := path.Clean("/" + strings.TrimPrefix(p, "/"))
		// http.ServeFile rejects raw paths containing ".."; serve under the cleaned one
		c.Request.URL.Path = clean
		name := filepath.FromSlash(clean)
		candidates := []string{filepath.Join(dir, name)}
		if filepath.Ext(name) == "" {
			candidates = append(candidates, filepath.Join(dir, name+".html"), filepath.Join(dir, name, "index.html"))
		}
		for _, f := range candidates {
			if info, err := os.Stat(f); err == nil && !info.IsDir() {
				c.File(f)
				return
			}
		}

		index := filepath.Join(dir, "index.html")
		if _, err := os.Stat(index); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.File(index)
	}
}
