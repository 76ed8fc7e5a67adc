package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"twenty-one-go/internal/config"
)

var loopbackPrefixes = []string{
	"http://localhost:",
	"http://127.0.0.1:",
	"http://[::1]:",
	"https://localhost:",
	"https://127.0.0.1:",
	"https://[::1]:",
}

// CORS allows credentialed cross-origin requests from loopback origins in
// development and from WS_ALLOWED_ORIGINS in any environment.
func CORS(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := strings.TrimSpace(c.GetHeader("Origin"))
		if origin == "" {
			c.Next()
			return
		}

		if originAllowed(cfg, origin) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Vary", "Origin")
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func originAllowed(cfg config.Config, origin string) bool {
	if slices.Contains(cfg.WSAllowedOrigins, origin) {
		return true
	}
	if !cfg.IsDevelopment() {
		return false
	}
	for _, p := range loopbackPrefixes {
		if strings.HasPrefix(origin, p) {
			return true
		}
	}
	return false
}
