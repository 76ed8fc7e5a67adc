package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"twenty-one-go/internal/auth"
	"twenty-one-go/internal/config"
)

const (
	ContextUserID   = "userID"
	ContextUsername = "username"
)

// RequireAuth rejects requests without a valid session token and stores the
// caller's id and username on the gin context.
func RequireAuth(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := auth.ParseAndValidateToken(token, cfg)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Next()
	}
}

// TokenFromRequest prefers the session cookie over an Authorization header.
func TokenFromRequest(c *gin.Context) string {
	if v, err := c.Cookie(auth.AuthCookieName); err == nil {
		if t := strings.TrimSpace(v); t != "" {
			return t
		}
	}
	authz := c.GetHeader("Authorization")
	if authz != "" {
		parts := strings.SplitN(authz, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return ""
}
