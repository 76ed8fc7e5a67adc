package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"twenty-one-go/internal/middleware"
)

func userIDFromContext(c *gin.Context) (int64, bool) {
	v, ok := c.Get(middleware.ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

// requireUser writes a 401 and returns false when the request carries no user.
func requireUser(c *gin.Context) (int64, bool) {
	id, ok := userIDFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return id, ok
}
