package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"twenty-one-go/internal/models"
	"twenty-one-go/internal/tracing"
)

// ScoreboardHandler reports the caller's settled rounds over the last ?days=.
func ScoreboardHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartSpan(c.Request.Context(), "handlers.ScoreboardHandler")
		defer span.End()

		userID, ok := requireUser(c)
		if !ok {
			return
		}
		days, err := strconv.ParseInt(c.DefaultQuery("days", "30"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid days"})
			return
		}
		board, err := models.BuildScoreboard(ctx, db, userID, days)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		c.JSON(http.StatusOK, board)
	}
}
