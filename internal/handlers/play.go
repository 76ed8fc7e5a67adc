package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"twenty-one-go/internal/models"
	"twenty-one-go/internal/tracing"
)

type moveRequest struct {
	Type string `json:"type" binding:"required"` // bet|hit|stay|resolve
}

// MoveTypeHandler serves the fixed-move endpoints (/bet, /hit, /stay, /results).
func MoveTypeHandler(d *Deps, moveType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}
		view, err := ApplyMove(c.Request.Context(), d, userID, c.Param("id"), moveType)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func MoveHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}
		var req moveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeAPIError(c, models.ErrInvalidJSON)
			return
		}
		moveType := strings.ToLower(strings.TrimSpace(req.Type))
		view, err := ApplyMove(c.Request.Context(), d, userID, c.Param("id"), moveType)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// GameMovesHandler returns the move log and settled rounds of one game.
func GameMovesHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartSpan(c.Request.Context(), "handlers.GameMovesHandler")
		defer span.End()

		userID, ok := requireUser(c)
		if !ok {
			return
		}
		gameID := c.Param("id")
		if _, err := d.Games.Get(ctx, userID, gameID); err != nil {
			writeAPIError(c, err)
			return
		}
		limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "200"), 10, 64)

		moves, err := models.ListMovesByGame(d.DB, userID, gameID, limit)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		rounds, err := models.ListRoundsByGame(d.DB, userID, gameID, 50)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"moves": moves, "rounds": rounds})
	}
}
