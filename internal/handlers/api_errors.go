package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"twenty-one-go/internal/game/common"
	"twenty-one-go/internal/models"
)

// writeAPIError maps known errors to a status and a fixed message. Anything
// else is logged and reported as a 500 without details.
func writeAPIError(c *gin.Context, err error) {
	status, msg := apiError(err)
	if status == http.StatusInternalServerError {
		log.Printf("internal error: method=%s path=%s err=%v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func apiError(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, "internal server error"
	case errors.Is(err, models.ErrGameNotFound), errors.Is(err, models.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		return http.StatusNotFound, "not found"
	case errors.Is(err, models.ErrInvalidJSON):
		return http.StatusBadRequest, "invalid json"
	case errors.Is(err, models.ErrInvalidTitle):
		return http.StatusBadRequest, "game title must be between 1 and 100 characters"
	case errors.Is(err, models.ErrInvalidBet):
		return http.StatusBadRequest, "invalid bet"
	case errors.Is(err, models.ErrUnknownMoveType):
		return http.StatusBadRequest, "unknown move type"
	case errors.Is(err, models.ErrDuplicateTitle):
		return http.StatusConflict, "game title must be unique"
	case errors.Is(err, models.ErrInvalidMove):
		return http.StatusConflict, "move not allowed now"
	case errors.Is(err, common.ErrEmptyDeck):
		return http.StatusConflict, "deck ran out; round cancelled"
	case errors.Is(err, models.ErrGameStateMissing), errors.Is(err, models.ErrInvalidGameRecord):
		return http.StatusConflict, "game state unavailable; destroy and recreate the game"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
