package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"twenty-one-go/internal/game/twentyone"
	"twenty-one-go/internal/models"
	"twenty-one-go/internal/tracing"
)

const maxTitleChars = 100

type createGameRequest struct {
	Title    string `json:"title" binding:"required,max=100"`
	BetSize  int    `json:"bet_size" binding:"required,min=1"`
	Bankroll *int   `json:"bankroll" binding:"omitempty,min=1"`
}

type listGamesResponse struct {
	Games       []GameSummary `json:"games"`
	Bank        int           `json:"bank"`
	BankDisplay string        `json:"bank_display"`
}

func ListGamesHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartSpan(c.Request.Context(), "handlers.ListGamesHandler")
		defer span.End()

		userID, ok := requireUser(c)
		if !ok {
			return
		}
		games, err := d.Games.List(ctx, userID)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		resp := listGamesResponse{Games: make([]GameSummary, 0, len(games))}
		for _, g := range games {
			resp.Games = append(resp.Games, buildSummary(g))
			resp.Bank += g.Player.Bankroll
		}
		resp.BankDisplay = formatMoney(resp.Bank)
		c.JSON(http.StatusOK, resp)
	}
}

func CreateGameHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartSpan(c.Request.Context(), "handlers.CreateGameHandler")
		defer span.End()

		userID, ok := requireUser(c)
		if !ok {
			return
		}
		var req createGameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeAPIError(c, bindingError(err))
			return
		}
		title, bankroll, err := validateCreate(req, d)
		if err != nil {
			writeAPIError(c, err)
			return
		}

		taken, err := d.Games.TitleExists(ctx, userID, title)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		if taken {
			writeAPIError(c, models.ErrDuplicateTitle)
			return
		}

		g, err := twentyone.New(d.newID(), title, req.BetSize, bankroll, d.rules(), d.Options...)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		if err := d.Games.Create(ctx, userID, g); err != nil {
			writeAPIError(c, err)
			return
		}
		log.Printf("game created: user_id=%d game_id=%s bet_size=%d bankroll=%d", userID, g.ID, req.BetSize, bankroll)
		c.JSON(http.StatusCreated, buildGameView(g))
	}
}

func validateCreate(req createGameRequest, d *Deps) (string, int, error) {
	title := strings.TrimSpace(req.Title)
	if n := utf8.RuneCountInString(title); n < 1 || n > maxTitleChars {
		return "", 0, models.ErrInvalidTitle
	}
	if maxBet := d.Config.Table.MaxBet; maxBet > 0 && req.BetSize > maxBet {
		return "", 0, fmt.Errorf("%w: bet size must be at most %d", models.ErrInvalidBet, maxBet)
	}
	bankroll := d.Config.Table.StartingBankroll
	if req.Bankroll != nil {
		bankroll = *req.Bankroll
	}
	if bankroll <= 0 {
		return "", 0, fmt.Errorf("%w: starting bankroll must be positive", models.ErrInvalidBet)
	}
	return title, bankroll, nil
}

// bindingError maps validator failures to the field they concern.
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return models.ErrInvalidJSON
	}
	if verrs[0].Field() == "Title" {
		return models.ErrInvalidTitle
	}
	return models.ErrInvalidBet
}

func GetGameHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartSpan(c.Request.Context(), "handlers.GetGameHandler")
		defer span.End()

		userID, ok := requireUser(c)
		if !ok {
			return
		}
		span.SetAttributes(tracing.Game(userID, c.Param("id"))...)
		g, err := d.Games.Get(ctx, userID, c.Param("id"))
		if err != nil {
			writeAPIError(c, err)
			return
		}
		c.JSON(http.StatusOK, buildGameView(g))
	}
}

// DestroyGameHandler removes a game and its move log. Settled rounds are
// kept so the scoreboard still counts them.
func DestroyGameHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartSpan(c.Request.Context(), "handlers.DestroyGameHandler")
		defer span.End()

		userID, ok := requireUser(c)
		if !ok {
			return
		}
		gameID := c.Param("id")
		span.SetAttributes(tracing.Game(userID, gameID)...)

		unlock := d.Locks.Lock(gameID)
		err := d.Games.Delete(ctx, userID, gameID)
		unlock()
		if err != nil {
			writeAPIError(c, err)
			return
		}
		if err := models.DeleteMovesByGame(d.DB, userID, gameID); err != nil {
			log.Printf("DestroyGameHandler move cleanup failed: game_id=%s user_id=%d err=%v", gameID, userID, err)
		}
		broadcastGameDestroyed(gameID)
		c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": gameID})
	}
}
