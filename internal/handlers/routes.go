package handlers

import (
	"database/sql"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"twenty-one-go/internal/config"
	"twenty-one-go/internal/game/twentyone"
	"twenty-one-go/internal/models"
	"twenty-one-go/internal/store"
)

// Deps is what the game handlers share. DB holds users, the move log and
// settled rounds; Games holds live game state and may be SQLite or Redis.
type Deps struct {
	DB     *sql.DB
	Games  store.GameStore
	Config config.Config
	Locks  *GameManager

	// NewID defaults to a random UUID.
	NewID   func() string
	Options []twentyone.Option
}

func (d *Deps) newID() string {
	if d.NewID != nil {
		return d.NewID()
	}
	return uuid.NewString()
}

func (d *Deps) rules() twentyone.Rules {
	return twentyone.Rules{
		HitThreshold:  d.Config.Table.DealerHitThreshold,
		RichThreshold: d.Config.Table.RichThreshold,
	}
}

func RegisterAuthRoutes(rg *gin.RouterGroup, db *sql.DB, cfg config.Config) {
	rg.POST("/auth/register", RegisterHandler(db, cfg))
	rg.POST("/auth/login", LoginHandler(db, cfg))
	rg.GET("/auth/me", MeHandler(db, cfg))
	rg.POST("/auth/logout", LogoutHandler(cfg))
}

// RegisterGameRoutes wires the game endpoints. rg must already require auth.
func RegisterGameRoutes(rg *gin.RouterGroup, d *Deps) {
	rg.GET("/games", ListGamesHandler(d))
	rg.POST("/games", CreateGameHandler(d))
	rg.GET("/games/:id", GetGameHandler(d))
	rg.DELETE("/games/:id", DestroyGameHandler(d))
	rg.POST("/games/:id/destroy", DestroyGameHandler(d))

	rg.POST("/games/:id/bet", MoveTypeHandler(d, models.MoveBet))
	rg.POST("/games/:id/hit", MoveTypeHandler(d, models.MoveHit))
	rg.POST("/games/:id/stay", MoveTypeHandler(d, models.MoveStay))
	rg.GET("/games/:id/results", MoveTypeHandler(d, models.MoveResolve))
	rg.POST("/games/:id/results", MoveTypeHandler(d, models.MoveResolve))
	rg.POST("/games/:id/move", MoveHandler(d))
	rg.GET("/games/:id/moves", GameMovesHandler(d))

	rg.GET("/scoreboard", ScoreboardHandler(d.DB))
}
