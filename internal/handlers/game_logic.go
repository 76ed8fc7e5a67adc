package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"

	"twenty-one-go/internal/game/common"
	"twenty-one-go/internal/game/twentyone"
	"twenty-one-go/internal/models"
	"twenty-one-go/internal/tracing"
)

// ApplyMove loads a game, applies one move and saves it back while holding
// the game's lock. moveType is one of bet, hit, stay or resolve.
//
// When the deck runs out the engine abandons the round; that state is saved
// and broadcast before the error is returned.
func ApplyMove(ctx context.Context, d *Deps, userID int64, gameID, moveType string) (view *GameView, err error) {
	ctx, span := tracing.StartSpan(ctx, "handlers.ApplyMove",
		append(tracing.Game(userID, gameID), tracing.MoveTypeKey.String(moveType))...)
	defer func() {
		tracing.Fail(span, err)
		span.End()
	}()

	switch moveType {
	case models.MoveBet, models.MoveHit, models.MoveStay, models.MoveResolve:
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownMoveType, moveType)
	}

	unlock := d.Locks.Lock(gameID)
	defer unlock()

	g, err := d.Games.Get(ctx, userID, gameID)
	if err != nil {
		return nil, err
	}

	wasSettled := g.Settled
	moves, moveErr := applyToGame(g, moveType)
	span.SetAttributes(tracing.GameStageKey.String(string(g.Stage)), tracing.BankrollKey.Int(g.Player.Bankroll))
	if moveErr != nil {
		if errors.Is(moveErr, common.ErrEmptyDeck) {
			if err := d.Games.Save(ctx, userID, g); err != nil {
				log.Printf("ApplyMove save after empty deck failed: game_id=%s user_id=%d err=%v", gameID, userID, err)
			} else {
				broadcastGameUpdate(buildGameView(g))
			}
		}
		return nil, moveErr
	}

	if err := d.Games.Save(ctx, userID, g); err != nil {
		return nil, err
	}

	var round *models.Round
	if moveType == models.MoveResolve && !wasSettled {
		round = roundRecord(g, userID)
		span.SetAttributes(tracing.OutcomeKey.String(round.Outcome))
	}
	if err := recordMoves(ctx, d, userID, gameID, moves, round); err != nil {
		// game state is already saved; a gap in the log is not worth failing the move
		log.Printf("ApplyMove move log failed: game_id=%s user_id=%d move=%s err=%v", gameID, userID, moveType, err)
	}

	view = buildGameView(g)
	broadcastGameUpdate(view)
	return view, nil
}

func applyToGame(g *twentyone.Game, moveType string) ([]models.GameMove, error) {
	switch moveType {
	case models.MoveBet:
		if err := g.StartRound(); err != nil {
			return nil, err
		}
		return []models.GameMove{logEntry(models.ActorPlayer, models.MoveBet, nil, g.Player.Total())}, nil

	case models.MoveHit:
		if err := g.Hit(twentyone.RolePlayer); err != nil {
			return nil, err
		}
		c := g.Player.Hand[len(g.Player.Hand)-1]
		moves := []models.GameMove{logEntry(models.ActorPlayer, models.MoveHit, &c, g.Player.Total())}
		if g.Player.IsBusted() {
			moves = append(moves, logEntry(models.ActorPlayer, models.MoveBust, nil, g.Player.Total()))
		}
		return moves, nil

	case models.MoveStay:
		playerTotal := g.Player.Total()
		dealerMoves, err := g.Stay()
		if err != nil {
			return nil, err
		}
		moves := []models.GameMove{logEntry(models.ActorPlayer, models.MoveStay, nil, playerTotal)}
		for _, dm := range dealerMoves {
			moves = append(moves, logEntry(models.ActorDealer, dealerMoveType(dm.Action), dm.Card, dm.Total))
		}
		return moves, nil

	case models.MoveResolve:
		settled := g.Settled
		if _, err := g.Resolve(); err != nil {
			return nil, err
		}
		if settled {
			return nil, nil
		}
		return []models.GameMove{logEntry(models.ActorPlayer, models.MoveResolve, nil, g.Player.Total())}, nil
	}
	return nil, models.ErrUnknownMoveType
}

func dealerMoveType(action string) string {
	switch action {
	case twentyone.DealerHit:
		return models.MoveHit
	case twentyone.DealerBust:
		return models.MoveBust
	default:
		return models.MoveStay
	}
}

func logEntry(actor, moveType string, card *common.Card, total int) models.GameMove {
	m := models.GameMove{Actor: actor, MoveType: moveType}
	if card != nil {
		s := card.String()
		m.Card = &s
	}
	t := int64(total)
	m.HandTotal = &t
	return m
}

func roundRecord(g *twentyone.Game, userID int64) *models.Round {
	return &models.Round{
		GameID:        g.ID,
		UserID:        userID,
		Outcome:       string(g.Outcome),
		PlayerTotal:   int64(g.Player.Total()),
		DealerTotal:   int64(g.Dealer.Total()),
		Bet:           int64(g.Player.BetSize),
		BankrollAfter: int64(g.Player.Bankroll),
	}
}

// recordMoves writes the move log and, for a newly settled round, the round
// row in one transaction.
func recordMoves(ctx context.Context, d *Deps, userID int64, gameID string, moves []models.GameMove, round *models.Round) error {
	if len(moves) == 0 && round == nil {
		return nil
	}
	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i := range moves {
		moves[i].GameID = gameID
		moves[i].UserID = userID
	}
	if err := models.InsertMovesTx(tx, moves); err != nil {
		return err
	}
	if round != nil {
		if err := models.InsertRoundTx(tx, *round); err != nil {
			return err
		}
	}
	return tx.Commit()
}
