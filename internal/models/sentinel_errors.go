package models

import "errors"

var (
	ErrInvalidJSON       = errors.New("invalid json")
	ErrInvalidMove       = errors.New("invalid move")
	ErrUnknownMoveType   = errors.New("unknown move type")
	ErrInvalidBet        = errors.New("invalid bet")
	ErrInvalidTitle      = errors.New("invalid title")
	ErrDuplicateTitle    = errors.New("game title must be unique")
	ErrInvalidGameRecord = errors.New("invalid game record")
	ErrGameStateMissing  = errors.New("persisted game state missing")
	ErrGameNotFound      = errors.New("game not found")
	ErrNotFound          = errors.New("not found")
	ErrUsernameTaken     = errors.New("username already taken")
)
