package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys for game operations.
const (
	UserIDKey    = attribute.Key("user.id")
	GameIDKey    = attribute.Key("game.id")
	GameStageKey = attribute.Key("game.stage")
	MoveTypeKey  = attribute.Key("move.type")
	OutcomeKey   = attribute.Key("round.outcome")
	BankrollKey  = attribute.Key("player.bankroll")
)

// StartSpan starts a span on the service tracer with optional attributes.
func StartSpan(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// Game tags a span with the owner and the game it concerns.
func Game(userID int64, gameID string) []attribute.KeyValue {
	return []attribute.KeyValue{UserIDKey.Int64(userID), GameIDKey.String(gameID)}
}

// Fail records err on span and marks it as failed. A nil err is ignored.
func Fail(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
