package handlers

import (
	"net/http"
	"sync"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"twenty-one-go/internal/models"
	"twenty-one-go/internal/tracing"
)

var (
	spanRecorderOnce sync.Once
	spanRecorder     *tracetest.SpanRecorder
)

// recordSpans installs a recording provider once for the package. Tracers
// handed out before the install delegate to it.
func recordSpans() *tracetest.SpanRecorder {
	spanRecorderOnce.Do(func() {
		spanRecorder = tracetest.NewSpanRecorder()
		otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spanRecorder)))
	})
	return spanRecorder
}

func movesFor(rec *tracetest.SpanRecorder, gameID string) []sdktrace.ReadOnlySpan {
	var out []sdktrace.ReadOnlySpan
	for _, s := range rec.Ended() {
		if s.Name() != "handlers.ApplyMove" {
			continue
		}
		for _, kv := range s.Attributes() {
			if kv.Key == tracing.GameIDKey && kv.Value.AsString() == gameID {
				out = append(out, s)
			}
		}
	}
	return out
}

func spanAttrs(s sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value)
	for _, kv := range s.Attributes() {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestApplyMoveSpanAttributes(t *testing.T) {
	rec := recordSpans()
	s := newTestServer(t)
	token := s.register(t, "tracy")
	g := s.createGame(t, token, "traced", 1)

	expectStatus(t, s.do(t, http.MethodPost, "/api/games/"+g.ID+"/bet", token, nil), http.StatusOK)
	expectStatus(t, s.do(t, http.MethodPost, "/api/games/"+g.ID+"/stay", token, nil), http.StatusOK)
	expectStatus(t, s.do(t, http.MethodGet, "/api/games/"+g.ID+"/results", token, nil), http.StatusOK)

	spans := movesFor(rec, g.ID)
	if len(spans) != 3 {
		t.Fatalf("ApplyMove spans = %d, want 3", len(spans))
	}
	wantMoves := []string{models.MoveBet, models.MoveStay, models.MoveResolve}
	wantStages := []string{"player_turn", "round_resolved", "round_resolved"}
	for i, sp := range spans {
		attrs := spanAttrs(sp)
		if got := attrs[tracing.MoveTypeKey].AsString(); got != wantMoves[i] {
			t.Errorf("span %d move.type = %q, want %q", i, got, wantMoves[i])
		}
		if got := attrs[tracing.GameStageKey].AsString(); got != wantStages[i] {
			t.Errorf("span %d game.stage = %q, want %q", i, got, wantStages[i])
		}
		if _, ok := attrs[tracing.UserIDKey]; !ok {
			t.Errorf("span %d has no user.id", i)
		}
		if sp.Status().Code == codes.Error {
			t.Errorf("span %d marked failed: %s", i, sp.Status().Description)
		}
	}
	if _, ok := spanAttrs(spans[2])[tracing.OutcomeKey]; !ok {
		t.Error("resolve span has no round.outcome")
	}
}

func TestApplyMoveSpanRecordsFailure(t *testing.T) {
	rec := recordSpans()
	s := newTestServer(t)
	token := s.register(t, "tracy")
	g := s.createGame(t, token, "too early", 1)

	expectStatus(t, s.do(t, http.MethodPost, "/api/games/"+g.ID+"/hit", token, nil), http.StatusConflict)

	spans := movesFor(rec, g.ID)
	if len(spans) != 1 {
		t.Fatalf("ApplyMove spans = %d, want 1", len(spans))
	}
	if st := spans[0].Status(); st.Code != codes.Error {
		t.Fatalf("status = %+v, want error", st)
	}
	if len(spans[0].Events()) == 0 {
		t.Fatal("error not recorded as a span event")
	}
}
