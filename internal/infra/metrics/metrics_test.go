package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveSentimentCountsPerLabel(t *testing.T) {
	before := testutil.ToFloat64(sentimentClassifications.WithLabelValues("positive", "lexicon"))
	ObserveSentiment("POSITIVE", "lexicon")
	after := testutil.ToFloat64(sentimentClassifications.WithLabelValues("positive", "lexicon"))
	if after-before != 1 {
		t.Fatalf("expected counter to grow by 1, got %v", after-before)
	}
}

func TestObserveTurnOutcome(t *testing.T) {
	before := testutil.ToFloat64(chatTurns.WithLabelValues("gemini", "error"))
	ObserveTurn("gemini", false)
	if got := testutil.ToFloat64(chatTurns.WithLabelValues("gemini", "error")) - before; got != 1 {
		t.Fatalf("expected one failed turn, got %v", got)
	}
}

func TestSessionGauge(t *testing.T) {
	start := testutil.ToFloat64(chatSessionsActive)
	SessionOpened()
	SessionOpened()
	SessionClosed()
	if got := testutil.ToFloat64(chatSessionsActive) - start; got != 1 {
		t.Fatalf("expected gauge delta 1, got %v", got)
	}
}

func TestMustRegisterIsIdempotent(t *testing.T) {
	MustRegister()
	MustRegister()
	ObserveAICall("openai", "gpt-4o-mini", 120*time.Millisecond, true)
}

func TestNorm(t *testing.T) {
	if norm("  ") != "unknown" {
		t.Fatal("expected blank label to normalize to unknown")
	}
	if norm("Gemini") != "gemini" {
		t.Fatal("expected lowercase label")
	}
}
