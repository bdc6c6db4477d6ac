package metrics

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once       sync.Once
	collectors []prometheus.Collector
)

// register is called by init() to enqueue collectors.
func register(cs ...prometheus.Collector) {
	collectors = append(collectors, cs...)
}

// MustRegister registers ALL enqueued collectors with Prometheus exactly once.
func MustRegister() {
	once.Do(func() {
		if len(collectors) > 0 {
			prometheus.MustRegister(collectors...)
		}
	})
}

func init() {
	register(
		sentimentClassifications,
		sentimentPrimaryFallbacks,
		chatTurns,
		aiCallsLatencyMs,
		chatSessionsActive,
	)
}

var (
	sentimentClassifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_classifications_total",
			Help: "Sentiment labels produced per classifier source.",
		},
		[]string{"label", "source"},
	)

	sentimentPrimaryFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sentiment_primary_fallbacks_total",
			Help: "Times the model-backed classifier was abandoned for the lexicon fallback.",
		},
	)

	chatTurns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_turns_total",
			Help: "Processed chat turns per provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "AI call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
		},
		[]string{"provider", "model", "success"},
	)

	chatSessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_sessions_active",
			Help: "Chat sessions currently held in memory.",
		},
	)
)

func ObserveSentiment(label, source string) {
	sentimentClassifications.WithLabelValues(norm(label), norm(source)).Inc()
}

func PrimaryFallback() {
	sentimentPrimaryFallbacks.Inc()
}

func ObserveTurn(provider string, success bool) {
	outcome := "ok"
	if !success {
		outcome = "error"
	}
	chatTurns.WithLabelValues(norm(provider), outcome).Inc()
}

func ObserveAICall(provider, model string, elapsed time.Duration, success bool) {
	aiCallsLatencyMs.WithLabelValues(norm(provider), norm(model), strconv.FormatBool(success)).
		Observe(float64(elapsed.Milliseconds()))
}

func SessionOpened() { chatSessionsActive.Inc() }

func SessionClosed() { chatSessionsActive.Dec() }

func norm(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "unknown"
	}
	return s
}
