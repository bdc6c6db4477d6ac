package sentiment

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/sentiment-chat/backend/internal/config"
	"github.com/zhouzirui/sentiment-chat/backend/internal/infra/metrics"
)

// Analyzer 优先使用模型分类器，失败后永久回退到词典分类器；两者都不可用时返回 UNKNOWN。
type Analyzer struct {
	mu       sync.Mutex
	primary  Classifier
	fallback Classifier
}

// NewAnalyzer accepts nil for either classifier.
func NewAnalyzer(primary, fallback Classifier) *Analyzer {
	return &Analyzer{primary: primary, fallback: fallback}
}

// NewAnalyzerFromConfig tries to bring up the model-backed classifier and
// falls back to the lexicon analyzer when that fails.
func NewAnalyzerFromConfig(ctx context.Context, cfg config.SentimentConfig) *Analyzer {
	var primary Classifier
	if cfg.PrimaryEnabled {
		mc, err := NewModelClassifier(ctx, ModelConfig{
			Endpoint: cfg.Endpoint,
			Model:    cfg.Model,
			APIToken: cfg.APIToken,
			Timeout:  cfg.Timeout,
		})
		if err != nil {
			log.Warn().Str("component", "sentiment").Err(err).Str("model", cfg.Model).
				Msg("could not load sentiment model, falling back to lexicon analysis")
			metrics.PrimaryFallback()
		} else {
			log.Info().Str("component", "sentiment").Str("model", cfg.Model).Msg("using hosted sentiment model")
			primary = mc
		}
	}
	return NewAnalyzer(primary, NewLexiconClassifier())
}

// Active reports the source of the classifier currently in use.
func (a *Analyzer) Active() string {
	c, _ := a.current()
	if c == nil {
		return SourceNone
	}
	return c.Name()
}

// Analyze never returns an error: classifier failures degrade to the
// fallback and finally to UNKNOWN.
func (a *Analyzer) Analyze(ctx context.Context, text string) Result {
	for {
		classifier, isPrimary := a.current()
		if classifier == nil {
			metrics.ObserveSentiment(string(Unknown), SourceNone)
			return Result{Label: Unknown, Score: 0, Source: SourceNone}
		}

		if strings.TrimSpace(text) == "" {
			return Result{Label: Neutral, Score: 0, Source: classifier.Name()}
		}

		result, err := classifier.Classify(ctx, text)
		if err == nil {
			metrics.ObserveSentiment(string(result.Label), result.Source)
			return result
		}

		if !isPrimary {
			log.Warn().Str("component", "sentiment").Err(err).Msg("fallback classifier failed")
			metrics.ObserveSentiment(string(Unknown), SourceNone)
			return Result{Label: Unknown, Score: 0, Source: SourceNone}
		}

		if ctx.Err() != nil {
			// the caller gave up; that says nothing about the model
			return a.classifyWithFallback(ctx, text)
		}

		log.Warn().Str("component", "sentiment").Err(err).Msg("sentiment model failed, switching to lexicon analysis")
		a.demote(classifier)
	}
}

func (a *Analyzer) classifyWithFallback(ctx context.Context, text string) Result {
	a.mu.Lock()
	fallback := a.fallback
	a.mu.Unlock()
	if fallback == nil {
		return Result{Label: Unknown, Score: 0, Source: SourceNone}
	}
	result, err := fallback.Classify(ctx, text)
	if err != nil {
		return Result{Label: Unknown, Score: 0, Source: SourceNone}
	}
	return result
}

func (a *Analyzer) current() (Classifier, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.primary != nil {
		return a.primary, true
	}
	return a.fallback, false
}

func (a *Analyzer) demote(failed Classifier) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.primary == failed {
		a.primary = nil
		metrics.PrimaryFallback()
	}
}
