package sentiment

import (
	"context"

	analysis "github.com/zhouzirui/sentiment-chat/backend/internal/analysis/sentiment"
)

// LexiconClassifier scores text with the rule-based compound polarity
// analyzer. It never fails and needs no configuration.
type LexiconClassifier struct {
	polarity func(text string) float64
}

func NewLexiconClassifier() *LexiconClassifier {
	return &LexiconClassifier{polarity: analysis.Polarity}
}

func (c *LexiconClassifier) Name() string { return SourceLexicon }

// Classify returns the compound score itself as the confidence value.
func (c *LexiconClassifier) Classify(_ context.Context, text string) (Result, error) {
	compound := c.polarity(text)
	return Result{
		Label:  LabelForCompound(compound),
		Score:  compound,
		Source: SourceLexicon,
	}, nil
}
