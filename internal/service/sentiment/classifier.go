package sentiment

import (
	"context"
	"strings"
)

// Label 是归一化后的情感标签。
type Label string

const (
	Positive Label = "POSITIVE"
	Negative Label = "NEGATIVE"
	Neutral  Label = "NEUTRAL"
	Unknown  Label = "UNKNOWN"
)

// Sources report which classifier produced a Result.
const (
	SourceModel   = "model"
	SourceLexicon = "lexicon"
	SourceNone    = "none"
)

// CompoundThreshold separates neutral compound scores from polar ones.
const CompoundThreshold = 0.05

// Result 是单次情感分析的结果，不做持久化。
type Result struct {
	Label  Label   `json:"label"`
	Score  float64 `json:"score"`
	Source string  `json:"source"`
}

// Classifier is a sentiment capability. Implementations may fail; the
// Analyzer absorbs those failures.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, text string) (Result, error)
}

// LabelForCompound maps a compound polarity score to a label. Both
// thresholds are inclusive.
func LabelForCompound(compound float64) Label {
	switch {
	case compound >= CompoundThreshold:
		return Positive
	case compound <= -CompoundThreshold:
		return Negative
	default:
		return Neutral
	}
}

// MapModelLabel 将模型原始标签映射为统一标签，兼容 "positive"/"LABEL_2" 等写法。
func MapModelLabel(raw string) Label {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)
	switch {
	case strings.Contains(lower, "positive") || trimmed == "LABEL_2":
		return Positive
	case strings.Contains(lower, "negative") || trimmed == "LABEL_0":
		return Negative
	default:
		return Neutral
	}
}
