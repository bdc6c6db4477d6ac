package sentiment

import (
	"strings"
	"sync"

	"github.com/jonreiter/govader"
)

// Breakdown 给出文本的情感比例以及归一化后的复合得分。
type Breakdown struct {
	Positive float64
	Negative float64
	Neutral  float64
	Compound float64
}

// 词典在首次使用时加载，之后只读，可并发调用。
var vader = sync.OnceValue(govader.NewSentimentIntensityAnalyzer)

// Polarity returns the VADER compound polarity of text in [-1, 1].
func Polarity(text string) float64 {
	return Scores(text).Compound
}

// Scores 使用 VADER 词典与规则（程度副词、否定、全大写、"but" 转折、标点强调）计算情感得分。
func Scores(text string) Breakdown {
	if strings.TrimSpace(text) == "" {
		return Breakdown{Neutral: 1}
	}
	s := vader().PolarityScores(text)
	b := Breakdown{
		Positive: s.Positive,
		Negative: s.Negative,
		Neutral:  s.Neutral,
		Compound: s.Compound,
	}
	if b.Positive == 0 && b.Negative == 0 && b.Neutral == 0 {
		b.Neutral = 1
	}
	return b
}
