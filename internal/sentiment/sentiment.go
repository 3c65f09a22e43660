// Package sentiment scores financial text with fixed keyword sets. It is
// deterministic and does no I/O, so tool results stay reproducible even when
// the language model is not.
package sentiment

import (
	"strings"

	"stockadvisor/internal/types"
)

var positiveKeywords = []string{
	"surge", "rally", "gain", "up", "rise", "bull", "strong", "outperform",
	"beat", "growth", "profit", "earnings", "success", "positive", "good",
	"excellent", "outstanding", "record", "high", "boost", "jump",
}

var negativeKeywords = []string{
	"plunge", "crash", "fall", "down", "bear", "weak", "underperform",
	"miss", "loss", "decline", "negative", "bad", "poor", "worst", "low",
	"drop", "tumble", "slump", "sell-off", "concern", "risk",
}

// ScoreText scores a piece of text in [-1, 1] by keyword counts:
// (pos-neg)/(pos+neg), zero when neither set matches. Labels flip at +-0.2.
func ScoreText(text string) (label string, score float64) {
	lower := strings.ToLower(text)

	pos, neg := 0, 0
	for _, kw := range positiveKeywords {
		if strings.Contains(lower, kw) {
			pos++
		}
	}
	for _, kw := range negativeKeywords {
		if strings.Contains(lower, kw) {
			neg++
		}
	}

	if pos+neg > 0 {
		score = float64(pos-neg) / float64(pos+neg)
	}
	return labelFor(score), score
}

// ScoreArticles scores each article's title plus summary and aggregates the
// arithmetic mean. Empty input yields a neutral result with no entries.
func ScoreArticles(articles []types.NewsArticle) types.SentimentResult {
	if len(articles) == 0 {
		return types.SentimentResult{
			Overall:  "neutral",
			AvgScore: 0.0,
			Articles: []types.ArticleSentiment{},
		}
	}

	perArticle := make([]types.ArticleSentiment, 0, len(articles))
	total := 0.0
	for _, a := range articles {
		label, score := ScoreText(a.Title + " " + a.Summary)
		perArticle = append(perArticle, types.ArticleSentiment{
			Title:     a.Title,
			Sentiment: label,
			Score:     score,
		})
		total += score
	}

	avg := total / float64(len(articles))
	return types.SentimentResult{
		Overall:  labelFor(avg),
		AvgScore: avg,
		Articles: perArticle,
	}
}

func labelFor(score float64) string {
	switch {
	case score > 0.2:
		return "positive"
	case score < -0.2:
		return "negative"
	default:
		return "neutral"
	}
}
