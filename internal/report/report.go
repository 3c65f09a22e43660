// Package report assembles analysis reports and derives BUY/SELL/HOLD
// recommendations from indicator and sentiment inputs.
package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"stockadvisor/internal/types"
)

// Recommend derives the recommendation from a weighted heuristic score:
// trend up to +-40 scaled by strength, RSI +-15 outside [30,70], sentiment
// up to +-30 scaled by |avg score|. Identical inputs always yield identical
// output.
func Recommend(trend types.Trend, rsi float64, sentiment types.SentimentResult) types.Recommendation {
	score := 0.0

	switch trend.Trend {
	case "bullish":
		score += trend.Strength / 100 * 40
	case "bearish":
		score -= trend.Strength / 100 * 40
	}

	if rsi < 30 {
		score += 15 // oversold
	} else if rsi > 70 {
		score -= 15 // overbought
	}

	switch sentiment.Overall {
	case "positive":
		score += math.Abs(sentiment.AvgScore) * 30
	case "negative":
		score -= math.Abs(sentiment.AvgScore) * 30
	}

	action := "HOLD"
	confidence := 0.5
	if score > 20 {
		action = "BUY"
		confidence = math.Min(math.Abs(score)/100, 1.0)
	} else if score < -20 {
		action = "SELL"
		confidence = math.Min(math.Abs(score)/100, 1.0)
	}

	var clauses []string
	if trend.Trend == "bullish" || trend.Trend == "bearish" {
		clauses = append(clauses, fmt.Sprintf("Strong %s trend (%.1f%% strength)", trend.Trend, trend.Strength))
	}
	if rsi < 30 {
		clauses = append(clauses, "Stock is oversold (RSI < 30)")
	} else if rsi > 70 {
		clauses = append(clauses, "Stock is overbought (RSI > 70)")
	}
	switch sentiment.Overall {
	case "positive":
		clauses = append(clauses, fmt.Sprintf("Positive news sentiment (%.2f)", sentiment.AvgScore))
	case "negative":
		clauses = append(clauses, fmt.Sprintf("Negative news sentiment (%.2f)", sentiment.AvgScore))
	}

	rationale := "Mixed signals"
	if len(clauses) > 0 {
		rationale = strings.Join(clauses, "; ")
	}

	return types.Recommendation{
		Action:     action,
		Confidence: confidence,
		Score:      score,
		Rationale:  rationale,
	}
}

// BuildAnalysis assembles a full report for one symbol. Pure function: the
// report embeds copies of its inputs and is never cached or mutated.
func BuildAnalysis(symbol string, quote types.Quote, indicators types.IndicatorResult, sentiment types.SentimentResult) types.AnalysisReport {
	rec := Recommend(indicators.Trend, indicators.RSI, sentiment)

	return types.AnalysisReport{
		Symbol:       symbol,
		Timestamp:    time.Now().Format(time.RFC3339),
		CurrentPrice: quote.Price,
		Currency:     quote.Currency,
		Technical: types.TechnicalSummary{
			Trend:         indicators.Trend.Trend,
			TrendStrength: indicators.Trend.Strength,
			RSI:           indicators.RSI,
			MACD:          indicators.MACD,
		},
		Sentiment: types.SentimentSummary{
			Overall:      sentiment.Overall,
			AvgScore:     sentiment.AvgScore,
			ArticleCount: len(sentiment.Articles),
		},
		Recommendation: rec.Action,
		Confidence:     rec.Confidence,
		Rationale:      rec.Rationale,
		Summary:        summarize(symbol, indicators.Trend.Trend, sentiment.Overall),
		Metrics: types.Metrics{
			MarketCap:        quote.MarketCap,
			PERatio:          quote.PERatio,
			DividendYield:    quote.DividendYield,
			FiftyTwoWeekHigh: quote.FiftyTwoWeekHigh,
			FiftyTwoWeekLow:  quote.FiftyTwoWeekLow,
		},
	}
}

func summarize(symbol, trend, sentiment string) string {
	summary := fmt.Sprintf("Stock %s is showing a %s technical trend with %s news sentiment. ", symbol, trend, sentiment)
	switch {
	case trend == "bullish" && sentiment == "positive":
		summary += "Both technical and fundamental indicators are positive."
	case trend == "bearish" && sentiment == "negative":
		summary += "Both technical and fundamental indicators are negative."
	default:
		summary += "Technical and fundamental indicators are mixed."
	}
	return summary
}

// BuildComparison lines up previously built reports in the given symbol
// order. Symbols without a report are omitted, not errors.
func BuildComparison(symbols []string, reports map[string]*types.AnalysisReport) types.ComparisonReport {
	cmp := types.ComparisonReport{
		Timestamp: time.Now().Format(time.RFC3339),
		Symbols:   symbols,
		Stocks:    []types.ComparisonEntry{},
	}

	for _, symbol := range symbols {
		r, ok := reports[symbol]
		if !ok || r == nil {
			continue
		}
		cmp.Stocks = append(cmp.Stocks, types.ComparisonEntry{
			Symbol:         symbol,
			Price:          r.CurrentPrice,
			Recommendation: r.Recommendation,
			Confidence:     r.Confidence,
			Trend:          r.Technical.Trend,
			Sentiment:      r.Sentiment.Overall,
		})
	}
	return cmp
}
