package tools

import (
	"context"
	"math"

	"stockadvisor/internal/interfaces"
	"stockadvisor/internal/logger"
	"stockadvisor/internal/report"
	"stockadvisor/internal/sentiment"
	"stockadvisor/internal/store"
	"stockadvisor/internal/ta"
	"stockadvisor/internal/trace"
	"stockadvisor/internal/types"
)

const topArticles = 5

// Dispatcher executes the tool catalog against the market-data gateway. It is
// stateless; every call builds its result from scratch.
type Dispatcher struct {
	market       interfaces.MarketData
	historyRange string
	newsLimit    int
}

func NewDispatcher(market interfaces.MarketData, cfg *store.Config) *Dispatcher {
	historyRange := cfg.Market.HistoryRange
	if historyRange == "" {
		historyRange = "1y"
	}
	newsLimit := cfg.News.SymbolLimit
	if newsLimit <= 0 {
		newsLimit = 10
	}
	return &Dispatcher{market: market, historyRange: historyRange, newsLimit: newsLimit}
}

// Catalog lists the tools exposed to the language model. Order and names are
// part of the prompt contract.
func (d *Dispatcher) Catalog() []types.ToolSpec {
	return []types.ToolSpec{
		{
			Name:        "analyze_stock",
			Description: "Complete analysis of a stock: price, technical indicators, news sentiment, and recommendation",
			Parameters:  map[string]string{"symbol": "Stock ticker symbol (e.g., AAPL)"},
		},
		{
			Name:        "compare_stocks",
			Description: "Compare multiple stocks side by side",
			Parameters:  map[string]string{"symbols": "List of stock ticker symbols"},
		},
		{
			Name:        "get_market_news",
			Description: "Latest general market news with sentiment analysis",
			Parameters:  map[string]string{"limit": "Maximum number of articles (default 10)"},
		},
	}
}

// AnalyzeStock runs the full pipeline for one symbol. Any failure comes back
// as an unsuccessful result value so the caller's turn keeps going.
func (d *Dispatcher) AnalyzeStock(ctx context.Context, symbol string) types.AnalysisResult {
	ctx, span := trace.StartSpan(ctx, "tool-analyze-stock")
	defer span.End()

	quote, err := d.market.FetchQuote(ctx, symbol)
	if err != nil {
		logger.Warn(ctx, "Quote fetch failed", "symbol", symbol, "error", err)
		return types.AnalysisResult{Symbol: symbol, Error: err.Error()}
	}

	history, err := d.market.FetchHistory(ctx, symbol, d.historyRange)
	if err != nil {
		logger.Warn(ctx, "History fetch failed", "symbol", symbol, "error", err)
		return types.AnalysisResult{Symbol: symbol, Error: err.Error()}
	}

	closes := make([]float64, 0, len(history.Bars))
	for _, bar := range history.Bars {
		if !math.IsNaN(bar.Close) {
			closes = append(closes, bar.Close)
		}
	}
	indicators := ta.Analyze(closes)

	// News is best-effort: an empty batch scores neutral.
	articles, err := d.market.FetchNews(ctx, symbol, d.newsLimit)
	if err != nil {
		logger.Warn(ctx, "News fetch failed, proceeding without articles", "symbol", symbol, "error", err)
		articles = nil
	}
	sent := sentiment.ScoreArticles(articles)

	rep := report.BuildAnalysis(quote.Symbol, quote, indicators, sent)
	logger.Recommendation(ctx, rep.Symbol, rep.Recommendation, rep.Confidence, rep.Rationale)

	if len(articles) > topArticles {
		articles = articles[:topArticles]
	}
	return types.AnalysisResult{
		Success: true,
		Symbol:  rep.Symbol,
		Report:  &rep,
		News:    articles,
		History: &history,
	}
}

// CompareStocks analyzes each symbol in turn. Symbols that fail are skipped;
// the comparison covers whatever succeeded, in input order. An all-fail batch
// is still a successful call with an empty stocks list.
func (d *Dispatcher) CompareStocks(ctx context.Context, symbols []string) types.ComparisonResult {
	ctx, span := trace.StartSpan(ctx, "tool-compare-stocks")
	defer span.End()

	reports := map[string]*types.AnalysisReport{}
	ordered := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		res := d.AnalyzeStock(ctx, symbol)
		if !res.Success {
			logger.Warn(ctx, "Skipping symbol in comparison", "symbol", symbol, "error", res.Error)
			continue
		}
		reports[res.Symbol] = res.Report
		ordered = append(ordered, res.Symbol)
	}

	comparison := report.BuildComparison(ordered, reports)
	return types.ComparisonResult{
		Success:    true,
		Comparison: &comparison,
		Analyses:   reports,
	}
}

// MarketNews fetches general articles and scores their aggregate sentiment.
func (d *Dispatcher) MarketNews(ctx context.Context, limit int) types.MarketNewsResult {
	ctx, span := trace.StartSpan(ctx, "tool-market-news")
	defer span.End()

	if limit <= 0 {
		limit = 10
	}
	articles, err := d.market.FetchNews(ctx, "", limit)
	if err != nil {
		logger.Warn(ctx, "Market news fetch failed", "error", err)
		return types.MarketNewsResult{Error: err.Error()}
	}

	return types.MarketNewsResult{
		Success:   true,
		Articles:  articles,
		Sentiment: sentiment.ScoreArticles(articles),
	}
}
