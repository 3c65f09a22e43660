package types

import "time"

// Quote is a point-in-time snapshot of a symbol's market data.
type Quote struct {
	Symbol           string  `json:"symbol"`
	Price            float64 `json:"price"`
	Currency         string  `json:"currency"`
	MarketCap        float64 `json:"market_cap"`
	PERatio          float64 `json:"pe_ratio"`
	DividendYield    float64 `json:"dividend_yield"`
	FiftyTwoWeekHigh float64 `json:"fifty_two_week_high"`
	FiftyTwoWeekLow  float64 `json:"fifty_two_week_low"`
	Timestamp        string  `json:"timestamp"`
}

// Bar is one daily candle. Close may be NaN when the source reported no data
// for that day; callers filter such bars before indicator math.
type Bar struct {
	Date     string  `json:"date"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   int64   `json:"volume"`
	AdjClose float64 `json:"adj_close"`
}

// History is a chronological (ascending) series of daily bars.
type History struct {
	Symbol string `json:"symbol"`
	Range  string `json:"range"`
	Bars   []Bar  `json:"bars"`
	Count  int    `json:"count"`
}

// NewsArticle is a single fetched news item.
type NewsArticle struct {
	Source      string `json:"source"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Link        string `json:"link"`
	PublishedAt string `json:"published_at"`
	Author      string `json:"author"`
}

type MACD struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

type Trend struct {
	Trend     string  `json:"trend"` // bullish, bearish, neutral, unknown
	Strength  float64 `json:"strength"`
	PctChange float64 `json:"pct_change"`
}

// IndicatorResult bundles every technical indicator derived from one close
// series. Immutable once computed.
type IndicatorResult struct {
	Trend           Trend     `json:"trend"`
	RSI             float64   `json:"rsi"`
	MACD            MACD      `json:"macd"`
	MovingAverage20 []float64 `json:"moving_average_20"`
}

type ArticleSentiment struct {
	Title     string  `json:"title"`
	Sentiment string  `json:"sentiment"`
	Score     float64 `json:"score"`
}

// SentimentResult aggregates per-article keyword sentiment over a batch.
type SentimentResult struct {
	Overall  string             `json:"overall_sentiment"` // positive, negative, neutral
	AvgScore float64            `json:"average_score"`
	Articles []ArticleSentiment `json:"article_sentiments"`
}

type Recommendation struct {
	Action     string  `json:"action"` // BUY, SELL, HOLD
	Confidence float64 `json:"confidence"`
	Score      float64 `json:"score"`
	Rationale  string  `json:"rationale"`
}

// TechnicalSummary is the indicator slice of an AnalysisReport.
type TechnicalSummary struct {
	Trend         string  `json:"trend"`
	TrendStrength float64 `json:"trend_strength"`
	RSI           float64 `json:"rsi"`
	MACD          MACD    `json:"macd"`
}

// SentimentSummary is the news slice of an AnalysisReport.
type SentimentSummary struct {
	Overall      string  `json:"overall_sentiment"`
	AvgScore     float64 `json:"average_score"`
	ArticleCount int     `json:"article_count"`
}

type Metrics struct {
	MarketCap        float64 `json:"market_cap"`
	PERatio          float64 `json:"pe_ratio"`
	DividendYield    float64 `json:"dividend_yield"`
	FiftyTwoWeekHigh float64 `json:"52_week_high"`
	FiftyTwoWeekLow  float64 `json:"52_week_low"`
}

// AnalysisReport is built fresh on every analysis request and never mutated.
type AnalysisReport struct {
	Symbol         string           `json:"symbol"`
	Timestamp      string           `json:"timestamp"`
	CurrentPrice   float64          `json:"current_price"`
	Currency       string           `json:"currency"`
	Technical      TechnicalSummary `json:"technical_analysis"`
	Sentiment      SentimentSummary `json:"news_sentiment"`
	Recommendation string           `json:"recommendation"`
	Confidence     float64          `json:"confidence"`
	Rationale      string           `json:"rationale"`
	Summary        string           `json:"summary"`
	Metrics        Metrics          `json:"metrics"`
}

type ComparisonEntry struct {
	Symbol         string  `json:"symbol"`
	Price          float64 `json:"price"`
	Recommendation string  `json:"recommendation"`
	Confidence     float64 `json:"confidence"`
	Trend          string  `json:"trend"`
	Sentiment      string  `json:"sentiment"`
}

type ComparisonReport struct {
	Timestamp string            `json:"timestamp"`
	Symbols   []string          `json:"symbols"`
	Stocks    []ComparisonEntry `json:"stocks"`
}

// AnalysisResult wraps one symbol's analysis for tool dispatch. Failure is a
// value, not an error, so sibling symbols keep running.
type AnalysisResult struct {
	Success bool            `json:"success"`
	Symbol  string          `json:"symbol"`
	Report  *AnalysisReport `json:"report,omitempty"`
	News    []NewsArticle   `json:"news,omitempty"`
	History *History        `json:"historical_data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type ComparisonResult struct {
	Success    bool                       `json:"success"`
	Comparison *ComparisonReport          `json:"comparison,omitempty"`
	Analyses   map[string]*AnalysisReport `json:"analyses,omitempty"`
	Error      string                     `json:"error,omitempty"`
}

type MarketNewsResult struct {
	Success   bool            `json:"success"`
	Articles  []NewsArticle   `json:"articles,omitempty"`
	Sentiment SentimentResult `json:"sentiment"`
	Error     string          `json:"error,omitempty"`
}

// ToolSpec describes one catalog entry exposed to the model.
type ToolSpec struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Parameters  map[string]string `json:"parameters"`
}

// GenerateRequest carries one prompt to the language-model gateway.
type GenerateRequest struct {
	Prompt      string
	System      string
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// Turn is one message in a conversation session.
type Turn struct {
	ID        string         `json:"id"`
	Role      string         `json:"role"` // user or assistant
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// TurnResult is what the orchestrator hands back for one processed message.
type TurnResult struct {
	Success   bool           `json:"success"`
	UserID    string         `json:"user_id"`
	Response  string         `json:"response"`
	Analysis  map[string]any `json:"analysis,omitempty"`
	ToolsUsed []string       `json:"tools_used"`
}
