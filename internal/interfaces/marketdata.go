package interfaces

import (
	"context"

	"stockadvisor/internal/types"
)

// MarketData fetches quotes, daily bars and news articles from external
// sources. Implementations own their network resources; the process owner
// releases them on shutdown.
type MarketData interface {
	FetchQuote(ctx context.Context, symbol string) (types.Quote, error)
	FetchHistory(ctx context.Context, symbol, rng string) (types.History, error)
	FetchNews(ctx context.Context, symbolFilter string, limit int) ([]types.NewsArticle, error)
}
