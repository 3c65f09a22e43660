// Package marketdata fetches quotes, historical bars and news articles from
// public sources (Yahoo Finance and financial RSS feeds). It is the external
// data boundary of the analysis tools.
package marketdata

import (
	"errors"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"stockadvisor/internal/store"
)

var (
	// ErrSymbolNotFound means the quote source has no data for the symbol.
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrNoHistoricalData means the source returned fewer than 2 bars.
	ErrNoHistoricalData = errors.New("no historical data")
)

// Gateway is the production MarketData implementation.
type Gateway struct {
	feeds          []store.Feed
	parser         *gofeed.Parser
	httpClient     *http.Client
	timeout        time.Duration
	googleFallback bool
}

// NewGateway builds a gateway from the news section of the config.
func NewGateway(cfg *store.Config) *Gateway {
	timeout := time.Duration(cfg.News.TimeoutSeconds) * time.Second
	client := &http.Client{Timeout: timeout}

	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = "stockadvisor/1.0"

	return &Gateway{
		feeds:          cfg.News.Feeds,
		parser:         parser,
		httpClient:     client,
		timeout:        timeout,
		googleFallback: cfg.News.GoogleFallback,
	}
}

// Close releases the gateway's network resources. The process owner calls
// this on shutdown.
func (g *Gateway) Close() {
	g.httpClient.CloseIdleConnections()
}
