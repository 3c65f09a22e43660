package marketdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"

	"stockadvisor/internal/logger"
	"stockadvisor/internal/trace"
	"stockadvisor/internal/types"
)

// rangeDays maps a history range string to a day count, mirroring the
// period table of the upstream Yahoo endpoint.
var rangeDays = map[string]int{
	"1mo": 30,
	"3mo": 91,
	"6mo": 182,
	"1y":  365,
	"2y":  730,
}

// NormalizeSymbol uppercases and trims a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// FetchQuote returns the current quote snapshot for a symbol.
func (g *Gateway) FetchQuote(ctx context.Context, symbol string) (types.Quote, error) {
	ctx, span := trace.StartSpan(ctx, "fetch-quote")
	defer span.End()

	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return types.Quote{}, fmt.Errorf("%w: empty symbol", ErrSymbolNotFound)
	}

	q, err := equity.Get(symbol)
	if err != nil {
		logger.ErrorWithErr(ctx, "Quote lookup failed", err, "symbol", symbol)
		return types.Quote{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	if q == nil {
		return types.Quote{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}

	return types.Quote{
		Symbol:           symbol,
		Price:            q.RegularMarketPrice,
		Currency:         q.CurrencyID,
		MarketCap:        float64(q.MarketCap),
		PERatio:          q.TrailingPE,
		DividendYield:    q.TrailingAnnualDividendYield,
		FiftyTwoWeekHigh: q.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:  q.FiftyTwoWeekLow,
		Timestamp:        time.Now().Format(time.RFC3339),
	}, nil
}

// FetchHistory returns daily bars for the given range, chronological
// ascending. Fewer than 2 bars is ErrNoHistoricalData.
func (g *Gateway) FetchHistory(ctx context.Context, symbol, rng string) (types.History, error) {
	ctx, span := trace.StartSpan(ctx, "fetch-history")
	defer span.End()

	symbol = NormalizeSymbol(symbol)
	days, ok := rangeDays[rng]
	if !ok {
		rng = "1y"
		days = rangeDays[rng]
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	iter := chart.Get(params)
	bars := make([]types.Bar, 0, days)
	for iter.Next() {
		b := iter.Bar()
		bars = append(bars, types.Bar{
			Date:     time.Unix(int64(b.Timestamp), 0).Format("2006-01-02"),
			Open:     b.Open.InexactFloat64(),
			High:     b.High.InexactFloat64(),
			Low:      b.Low.InexactFloat64(),
			Close:    b.Close.InexactFloat64(),
			Volume:   int64(b.Volume),
			AdjClose: b.AdjClose.InexactFloat64(),
		})
	}
	if err := iter.Err(); err != nil {
		logger.ErrorWithErr(ctx, "History download failed", err, "symbol", symbol, "range", rng)
		return types.History{}, fmt.Errorf("history for %s: %w", symbol, err)
	}
	if len(bars) < 2 {
		return types.History{}, fmt.Errorf("%w: %s (%d bars)", ErrNoHistoricalData, symbol, len(bars))
	}

	logger.Debug(ctx, "History downloaded", "symbol", symbol, "range", rng, "bars", len(bars))
	return types.History{
		Symbol: symbol,
		Range:  rng,
		Bars:   bars,
		Count:  len(bars),
	}, nil
}
