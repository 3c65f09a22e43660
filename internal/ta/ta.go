package ta

import (
	"math"

	"stockadvisor/internal/types"
)

// MovingAverage returns the sliding-window arithmetic mean, one value per
// full window, ordered by window start. Empty when the series is shorter
// than the period.
func MovingAverage(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return []float64{}
	}
	ma := make([]float64, 0, len(prices)-period+1)
	for i := 0; i+period <= len(prices); i++ {
		sum := 0.0
		for _, p := range prices[i : i+period] {
			sum += p
		}
		ma = append(ma, sum/float64(period))
	}
	return ma
}

// RSI computes the seeded Relative Strength Index over the first period+1
// deltas. Edge policy: flat seed -> 50, all gains -> 100, all losses -> 0.
func RSI(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period+1 {
		return 0.0
	}
	up, down := 0.0, 0.0
	for i := 1; i <= period+1 && i < len(prices); i++ {
		d := prices[i] - prices[i-1]
		if d >= 0 {
			up += d
		} else {
			down -= d
		}
	}
	up /= float64(period)
	down /= float64(period)

	if down == 0 {
		if up == 0 {
			return 50.0
		}
		return 100.0
	}
	if up == 0 {
		return 0.0
	}
	rs := up / down
	return 100.0 - (100.0 / (1.0 + rs))
}

// MACD computes the 12/26 EMA spread. The signal line is a 9-period EMA over
// the single-element series [macd], which degenerates to macd itself; the
// histogram is therefore always zero.
func MACD(prices []float64) types.MACD {
	if len(prices) < 26 {
		return types.MACD{}
	}
	ema12 := ema(prices, 12)
	ema26 := ema(prices, 26)

	macd := ema12 - ema26
	signal := ema([]float64{macd}, 9)
	return types.MACD{
		MACD:      macd,
		Signal:    signal,
		Histogram: macd - signal,
	}
}

// ema seeds with the simple mean of the first period values and folds the
// remaining tail with multiplier 2/(period+1). Short input degenerates to
// the plain mean.
func ema(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0.0
	}
	if len(prices) < period {
		return mean(prices)
	}
	multiplier := 2.0 / float64(period+1)
	v := mean(prices[:period])
	for _, p := range prices[period:] {
		v = (p-v)*multiplier + v
	}
	return v
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// AnalyzeTrend classifies the series by first-to-last percent change:
// bullish above +5%, bearish below -5%, neutral between. Strength is
// |pctChange|*10 clamped to 100.
func AnalyzeTrend(prices []float64) types.Trend {
	if len(prices) < 2 {
		return types.Trend{Trend: "unknown", Strength: 0}
	}
	pct := 0.0
	if prices[0] != 0 {
		pct = (prices[len(prices)-1] - prices[0]) / prices[0] * 100
	}
	trend := "neutral"
	if pct > 5 {
		trend = "bullish"
	} else if pct < -5 {
		trend = "bearish"
	}
	return types.Trend{
		Trend:     trend,
		Strength:  math.Min(math.Abs(pct)*10, 100),
		PctChange: pct,
	}
}

// Analyze runs the full indicator set over one close series.
func Analyze(closes []float64) types.IndicatorResult {
	return types.IndicatorResult{
		Trend:           AnalyzeTrend(closes),
		RSI:             RSI(closes, 14),
		MACD:            MACD(closes),
		MovingAverage20: MovingAverage(closes, 20),
	}
}
