// Package quote provides market data provider interfaces and implementations.
package quote

import (
	"context"
	"math"
	"time"
)

// Quote represents a latest price for a symbol.
type Quote struct {
	Symbol string
	Price  float64
	Time   time.Time
}

// Bar represents one daily closing price.
type Bar struct {
	Date  time.Time
	Close float64
}

// Provider defines the interface for market data lookups. The history
// series feeds display and volatility estimation only; no pricing
// computation consumes it.
type Provider interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
	GetHistory(ctx context.Context, symbol string, period string) ([]Bar, error)
}

// TradingDaysPerYear is the annualization factor for daily returns.
const TradingDaysPerYear = 252

// AnnualizedVolatility estimates annualized volatility from a daily
// close series as the sample standard deviation of day-over-day
// percentage changes scaled by sqrt(252). Returns 0 for fewer than
// three bars.
func AnnualizedVolatility(bars []Bar) float64 {
	if len(bars) < 3 {
		return 0
	}

	returns := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		if bars[i-1].Close == 0 {
			continue
		}
		returns = append(returns, bars[i].Close/bars[i-1].Close-1)
	}
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var sq float64
	for _, r := range returns {
		d := r - mean
		sq += d * d
	}
	variance := sq / float64(len(returns)-1)

	return math.Sqrt(variance) * math.Sqrt(TradingDaysPerYear)
}

// YearsToExpiry converts an expiry date to time-to-maturity in years,
// flooring at one day so same-day expiries stay priceable. It returns
// the year fraction and the whole day count it was derived from.
func YearsToExpiry(expiry, now time.Time) (float64, int) {
	days := int(expiry.Sub(now).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return float64(days) / 365.0, days
}
