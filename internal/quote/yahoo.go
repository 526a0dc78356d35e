package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"optpricer/internal/errors"
)

// DefaultEndpoint is the Yahoo Finance chart API base URL.
const DefaultEndpoint = "https://query1.finance.yahoo.com/v8/finance/chart"

// YahooConfig holds Yahoo provider configuration.
type YahooConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// YahooProvider implements Provider against the Yahoo Finance chart API.
type YahooProvider struct {
	endpoint string
	client   *http.Client
}

// NewYahooProvider creates a new Yahoo Finance provider.
func NewYahooProvider(cfg YahooConfig) *YahooProvider {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &YahooProvider{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// chartResponse mirrors the subset of the chart API payload we read.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetQuote returns the latest close for a symbol.
func (p *YahooProvider) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	resp, err := p.fetch(ctx, symbol, "5d")
	if err != nil {
		return nil, err
	}

	meta := resp.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return nil, errors.NewQuoteError(symbol, "no market price in response", errors.ErrNoData)
	}
	return &Quote{
		Symbol: symbol,
		Price:  meta.RegularMarketPrice,
		Time:   time.Unix(meta.RegularMarketTime, 0),
	}, nil
}

// GetHistory returns daily closes for a symbol over a period such as
// "1y" or "6mo".
func (p *YahooProvider) GetHistory(ctx context.Context, symbol string, period string) ([]Bar, error) {
	if period == "" {
		period = "1y"
	}
	resp, err := p.fetch(ctx, symbol, period)
	if err != nil {
		return nil, err
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, errors.NewQuoteError(symbol, "no quote series in response", errors.ErrNoData)
	}
	closes := result.Indicators.Quote[0].Close

	bars := make([]Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		bars = append(bars, Bar{
			Date:  time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Close: *closes[i],
		})
	}
	if len(bars) == 0 {
		return nil, errors.NewQuoteError(symbol, "empty close series", errors.ErrNoData)
	}
	return bars, nil
}

func (p *YahooProvider) fetch(ctx context.Context, symbol, rng string) (*chartResponse, error) {
	u := fmt.Sprintf("%s/%s?range=%s&interval=1d", p.endpoint, url.PathEscape(symbol), rng)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.NewQuoteError(symbol, "building request", err)
	}
	req.Header.Set("User-Agent", "optpricer/0.1")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.NewQuoteError(symbol, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.NewQuoteError(symbol, "unknown symbol", errors.ErrSymbolNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewQuoteError(symbol, fmt.Sprintf("unexpected status %d", resp.StatusCode), errors.ErrQuoteFailed)
	}

	var chart chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, errors.NewQuoteError(symbol, "decoding response", err)
	}
	if chart.Chart.Error != nil {
		return nil, errors.NewQuoteError(symbol, chart.Chart.Error.Description, errors.ErrQuoteFailed)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, errors.NewQuoteError(symbol, "empty result", errors.ErrNoData)
	}
	return &chart, nil
}
