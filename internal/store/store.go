// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"optpricer/internal/quote"
)

// PricingRun records one pricing request: the inputs handed to a model
// and the two prices it produced.
type PricingRun struct {
	ID          int64
	Timestamp   time.Time
	Model       string
	Style       string
	Symbol      string
	Spot        float64
	Strike      float64
	Maturity    float64
	Rate        float64
	CostOfCarry float64
	Volatility  float64
	NumPaths    int
	NumSteps    int
	Seed        int64
	Call        float64
	Put         float64
	ParityGap   float64
}

// RunFilter represents filters for querying pricing runs.
type RunFilter struct {
	Symbol string
	Model  string
	Limit  int
}

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Price history cache
	SaveBars(ctx context.Context, symbol string, bars []quote.Bar) error
	GetBars(ctx context.Context, symbol string) ([]quote.Bar, error)
	GetBarsFreshness(ctx context.Context, symbol string) (time.Time, error)

	// Pricing journal
	SaveRun(ctx context.Context, run *PricingRun) error
	GetRuns(ctx context.Context, filter RunFilter) ([]PricingRun, error)

	// Lifecycle
	Close() error
}
