package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"optpricer/internal/quote"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetBars(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	bars := []quote.Bar{
		{Date: day, Close: 100.5},
		{Date: day.AddDate(0, 0, 1), Close: 101.25},
		{Date: day.AddDate(0, 0, 2), Close: 99.75},
	}

	if err := s.SaveBars(ctx, "AAPL", bars); err != nil {
		t.Fatalf("SaveBars: %v", err)
	}

	got, err := s.GetBars(ctx, "AAPL")
	if err != nil {
		t.Fatalf("GetBars: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(got))
	}
	if got[0].Close != 100.5 || got[2].Close != 99.75 {
		t.Errorf("bars out of order or mangled: %v", got)
	}

	// Upsert replaces the close for an existing date instead of duplicating.
	bars[0].Close = 102.0
	if err := s.SaveBars(ctx, "AAPL", bars[:1]); err != nil {
		t.Fatalf("SaveBars upsert: %v", err)
	}
	got, err = s.GetBars(ctx, "AAPL")
	if err != nil {
		t.Fatalf("GetBars: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("upsert should not add rows, got %d", len(got))
	}
	if got[0].Close != 102.0 {
		t.Errorf("upsert did not replace close, got %v", got[0].Close)
	}
}

func TestBarsFreshness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fetched, err := s.GetBarsFreshness(ctx, "MSFT")
	if err != nil {
		t.Fatalf("GetBarsFreshness: %v", err)
	}
	if !fetched.IsZero() {
		t.Errorf("expected zero freshness for unknown symbol, got %v", fetched)
	}

	bars := []quote.Bar{{Date: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), Close: 400}}
	if err := s.SaveBars(ctx, "MSFT", bars); err != nil {
		t.Fatalf("SaveBars: %v", err)
	}

	fetched, err = s.GetBarsFreshness(ctx, "MSFT")
	if err != nil {
		t.Fatalf("GetBarsFreshness: %v", err)
	}
	if fetched.IsZero() {
		t.Error("expected freshness timestamp after SaveBars")
	}
	if time.Since(fetched) > time.Minute {
		t.Errorf("freshness timestamp too old: %v", fetched)
	}
}

func TestSaveAndGetRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	runs := []PricingRun{
		{Model: "black-scholes", Symbol: "AAPL", Spot: 187, Strike: 190, Maturity: 0.5,
			Rate: 0.05, Volatility: 0.22, Call: 10.1, Put: 8.4, ParityGap: 1e-9},
		{Model: "binomial", Style: "american", Symbol: "AAPL", Spot: 187, Strike: 190,
			Maturity: 0.5, Rate: 0.05, Volatility: 0.22, NumSteps: 200,
			Call: 10.2, Put: 8.9, ParityGap: 0.4},
		{Model: "monte-carlo", Spot: 100, Strike: 100, Maturity: 1,
			Rate: 0.05, Volatility: 0.2, NumPaths: 10000, NumSteps: 252, Seed: 120,
			Call: 10.44, Put: 5.58, ParityGap: 0.01},
	}
	for i := range runs {
		if err := s.SaveRun(ctx, &runs[i]); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
		if runs[i].ID == 0 {
			t.Error("SaveRun should assign an ID")
		}
	}

	all, err := s.GetRuns(ctx, RunFilter{})
	if err != nil {
		t.Fatalf("GetRuns: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}

	byModel, err := s.GetRuns(ctx, RunFilter{Model: "binomial"})
	if err != nil {
		t.Fatalf("GetRuns by model: %v", err)
	}
	if len(byModel) != 1 || byModel[0].Style != "american" {
		t.Errorf("model filter mismatch: %+v", byModel)
	}

	bySymbol, err := s.GetRuns(ctx, RunFilter{Symbol: "AAPL", Limit: 1})
	if err != nil {
		t.Fatalf("GetRuns by symbol: %v", err)
	}
	if len(bySymbol) != 1 {
		t.Errorf("expected limit 1, got %d", len(bySymbol))
	}

	mc, err := s.GetRuns(ctx, RunFilter{Model: "monte-carlo"})
	if err != nil {
		t.Fatalf("GetRuns monte-carlo: %v", err)
	}
	if len(mc) != 1 || mc[0].Seed != 120 || mc[0].NumPaths != 10000 {
		t.Errorf("simulation extras not round-tripped: %+v", mc)
	}
}
