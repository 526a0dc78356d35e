package pricing

import (
	"testing"

	"optpricer/internal/errors"
)

func TestMonteCarloDeterministicUnderFixedSeed(t *testing.T) {
	cfg := MonteCarloConfig{NumPaths: 20000, NumSteps: 4, Seed: DefaultSeed, Workers: 2}

	first, err := NewMonteCarlo(referenceParams(), cfg)
	if err != nil {
		t.Fatalf("NewMonteCarlo: %v", err)
	}
	second, err := NewMonteCarlo(referenceParams(), cfg)
	if err != nil {
		t.Fatalf("NewMonteCarlo: %v", err)
	}

	a := first.Estimate()
	b := second.Estimate()

	if a.Call != b.Call || a.Put != b.Put {
		t.Errorf("two instances with identical seed diverged: %v/%v vs %v/%v",
			a.Call, a.Put, b.Call, b.Put)
	}

	// Independent method calls re-seed identically, so they reproduce
	// the same terminal-price set as a full Estimate pass.
	call, _ := first.PriceCall()
	put, _ := first.PricePut()
	if call != a.Call || put != a.Put {
		t.Errorf("per-method pricing diverged from Estimate: %v/%v vs %v/%v",
			call, put, a.Call, a.Put)
	}
}

func TestMonteCarloWorkerCountDoesNotChangePrices(t *testing.T) {
	for _, workers := range []int{1, 2, 8} {
		cfg := MonteCarloConfig{NumPaths: 30000, NumSteps: 2, Seed: 7, Workers: workers}
		model, err := NewMonteCarlo(referenceParams(), cfg)
		if err != nil {
			t.Fatalf("NewMonteCarlo(workers=%d): %v", workers, err)
		}
		est := model.Estimate()

		base, err := NewMonteCarlo(referenceParams(), MonteCarloConfig{
			NumPaths: 30000, NumSteps: 2, Seed: 7, Workers: 1,
		})
		if err != nil {
			t.Fatalf("NewMonteCarlo(base): %v", err)
		}
		want := base.Estimate()

		if est.Call != want.Call || est.Put != want.Put {
			t.Errorf("workers=%d changed prices: %v/%v vs %v/%v",
				workers, est.Call, est.Put, want.Call, want.Put)
		}
	}
}

func TestMonteCarloConvergesToBlackScholes(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping convergence run in short mode")
	}

	p := referenceParams()
	bs, err := NewBlackScholes(p)
	if err != nil {
		t.Fatalf("NewBlackScholes: %v", err)
	}
	bsCall, _ := bs.PriceCall()
	bsPut, _ := bs.PricePut()

	// A single step is exact for terminal-price simulation, the GBM
	// transition is sampled from its true distribution at any step count.
	model, err := NewMonteCarlo(p, MonteCarloConfig{NumPaths: 200000, NumSteps: 1})
	if err != nil {
		t.Fatalf("NewMonteCarlo: %v", err)
	}
	est := model.Estimate()

	if !almostEqual(est.Call, bsCall, 0.15) {
		t.Errorf("call estimate %v too far from Black-Scholes %v", est.Call, bsCall)
	}
	if !almostEqual(est.Put, bsPut, 0.15) {
		t.Errorf("put estimate %v too far from Black-Scholes %v", est.Put, bsPut)
	}

	if est.CallStdErr <= 0 || est.PutStdErr <= 0 {
		t.Errorf("standard errors should be positive: %v / %v", est.CallStdErr, est.PutStdErr)
	}
	if !almostEqual(est.Call, bsCall, 5*est.CallStdErr) {
		t.Errorf("call estimate %v outside 5 standard errors of %v (se %v)",
			est.Call, bsCall, est.CallStdErr)
	}
}

func TestMonteCarloSharedDrawsKeepParityTight(t *testing.T) {
	p := referenceParams()
	model, err := NewMonteCarlo(p, MonteCarloConfig{NumPaths: 100000, NumSteps: 1})
	if err != nil {
		t.Fatalf("NewMonteCarlo: %v", err)
	}
	est := model.Estimate()

	// Call and put come from the same terminal draws, so the parity gap
	// is bounded by sampling error of the mean terminal price, not by
	// two independent simulations drifting apart.
	gap := ParityGap(est.Call, est.Put, p)
	tol := 5 * (est.CallStdErr + est.PutStdErr)
	if !almostEqual(gap, 0, tol) {
		t.Errorf("parity gap %v exceeds statistical tolerance %v", gap, tol)
	}
}

func TestMonteCarloDefaultSeed(t *testing.T) {
	model, err := NewMonteCarlo(referenceParams(), MonteCarloConfig{NumPaths: 10, NumSteps: 1})
	if err != nil {
		t.Fatalf("NewMonteCarlo: %v", err)
	}
	if model.Seed() != DefaultSeed {
		t.Errorf("expected default seed %d, got %d", DefaultSeed, model.Seed())
	}
}

func TestMonteCarloInvalidConfig(t *testing.T) {
	p := referenceParams()
	var cfgErr *errors.ConfigurationError

	_, err := NewMonteCarlo(p, MonteCarloConfig{NumPaths: 0, NumSteps: 1})
	if !errors.As(err, &cfgErr) {
		t.Errorf("paths=0: expected ConfigurationError, got %v", err)
	}

	_, err = NewMonteCarlo(p, MonteCarloConfig{NumPaths: 100, NumSteps: 0})
	if !errors.As(err, &cfgErr) {
		t.Errorf("steps=0: expected ConfigurationError, got %v", err)
	}

	p.Volatility = -0.2
	_, err = NewMonteCarlo(p, MonteCarloConfig{NumPaths: 100, NumSteps: 1})
	if !errors.As(err, &cfgErr) {
		t.Errorf("negative vol: expected ConfigurationError, got %v", err)
	}
}
