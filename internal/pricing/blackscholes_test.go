package pricing

import (
	"math"
	"testing"

	"optpricer/internal/errors"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// referenceParams is the classic S=100, K=100, T=1, r=0.05, sigma=0.2
// contract with known Black-Scholes prices.
func referenceParams() Parameters {
	return Parameters{
		Spot:       100,
		Strike:     100,
		Maturity:   1,
		Rate:       0.05,
		Volatility: 0.2,
	}
}

func TestBlackScholesReferenceCase(t *testing.T) {
	model, err := NewBlackScholes(referenceParams())
	if err != nil {
		t.Fatalf("NewBlackScholes: %v", err)
	}

	call, err := model.PriceCall()
	if err != nil {
		t.Fatalf("PriceCall: %v", err)
	}
	put, err := model.PricePut()
	if err != nil {
		t.Fatalf("PricePut: %v", err)
	}

	if !almostEqual(call, 10.450583572185565, 1e-9) {
		t.Errorf("call price mismatch: got %v", call)
	}
	if !almostEqual(put, 5.573526022256971, 1e-9) {
		t.Errorf("put price mismatch: got %v", put)
	}
}

func TestBlackScholesPutCallParity(t *testing.T) {
	cases := []Parameters{
		referenceParams(),
		{Spot: 120, Strike: 100, Maturity: 0.5, Rate: 0.03, Volatility: 0.35},
		{Spot: 80, Strike: 110, Maturity: 2, Rate: 0.01, CostOfCarry: 0.02, Volatility: 0.15},
		{Spot: 55.5, Strike: 60, Maturity: 0.25, Rate: 0.07, CostOfCarry: 0.01, Volatility: 0.45},
	}

	for _, p := range cases {
		model, err := NewBlackScholes(p)
		if err != nil {
			t.Fatalf("NewBlackScholes(%+v): %v", p, err)
		}
		call, _ := model.PriceCall()
		put, _ := model.PricePut()

		if gap := ParityGap(call, put, p); !almostEqual(gap, 0, 1e-6) {
			t.Errorf("parity violated for %+v: gap %v", p, gap)
		}
	}
}

func TestBlackScholesMonotoneInVolatility(t *testing.T) {
	prev := -1.0
	for _, sigma := range []float64{0.05, 0.1, 0.2, 0.4, 0.8} {
		p := referenceParams()
		p.Volatility = sigma
		model, err := NewBlackScholes(p)
		if err != nil {
			t.Fatalf("NewBlackScholes: %v", err)
		}
		call, _ := model.PriceCall()
		if call < prev {
			t.Errorf("call price decreased as sigma rose to %v: %v < %v", sigma, call, prev)
		}
		prev = call
	}
}

func TestBlackScholesMonotoneInSpot(t *testing.T) {
	prev := -1.0
	for _, spot := range []float64{60, 80, 100, 120, 150} {
		p := referenceParams()
		p.Spot = spot
		model, err := NewBlackScholes(p)
		if err != nil {
			t.Fatalf("NewBlackScholes: %v", err)
		}
		call, _ := model.PriceCall()
		if call < prev {
			t.Errorf("call price decreased as spot rose to %v: %v < %v", spot, call, prev)
		}
		prev = call
	}
}

func TestBlackScholesShortMaturityApproachesIntrinsic(t *testing.T) {
	p := Parameters{Spot: 110, Strike: 100, Maturity: 1e-6, Rate: 0.05, Volatility: 0.2}
	model, err := NewBlackScholes(p)
	if err != nil {
		t.Fatalf("NewBlackScholes: %v", err)
	}
	call, _ := model.PriceCall()
	if !almostEqual(call, 10, 1e-3) {
		t.Errorf("near-expiry call should approach intrinsic 10, got %v", call)
	}

	p.Spot = 90
	model, err = NewBlackScholes(p)
	if err != nil {
		t.Fatalf("NewBlackScholes: %v", err)
	}
	call, _ = model.PriceCall()
	if !almostEqual(call, 0, 1e-3) {
		t.Errorf("near-expiry OTM call should approach 0, got %v", call)
	}
}

func TestBlackScholesInvalidParameters(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Parameters)
	}{
		{"zero spot", func(p *Parameters) { p.Spot = 0 }},
		{"negative spot", func(p *Parameters) { p.Spot = -5 }},
		{"zero strike", func(p *Parameters) { p.Strike = 0 }},
		{"zero maturity", func(p *Parameters) { p.Maturity = 0 }},
		{"negative maturity", func(p *Parameters) { p.Maturity = -1 }},
		{"zero volatility", func(p *Parameters) { p.Volatility = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := referenceParams()
			tc.mutate(&p)
			_, err := NewBlackScholes(p)
			if err == nil {
				t.Fatal("expected an error")
			}
			var cfgErr *errors.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Errorf("expected ConfigurationError, got %T: %v", err, err)
			}
		})
	}
}

func TestBlackScholesVanishingVolTermIsDomainError(t *testing.T) {
	// Small enough that sigma*sqrt(T) underflows to zero while both
	// factors individually pass validation.
	p := referenceParams()
	p.Volatility = math.SmallestNonzeroFloat64
	p.Maturity = math.SmallestNonzeroFloat64

	_, err := NewBlackScholes(p)
	if err == nil {
		t.Fatal("expected an error")
	}
	var domErr *errors.DomainError
	if !errors.As(err, &domErr) {
		t.Errorf("expected DomainError, got %T: %v", err, err)
	}
}
