package pricing

import (
	"math"

	"optpricer/internal/errors"
)

// BlackScholes prices a European option with the Black-Scholes-Merton
// closed form. It has no exercise-style parameter: American pricing is
// outside this model's contract, use Binomial for that.
type BlackScholes struct {
	params Parameters
	d1     float64
	d2     float64
}

// NewBlackScholes validates the parameters and precomputes d1 and d2.
// A vanishing sigma*sqrt(T) term would make d1 singular; rather than
// letting NaN propagate this fails with a *errors.DomainError.
func NewBlackScholes(p Parameters) (*BlackScholes, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	sigT := p.Volatility * math.Sqrt(p.Maturity)
	if sigT == 0 {
		return nil, errors.NewDomainError("black-scholes", "sigma*sqrt(T)", "vanishes, d1 is singular")
	}

	d1 := (math.Log(p.Spot/p.Strike) + (p.Rate-p.CostOfCarry+0.5*p.Volatility*p.Volatility)*p.Maturity) / sigT
	return &BlackScholes{
		params: p,
		d1:     d1,
		d2:     d1 - sigT,
	}, nil
}

// D1 returns the d1 term, exposed for display diagnostics.
func (m *BlackScholes) D1() float64 { return m.d1 }

// D2 returns the d2 term, exposed for display diagnostics.
func (m *BlackScholes) D2() float64 { return m.d2 }

// PriceCall returns S*e^(-cT)*N(d1) - K*e^(-rT)*N(d2).
func (m *BlackScholes) PriceCall() (float64, error) {
	p := m.params
	call := p.Spot*math.Exp(-p.CostOfCarry*p.Maturity)*normCdf(m.d1) -
		p.Strike*math.Exp(-p.Rate*p.Maturity)*normCdf(m.d2)
	return call, nil
}

// PricePut returns K*e^(-rT)*N(-d2) - S*e^(-cT)*N(-d1), the symmetric
// form of the parity relation put = call - S*e^(-cT) + K*e^(-rT).
func (m *BlackScholes) PricePut() (float64, error) {
	p := m.params
	put := p.Strike*math.Exp(-p.Rate*p.Maturity)*normCdf(-m.d2) -
		p.Spot*math.Exp(-p.CostOfCarry*p.Maturity)*normCdf(-m.d1)
	return put, nil
}
