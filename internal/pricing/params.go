package pricing

import (
	"optpricer/internal/errors"
)

// Parameters holds the shared contract inputs every valuation model
// consumes. Maturity is expressed in years; the caller performs any
// date arithmetic before constructing a model.
type Parameters struct {
	Spot        float64 // current price of the underlying, S > 0
	Strike      float64 // contract strike, K > 0
	Maturity    float64 // time to expiry in years, T > 0
	Rate        float64 // continuously-compounded risk-free rate
	CostOfCarry float64 // continuous dividend/carry rate, default 0
	Volatility  float64 // annualized volatility, sigma > 0
}

// Validate checks the structural invariants. It returns a
// *errors.ConfigurationError for the first violated field.
func (p Parameters) Validate() error {
	if p.Spot <= 0 {
		return errors.NewConfigurationError("spot", p.Spot, "must be positive")
	}
	if p.Strike <= 0 {
		return errors.NewConfigurationError("strike", p.Strike, "must be positive")
	}
	if p.Maturity <= 0 {
		return errors.NewConfigurationError("maturity", p.Maturity, "must be positive")
	}
	if p.Volatility <= 0 {
		return errors.NewConfigurationError("volatility", p.Volatility, "must be positive")
	}
	return nil
}
