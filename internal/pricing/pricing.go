// Package pricing implements option valuation models.
//
// Three independent models share the same two-method contract: a
// closed-form Black-Scholes model, a Monte Carlo simulation model and
// a binomial lattice model. Each is constructed fresh per pricing
// request from a common Parameters value and is immutable afterwards,
// so instances are safe to use from the goroutine that owns them
// without locking.
package pricing

import (
	"math"

	"optpricer/internal/errors"
)

// Model is the common contract every valuation model implements.
// Both methods return a non-negative price and are free of side
// effects; repeated calls on the same instance yield the same result.
type Model interface {
	PriceCall() (float64, error)
	PricePut() (float64, error)
}

// Style selects the exercise convention for models that support both.
type Style string

const (
	// StyleEuropean options are exercisable only at expiry.
	StyleEuropean Style = "european"
	// StyleAmerican options are exercisable at or before expiry.
	StyleAmerican Style = "american"
)

// ParseStyle parses a style string, case-sensitively matching the two
// accepted variants.
func ParseStyle(s string) (Style, error) {
	switch Style(s) {
	case StyleEuropean:
		return StyleEuropean, nil
	case StyleAmerican:
		return StyleAmerican, nil
	}
	return "", errors.NewConfigurationError("style", s, "must be european or american")
}

// Kind identifies a valuation model at the orchestration boundary.
type Kind string

const (
	KindBlackScholes Kind = "black-scholes"
	KindMonteCarlo   Kind = "monte-carlo"
	KindBinomial     Kind = "binomial"
)

// ParityGap returns call - put - (S*e^(-cT) - K*e^(-rT)), the residual
// of the European put-call parity relation. Zero within floating-point
// tolerance for exact European prices.
func ParityGap(call, put float64, p Parameters) float64 {
	forward := p.Spot*math.Exp(-p.CostOfCarry*p.Maturity) - p.Strike*math.Exp(-p.Rate*p.Maturity)
	return call - put - forward
}

// normCdf is the standard normal cumulative distribution function.
func normCdf(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}
