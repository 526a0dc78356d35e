package pricing

import (
	"math"

	"optpricer/internal/errors"
)

// Binomial prices an option on a recombining Cox-Ross-Rubinstein
// lattice. It supports both exercise styles: European and American
// share the same forward lattice and differ only in the backward
// induction step, where the American variant floors every node at its
// immediate-exercise intrinsic value.
type Binomial struct {
	params   Parameters
	numSteps int
	style    Style
	dt       float64
	up       float64
	down     float64
	q        float64
}

// NewBinomial validates the parameters and precomputes the CRR factors
//
//	u = e^(sigma*sqrt(dt)),  d = 1/u,  q = (e^((r-c)*dt) - d) / (u - d).
//
// A step count below one is a configuration error; u == d (sigma -> 0)
// makes q singular and fails with a *errors.DomainError.
func NewBinomial(p Parameters, numSteps int, style Style) (*Binomial, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if numSteps < 1 {
		return nil, errors.NewConfigurationError("num_steps", numSteps, "must be at least 1")
	}
	if style != StyleEuropean && style != StyleAmerican {
		return nil, errors.NewConfigurationError("style", string(style), "must be european or american")
	}

	dt := p.Maturity / float64(numSteps)
	up := math.Exp(p.Volatility * math.Sqrt(dt))
	down := 1 / up
	if up == down {
		return nil, errors.NewDomainError("binomial", "u-d", "vanishes, risk-neutral probability is singular")
	}
	q := (math.Exp((p.Rate-p.CostOfCarry)*dt) - down) / (up - down)

	return &Binomial{
		params:   p,
		numSteps: numSteps,
		style:    style,
		dt:       dt,
		up:       up,
		down:     down,
		q:        q,
	}, nil
}

// Up returns the up factor, exposed for display diagnostics.
func (m *Binomial) Up() float64 { return m.up }

// Down returns the down factor, exposed for display diagnostics.
func (m *Binomial) Down() float64 { return m.down }

// RiskNeutralProb returns the risk-neutral up-probability q.
func (m *Binomial) RiskNeutralProb() float64 { return m.q }

// DeltaT returns the step length in years.
func (m *Binomial) DeltaT() float64 { return m.dt }

// PriceCall runs backward induction over call payoffs.
func (m *Binomial) PriceCall() (float64, error) {
	return m.price(true), nil
}

// PricePut runs backward induction over put payoffs.
func (m *Binomial) PricePut() (float64, error) {
	return m.price(false), nil
}

// price performs the backward induction. The lattice recombines, so a
// single flat slice of at most numSteps+1 node values suffices: entry
// j at depth n holds the value for j up-moves and n-j down-moves, and
// each sweep shrinks the live prefix by one.
func (m *Binomial) price(isCall bool) float64 {
	p := m.params
	n := m.numSteps

	payoff := func(s float64) float64 {
		if isCall {
			return math.Max(s-p.Strike, 0)
		}
		return math.Max(p.Strike-s, 0)
	}

	// Terminal asset prices S*u^j*d^(n-j) for j = 0..n.
	values := make([]float64, n+1)
	s := p.Spot * math.Pow(m.down, float64(n))
	ratio := m.up / m.down
	for j := 0; j <= n; j++ {
		values[j] = payoff(s)
		s *= ratio
	}

	discount := math.Exp(-p.Rate * m.dt)
	american := m.style == StyleAmerican

	for depth := n - 1; depth >= 0; depth-- {
		s := p.Spot * math.Pow(m.down, float64(depth))
		for j := 0; j <= depth; j++ {
			continuation := discount * (m.q*values[j+1] + (1-m.q)*values[j])
			if american {
				continuation = math.Max(continuation, payoff(s))
			}
			values[j] = continuation
			s *= ratio
		}
	}
	return values[0]
}
