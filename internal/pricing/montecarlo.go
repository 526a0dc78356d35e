package pricing

import (
	"math"
	"math/rand"
	"runtime"
	"sync"

	"optpricer/internal/errors"
)

// DefaultSeed is the documented seed for reproducible simulations.
const DefaultSeed int64 = 120

// pathChunk is the number of paths handled per sub-stream. The chunk
// size is fixed independently of the worker count so the partition of
// the random stream, and therefore the aggregate price, is identical
// at any degree of parallelism.
const pathChunk = 4096

// MonteCarloConfig holds the simulation-specific extras.
type MonteCarloConfig struct {
	NumPaths int
	NumSteps int
	Seed     int64 // 0 selects DefaultSeed
	Workers  int   // 0 selects GOMAXPROCS
}

// MonteCarlo prices a European option by averaging discounted payoffs
// over simulated terminal prices of a geometric Brownian motion. The
// generator is re-seeded at the start of every pricing pass, so two
// instances with identical parameters and seed produce bit-identical
// prices, and call and put derive from the same terminal-price draws.
type MonteCarlo struct {
	params   Parameters
	numPaths int
	numSteps int
	seed     int64
	workers  int
}

// Estimate carries the simulated prices together with the standard
// error of each estimate. The standard errors are diagnostics: a small
// path count gives a noisy estimate, not a wrong one.
type Estimate struct {
	Call       float64
	Put        float64
	CallStdErr float64
	PutStdErr  float64
	NumPaths   int
}

// NewMonteCarlo validates parameters and simulation extras. Path and
// step counts below one are configuration errors surfaced here, not at
// pricing time.
func NewMonteCarlo(p Parameters, cfg MonteCarloConfig) (*MonteCarlo, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if cfg.NumPaths < 1 {
		return nil, errors.NewConfigurationError("num_paths", cfg.NumPaths, "must be at least 1")
	}
	if cfg.NumSteps < 1 {
		return nil, errors.NewConfigurationError("num_steps", cfg.NumSteps, "must be at least 1")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = DefaultSeed
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &MonteCarlo{
		params:   p,
		numPaths: cfg.NumPaths,
		numSteps: cfg.NumSteps,
		seed:     seed,
		workers:  workers,
	}, nil
}

// Seed returns the effective seed, exposed for display diagnostics.
func (m *MonteCarlo) Seed() int64 { return m.seed }

// PriceCall simulates a fresh pricing pass and returns the discounted
// mean call payoff.
func (m *MonteCarlo) PriceCall() (float64, error) {
	return m.Estimate().Call, nil
}

// PricePut simulates a fresh pricing pass and returns the discounted
// mean put payoff.
func (m *MonteCarlo) PricePut() (float64, error) {
	return m.Estimate().Put, nil
}

type pathSums struct {
	call   float64
	callSq float64
	put    float64
	putSq  float64
}

// Estimate runs one full simulation pass and returns call and put
// prices with their standard errors. Each path advances the spot by
// the exact discretized GBM transition
//
//	S(t+dt) = S(t) * exp((r - c - sigma^2/2)*dt + sigma*sqrt(dt)*Z)
//
// and both payoffs are taken from the same terminal price.
func (m *MonteCarlo) Estimate() *Estimate {
	p := m.params
	dt := p.Maturity / float64(m.numSteps)
	drift := (p.Rate - p.CostOfCarry - 0.5*p.Volatility*p.Volatility) * dt
	diffusion := p.Volatility * math.Sqrt(dt)
	discount := math.Exp(-p.Rate * p.Maturity)

	numChunks := (m.numPaths + pathChunk - 1) / pathChunk
	partials := make([]pathSums, numChunks)

	workers := m.workers
	if workers > numChunks {
		workers = numChunks
	}

	chunks := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ci := range chunks {
				rng := rand.New(rand.NewSource(subSeed(m.seed, ci)))
				start := ci * pathChunk
				end := start + pathChunk
				if end > m.numPaths {
					end = m.numPaths
				}

				var sums pathSums
				for i := start; i < end; i++ {
					s := p.Spot
					for step := 0; step < m.numSteps; step++ {
						s *= math.Exp(drift + diffusion*rng.NormFloat64())
					}
					call := discount * math.Max(s-p.Strike, 0)
					put := discount * math.Max(p.Strike-s, 0)
					sums.call += call
					sums.callSq += call * call
					sums.put += put
					sums.putSq += put * put
				}
				partials[ci] = sums
			}
		}()
	}
	for ci := 0; ci < numChunks; ci++ {
		chunks <- ci
	}
	close(chunks)
	wg.Wait()

	// Reduce in chunk order so the summation order never depends on
	// goroutine scheduling.
	var total pathSums
	for _, sums := range partials {
		total.call += sums.call
		total.callSq += sums.callSq
		total.put += sums.put
		total.putSq += sums.putSq
	}

	n := float64(m.numPaths)
	return &Estimate{
		Call:       total.call / n,
		Put:        total.put / n,
		CallStdErr: stdError(total.call, total.callSq, m.numPaths),
		PutStdErr:  stdError(total.put, total.putSq, m.numPaths),
		NumPaths:   m.numPaths,
	}
}

// subSeed derives the seed for one chunk's sub-stream.
func subSeed(seed int64, chunk int) int64 {
	return seed ^ (int64(chunk)+1)*0x5851F42D4C957F2D
}

// stdError returns the standard error of the sample mean.
func stdError(sum, sumSq float64, n int) float64 {
	if n < 2 {
		return 0
	}
	nf := float64(n)
	mean := sum / nf
	variance := (sumSq - nf*mean*mean) / (nf - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance / nf)
}
