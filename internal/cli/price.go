package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"optpricer/internal/config"
	"optpricer/internal/logging"
	"optpricer/internal/pricing"
	"optpricer/internal/quote"
	"optpricer/internal/store"
	"optpricer/pkg/utils"
)

func newPriceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price an option contract",
		Long: `Price a call and a put on the same contract under one of three models.

Each model consumes the same contract parameters; the Monte Carlo and
binomial models take extra knobs for simulation size and lattice depth.`,
	}

	cmd.AddCommand(newPriceBSCmd(app))
	cmd.AddCommand(newPriceMCCmd(app))
	cmd.AddCommand(newPriceTreeCmd(app))

	return cmd
}

// addContractFlags registers the parameter flags shared by all models.
func addContractFlags(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().String("symbol", "", "ticker to fetch spot (and a default vol) from")
	cmd.Flags().Float64("spot", 0, "spot price of the underlying")
	cmd.Flags().Float64("strike", 0, "strike price (required)")
	cmd.Flags().String("expiry", "", "expiry date (YYYY-MM-DD)")
	cmd.Flags().Float64("maturity", 0, "time to expiry in years (overrides --expiry)")
	cmd.Flags().Float64("rate", cfg.Pricing.Rate, "continuously-compounded risk-free rate")
	cmd.Flags().Float64("carry", cfg.Pricing.CostOfCarry, "continuous dividend/carry rate")
	cmd.Flags().Float64("vol", 0, "annualized volatility (default: historical estimate when --symbol is set)")
	cmd.MarkFlagRequired("strike")
}

// contract is a fully resolved pricing request.
type contract struct {
	params pricing.Parameters
	symbol string
	days   int // whole days to expiry when derived from --expiry, else 0
}

// resolveContract turns flags into engine parameters, fetching spot and
// a volatility estimate from the quote provider when --symbol stands in
// for --spot or --vol. All date arithmetic happens here; the engine
// only ever sees the year fraction.
func (app *App) resolveContract(cmd *cobra.Command) (*contract, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	symbol, _ := cmd.Flags().GetString("symbol")
	spot, _ := cmd.Flags().GetFloat64("spot")
	strike, _ := cmd.Flags().GetFloat64("strike")
	expiryStr, _ := cmd.Flags().GetString("expiry")
	maturity, _ := cmd.Flags().GetFloat64("maturity")
	rate, _ := cmd.Flags().GetFloat64("rate")
	carry, _ := cmd.Flags().GetFloat64("carry")
	vol, _ := cmd.Flags().GetFloat64("vol")

	c := &contract{symbol: strings.ToUpper(symbol)}

	if spot == 0 {
		if c.symbol == "" {
			return nil, fmt.Errorf("either --spot or --symbol is required")
		}
		start := time.Now()
		q, err := utils.RetryWithResult(ctx, utils.DefaultRetryConfig(), func() (*quote.Quote, error) {
			return app.Provider.GetQuote(ctx, c.symbol)
		})
		logging.LogQuoteFetch(app.Logger, c.symbol, 0, 0, time.Since(start), err)
		if err != nil {
			return nil, err
		}
		spot = q.Price
	}

	if vol == 0 {
		if c.symbol == "" {
			return nil, fmt.Errorf("either --vol or --symbol is required")
		}
		bars, err := app.historyFor(ctx, c.symbol)
		if err != nil {
			return nil, err
		}
		vol = quote.AnnualizedVolatility(bars)
		if vol == 0 {
			return nil, fmt.Errorf("could not estimate volatility for %s, pass --vol", c.symbol)
		}
	}

	if maturity == 0 {
		if expiryStr == "" {
			return nil, fmt.Errorf("either --maturity or --expiry is required")
		}
		expiry, err := time.Parse("2006-01-02", expiryStr)
		if err != nil {
			return nil, fmt.Errorf("invalid expiry date, use YYYY-MM-DD: %w", err)
		}
		maturity, c.days = quote.YearsToExpiry(expiry, time.Now())
	}

	c.params = pricing.Parameters{
		Spot:        spot,
		Strike:      strike,
		Maturity:    maturity,
		Rate:        rate,
		CostOfCarry: carry,
		Volatility:  vol,
	}
	return c, nil
}

// historyFor returns cached daily closes when fresh enough, fetching
// and re-caching otherwise.
func (app *App) historyFor(ctx context.Context, symbol string) ([]quote.Bar, error) {
	if app.Store != nil {
		fetched, err := app.Store.GetBarsFreshness(ctx, symbol)
		if err == nil && !fetched.IsZero() && time.Since(fetched) < app.Config.Quote.CacheMaxAge {
			if bars, err := app.Store.GetBars(ctx, symbol); err == nil && len(bars) > 0 {
				return bars, nil
			}
		}
	}

	bars, err := app.Provider.GetHistory(ctx, symbol, app.Config.Quote.Period)
	if err != nil {
		return nil, err
	}
	if app.Store != nil {
		if err := app.Store.SaveBars(ctx, symbol, bars); err != nil {
			app.Logger.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache history")
		}
	}
	return bars, nil
}

// priceResult is the JSON shape of one pricing run. Pointer fields are
// model-specific diagnostics, omitted where they do not apply.
type priceResult struct {
	Model       string   `json:"model"`
	Style       string   `json:"style,omitempty"`
	Symbol      string   `json:"symbol,omitempty"`
	Spot        float64  `json:"spot"`
	Strike      float64  `json:"strike"`
	Maturity    float64  `json:"maturity_years"`
	Days        int      `json:"days_to_expiry,omitempty"`
	Rate        float64  `json:"rate"`
	CostOfCarry float64  `json:"cost_of_carry"`
	Volatility  float64  `json:"volatility"`
	Call        float64  `json:"call"`
	Put         float64  `json:"put"`
	ParityGap   float64  `json:"parity_gap"`
	D1          *float64 `json:"d1,omitempty"`
	D2          *float64 `json:"d2,omitempty"`
	NumPaths    int      `json:"num_paths,omitempty"`
	NumSteps    int      `json:"num_steps,omitempty"`
	Seed        int64    `json:"seed,omitempty"`
	CallStdErr  *float64 `json:"call_std_err,omitempty"`
	PutStdErr   *float64 `json:"put_std_err,omitempty"`
	Up          *float64 `json:"up_factor,omitempty"`
	Down        *float64 `json:"down_factor,omitempty"`
	Q           *float64 `json:"risk_neutral_prob,omitempty"`
	DeltaT      *float64 `json:"delta_t,omitempty"`
}

func newResult(model string, c *contract, call, put float64) *priceResult {
	return &priceResult{
		Model:       model,
		Symbol:      c.symbol,
		Spot:        c.params.Spot,
		Strike:      c.params.Strike,
		Maturity:    c.params.Maturity,
		Days:        c.days,
		Rate:        c.params.Rate,
		CostOfCarry: c.params.CostOfCarry,
		Volatility:  c.params.Volatility,
		Call:        call,
		Put:         put,
		ParityGap:   pricing.ParityGap(call, put, c.params),
	}
}

// render prints the result, journals it and logs it.
func (app *App) render(output *Output, res *priceResult) error {
	if app.Store != nil {
		run := &store.PricingRun{
			Model:       res.Model,
			Style:       res.Style,
			Symbol:      res.Symbol,
			Spot:        res.Spot,
			Strike:      res.Strike,
			Maturity:    res.Maturity,
			Rate:        res.Rate,
			CostOfCarry: res.CostOfCarry,
			Volatility:  res.Volatility,
			NumPaths:    res.NumPaths,
			NumSteps:    res.NumSteps,
			Seed:        res.Seed,
			Call:        res.Call,
			Put:         res.Put,
			ParityGap:   res.ParityGap,
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.Store.SaveRun(ctx, run); err != nil {
			app.Logger.Warn().Err(err).Msg("Failed to journal pricing run")
		}
	}
	logging.LogPricingRun(app.Logger, res.Model, res.Spot, res.Strike, res.Maturity, res.Call, res.Put)

	if output.IsJSON() {
		return output.JSON(res)
	}

	label := res.Model
	if res.Style != "" {
		label += " (" + res.Style + ")"
	}
	output.Bold("%s", label)
	output.Printf("  Call: %s\n", output.Green(utils.FormatMoney(res.Call)))
	output.Printf("  Put:  %s\n", output.Blue(utils.FormatMoney(res.Put)))
	output.Printf("  Parity gap: %.2e\n\n", res.ParityGap)

	if res.Symbol != "" {
		output.Printf("  %-16s %s\n", "Symbol", res.Symbol)
	}
	output.Printf("  %-16s %s\n", "Spot S", utils.FormatMoney(res.Spot))
	output.Printf("  %-16s %s\n", "Strike K", utils.FormatMoney(res.Strike))
	if res.Days > 0 {
		output.Printf("  %-16s %d\n", "Days to expiry", res.Days)
	}
	output.Printf("  %-16s %.6f\n", "T (years)", res.Maturity)
	output.Printf("  %-16s %s\n", "Rate r", utils.FormatPercent(res.Rate))
	output.Printf("  %-16s %s\n", "Carry c", utils.FormatPercent(res.CostOfCarry))
	output.Printf("  %-16s %s\n", "Volatility", utils.FormatPercent(res.Volatility))

	if res.D1 != nil {
		output.Printf("  %-16s %.6f\n", "d1", *res.D1)
		output.Printf("  %-16s %.6f\n", "d2", *res.D2)
	}
	if res.NumPaths > 0 {
		output.Printf("  %-16s %s\n", "Paths", utils.FormatCount(res.NumPaths))
	}
	if res.NumSteps > 0 {
		output.Printf("  %-16s %s\n", "Steps", utils.FormatCount(res.NumSteps))
	}
	if res.Seed != 0 {
		output.Printf("  %-16s %d\n", "Seed", res.Seed)
	}
	if res.CallStdErr != nil {
		output.Printf("  %-16s %.6f / %.6f\n", "Std error C/P", *res.CallStdErr, *res.PutStdErr)
	}
	if res.Up != nil {
		output.Printf("  %-16s %.6f\n", "Up factor u", *res.Up)
		output.Printf("  %-16s %.6f\n", "Down factor d", *res.Down)
		output.Printf("  %-16s %.6f\n", "Risk-neutral q", *res.Q)
		output.Printf("  %-16s %.8f\n", "Delta t", *res.DeltaT)
	}
	return nil
}

func newPriceBSCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bs",
		Short: "Closed-form Black-Scholes pricing (European only)",
		Example: `  optpricer price bs --spot 100 --strike 100 --maturity 1 --rate 0.05 --vol 0.2
  optpricer price bs --symbol AAPL --strike 200 --expiry 2027-01-15`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			c, err := app.resolveContract(cmd)
			if err != nil {
				output.Error("%v", err)
				return err
			}

			model, err := pricing.NewBlackScholes(c.params)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			call, _ := model.PriceCall()
			put, _ := model.PricePut()

			res := newResult(string(pricing.KindBlackScholes), c, call, put)
			d1, d2 := model.D1(), model.D2()
			res.D1, res.D2 = &d1, &d2
			return app.render(output, res)
		},
	}
	addContractFlags(cmd, app.Config)
	return cmd
}

func newPriceMCCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mc",
		Short: "Monte Carlo simulation pricing (European)",
		Long: `Price by averaging discounted payoffs over simulated terminal prices.

The generator is re-seeded per pricing pass, so repeated runs with the
same seed reproduce the same prices. The reported standard errors are
statistical diagnostics: a small path count is noisy, not wrong.`,
		Example: `  optpricer price mc --spot 100 --strike 100 --maturity 1 --rate 0.05 --vol 0.2
  optpricer price mc --symbol AAPL --strike 200 --expiry 2027-01-15 --paths 100000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			c, err := app.resolveContract(cmd)
			if err != nil {
				output.Error("%v", err)
				return err
			}

			paths, _ := cmd.Flags().GetInt("paths")
			steps, _ := cmd.Flags().GetInt("steps")
			seed, _ := cmd.Flags().GetInt64("seed")

			model, err := pricing.NewMonteCarlo(c.params, pricing.MonteCarloConfig{
				NumPaths: paths,
				NumSteps: steps,
				Seed:     seed,
			})
			if err != nil {
				output.Error("%v", err)
				return err
			}
			est := model.Estimate()

			res := newResult(string(pricing.KindMonteCarlo), c, est.Call, est.Put)
			res.NumPaths = paths
			res.NumSteps = steps
			res.Seed = model.Seed()
			res.CallStdErr = &est.CallStdErr
			res.PutStdErr = &est.PutStdErr
			return app.render(output, res)
		},
	}
	addContractFlags(cmd, app.Config)
	cmd.Flags().Int("paths", app.Config.Pricing.NumPaths, "number of simulated paths")
	cmd.Flags().Int("steps", app.Config.Pricing.MCSteps, "time steps per path")
	cmd.Flags().Int64("seed", app.Config.Pricing.Seed, "random seed")
	return cmd
}

func newPriceTreeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Binomial lattice pricing (European or American)",
		Example: `  optpricer price tree --spot 100 --strike 100 --maturity 1 --rate 0.05 --vol 0.2
  optpricer price tree --symbol AAPL --strike 200 --expiry 2027-01-15 --style american --steps 500`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			c, err := app.resolveContract(cmd)
			if err != nil {
				output.Error("%v", err)
				return err
			}

			steps, _ := cmd.Flags().GetInt("steps")
			styleStr, _ := cmd.Flags().GetString("style")
			style, err := pricing.ParseStyle(styleStr)
			if err != nil {
				output.Error("%v", err)
				return err
			}

			model, err := pricing.NewBinomial(c.params, steps, style)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			call, _ := model.PriceCall()
			put, _ := model.PricePut()

			res := newResult(string(pricing.KindBinomial), c, call, put)
			res.Style = string(style)
			res.NumSteps = steps
			up, down, q, dt := model.Up(), model.Down(), model.RiskNeutralProb(), model.DeltaT()
			res.Up, res.Down, res.Q, res.DeltaT = &up, &down, &q, &dt
			return app.render(output, res)
		},
	}
	addContractFlags(cmd, app.Config)
	cmd.Flags().Int("steps", app.Config.Pricing.TreeSteps, "lattice depth")
	cmd.Flags().String("style", app.Config.Pricing.Style, "exercise style: european or american")
	return cmd
}
