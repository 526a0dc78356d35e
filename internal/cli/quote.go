package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"optpricer/internal/logging"
	"optpricer/internal/quote"
	"optpricer/pkg/utils"
)

func newQuoteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote <symbol>",
		Short: "Fetch spot price and historical volatility for a ticker",
		Long: `Fetch the latest close and a daily price history for a ticker.

The history feeds the annualized volatility estimate used as the
default --vol for pricing commands; it is never consumed by a pricing
computation directly.`,
		Example: `  optpricer quote AAPL
  optpricer quote MSFT --bars 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			symbol := strings.ToUpper(args[0])
			barsToShow, _ := cmd.Flags().GetInt("bars")

			start := time.Now()
			q, err := utils.RetryWithResult(ctx, utils.DefaultRetryConfig(), func() (*quote.Quote, error) {
				return app.Provider.GetQuote(ctx, symbol)
			})
			logging.LogQuoteFetch(app.Logger, symbol, 0, 0, time.Since(start), err)
			if err != nil {
				output.Error("Failed to fetch quote: %v", err)
				return err
			}

			bars, err := app.historyFor(ctx, symbol)
			if err != nil {
				output.Error("Failed to fetch history: %v", err)
				return err
			}
			vol := quote.AnnualizedVolatility(bars)

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol":     symbol,
					"price":      q.Price,
					"time":       q.Time,
					"volatility": vol,
					"bars":       len(bars),
				})
			}

			output.Bold("%s", symbol)
			output.Printf("  Last close:      %s\n", output.Green(utils.FormatMoney(q.Price)))
			output.Printf("  Annualized vol:  %s\n", utils.FormatPercent(vol))
			output.Printf("  History:         %s bars\n", utils.FormatCount(len(bars)))

			if barsToShow > 0 {
				if barsToShow > len(bars) {
					barsToShow = len(bars)
				}
				output.Println()
				output.Dim("  %-12s %s", "Date", "Close")
				for _, bar := range bars[len(bars)-barsToShow:] {
					output.Printf("  %-12s %s\n", bar.Date.Format("2006-01-02"), utils.FormatMoney(bar.Close))
				}
			}
			return nil
		},
	}

	cmd.Flags().Int("bars", 0, "show the last N daily closes")
	return cmd
}
