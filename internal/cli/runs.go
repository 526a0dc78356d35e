package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"optpricer/internal/store"
	"optpricer/pkg/utils"
)

func newRunsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List journaled pricing runs",
		Example: `  optpricer runs
  optpricer runs --model monte-carlo --limit 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if app.Store == nil {
				output.Error("Store not available")
				return nil
			}

			symbol, _ := cmd.Flags().GetString("symbol")
			model, _ := cmd.Flags().GetString("model")
			limit, _ := cmd.Flags().GetInt("limit")

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			runs, err := app.Store.GetRuns(ctx, store.RunFilter{
				Symbol: symbol,
				Model:  model,
				Limit:  limit,
			})
			if err != nil {
				output.Error("Failed to query runs: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(runs)
			}

			if len(runs) == 0 {
				output.Dim("No pricing runs journaled yet")
				return nil
			}

			output.Bold("Pricing runs")
			output.Dim("  %-20s %-14s %-9s %-8s %10s %10s %10s",
				"Time", "Model", "Style", "Symbol", "Strike", "Call", "Put")
			for _, r := range runs {
				style := r.Style
				if style == "" {
					style = "-"
				}
				symbol := r.Symbol
				if symbol == "" {
					symbol = "-"
				}
				output.Printf("  %-20s %-14s %-9s %-8s %10s %10s %10s\n",
					r.Timestamp.Local().Format("2006-01-02 15:04:05"),
					r.Model, style, symbol,
					utils.FormatMoney(r.Strike),
					utils.FormatMoney(r.Call),
					utils.FormatMoney(r.Put))
			}
			return nil
		},
	}

	cmd.Flags().String("symbol", "", "filter by symbol")
	cmd.Flags().String("model", "", "filter by model")
	cmd.Flags().Int("limit", 20, "maximum rows")
	return cmd
}
