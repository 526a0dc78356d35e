// Package cli provides the command-line interface for the pricing application.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"optpricer/internal/config"
	"optpricer/internal/logging"
	"optpricer/internal/quote"
	"optpricer/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Provider quote.Provider
	Store    store.DataStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	app.Provider = quote.NewYahooProvider(quote.YahooConfig{
		Endpoint: cfg.Quote.Endpoint,
		Timeout:  cfg.Quote.Timeout,
	})

	dataStore, err := store.NewSQLiteStore(config.DatabasePath(cfg.Dir))
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, journaling disabled")
	} else {
		app.Store = dataStore
	}

	rootCmd := &cobra.Command{
		Use:   "optpricer",
		Short: "Option pricing CLI",
		Long: `optpricer values a European or American option contract under three
interchangeable models: closed-form Black-Scholes, Monte Carlo
simulation, and a Cox-Ross-Rubinstein binomial lattice.

Spot price and a volatility estimate can be filled in from live market
data with --symbol, or supplied directly with --spot and --vol.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/optpricer)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newPriceCmd(app))
	rootCmd.AddCommand(newQuoteCmd(app))
	rootCmd.AddCommand(newRunsCmd(app))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("optpricer %s\n", Version)
		},
	}
}
