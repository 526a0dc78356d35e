package main

import (
	"fmt"
	"os"

	"optpricer/internal/cli"
	"optpricer/internal/config"
	"optpricer/internal/logging"
)

func main() {
	// Peek at --config before cobra parses flags, the config feeds the
	// command construction itself.
	configDir := ""
	for i, arg := range os.Args {
		if arg == "--config" && i+1 < len(os.Args) {
			configDir = os.Args[i+1]
		}
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "optpricer: %v\n", err)
		os.Exit(1)
	}

	logCfg := logging.DefaultLogConfig()
	logCfg.Console = false
	logCfg.FilePath = config.LogPath(configDir)
	logger := logging.NewLoggerWithConfig(logCfg)

	rootCmd := cli.NewRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
