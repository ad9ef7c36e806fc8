package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/ar_furniture/pkg/config"
	"github.com/Skotchmaster/ar_furniture/pkg/logging"
)

var rootCmd = &cobra.Command{
	Use:   "ar-furniture",
	Short: "Backend for the AR furniture storefront",
	Long: `Backend for the AR furniture storefront. Without a subcommand it starts the HTTP server.

	ar-furniture serve
	ar-furniture migrate
	ar-furniture create-admin --username root --password secret
`,
	SilenceUsage: true,
	RunE:         runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration and installs the process logger.
func setup() (config.Config, *slog.Logger) {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	return cfg, logger
}
