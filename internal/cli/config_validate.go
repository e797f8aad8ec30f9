package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/co2focus/internal/cache"
	"github.com/rshade/co2focus/internal/config"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the configuration file and environment overrides for syntax and
semantic correctness: data paths, projection year range, output format and
precision, log level, cache TTL and server timeouts.`,
		Example: `  # Validate current configuration
  co2focus config validate

  # Validate and show detailed information
  co2focus config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate loads the configuration fresh so parse errors are reported
// instead of silently replaced by defaults.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cmd.Printf("✅ Configuration is valid\n")

	if verbose {
		printVerboseDetails(cmd, cfg)
	}

	return nil
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Config file: %s\n", cfg.Path())
	cmd.Printf("  Dataset: %s\n", cfg.Data.CSVPath)
	cmd.Printf("  Model: %s\n", cfg.Data.ModelPath)
	cmd.Printf("  Projection: from %d, target %d within [%d, %d]\n",
		cfg.Projection.FromYear, cfg.Projection.DefaultYear, cfg.Projection.MinYear, cfg.Projection.MaxYear)
	cmd.Printf("  Output format: %s\n", cfg.Output.DefaultFormat)
	cmd.Printf("  Output precision: %d\n", cfg.Output.Precision)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	cmd.Printf("  Log file: %s\n", cfg.Logging.File)
	if cfg.Cache.Enabled {
		ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
		cmd.Printf("  Cache: %s (ttl %s)\n", cfg.Cache.Directory, cache.FormatDuration(ttl))
	} else {
		cmd.Println("  Cache: disabled")
	}
	cmd.Printf("  Server: %s\n", cfg.Server.Addr)
}
