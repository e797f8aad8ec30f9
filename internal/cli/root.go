// Package cli implements the co2focus command tree.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the co2focus CLI.
// It wires up logging, tracing and the subcommands.
func NewRootCmd(ver string) *cobra.Command {
	var session *logSession

	cmd := &cobra.Command{
		Use:     "co2focus",
		Short:   "CO₂ dashboard for Panama and Central America",
		Long:    "co2focus: Explore OWID CO₂ emissions for Panama and its neighbours and project Panama's emissions to 2050",
		Version: ver,
		Example: rootCmdExample,
		// Command errors are reported once by main.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			session = setupLogging(cmd)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, session)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("data", "", "path to the OWID CO₂ CSV (overrides config and CO2FOCUS_DATA)")
	cmd.PersistentFlags().String("model", "", "path to the regression model artifact (overrides config and CO2FOCUS_MODEL)")
	cmd.PersistentFlags().Bool("no-cache", false, "parse the CSV even when a cached snapshot exists")

	cmd.AddCommand(
		NewProjectCmd(), NewSeriesCmd(), NewChartCmd(),
		NewServeCmd(), NewDashboardCmd(), NewExportCmd(),
		newConfigCmd(), newCacheCmd(),
	)
	return cmd
}

const rootCmdExample = `  # Project Panama's emissions to 2035
  co2focus project --to 2035

  # Show Panama's emissions by source, cumulative
  co2focus chart pan-decom-co2 --mode Cumulative

  # Print Costa Rica's per-capita series as JSON
  co2focus series --country CRI --field co2_per_capita --output json

  # Serve the JSON API on :8050
  co2focus serve

  # Open the interactive dashboard
  co2focus dashboard

  # Export every figure to a workbook
  co2focus export --out co2.xlsx --year 2040`

// newConfigCmd creates the config command group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigValidateCmd())
	return cmd
}
