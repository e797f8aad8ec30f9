package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/co2focus/internal/config"
	"github.com/rshade/co2focus/internal/tui"
)

// ErrNotInteractive is returned by the dashboard command without a terminal.
var ErrNotInteractive = errors.New("dashboard requires an interactive terminal; use 'co2focus chart' instead")

// NewDashboardCmd creates the "dashboard" command, the interactive terminal UI.
func NewDashboardCmd() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive terminal dashboard",
		Long: `Shows the five figures as tables. tab/shift+tab switches figure, +/- moves
the projection target year, m toggles Annual/Cumulative for the current figure,
q quits.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !isTerminal(os.Stdout) || !isTerminal(os.Stdin) {
				return ErrNotInteractive
			}
			state, err := loadState(cmd)
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), state, tui.Options{
				Year:      year,
				Precision: config.GetOutputPrecision(),
			})
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "initial projection target year (default from configuration)")
	return cmd
}
