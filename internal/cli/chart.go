package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/rshade/co2focus/internal/chart"
	"github.com/rshade/co2focus/internal/config"
	"github.com/rshade/co2focus/internal/projection"
	"github.com/rshade/co2focus/internal/selector"
)

type chartParams struct {
	mode   string
	year   int
	output string
}

// NewChartCmd creates the "chart" command, which prints one dashboard figure.
func NewChartCmd() *cobra.Command {
	var params chartParams

	cmd := &cobra.Command{
		Use:   "chart ID",
		Short: "Print one dashboard figure",
		Long: `Builds one of the five dashboard figures and prints it as a table of years
by trace, or as JSON/NDJSON.

Figures:
  pan-co2-reg          Panama observed and projected (uses --year)
  pan-cum-co2          Panama total (uses --mode)
  pan-decom-co2        Panama by source: cement, coal, oil (uses --mode)
  cen-am-co2           Eight countries, total (uses --mode)
  cen-am-co2-per-cap   Eight countries, per capita (Annual only)`,
		Example: `  co2focus chart pan-co2-reg --year 2040
  co2focus chart cen-am-co2 --mode Cumulative --output json`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: figureNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeChart(cmd, args[0], params)
		},
	}

	cmd.Flags().StringVar(&params.mode, "mode", selector.ModeAnnual.String(), "view mode: Annual or Cumulative")
	cmd.Flags().IntVar(&params.year, "year", 0, "projection target year (default from configuration)")
	addOutputFlag(cmd, &params.output)

	return cmd
}

func executeChart(cmd *cobra.Command, name string, params chartParams) error {
	id, err := chart.ParseID(name)
	if err != nil {
		return err
	}
	format, err := resolveFormat(params.output)
	if err != nil {
		return err
	}
	mode, err := selector.ParseViewMode(params.mode)
	if err != nil {
		return err
	}

	state, err := loadState(cmd)
	if err != nil {
		return err
	}

	fig, err := state.Figure(cmd.Context(), chart.Request{ID: id, Mode: mode, Year: params.year})
	var unavailable *projection.ModelUnavailableError
	if err != nil && !errors.As(err, &unavailable) {
		return err
	}

	// The empty-state figure is still printed before reporting the missing model.
	if renderErr := chart.Render(cmd.OutOrStdout(), format, fig, config.GetOutputPrecision()); renderErr != nil {
		return renderErr
	}
	return err
}

func figureNames() []string {
	ids := chart.IDs()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
