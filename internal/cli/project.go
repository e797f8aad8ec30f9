package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/co2focus/internal/chart"
	"github.com/rshade/co2focus/internal/config"
	"github.com/rshade/co2focus/internal/projection"
)

type projectParams struct {
	to     int
	from   int
	output string
}

// NewProjectCmd creates the "project" command, which prints Panama's projected
// annual CO₂ emissions from the start year to the target year.
func NewProjectCmd() *cobra.Command {
	var params projectParams

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project Panama's annual CO₂ emissions",
		Long: `Evaluates the frozen linear regression for every year from the start year
(2021 by default) to the target year. The target year must lie within the
configured projection range, 2021-2050 by default.`,
		Example: `  # Projection to the configured default year
  co2focus project

  # Projection to 2050 as JSON
  co2focus project --to 2050 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeProject(cmd, params)
		},
	}

	cmd.Flags().IntVar(&params.to, "to", 0, "target year (default from configuration)")
	cmd.Flags().IntVar(&params.from, "from", 0, "first projected year (default from configuration)")
	addOutputFlag(cmd, &params.output)

	return cmd
}

func executeProject(cmd *cobra.Command, params projectParams) error {
	format, err := resolveFormat(params.output)
	if err != nil {
		return err
	}

	state, err := loadState(cmd)
	if err != nil {
		return err
	}

	to := params.to
	if to == 0 {
		to = state.DefaultYear
	}
	b := state.Builder()
	if params.from != 0 {
		if err := projection.ValidateRange(params.from, to); err != nil {
			return err
		}
		b.FromYear = params.from
	}

	fig, err := b.Regression(to)
	if err != nil {
		return err
	}
	fig = projectionOnly(fig)

	return chart.Render(cmd.OutOrStdout(), format, fig, config.GetOutputPrecision())
}

// projectionOnly drops the observed trace from a regression figure.
func projectionOnly(fig chart.Figure) chart.Figure {
	traces := make([]chart.Trace, 0, 1)
	for _, t := range fig.Traces {
		if t.Kind == chart.KindProjected {
			traces = append(traces, t)
		}
	}
	fig.Traces = traces
	fig.Title = "Panama: projected annual CO₂ emissions"
	return fig
}
