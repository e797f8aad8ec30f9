package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/co2focus/internal/chart"
	"github.com/rshade/co2focus/internal/config"
	"github.com/rshade/co2focus/internal/dataset"
	"github.com/rshade/co2focus/internal/selector"
)

type seriesParams struct {
	country     string
	field       string
	mode        string
	interpolate bool
	output      string
}

// NewSeriesCmd creates the "series" command, which prints one country's
// column in the requested view mode.
func NewSeriesCmd() *cobra.Command {
	var params seriesParams

	cmd := &cobra.Command{
		Use:   "series",
		Short: "Print one country's emissions series",
		Long: `Prints the yearly values of an annual field for one of the eight countries.
In Cumulative mode the field's running-total column is shown instead;
co2_per_capita has no running total. --interpolate fills interior gaps
with a local quadratic fit.`,
		Example: `  # Panama's coal emissions with gaps filled
  co2focus series --field coal_co2 --interpolate

  # Mexico's cumulative oil emissions
  co2focus series --country MEX --field oil_co2 --mode Cumulative`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeSeries(cmd, params)
		},
	}

	cmd.Flags().StringVar(&params.country, "country", dataset.CodePanama, "ISO 3166-1 alpha-3 country code")
	cmd.Flags().StringVar(&params.field, "field", dataset.FieldCO2.Column(), "annual field name")
	cmd.Flags().StringVar(&params.mode, "mode", selector.ModeAnnual.String(), "view mode: Annual or Cumulative")
	cmd.Flags().BoolVar(&params.interpolate, "interpolate", false, "fill interior gaps with a quadratic fit")
	addOutputFlag(cmd, &params.output)

	return cmd
}

func executeSeries(cmd *cobra.Command, params seriesParams) error {
	format, err := resolveFormat(params.output)
	if err != nil {
		return err
	}
	mode, err := selector.ParseViewMode(params.mode)
	if err != nil {
		return err
	}
	field, err := dataset.ParseField(params.field)
	if err != nil {
		return err
	}

	state, err := loadState(cmd)
	if err != nil {
		return err
	}

	col, err := state.Series(params.country, field, mode, params.interpolate)
	if err != nil {
		return err
	}

	name := dataset.CountryName(params.country)
	fig := chart.Figure{
		Title:  name + ": " + col.Field.Column(),
		XLabel: "Year",
		YLabel: col.Field.Column(),
		Mode:   mode.String(),
		Traces: []chart.Trace{{
			Name:  name,
			Kind:  chart.KindObserved,
			Field: col.Field.Column(),
			X:     col.Years,
			Y:     chart.Values(col.Values),
		}},
	}
	if params.interpolate {
		fig.Title += " (gaps filled)"
	}

	return chart.Render(cmd.OutOrStdout(), format, fig, config.GetOutputPrecision())
}
