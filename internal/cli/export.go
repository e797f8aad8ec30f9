package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/co2focus/internal/chart"
	"github.com/rshade/co2focus/internal/export"
	"github.com/rshade/co2focus/internal/selector"
)

type exportParams struct {
	out  string
	year int
	mode string
}

// NewExportCmd creates the "export" command, which writes all figures to an Excel workbook.
func NewExportCmd() *cobra.Command {
	var params exportParams

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every figure to an Excel workbook",
		Long: `Builds the five figures and writes one sheet per figure, plus a summary
sheet. A figure that cannot be built (for example the projection without a
model) gets a sheet carrying the reason instead of failing the export.`,
		Example: `  co2focus export --out co2.xlsx --year 2040 --mode Cumulative`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeExport(cmd, params)
		},
	}

	cmd.Flags().StringVar(&params.out, "out", "", "workbook path (.xlsx)")
	cmd.Flags().IntVar(&params.year, "year", 0, "projection target year (default from configuration)")
	cmd.Flags().StringVar(&params.mode, "mode", selector.ModeAnnual.String(), "view mode for the mode-driven figures")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func executeExport(cmd *cobra.Command, params exportParams) error {
	mode, err := selector.ParseViewMode(params.mode)
	if err != nil {
		return err
	}

	state, err := loadState(cmd)
	if err != nil {
		return err
	}

	sel := export.Selection{Year: params.year, Mode: mode}
	// Per-capita has no running total, so it stays annual in a cumulative export.
	if mode == selector.ModeCumulative {
		sel.Modes = map[chart.ID]selector.ViewMode{chart.FigureRegionPerCapita: selector.ModeAnnual}
	}

	res, err := export.WriteWorkbook(cmd.Context(), state, params.out, sel)
	if err != nil {
		return err
	}

	cmd.Printf("Wrote %d sheets to %s\n", len(res.Sheets), res.Path)
	for _, id := range chart.IDs() {
		if ferr, ok := res.Failed[id]; ok {
			cmd.PrintErrf("Warning: %s: %v\n", id, ferr)
		}
	}
	if len(res.Failed) > 0 {
		logger.Debug().Ctx(cmd.Context()).Int("failed", len(res.Failed)).Msg("export finished with unavailable figures")
	}
	return nil
}
