package export_test

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rshade/co2focus/internal/chart"
	"github.com/rshade/co2focus/internal/dashboard"
	"github.com/rshade/co2focus/internal/dataset/datasettest"
	"github.com/rshade/co2focus/internal/export"
	"github.com/rshade/co2focus/internal/projection"
	"github.com/rshade/co2focus/internal/projection/projectiontest"
	"github.com/rshade/co2focus/internal/selector"
)

func openWorkbook(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, sheet, ref string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, ref, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func number(t *testing.T, f *excelize.File, sheet, ref string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(cell(t, f, sheet, ref), 64)
	require.NoError(t, err, "cell %s!%s", sheet, ref)
	return v
}

func TestWriteWorkbook(t *testing.T) {
	state := dashboard.NewAppStateFrom(datasettest.LoadSample(t), projectiontest.SampleModel(), nil)
	path := filepath.Join(t.TempDir(), "out", "co2.xlsx")

	res, err := export.WriteWorkbook(context.Background(), state, path, export.Selection{Year: 2030})
	require.NoError(t, err)
	assert.Empty(t, res.Failed)
	assert.Equal(t, path, res.Path)

	f := openWorkbook(t, path)
	assert.Equal(t, []string{
		export.SummarySheet,
		"pan-co2-reg", "pan-cum-co2", "pan-decom-co2", "cen-am-co2", "cen-am-co2-per-cap",
	}, f.GetSheetList())
	assert.Equal(t, res.Sheets, f.GetSheetList())

	t.Run("regression sheet", func(t *testing.T) {
		sheet := string(chart.FigureRegression)
		assert.Equal(t, "Year", cell(t, f, sheet, "A1"))
		assert.Equal(t, "Panama (observed)", cell(t, f, sheet, "B1"))
		assert.Equal(t, "Panama (projected)", cell(t, f, sheet, "C1"))

		// 2014..2020 observed, then 2021..2030 projected.
		assert.Equal(t, "2014", cell(t, f, sheet, "A2"))
		assert.InDelta(t, 25.0, number(t, f, sheet, "B2"), 1e-9)
		assert.Empty(t, cell(t, f, sheet, "C2"))
		assert.Equal(t, "2021", cell(t, f, sheet, "A9"))
		assert.Empty(t, cell(t, f, sheet, "B9"))
		assert.InDelta(t, 25.8666666667, number(t, f, sheet, "C9"), 1e-6)
		assert.Equal(t, "2030", cell(t, f, sheet, "A18"))

		// Meta starts after one blank row, sorted by key.
		assert.Empty(t, cell(t, f, sheet, "A19"))
		assert.Equal(t, chart.MetaEquivalency, cell(t, f, sheet, "A20"))
	})

	t.Run("sources keep coal gaps filled", func(t *testing.T) {
		sheet := string(chart.FigurePanamaSources)
		assert.Equal(t, "Coal", cell(t, f, sheet, "C1"))
		assert.InDelta(t, 2.6, number(t, f, sheet, "C3"), 1e-9)
	})

	t.Run("summary", func(t *testing.T) {
		assert.Equal(t, "2030", cell(t, f, export.SummarySheet, "B3"))
		assert.Equal(t, "Figure", cell(t, f, export.SummarySheet, "A6"))
		assert.Equal(t, "pan-co2-reg", cell(t, f, export.SummarySheet, "A7"))
		assert.Equal(t, "ok", cell(t, f, export.SummarySheet, "E7"))
	})
}

func TestWriteWorkbook_PartialFailures(t *testing.T) {
	modelErr := &projection.ModelUnavailableError{Path: "model.pb", Err: errors.New("missing")}
	state := dashboard.NewAppStateFrom(datasettest.LoadSample(t), nil, modelErr)
	path := filepath.Join(t.TempDir(), "co2.xlsx")

	res, err := export.WriteWorkbook(context.Background(), state, path, export.Selection{
		Year: 2030,
		Mode: selector.ModeCumulative,
	})
	require.NoError(t, err)

	require.Len(t, res.Failed, 2)
	assert.ErrorAs(t, res.Failed[chart.FigureRegression], new(*projection.ModelUnavailableError))
	assert.ErrorIs(t, res.Failed[chart.FigureRegionPerCapita], selector.ErrNoCumulativeVariant)

	f := openWorkbook(t, path)
	assert.Len(t, f.GetSheetList(), 6)
	assert.Equal(t, "unavailable", cell(t, f, string(chart.FigureRegression), "A1"))
	assert.Contains(t, cell(t, f, string(chart.FigureRegression), "B1"), "model.pb")
	assert.InDelta(t, 300.0, number(t, f, string(chart.FigurePanamaCO2), "B2"), 1e-9)
}

func TestWriteWorkbook_PerFigureModes(t *testing.T) {
	state := dashboard.NewAppStateFrom(datasettest.LoadSample(t), projectiontest.SampleModel(), nil)
	path := filepath.Join(t.TempDir(), "co2.xlsx")

	res, err := export.WriteWorkbook(context.Background(), state, path, export.Selection{
		Mode:  selector.ModeCumulative,
		Modes: map[chart.ID]selector.ViewMode{chart.FigureRegionPerCapita: selector.ModeAnnual},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Failed)

	f := openWorkbook(t, path)
	assert.Equal(t, "Cumulative", cell(t, f, export.SummarySheet, "C8"))
	assert.Equal(t, "Annual", cell(t, f, export.SummarySheet, "C11"))
}

func TestWriteWorkbook_Cancelled(t *testing.T) {
	state := dashboard.NewAppStateFrom(datasettest.LoadSample(t), projectiontest.SampleModel(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := export.WriteWorkbook(ctx, state, filepath.Join(t.TempDir(), "co2.xlsx"), export.Selection{})
	assert.ErrorIs(t, err, context.Canceled)
}
