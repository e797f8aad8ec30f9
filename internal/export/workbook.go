// Package export writes the dashboard figures to an Excel workbook.
package export

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/co2focus/internal/chart"
	"github.com/rshade/co2focus/internal/dashboard"
	"github.com/rshade/co2focus/internal/logging"
	"github.com/rshade/co2focus/internal/selector"
	"github.com/rshade/co2focus/pkg/version"
)

// SummarySheet is the first sheet of every workbook.
const SummarySheet = "Summary"

const (
	yearColumnWidth  = 8
	traceColumnWidth = 22
	labelColumnWidth = 28
)

// Selection picks the inputs for each figure. Mode applies to every
// mode-driven figure not named in Modes; zero values mean the defaults.
type Selection struct {
	Year  int
	Mode  selector.ViewMode
	Modes map[chart.ID]selector.ViewMode
}

func (s Selection) request(id chart.ID) chart.Request {
	req := chart.Request{ID: id, Year: s.Year, Mode: s.Mode}
	if m, ok := s.Modes[id]; ok {
		req.Mode = m
	}
	return req
}

// Result describes a written workbook.
type Result struct {
	Path   string
	Sheets []string
	// Failed holds the figures that could not be built; each still gets a sheet
	// carrying the error.
	Failed map[chart.ID]error
}

type built struct {
	fig chart.Figure
	err error
}

// WriteWorkbook builds the five figures concurrently and saves them to path,
// one sheet per figure behind a summary sheet. A figure that fails to build
// does not fail the export.
func WriteWorkbook(ctx context.Context, state *dashboard.AppState, path string, sel Selection) (Result, error) {
	log := logging.FromContext(ctx)
	start := time.Now()

	ids := chart.IDs()
	figures := make([]built, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fig, err := state.Figure(gctx, sel.request(id))
			figures[i] = built{fig: fig, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	f := excelize.NewFile()
	defer f.Close()

	res := Result{Path: path, Failed: map[chart.ID]error{}}
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return Result{}, err
	}
	res.Sheets = append(res.Sheets, SummarySheet)

	for i, id := range ids {
		b := figures[i]
		if b.fig.ID == "" {
			b.fig.ID = id
		}
		if b.err != nil {
			res.Failed[id] = b.err
		}
		if err := writeFigureSheet(f, string(id), b); err != nil {
			return Result{}, fmt.Errorf("writing sheet %s: %w", id, err)
		}
		res.Sheets = append(res.Sheets, string(id))
	}

	if err := writeSummary(f, state, sel, ids, figures); err != nil {
		return Result{}, fmt.Errorf("writing summary: %w", err)
	}
	f.SetActiveSheet(0)

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return Result{}, err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return Result{}, fmt.Errorf("saving workbook: %w", err)
	}

	log.Info().Ctx(ctx).
		Str(logging.FieldComponent, "export").
		Str(logging.FieldOperation, "write_workbook").
		Str("path", path).
		Int("sheets", len(res.Sheets)).
		Int("failed", len(res.Failed)).
		Dur("duration_ms", time.Since(start)).
		Msg("workbook written")

	return res, nil
}

func writeFigureSheet(f *excelize.File, sheet string, b built) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	if b.err != nil {
		if err := f.SetCellValue(sheet, "A1", "unavailable"); err != nil {
			return err
		}
		msg := b.fig.Error
		if msg == "" {
			msg = b.err.Error()
		}
		if err := f.SetCellValue(sheet, "B1", msg); err != nil {
			return err
		}
		return f.SetColWidth(sheet, "A", "A", traceColumnWidth)
	}

	grid := b.fig.Grid()
	headers := append([]string{"Year"}, grid.Columns...)
	if err := setRow(f, sheet, 1, toAny(headers)); err != nil {
		return err
	}

	for r, row := range grid.Rows {
		cells := make([]any, 0, len(row.Values)+1)
		cells = append(cells, row.Year)
		for _, v := range row.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				cells = append(cells, nil)
				continue
			}
			cells = append(cells, v)
		}
		if err := setRow(f, sheet, r+2, cells); err != nil {
			return err
		}
	}

	// Meta goes below the data, separated by one empty row.
	next := len(grid.Rows) + 3
	keys := make([]string, 0, len(b.fig.Meta))
	for k := range b.fig.Meta {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for i, k := range keys {
		if err := setRow(f, sheet, next+i, []any{k, b.fig.Meta[k]}); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", yearColumnWidth); err != nil {
		return err
	}
	if len(grid.Columns) > 0 {
		last, err := excelize.ColumnNumberToName(len(grid.Columns) + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, "B", last, traceColumnWidth); err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(f *excelize.File, state *dashboard.AppState, sel Selection, ids []chart.ID, figures []built) error {
	year := sel.Year
	if year == 0 {
		year = state.DefaultYear
	}
	rows := [][]any{
		{"co2focus", version.GetVersion()},
		{"Dataset", state.Data.Source()},
		{"Target year", year},
		{"Model available", state.ModelAvailable()},
		{},
		{"Figure", "Title", "Mode", "Traces", "Status"},
	}
	for i, id := range ids {
		b := figures[i]
		status := "ok"
		if b.err != nil {
			status = b.err.Error()
		}
		rows = append(rows, []any{string(id), b.fig.Title, b.fig.Mode, len(b.fig.Traces), status})
	}

	for i, row := range rows {
		if err := setRow(f, SummarySheet, i+1, row); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SummarySheet, "A6", "E6", bold); err != nil {
		return err
	}
	if err := f.SetColWidth(SummarySheet, "A", "A", labelColumnWidth); err != nil {
		return err
	}
	return f.SetColWidth(SummarySheet, "B", "B", labelColumnWidth*2)
}

// setRow writes cells left to right starting at column A. Nil cells are left empty.
func setRow(f *excelize.File, sheet string, row int, cells []any) error {
	for col, v := range cells {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
