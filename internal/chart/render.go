package chart

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/rshade/co2focus/internal/greenops"
)

// Format is a figure output format.
type Format string

const (
	FormatTable  Format = "table"
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
)

// Formats returns the supported output formats.
func Formats() []Format {
	return []Format{FormatTable, FormatJSON, FormatNDJSON}
}

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	f := Format(s)
	if !slices.Contains(Formats(), f) {
		return "", fmt.Errorf("%w: %s (supported: table, json, ndjson)", ErrUnsupportedFormat, s)
	}
	return f, nil
}

// tabwriterPadding is the minimum padding between columns in the figure table.
const tabwriterPadding = 2

// MissingCell is shown for a trace with no value in a year.
const MissingCell = "-"

// Render writes fig in the given format. precision applies to table cells.
func Render(w io.Writer, format Format, fig Figure, precision int) error {
	switch format {
	case FormatTable:
		return RenderTable(w, fig, precision)
	case FormatJSON:
		return RenderJSON(w, fig)
	case FormatNDJSON:
		return RenderNDJSON(w, fig)
	default:
		return fmt.Errorf("%w: %s (supported: table, json, ndjson)", ErrUnsupportedFormat, format)
	}
}

// RenderTable writes the figure's grid as an aligned text table followed by its metadata.
func RenderTable(w io.Writer, fig Figure, precision int) error {
	if _, err := fmt.Fprintf(w, "%s\n\n", fig.Title); err != nil {
		return fmt.Errorf("writing title: %w", err)
	}
	if fig.Error != "" {
		if _, err := fmt.Fprintf(w, "unavailable: %s\n", fig.Error); err != nil {
			return fmt.Errorf("writing error: %w", err)
		}
		return nil
	}

	grid := fig.Grid()
	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', tabwriter.AlignRight)

	header := append([]string{"YEAR"}, upper(grid.Columns)...)
	if _, err := fmt.Fprintf(tw, "%s\t\n", strings.Join(header, "\t")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := fmt.Fprintf(tw, "%s\t\n", strings.Join(dashes(header), "\t")); err != nil {
		return fmt.Errorf("writing separator: %w", err)
	}

	cells := make([]string, len(grid.Columns)+1)
	for _, row := range grid.Rows {
		cells[0] = fmt.Sprintf("%d", row.Year)
		for i, v := range row.Values {
			cells[i+1] = FormatCell(v, precision)
		}
		if _, err := fmt.Fprintf(tw, "%s\t\n", strings.Join(cells, "\t")); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	return renderMeta(w, fig.Meta)
}

func renderMeta(w io.Writer, meta map[string]string) error {
	if len(meta) == 0 {
		return nil
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	if _, err := fmt.Fprintln(w); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s: %s\n", k, meta[k]); err != nil {
			return fmt.Errorf("writing metadata: %w", err)
		}
	}
	return nil
}

// RenderJSON writes the figure as one indented JSON document.
func RenderJSON(w io.Writer, fig Figure) error {
	if fig.Traces == nil {
		fig.Traces = []Trace{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(fig); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// PointRecord is one NDJSON line: a single point of a single trace.
type PointRecord struct {
	Figure ID        `json:"figure"`
	Trace  string    `json:"trace"`
	Kind   TraceKind `json:"kind"`
	Year   int       `json:"year"`
	Value  *float64  `json:"value"`
}

// RenderNDJSON writes one JSON line per point with no wrapper.
// A figure with Error set produces no lines.
func RenderNDJSON(w io.Writer, fig Figure) error {
	for _, t := range fig.Traces {
		for i, x := range t.X {
			rec := PointRecord{Figure: fig.ID, Trace: t.Name, Kind: t.Kind, Year: x}
			if i < len(t.Y) && !math.IsNaN(t.Y[i]) && !math.IsInf(t.Y[i], 0) {
				v := t.Y[i]
				rec.Value = &v
			}
			data, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("marshaling point: %w", err)
			}
			if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
				return fmt.Errorf("writing NDJSON line: %w", err)
			}
		}
	}
	return nil
}

// FormatCell renders one grid value with precision decimals.
func FormatCell(v float64, precision int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return MissingCell
	}
	return greenops.FormatFloat(v, precision)
}

func upper(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strings.ToUpper(n)
	}
	return out
}

func dashes(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strings.Repeat("-", len([]rune(n)))
	}
	return out
}
