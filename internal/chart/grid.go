package chart

import (
	"math"
	"slices"
)

// Grid lays a figure out as rows of years and one column per trace.
type Grid struct {
	Columns []string  `json:"columns"`
	Rows    []GridRow `json:"rows"`
}

// GridRow holds the value of each trace in one year, NaN where a trace has no point.
type GridRow struct {
	Year   int    `json:"year"`
	Values Values `json:"values"`
}

// Grid joins the traces on year. Rows are in ascending year order.
func (f Figure) Grid() Grid {
	g := Grid{Columns: make([]string, len(f.Traces))}

	var years []int
	for i, t := range f.Traces {
		g.Columns[i] = t.Name
		years = append(years, t.X...)
	}
	slices.Sort(years)
	years = slices.Compact(years)

	index := make(map[int]int, len(years))
	g.Rows = make([]GridRow, len(years))
	for i, y := range years {
		index[y] = i
		row := GridRow{Year: y, Values: make(Values, len(f.Traces))}
		for j := range row.Values {
			row.Values[j] = math.NaN()
		}
		g.Rows[i] = row
	}

	for j, t := range f.Traces {
		for k, x := range t.X {
			if k < len(t.Y) {
				g.Rows[index[x]].Values[j] = t.Y[k]
			}
		}
	}
	return g
}
