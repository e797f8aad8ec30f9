// Package chart assembles chart-ready figures from the loaded dataset, the
// series selector, and the projection engine. A Figure is plain data: ordered
// traces of (year, value) pairs plus labels and metadata. Rendering is left to
// the caller.
package chart

import (
	"fmt"
	"slices"
)

// ID names one of the dashboard figures.
type ID string

const (
	// FigureRegression is Panama's observed co2 with the projected series.
	FigureRegression ID = "pan-co2-reg"
	// FigurePanamaCO2 is Panama's co2, annual or cumulative.
	FigurePanamaCO2 ID = "pan-cum-co2"
	// FigurePanamaSources decomposes Panama's co2 into cement, coal and oil.
	FigurePanamaSources ID = "pan-decom-co2"
	// FigureRegionCO2 compares co2 across the eight countries.
	FigureRegionCO2 ID = "cen-am-co2"
	// FigureRegionPerCapita compares co2 per capita across the eight countries.
	FigureRegionPerCapita ID = "cen-am-co2-per-cap"
)

// IDs returns every figure in page order.
func IDs() []ID {
	return []ID{
		FigureRegression,
		FigurePanamaCO2,
		FigurePanamaSources,
		FigureRegionCO2,
		FigureRegionPerCapita,
	}
}

// ParseID validates a figure name.
func ParseID(s string) (ID, error) {
	id := ID(s)
	if !slices.Contains(IDs(), id) {
		return "", fmt.Errorf("%w: %q", ErrUnknownFigure, s)
	}
	return id, nil
}

// ModeDriven reports whether the figure is controlled by a view mode selector.
// The regression figure is controlled by the target year instead.
func (id ID) ModeDriven() bool {
	return id != FigureRegression && slices.Contains(IDs(), id)
}

// TraceKind distinguishes recorded data from model output.
type TraceKind string

const (
	KindObserved  TraceKind = "observed"
	KindProjected TraceKind = "projected"
)

// Trace is one named series on a shared year axis.
type Trace struct {
	Name  string    `json:"name"`
	Kind  TraceKind `json:"kind"`
	Field string    `json:"field,omitempty"`
	X     []int     `json:"x"`
	Y     Values    `json:"y"`
}

// Len returns the number of points.
func (t Trace) Len() int { return len(t.X) }

// Figure is one chart-ready result.
type Figure struct {
	ID     ID                `json:"id"`
	Title  string            `json:"title"`
	XLabel string            `json:"x_label"`
	YLabel string            `json:"y_label"`
	Mode   string            `json:"mode,omitempty"`
	Year   int               `json:"year,omitempty"`
	Traces []Trace           `json:"traces"`
	Meta   map[string]string `json:"meta,omitempty"`
	// Error is set when the figure cannot be drawn; Traces is then empty.
	Error string `json:"error,omitempty"`
}

// Empty reports whether the figure has no points to draw.
func (f Figure) Empty() bool {
	for _, t := range f.Traces {
		if t.Len() > 0 {
			return false
		}
	}
	return true
}

// Trace returns the trace with the given name.
func (f Figure) Trace(name string) (Trace, bool) {
	for _, t := range f.Traces {
		if t.Name == name {
			return t, true
		}
	}
	return Trace{}, false
}

func (f *Figure) setMeta(key, value string) {
	if f.Meta == nil {
		f.Meta = make(map[string]string)
	}
	f.Meta[key] = value
}
