package chart

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rshade/co2focus/internal/dataset"
	"github.com/rshade/co2focus/internal/greenops"
	"github.com/rshade/co2focus/internal/logging"
	"github.com/rshade/co2focus/internal/projection"
	"github.com/rshade/co2focus/internal/selector"
)

// Meta keys set by the builders.
const (
	MetaProjectionFrom    = "projection_from"
	MetaProjectionTo      = "projection_to"
	MetaProjectedLast     = "projected_last"
	MetaProjectedTotal    = "projected_total"
	MetaEquivalency       = "equivalency"
	MetaTrainedRange      = "trained_range"
	MetaSlope             = "slope_mt_per_year"
	MetaCoalInterpolation = "coal_interpolation"
)

// Values of MetaCoalInterpolation.
const (
	InterpolationQuadratic = "quadratic"
	InterpolationSkipped   = "skipped"
)

const (
	axisYear      = "Year"
	axisCO2       = "CO₂ (million tonnes)"
	axisPerCapita = "CO₂ (tonnes per person)"
)

// Request selects one figure and its inputs. Mode is read by mode-driven
// figures and Year by the regression figure.
type Request struct {
	ID   ID
	Mode selector.ViewMode
	Year int
}

// Builder computes figures from shared read-only state. It holds no mutable
// fields, so one Builder may serve concurrent requests.
type Builder struct {
	Data     *dataset.Dataset
	Model    projection.RegressionModel
	ModelErr error

	// FromYear is the first projected year; zero means projection.DefaultFromYear.
	FromYear int
	// MinYear and MaxYear bound the target year; zero means the projection defaults.
	MinYear int
	MaxYear int
}

// Build dispatches req to the figure's builder.
func (b Builder) Build(ctx context.Context, req Request) (Figure, error) {
	log := logging.FromContext(ctx)
	start := time.Now()

	fig, err := b.build(ctx, req)

	event := log.Debug()
	if err != nil {
		event = log.Warn().Err(err)
	}
	event.Ctx(ctx).
		Str(logging.FieldComponent, "chart").
		Str(logging.FieldOperation, "build").
		Str("figure", string(req.ID)).
		Str("mode", req.Mode.String()).
		Int("year_to", req.Year).
		Int("traces", len(fig.Traces)).
		Dur("duration_ms", time.Since(start)).
		Msg("figure built")

	return fig, err
}

func (b Builder) build(ctx context.Context, req Request) (Figure, error) {
	if b.Data == nil {
		return Figure{ID: req.ID}, ErrNoData
	}
	switch req.ID {
	case FigureRegression:
		return b.Regression(req.Year)
	case FigurePanamaCO2:
		return b.PanamaCO2(req.Mode)
	case FigurePanamaSources:
		return b.PanamaSources(ctx, req.Mode)
	case FigureRegionCO2:
		return b.RegionCO2(req.Mode)
	case FigureRegionPerCapita:
		return b.RegionPerCapita(req.Mode)
	default:
		return Figure{ID: req.ID}, fmt.Errorf("%w: %q", ErrUnknownFigure, string(req.ID))
	}
}

func (b Builder) yearBounds() (int, int, int) {
	from, lo, hi := b.FromYear, b.MinYear, b.MaxYear
	if from == 0 {
		from = projection.DefaultFromYear
	}
	if lo == 0 {
		lo = projection.MinTargetYear
	}
	if hi == 0 {
		hi = projection.MaxTargetYear
	}
	return from, lo, hi
}

// Regression plots Panama's observed co2 and the projection from FromYear to year.
// Without a model it returns a figure with Error set and a *projection.ModelUnavailableError.
func (b Builder) Regression(year int) (Figure, error) {
	fig := Figure{
		ID:     FigureRegression,
		Title:  "Panama: annual CO₂ emissions and linear projection",
		XLabel: axisYear,
		YLabel: axisCO2,
		Year:   year,
		Traces: []Trace{},
	}

	from, lo, hi := b.yearBounds()
	if err := projection.ValidateTargetYearIn(year, lo, hi); err != nil {
		return fig, err
	}

	if b.Model == nil || b.ModelErr != nil {
		err := b.ModelErr
		var unavailable *projection.ModelUnavailableError
		if !errors.As(err, &unavailable) {
			if err == nil {
				err = projection.ErrNilModel
			}
			err = &projection.ModelUnavailableError{Err: err}
		}
		fig.Error = err.Error()
		return fig, err
	}

	points, err := projection.ProjectRange(b.Model, from, year)
	if err != nil {
		fig.Error = err.Error()
		return fig, err
	}

	pan := b.Data.Panama()
	observed := columnTrace(pan.Name()+" (observed)", pan.Column(dataset.FieldCO2))

	projected := Trace{
		Name:  pan.Name() + " (projected)",
		Kind:  KindProjected,
		Field: dataset.FieldCO2.Column(),
		X:     make([]int, len(points)),
		Y:     make(Values, len(points)),
	}
	for i, p := range points {
		projected.X[i] = p.Year
		projected.Y[i] = p.Value
	}
	fig.Traces = []Trace{observed, projected}

	summary := projection.Summarize(points)
	fig.setMeta(MetaProjectionFrom, strconv.Itoa(summary.FromYear))
	fig.setMeta(MetaProjectionTo, strconv.Itoa(summary.ToYear))
	fig.setMeta(MetaProjectedLast, greenops.FormatMt(summary.Last, 1))
	fig.setMeta(MetaProjectedTotal, greenops.FormatMt(summary.Cumulative, 1))
	if eq, eqErr := greenops.CalculateMt(summary.Last); eqErr == nil && !eq.IsEmpty {
		fig.setMeta(MetaEquivalency, eq.DisplayText)
	}
	if lm, ok := b.Model.(*projection.LinearModel); ok {
		fig.setMeta(MetaSlope, strconv.FormatFloat(lm.Slope(), 'f', 4, 64))
		if lm.Training.FromYear > 0 {
			fig.setMeta(MetaTrainedRange, fmt.Sprintf("%d-%d", lm.Training.FromYear, lm.Training.ToYear))
		}
	}
	return fig, nil
}

// PanamaCO2 plots Panama's co2 in the given mode.
func (b Builder) PanamaCO2(mode selector.ViewMode) (Figure, error) {
	fig := Figure{ID: FigurePanamaCO2, XLabel: axisYear, YLabel: axisCO2, Mode: mode.String()}

	pan := b.Data.Panama()
	col, err := selector.SelectColumn(pan, dataset.FieldCO2, mode)
	if err != nil {
		return fig, err
	}
	fig.Title = fmt.Sprintf("%s: %s CO₂ emissions", pan.Name(), modeAdjective(mode))
	fig.Traces = []Trace{columnTrace(pan.Name(), col)}
	return fig, nil
}

// PanamaSources plots Panama's cement, coal and oil co2 in the given mode.
// The coal column is gap-filled by quadratic interpolation; when that is not
// possible the raw column is plotted and the figure says so in its metadata.
func (b Builder) PanamaSources(ctx context.Context, mode selector.ViewMode) (Figure, error) {
	fig := Figure{ID: FigurePanamaSources, XLabel: axisYear, YLabel: axisCO2, Mode: mode.String()}

	pan := b.Data.Panama()
	sources := []struct {
		name string
		base dataset.Field
	}{
		{"Cement", dataset.FieldCementCO2},
		{"Coal", dataset.FieldCoalCO2},
		{"Oil", dataset.FieldOilCO2},
	}

	fig.Traces = make([]Trace, 0, len(sources))
	for _, src := range sources {
		col, err := selector.SelectColumn(pan, src.base, mode)
		if err != nil {
			return Figure{ID: fig.ID, Mode: fig.Mode}, err
		}
		if src.base == dataset.FieldCoalCO2 {
			col = b.fillCoal(ctx, &fig, col)
		}
		fig.Traces = append(fig.Traces, columnTrace(src.name, col))
	}
	fig.Title = fmt.Sprintf("%s: %s CO₂ emissions by source", pan.Name(), modeAdjective(mode))
	return fig, nil
}

func (b Builder) fillCoal(ctx context.Context, fig *Figure, col dataset.Column) dataset.Column {
	filled, err := selector.InterpolateQuadratic(col)
	if err != nil {
		logging.FromContext(ctx).Warn().Ctx(ctx).
			Err(err).
			Str(logging.FieldComponent, "chart").
			Str("figure", string(fig.ID)).
			Str("field", col.Field.Column()).
			Msg("coal interpolation skipped, plotting raw column")
		fig.setMeta(MetaCoalInterpolation, InterpolationSkipped)
		return col
	}
	fig.setMeta(MetaCoalInterpolation, InterpolationQuadratic)
	return filled
}

// RegionCO2 plots co2 in the given mode for every country.
func (b Builder) RegionCO2(mode selector.ViewMode) (Figure, error) {
	fig := Figure{ID: FigureRegionCO2, XLabel: axisYear, YLabel: axisCO2, Mode: mode.String()}
	traces, err := b.regionTraces(dataset.FieldCO2, mode)
	if err != nil {
		return fig, err
	}
	fig.Title = fmt.Sprintf("Central America and Mexico: %s CO₂ emissions", modeAdjective(mode))
	fig.Traces = traces
	return fig, nil
}

// RegionPerCapita plots co2 per capita for every country. Per-capita values
// have no running total, so ModeCumulative fails with selector.ErrNoCumulativeVariant.
func (b Builder) RegionPerCapita(mode selector.ViewMode) (Figure, error) {
	fig := Figure{ID: FigureRegionPerCapita, XLabel: axisYear, YLabel: axisPerCapita, Mode: mode.String()}
	traces, err := b.regionTraces(dataset.FieldCO2PerCapita, mode)
	if err != nil {
		return fig, err
	}
	fig.Title = "Central America and Mexico: annual CO₂ emissions per capita"
	fig.Traces = traces
	return fig, nil
}

func (b Builder) regionTraces(base dataset.Field, mode selector.ViewMode) ([]Trace, error) {
	field, err := selector.ResolveField(base, mode)
	if err != nil {
		return nil, err
	}
	codes := b.Data.Codes()
	traces := make([]Trace, 0, len(codes))
	for _, code := range codes {
		s, ok := b.Data.Series(code)
		if !ok {
			continue
		}
		traces = append(traces, columnTrace(s.Name(), s.Column(field)))
	}
	return traces, nil
}

func columnTrace(name string, col dataset.Column) Trace {
	return Trace{
		Name:  name,
		Kind:  KindObserved,
		Field: col.Field.Column(),
		X:     col.Years,
		Y:     Values(col.Values),
	}
}

func modeAdjective(mode selector.ViewMode) string {
	if mode == selector.ModeCumulative {
		return "cumulative"
	}
	return "annual"
}
