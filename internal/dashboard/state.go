// Package dashboard holds the application state shared by every surface:
// the loaded dataset and regression model, built once at startup and read
// concurrently by request handlers without locks.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rshade/co2focus/internal/cache"
	"github.com/rshade/co2focus/internal/chart"
	"github.com/rshade/co2focus/internal/dataset"
	"github.com/rshade/co2focus/internal/logging"
	"github.com/rshade/co2focus/internal/projection"
	"github.com/rshade/co2focus/internal/selector"
)

// Options configures NewAppState.
type Options struct {
	CSVPath   string
	ModelPath string

	// Cache, when non-nil and enabled, stores parsed dataset snapshots.
	Cache *cache.FileStore

	FromYear    int
	DefaultYear int
	MinYear     int
	MaxYear     int
}

// AppState is the immutable state behind every chart.
type AppState struct {
	Data     *dataset.Dataset
	Model    *projection.LinearModel
	ModelErr error

	// CacheHit reports whether Data came from the snapshot cache.
	CacheHit bool

	DefaultYear int
	builder     chart.Builder
}

// NewAppState loads the dataset and the model concurrently. A dataset failure
// is returned as-is (a *dataset.DataLoadError for bad input). A model failure
// is recorded in ModelErr and does not fail the call.
func NewAppState(ctx context.Context, opts Options) (*AppState, error) {
	log := logging.FromContext(ctx)
	start := time.Now()

	state := &AppState{DefaultYear: opts.DefaultYear}
	if state.DefaultYear == 0 {
		state.DefaultYear = projection.MinTargetYear
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, hit, err := cache.LoadDataset(gctx, opts.Cache, opts.CSVPath)
		if err != nil {
			return err
		}
		state.Data, state.CacheHit = d, hit
		return nil
	})
	g.Go(func() error {
		m, err := projection.LoadModel(opts.ModelPath)
		if err != nil {
			log.Warn().Ctx(ctx).
				Err(err).
				Str(logging.FieldComponent, "dashboard").
				Str("path", opts.ModelPath).
				Msg("regression model unavailable, projection chart disabled")
			state.ModelErr = err
			return nil
		}
		state.Model = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	state.builder = chart.Builder{
		Data:     state.Data,
		ModelErr: state.ModelErr,
		FromYear: opts.FromYear,
		MinYear:  opts.MinYear,
		MaxYear:  opts.MaxYear,
	}
	if state.Model != nil {
		state.builder.Model = state.Model
	}

	log.Info().Ctx(ctx).
		Str(logging.FieldComponent, "dashboard").
		Str(logging.FieldOperation, "startup_load").
		Str("csv", opts.CSVPath).
		Bool("cache_hit", state.CacheHit).
		Bool("model_available", state.ModelAvailable()).
		Dur("duration_ms", time.Since(start)).
		Msg("application state ready")

	return state, nil
}

// NewAppStateFrom wraps already-loaded values. model may be nil, with modelErr
// explaining why.
func NewAppStateFrom(data *dataset.Dataset, model *projection.LinearModel, modelErr error) *AppState {
	state := &AppState{
		Data:        data,
		Model:       model,
		ModelErr:    modelErr,
		DefaultYear: projection.MinTargetYear,
		builder:     chart.Builder{Data: data, ModelErr: modelErr},
	}
	if model != nil {
		state.builder.Model = model
	}
	return state
}

// ModelAvailable reports whether the projection chart can be drawn.
func (s *AppState) ModelAvailable() bool {
	return s.Model != nil && s.ModelErr == nil
}

// YearBounds returns the selectable target year range.
func (s *AppState) YearBounds() (int, int) {
	lo, hi := s.builder.MinYear, s.builder.MaxYear
	if lo == 0 {
		lo = projection.MinTargetYear
	}
	if hi == 0 {
		hi = projection.MaxTargetYear
	}
	return lo, hi
}

// Builder returns a copy of the figure builder, for callers that override its bounds.
func (s *AppState) Builder() chart.Builder {
	return s.builder
}

// Figure builds one figure. A zero Year means DefaultYear and a zero Mode means annual.
func (s *AppState) Figure(ctx context.Context, req chart.Request) (chart.Figure, error) {
	if req.Year == 0 {
		req.Year = s.DefaultYear
	}
	if req.Mode == 0 {
		req.Mode = selector.ModeAnnual
	}
	return s.builder.Build(ctx, req)
}

// Project returns the projection for target year to, checked against YearBounds.
func (s *AppState) Project(to int) ([]projection.Point, error) {
	lo, hi := s.YearBounds()
	if err := projection.ValidateTargetYearIn(to, lo, hi); err != nil {
		return nil, err
	}
	if !s.ModelAvailable() {
		return nil, s.modelError()
	}
	from := s.builder.FromYear
	if from == 0 {
		from = projection.DefaultFromYear
	}
	return projection.ProjectRange(s.Model, from, to)
}

// Series returns one country's column for base under mode, gap-filled when
// interpolate is set.
func (s *AppState) Series(code string, base dataset.Field, mode selector.ViewMode, interpolate bool) (dataset.Column, error) {
	series, ok := s.Data.Series(code)
	if !ok {
		return dataset.Column{}, fmt.Errorf("%w: %q", dataset.ErrUnknownCountry, code)
	}
	col, err := selector.SelectColumn(series, base, mode)
	if err != nil {
		return dataset.Column{}, err
	}
	if interpolate {
		return selector.InterpolateQuadratic(col)
	}
	return col, nil
}

func (s *AppState) modelError() error {
	var unavailable *projection.ModelUnavailableError
	if errors.As(s.ModelErr, &unavailable) {
		return s.ModelErr
	}
	err := s.ModelErr
	if err == nil {
		err = projection.ErrNilModel
	}
	return &projection.ModelUnavailableError{Err: err}
}
