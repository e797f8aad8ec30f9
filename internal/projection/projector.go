package projection

import (
	"fmt"
	"math"
)

const (
	// DefaultFromYear is the first projected year, the year after the training data ends.
	DefaultFromYear = 2021
	// MinTargetYear is the lowest selectable target year.
	MinTargetYear = 2021
	// MaxTargetYear is the highest selectable target year.
	MaxTargetYear = 2050
	// MaxProjectionYears is the longest range a single projection may cover.
	MaxProjectionYears = 100
)

// Point is one projected year.
type Point struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Project evaluates model for every year from DefaultFromYear through to.
func Project(model RegressionModel, to int) ([]Point, error) {
	return ProjectRange(model, DefaultFromYear, to)
}

// ProjectRange evaluates model for every year in [from, to].
// It returns to-from+1 points in ascending year order, or an error and no points.
func ProjectRange(model RegressionModel, from, to int) ([]Point, error) {
	if isNil(model) {
		return nil, ErrNilModel
	}
	if err := ValidateRange(from, to); err != nil {
		return nil, err
	}

	points := make([]Point, 0, to-from+1)
	for year := from; year <= to; year++ {
		v := model.Predict(year)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: year %d", ErrNonFinitePrediction, year)
		}
		points = append(points, Point{Year: year, Value: v})
	}
	return points, nil
}

// ValidateRange checks that [from, to] is non-empty and spans fewer than
// MaxProjectionYears years.
func ValidateRange(from, to int) error {
	if to < from {
		return fmt.Errorf("%w: from %d, to %d", ErrRangePrecondition, from, to)
	}
	// The unsigned difference is exact for to >= from even when to-from overflows int.
	if uint(to)-uint(from) >= MaxProjectionYears {
		return fmt.Errorf("%w: %d to %d spans more than %d years",
			ErrRangePrecondition, from, to, MaxProjectionYears)
	}
	return nil
}

// ValidateTargetYear checks year against [MinTargetYear, MaxTargetYear].
func ValidateTargetYear(year int) error {
	return ValidateTargetYearIn(year, MinTargetYear, MaxTargetYear)
}

// ValidateTargetYearIn checks year against a configured inclusive range.
func ValidateTargetYearIn(year, lo, hi int) error {
	if year < lo || year > hi {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrYearOutOfRange, year, lo, hi)
	}
	return nil
}

// Summary aggregates a projection for display.
type Summary struct {
	FromYear   int     `json:"from_year"`
	ToYear     int     `json:"to_year"`
	First      float64 `json:"first_mt"`
	Last       float64 `json:"last_mt"`
	Cumulative float64 `json:"cumulative_mt"`
}

// Summarize totals points. It returns the zero Summary for no points.
func Summarize(points []Point) Summary {
	if len(points) == 0 {
		return Summary{}
	}
	s := Summary{
		FromYear: points[0].Year,
		ToYear:   points[len(points)-1].Year,
		First:    points[0].Value,
		Last:     points[len(points)-1].Value,
	}
	for _, p := range points {
		s.Cumulative += p.Value
	}
	return s
}

func isNil(model RegressionModel) bool {
	if model == nil {
		return true
	}
	lm, ok := model.(*LinearModel)
	return ok && lm == nil
}
