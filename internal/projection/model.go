// Package projection evaluates the frozen linear regression that projects
// Panama's annual CO2 emissions, and reads the model artifact it is stored in.
package projection

import (
	"fmt"
	"math"
	"time"

	"github.com/Masterminds/semver/v3"
)

// RegressionModel maps a calendar year to predicted annual CO2 in Mt.
type RegressionModel interface {
	Predict(year int) float64
}

// Scaler is the standardization learned from the training years.
// It is applied as-is at prediction time and never re-fitted.
type Scaler struct {
	Mean  float64 `json:"mean"`
	Scale float64 `json:"scale"`
}

// Transform standardizes year.
func (s Scaler) Transform(year float64) float64 {
	return (year - s.Mean) / s.Scale
}

// TrainingInfo describes the data the model was fitted on.
type TrainingInfo struct {
	ISOCode   string    `json:"iso_code"`
	FromYear  int       `json:"from_year"`
	ToYear    int       `json:"to_year"`
	Samples   int       `json:"samples"`
	TrainedAt time.Time `json:"trained_at"`
}

// LinearModel is a one-feature ordinary least squares fit over standardized years.
type LinearModel struct {
	Scaler    Scaler          `json:"scaler"`
	Coef      float64         `json:"coef"`
	Intercept float64         `json:"intercept"`
	Version   *semver.Version `json:"format_version,omitempty"`
	Training  TrainingInfo    `json:"training"`
}

// Predict returns Coef*standardize(year) + Intercept. A nil model predicts NaN.
func (m *LinearModel) Predict(year int) float64 {
	if m == nil {
		return math.NaN()
	}
	return m.Coef*m.Scaler.Transform(float64(year)) + m.Intercept
}

// Validate checks that every parameter is finite and the scale is positive.
func (m *LinearModel) Validate() error {
	if m == nil {
		return ErrNilModel
	}
	params := []struct {
		name string
		v    float64
	}{
		{"scaler_mean", m.Scaler.Mean},
		{"scaler_scale", m.Scaler.Scale},
		{"coef", m.Coef},
		{"intercept", m.Intercept},
	}
	for _, p := range params {
		if math.IsNaN(p.v) || math.IsInf(p.v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidArtifact, p.name)
		}
	}
	if m.Scaler.Scale <= 0 {
		return fmt.Errorf("%w: scaler_scale must be positive, got %g", ErrInvalidArtifact, m.Scaler.Scale)
	}
	return nil
}

// Slope returns the change in prediction per calendar year.
func (m *LinearModel) Slope() float64 {
	if m == nil || m.Scaler.Scale == 0 {
		return math.NaN()
	}
	return m.Coef / m.Scaler.Scale
}
