// Package projectiontest builds small regression models for tests in other packages.
package projectiontest

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rshade/co2focus/internal/projection"
)

// SampleModel is the least squares fit through Panama's 2018-2020 co2
// (30.1, 29.8, 27.0), standardized over those three years.
// It predicts 28.9666… - 1.55*(year-2019).
func SampleModel() *projection.LinearModel {
	const mean = 2019.0
	scale := math.Sqrt(2.0 / 3.0)
	z := 1 / scale
	intercept := (30.1 + 29.8 + 27.0) / 3
	coef := (-z*30.1 + z*27.0) / 3

	return &projection.LinearModel{
		Scaler:    projection.Scaler{Mean: mean, Scale: scale},
		Coef:      coef,
		Intercept: intercept,
		Training: projection.TrainingInfo{
			ISOCode:   "PAN",
			FromYear:  2018,
			ToYear:    2020,
			Samples:   3,
			TrainedAt: time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

// WriteSample writes SampleModel into dir and returns the file path.
func WriteSample(t testing.TB, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "model.pb")
	require.NoError(t, projection.WriteModel(path, SampleModel()))
	return path
}
