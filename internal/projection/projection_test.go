package projection_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/rshade/co2focus/internal/projection"
	"github.com/rshade/co2focus/internal/projection/projectiontest"
)

// funcModel adapts a function to RegressionModel.
type funcModel func(year int) float64

func (f funcModel) Predict(year int) float64 { return f(year) }

func TestLinearModel_Predict(t *testing.T) {
	m := projectiontest.SampleModel()

	assert.InDelta(t, 28.9666666667, m.Predict(2019), 1e-9)
	assert.InDelta(t, 25.8666666667, m.Predict(2021), 1e-9)
	assert.InDelta(t, -1.55, m.Slope(), 1e-12)

	var nilModel *projection.LinearModel
	assert.True(t, math.IsNaN(nilModel.Predict(2021)))
}

func TestLinearModel_UsesFrozenScaler(t *testing.T) {
	m := &projection.LinearModel{
		Scaler:    projection.Scaler{Mean: 2000, Scale: 10},
		Coef:      2,
		Intercept: 5,
	}
	// (2030-2000)/10 = 3 standard units.
	assert.InDelta(t, 11.0, m.Predict(2030), 1e-12)
	assert.InDelta(t, 5.0, m.Predict(2000), 1e-12)
}

func TestProject_EndToEnd(t *testing.T) {
	m := projectiontest.SampleModel()

	points, err := projection.Project(m, 2021)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 2021, points[0].Year)
	assert.InDelta(t, m.Predict(2021), points[0].Value, 0)

	points, err = projection.Project(m, 2020)
	require.ErrorIs(t, err, projection.ErrRangePrecondition)
	assert.Nil(t, points)
}

func TestProjectRange_AllTargetYears(t *testing.T) {
	m := projectiontest.SampleModel()

	for to := projection.MinTargetYear; to <= projection.MaxTargetYear; to++ {
		require.NoError(t, projection.ValidateTargetYear(to))

		points, err := projection.Project(m, to)
		require.NoError(t, err)
		require.Len(t, points, to-projection.DefaultFromYear+1)

		for i, p := range points {
			assert.False(t, math.IsNaN(p.Value) || math.IsInf(p.Value, 0))
			if i > 0 {
				assert.Greater(t, p.Year, points[i-1].Year)
			}
		}
		assert.Equal(t, to, points[len(points)-1].Year)
	}
}

func TestValidateRange(t *testing.T) {
	tests := []struct {
		name    string
		from    int
		to      int
		wantErr bool
	}{
		{name: "single year", from: 2021, to: 2021},
		{name: "longest span", from: 2021, to: 2021 + projection.MaxProjectionYears - 1},
		{name: "one past longest", from: 2021, to: 2021 + projection.MaxProjectionYears, wantErr: true},
		{name: "reversed", from: 2022, to: 2021, wantErr: true},
		{name: "overflowing span", from: math.MinInt + 1, to: 2030, wantErr: true},
		{name: "max int", from: 2021, to: math.MaxInt, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := projection.ValidateRange(tt.from, tt.to)
			if tt.wantErr {
				assert.ErrorIs(t, err, projection.ErrRangePrecondition)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestProjectRange_Errors(t *testing.T) {
	var typedNil *projection.LinearModel

	tests := []struct {
		name    string
		model   projection.RegressionModel
		from    int
		to      int
		wantErr error
	}{
		{name: "nil interface", model: nil, from: 2021, to: 2030, wantErr: projection.ErrNilModel},
		{name: "typed nil", model: typedNil, from: 2021, to: 2030, wantErr: projection.ErrNilModel},
		{name: "reversed", model: projectiontest.SampleModel(), from: 2030, to: 2029, wantErr: projection.ErrRangePrecondition},
		{name: "span too long", model: projectiontest.SampleModel(), from: 1900, to: 2030, wantErr: projection.ErrRangePrecondition},
		{name: "min int start", model: projectiontest.SampleModel(), from: math.MinInt, to: 2030, wantErr: projection.ErrRangePrecondition},
		{name: "full int range", model: projectiontest.SampleModel(), from: math.MinInt, to: math.MaxInt, wantErr: projection.ErrRangePrecondition},
		{
			name:    "nan prediction",
			model:   funcModel(func(int) float64 { return math.NaN() }),
			from:    2021,
			to:      2022,
			wantErr: projection.ErrNonFinitePrediction,
		},
		{
			name: "inf prediction",
			model: funcModel(func(y int) float64 {
				if y == 2025 {
					return math.Inf(1)
				}
				return 1
			}),
			from:    2021,
			to:      2030,
			wantErr: projection.ErrNonFinitePrediction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, err := projection.ProjectRange(tt.model, tt.from, tt.to)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, points)
		})
	}
}

func TestValidateTargetYear(t *testing.T) {
	for _, y := range []int{2020, 2051, 0, -2021} {
		assert.ErrorIs(t, projection.ValidateTargetYear(y), projection.ErrYearOutOfRange, y)
	}
	require.NoError(t, projection.ValidateTargetYearIn(2060, 2021, 2100))
}

func TestSummarize(t *testing.T) {
	s := projection.Summarize([]projection.Point{
		{Year: 2021, Value: 10},
		{Year: 2022, Value: 12},
		{Year: 2023, Value: 14},
	})
	assert.Equal(t, 2021, s.FromYear)
	assert.Equal(t, 2023, s.ToYear)
	assert.InDelta(t, 36.0, s.Cumulative, 1e-12)
	assert.InDelta(t, 14.0, s.Last, 0)

	assert.Equal(t, projection.Summary{}, projection.Summarize(nil))
}

func TestArtifactRoundTrip(t *testing.T) {
	path := projectiontest.WriteSample(t, t.TempDir())

	loaded, err := projection.LoadModel(path)
	require.NoError(t, err)

	want := projectiontest.SampleModel()
	assert.InDelta(t, want.Scaler.Mean, loaded.Scaler.Mean, 0)
	assert.InDelta(t, want.Scaler.Scale, loaded.Scaler.Scale, 0)
	assert.InDelta(t, want.Coef, loaded.Coef, 0)
	assert.InDelta(t, want.Intercept, loaded.Intercept, 0)
	assert.Equal(t, want.Training, loaded.Training)
	require.NotNil(t, loaded.Version)
	assert.Equal(t, projection.ArtifactVersion, loaded.Version.String())

	for year := 2021; year <= 2050; year++ {
		assert.InDelta(t, want.Predict(year), loaded.Predict(year), 0)
	}
}

func TestEncodeModel_Deterministic(t *testing.T) {
	a, err := projection.EncodeModel(projectiontest.SampleModel())
	require.NoError(t, err)
	b, err := projection.EncodeModel(projectiontest.SampleModel())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEncodeModel_RejectsInvalid(t *testing.T) {
	m := projectiontest.SampleModel()
	m.Scaler.Scale = 0
	_, err := projection.EncodeModel(m)
	require.ErrorIs(t, err, projection.ErrInvalidArtifact)

	_, err = projection.EncodeModel(nil)
	require.ErrorIs(t, err, projection.ErrNilModel)
}

func TestLoadModel_Unavailable(t *testing.T) {
	dir := t.TempDir()

	encode := func(t *testing.T, fields map[string]any) []byte {
		t.Helper()
		s, err := structpb.NewStruct(fields)
		require.NoError(t, err)
		data, err := proto.Marshal(s)
		require.NoError(t, err)
		return data
	}
	valid := func() map[string]any {
		return map[string]any{
			"format":         projection.ArtifactFormat,
			"format_version": "1.2.0",
			"feature":        "year",
			"scaler_mean":    2005.0,
			"scaler_scale":   9.0,
			"coef":           1.5,
			"intercept":      20.0,
		}
	}
	with := func(key string, v any) map[string]any {
		f := valid()
		if v == nil {
			delete(f, key)
		} else {
			f[key] = v
		}
		return f
	}

	tests := []struct {
		name    string
		content []byte
		missing bool
		wantErr error
	}{
		{name: "missing file", missing: true, wantErr: os.ErrNotExist},
		{name: "empty file", content: []byte{}, wantErr: projection.ErrInvalidArtifact},
		{name: "garbage", content: []byte("\xff\xff\xff\xff not protobuf"), wantErr: projection.ErrInvalidArtifact},
		{name: "wrong format", content: encode(t, with("format", "sklearn.pickle")), wantErr: projection.ErrInvalidArtifact},
		{name: "future version", content: encode(t, with("format_version", "2.0.0")), wantErr: projection.ErrUnsupportedVersion},
		{name: "bad version", content: encode(t, with("format_version", "one")), wantErr: projection.ErrInvalidArtifact},
		{name: "wrong feature", content: encode(t, with("feature", "population")), wantErr: projection.ErrInvalidArtifact},
		{name: "missing coef", content: encode(t, with("coef", nil)), wantErr: projection.ErrInvalidArtifact},
		{name: "coef as string", content: encode(t, with("coef", "1.5")), wantErr: projection.ErrInvalidArtifact},
		{name: "zero scale", content: encode(t, with("scaler_scale", 0.0)), wantErr: projection.ErrInvalidArtifact},
		{name: "bad timestamp", content: encode(t, with("trained_at", "yesterday")), wantErr: projection.ErrInvalidArtifact},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".pb")
			if !tt.missing {
				require.NoError(t, os.WriteFile(path, tt.content, 0o600))
			}

			m, err := projection.LoadModel(path)
			assert.Nil(t, m)

			var unavailable *projection.ModelUnavailableError
			require.ErrorAs(t, err, &unavailable)
			assert.Equal(t, path, unavailable.Path)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("valid hand-built artifact", func(t *testing.T) {
		path := filepath.Join(dir, "valid.pb")
		require.NoError(t, os.WriteFile(path, encode(t, valid()), 0o600))
		m, err := projection.LoadModel(path)
		require.NoError(t, err)
		assert.InDelta(t, 20.0, m.Predict(2005), 1e-12)
		assert.Equal(t, "1.2.0", m.Version.String())
	})
}
