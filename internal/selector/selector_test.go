package selector_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/co2focus/internal/dataset"
	"github.com/rshade/co2focus/internal/dataset/datasettest"
	"github.com/rshade/co2focus/internal/selector"
)

func TestParseViewMode(t *testing.T) {
	tests := []struct {
		input   string
		want    selector.ViewMode
		wantErr bool
	}{
		{input: "Annual", want: selector.ModeAnnual},
		{input: "Cumulative", want: selector.ModeCumulative},
		{input: "annual", wantErr: true},
		{input: "CUMULATIVE", wantErr: true},
		{input: "Quarterly", wantErr: true},
		{input: "", wantErr: true},
		{input: " Annual", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := selector.ParseViewMode(tt.input)
			if tt.wantErr {
				var modeErr *selector.InvalidModeError
				require.ErrorAs(t, err, &modeErr)
				assert.Equal(t, tt.input, modeErr.Mode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestViewMode_TextAndToggle(t *testing.T) {
	assert.Equal(t, selector.ModeCumulative, selector.ModeAnnual.Toggle())
	assert.Equal(t, selector.ModeAnnual, selector.ModeCumulative.Toggle())
	assert.Equal(t, selector.ModeAnnual, selector.ViewMode(0).Toggle())

	data, err := json.Marshal(struct {
		Mode selector.ViewMode `json:"mode"`
	}{selector.ModeCumulative})
	require.NoError(t, err)
	assert.JSONEq(t, `{"mode":"Cumulative"}`, string(data))

	var decoded struct {
		Mode selector.ViewMode `json:"mode"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"mode":"Annual"}`), &decoded))
	assert.Equal(t, selector.ModeAnnual, decoded.Mode)

	require.Error(t, json.Unmarshal([]byte(`{"mode":"Weekly"}`), &decoded))
	_, err = selector.ViewMode(7).MarshalText()
	require.Error(t, err)
}

func TestResolveFieldName(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		mode    string
		want    string
		wantErr error
	}{
		{name: "annual co2", base: "co2", mode: "Annual", want: "co2"},
		{name: "cumulative co2", base: "co2", mode: "Cumulative", want: "cumulative_co2"},
		{name: "cumulative coal", base: "coal_co2", mode: "Cumulative", want: "cumulative_coal_co2"},
		{name: "annual per capita", base: "co2_per_capita", mode: "Annual", want: "co2_per_capita"},
		{name: "cumulative per capita", base: "co2_per_capita", mode: "Cumulative", wantErr: selector.ErrNoCumulativeVariant},
		{name: "cumulative base", base: "cumulative_oil_co2", mode: "Annual", wantErr: selector.ErrNotAnnualField},
		{name: "unknown field", base: "gas_co2", mode: "Annual", wantErr: dataset.ErrUnknownField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selector.ResolveFieldName(tt.base, tt.mode)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveFieldName_InvalidModeForAnyField(t *testing.T) {
	bases := []string{"co2", "co2_per_capita", "cumulative_co2", "not_a_field", ""}
	for _, base := range bases {
		_, err := selector.ResolveFieldName(base, "Quarterly")
		var modeErr *selector.InvalidModeError
		require.ErrorAs(t, err, &modeErr, base)
		assert.Equal(t, "Quarterly", modeErr.Mode)
	}
}

func TestResolveField(t *testing.T) {
	for _, base := range []dataset.Field{
		dataset.FieldCO2, dataset.FieldCementCO2, dataset.FieldCoalCO2, dataset.FieldOilCO2,
	} {
		got, err := selector.ResolveField(base, selector.ModeAnnual)
		require.NoError(t, err)
		assert.Equal(t, base, got)

		got, err = selector.ResolveField(base, selector.ModeCumulative)
		require.NoError(t, err)
		assert.Equal(t, dataset.CumulativePrefix+base.Column(), got.Column())
	}

	_, err := selector.ResolveField(dataset.FieldCO2, selector.ViewMode(0))
	var modeErr *selector.InvalidModeError
	assert.ErrorAs(t, err, &modeErr)
}

func TestSelectColumn(t *testing.T) {
	d := datasettest.LoadSample(t)

	col, err := selector.SelectColumn(d.Panama(), dataset.FieldCO2, selector.ModeCumulative)
	require.NoError(t, err)
	assert.Equal(t, dataset.FieldCumulativeCO2, col.Field)
	assert.Len(t, col.Values, 7)
	assert.InDelta(t, 300.0, col.Values[0], 1e-12)
	assert.InDelta(t, 465.9, col.Values[6], 1e-12)
}

func TestInterpolateQuadratic_SampleCoal(t *testing.T) {
	d := datasettest.LoadSample(t)
	col := d.Panama().Column(dataset.FieldCoalCO2)
	require.True(t, math.IsNaN(col.Values[1]))
	require.True(t, math.IsNaN(col.Values[4]))

	filled, err := selector.InterpolateQuadratic(col)
	require.NoError(t, err)

	// The fixture follows 2 + 0.5t + 0.1t², so any three-point fit recovers it.
	assert.InDelta(t, 2.6, filled.Values[1], 1e-9)
	assert.InDelta(t, 5.6, filled.Values[4], 1e-9)

	for i, v := range col.Values {
		if !math.IsNaN(v) {
			assert.Equal(t, math.Float64bits(v), math.Float64bits(filled.Values[i]), "observed value at %d changed", col.Years[i])
		}
	}
	assert.True(t, math.IsNaN(col.Values[1]), "input column must not be modified")
	assert.Equal(t, col.Years, filled.Years)
}

func TestInterpolateQuadratic_Window(t *testing.T) {
	nan := math.NaN()

	t.Run("tie prefers the earlier neighbour", func(t *testing.T) {
		col := dataset.Column{
			Field:  dataset.FieldCoalCO2,
			Years:  []int{2000, 2001, 2002, 2003, 2004},
			Values: []float64{0, 1, nan, 9, 100},
		}
		filled, err := selector.InterpolateQuadratic(col)
		require.NoError(t, err)
		assert.InDelta(t, 4.0, filled.Values[2], 1e-9)
	})

	t.Run("nearer later neighbour wins", func(t *testing.T) {
		col := dataset.Column{
			Field:  dataset.FieldCoalCO2,
			Years:  []int{1998, 2001, 2002, 2003, 2004},
			Values: []float64{1000, 1, nan, 9, 16},
		}
		filled, err := selector.InterpolateQuadratic(col)
		require.NoError(t, err)
		assert.InDelta(t, 4.0, filled.Values[2], 1e-9)
	})

	t.Run("edges stay missing", func(t *testing.T) {
		col := dataset.Column{
			Field:  dataset.FieldCoalCO2,
			Years:  []int{2000, 2001, 2002, 2003, 2004, 2005, 2006},
			Values: []float64{nan, 1, nan, 9, 16, 25, nan},
		}
		filled, err := selector.InterpolateQuadratic(col)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(filled.Values[0]))
		assert.True(t, math.IsNaN(filled.Values[6]))
		assert.InDelta(t, 4.0, filled.Values[2], 1e-9)
	})

	t.Run("every interior gap becomes finite", func(t *testing.T) {
		col := dataset.Column{
			Field:  dataset.FieldCoalCO2,
			Years:  []int{1990, 1991, 1992, 1993, 1994, 1995, 1996, 1997},
			Values: []float64{3.1, nan, nan, 4.7, 2.2, nan, 5.9, 6.0},
		}
		filled, err := selector.InterpolateQuadratic(col)
		require.NoError(t, err)
		for i, v := range filled.Values {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "year %d", filled.Years[i])
		}

		again, err := selector.InterpolateQuadratic(col)
		require.NoError(t, err)
		assert.Equal(t, filled.Values, again.Values)
	})
}

func TestInterpolateQuadratic_Degenerate(t *testing.T) {
	nan := math.NaN()

	tests := []struct {
		name    string
		values  []float64
		wantErr error
	}{
		{name: "empty", values: []float64{}},
		{name: "all missing", values: []float64{nan, nan, nan}},
		{name: "no gaps", values: []float64{1, 2, 3}},
		{name: "only edge gaps", values: []float64{nan, 1, 2, nan}},
		{name: "two points with gap", values: []float64{1, nan, 3}, wantErr: selector.ErrTooFewPoints},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			years := make([]int, len(tt.values))
			for i := range years {
				years[i] = 2000 + i
			}
			col := dataset.Column{Field: dataset.FieldCoalCO2, Years: years, Values: tt.values}

			filled, err := selector.InterpolateQuadratic(col)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, filled.Values, len(tt.values))
		})
	}
}
