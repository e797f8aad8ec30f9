package selector

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/rshade/co2focus/internal/dataset"
)

// windowSize is the number of observed points a local quadratic is fitted through.
const windowSize = 3

// InterpolateQuadratic fills every missing value strictly between the first and
// last observed years of col. Each gap is estimated by a least-squares quadratic
// over three observed points: the two bracketing the gap and the nearer of the
// next observed point on either side, the earlier one on a tie. Observed values
// are copied unchanged, leading and trailing gaps stay missing, and col itself
// is not modified.
func InterpolateQuadratic(col dataset.Column) (dataset.Column, error) {
	out := col.Clone()

	observed := make([]int, 0, len(col.Values))
	for i, v := range col.Values {
		if !math.IsNaN(v) {
			observed = append(observed, i)
		}
	}
	if len(observed) < 2 || observed[len(observed)-1]-observed[0] == len(observed)-1 {
		return out, nil
	}
	if len(observed) < windowSize {
		return out, fmt.Errorf("%w: %s has %d", ErrTooFewPoints, col.Field, len(observed))
	}

	k := 0
	for i := observed[0] + 1; i < observed[len(observed)-1]; i++ {
		if !math.IsNaN(col.Values[i]) {
			continue
		}
		for observed[k+1] < i {
			k++
		}
		window := fitWindow(col.Years, observed, k, col.Years[i])
		v, err := evalQuadratic(col.Years, col.Values, window, col.Years[i])
		if err != nil {
			return out, fmt.Errorf("interpolating %s at %d: %w", col.Field, col.Years[i], err)
		}
		out.Values[i] = v
	}
	return out, nil
}

// fitWindow picks observed[k], observed[k+1] and one outer neighbour.
func fitWindow(years, observed []int, k, target int) [windowSize]int {
	left, right := k-1, k+2
	switch {
	case left < 0:
		return [windowSize]int{observed[k], observed[k+1], observed[right]}
	case right >= len(observed):
		return [windowSize]int{observed[left], observed[k], observed[k+1]}
	case target-years[observed[left]] <= years[observed[right]]-target:
		return [windowSize]int{observed[left], observed[k], observed[k+1]}
	default:
		return [windowSize]int{observed[k], observed[k+1], observed[right]}
	}
}

// evalQuadratic fits c0 + c1*x + c2*x² with x centred on target, so the
// estimate at target is c0.
func evalQuadratic(years []int, values []float64, window [windowSize]int, target int) (float64, error) {
	a := mat.NewDense(windowSize, windowSize, nil)
	b := mat.NewVecDense(windowSize, nil)
	for row, idx := range window {
		x := float64(years[idx] - target)
		a.SetRow(row, []float64{1, x, x * x})
		b.SetVec(row, values[idx])
	}

	var c mat.VecDense
	if err := c.SolveVec(a, b); err != nil {
		return math.NaN(), err
	}
	v := c.AtVec(0)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return math.NaN(), fmt.Errorf("non-finite estimate %v", v)
	}
	return v, nil
}
