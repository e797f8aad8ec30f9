package greenops

import (
	"math"
	"strings"
)

// getUnitFactor returns the conversion factor to tonnes for unit.
// Matching is case-sensitive for the metric prefixes (Mt is not mt) and
// accepts an optional CO2 or CO2e suffix.
func getUnitFactor(unit string) (float64, bool) {
	base := unit
	for _, suffix := range []string{"CO2e", "CO2"} {
		if trimmed, ok := strings.CutSuffix(unit, suffix); ok {
			base = trimmed
			break
		}
	}
	switch base {
	case "g":
		return GramsToTonnes, true
	case "kg":
		return KilogramsToTonnes, true
	case "t":
		return TonnesToTonnes, true
	case "kt":
		return KilotonnesToTonnes, true
	case "Mt":
		return MegatonnesToTonnes, true
	case "lb":
		return PoundsToTonnes, true
	default:
		return 0, false
	}
}

// NormalizeToTonnes converts value in unit to tonnes.
//
// Returns ErrNegativeValue for negative values, ErrInvalidUnit for unknown
// units, and ErrCalculationOverflow for NaN, ±Inf, or an overflowing product.
func NormalizeToTonnes(value float64, unit string) (float64, error) {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, ErrCalculationOverflow
	}
	if value < 0 {
		return 0, ErrNegativeValue
	}

	factor, ok := getUnitFactor(unit)
	if !ok {
		return 0, ErrInvalidUnit
	}

	result := value * factor
	if math.IsInf(result, 0) {
		return 0, ErrCalculationOverflow
	}
	return result, nil
}

