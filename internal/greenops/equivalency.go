package greenops

import (
	"fmt"
	"math"
)

// Calculate converts input to tonnes and computes EPA-based equivalencies.
//
// Quantities below MinEquivalencyThresholdTonnes produce an empty output with
// InputTonnes set and no error. Invalid units, negative values and
// non-finite results return an empty output and the error.
func Calculate(input CarbonInput) (EquivalencyOutput, error) {
	tonnes, err := NormalizeToTonnes(input.Value, input.Unit)
	if err != nil {
		return EquivalencyOutput{IsEmpty: true}, err
	}

	if tonnes < MinEquivalencyThresholdTonnes {
		return EquivalencyOutput{InputTonnes: tonnes, FormattedInput: FormatMass(tonnes), IsEmpty: true}, nil
	}

	factors := []struct {
		kind   EquivalencyType
		factor float64
		label  string
	}{
		{EquivalencyVehicleYears, EPAVehicleYearFactor, "passenger vehicles driven for one year"},
		{EquivalencyHomeYears, EPAHomeYearFactor, "homes' electricity use for one year"},
		{EquivalencyTreeSeedlings, EPATreeSeedlingFactor, "tree seedlings grown for 10 years"},
		{EquivalencyMilesDriven, EPAMilesDrivenFactor, "miles driven"},
	}

	results := make([]EquivalencyResult, 0, len(factors))
	for _, f := range factors {
		v := tonnes / f.factor
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return EquivalencyOutput{IsEmpty: true}, ErrCalculationOverflow
		}
		results = append(results, EquivalencyResult{
			Type:           f.kind,
			Value:          v,
			FormattedValue: formatEquivalencyValue(v),
			Label:          f.label,
		})
	}

	vehicles := results[0].FormattedValue
	homes := results[1].FormattedValue

	return EquivalencyOutput{
		InputTonnes:    tonnes,
		FormattedInput: FormatMass(tonnes),
		Results:        results,
		DisplayText: fmt.Sprintf("Equivalent to ~%s cars driven for a year or the electricity of ~%s homes",
			vehicles, homes),
		CompactText: fmt.Sprintf("(≈ %s cars/yr, %s homes/yr)", vehicles, homes),
	}, nil
}

// CalculateMt is Calculate for a value in million tonnes, the dataset's unit.
func CalculateMt(mt float64) (EquivalencyOutput, error) {
	return Calculate(CarbonInput{Value: mt, Unit: "Mt"})
}

// formatEquivalencyValue uses large number scaling for million/billion
// values, otherwise a rounded comma-separated integer.
func formatEquivalencyValue(v float64) string {
	if v >= LargeNumberThreshold {
		return FormatLarge(v)
	}
	return FormatNumber(int64(math.Round(v)))
}
