// Package greenops puts national emission totals into everyday terms.
//
// It normalizes CO2 quantities (up to million tonnes) to tonnes and converts
// them into equivalencies like "passenger vehicles driven for a year" using
// EPA-published conversion factors.
package greenops

import "fmt"

// EquivalencyType represents a category of carbon emission equivalency.
type EquivalencyType int

const (
	// EquivalencyVehicleYears converts CO2 to passenger vehicles driven for one year.
	EquivalencyVehicleYears EquivalencyType = iota

	// EquivalencyHomeYears converts CO2 to homes' electricity use for one year.
	EquivalencyHomeYears

	// EquivalencyTreeSeedlings converts CO2 to tree seedlings grown for 10 years.
	EquivalencyTreeSeedlings

	// EquivalencyMilesDriven converts CO2 to miles driven in an average passenger vehicle.
	EquivalencyMilesDriven
)

// String returns a human-readable representation of the EquivalencyType.
func (e EquivalencyType) String() string {
	switch e {
	case EquivalencyVehicleYears:
		return "VehicleYears"
	case EquivalencyHomeYears:
		return "HomeYears"
	case EquivalencyTreeSeedlings:
		return "TreeSeedlings"
	case EquivalencyMilesDriven:
		return "MilesDriven"
	default:
		return fmt.Sprintf("EquivalencyType(%d)", e)
	}
}

// CarbonInput is an emission quantity to convert.
type CarbonInput struct {
	// Value is the numeric amount.
	Value float64 `json:"value"`

	// Unit is one of g, kg, t, kt, Mt, lb (optionally suffixed CO2 or CO2e).
	Unit string `json:"unit"`
}

// EquivalencyResult represents a single calculated equivalency.
type EquivalencyResult struct {
	Type           EquivalencyType `json:"type"`
	Value          float64         `json:"value"`
	FormattedValue string          `json:"formatted_value"`
	Label          string          `json:"label"`
}

// EquivalencyOutput contains all equivalency results for display.
type EquivalencyOutput struct {
	// InputTonnes is the normalized input in tonnes CO2.
	InputTonnes float64 `json:"input_tonnes"`

	// FormattedInput is InputTonnes scaled to the most readable unit, e.g. "25.9 Mt".
	FormattedInput string `json:"formatted_input"`

	// Results contains calculated equivalencies in priority order.
	Results []EquivalencyResult `json:"results"`

	// DisplayText is the full prose format for CLI/TUI output.
	// Example: "Equivalent to ~5.6 million cars driven for a year or the electricity of ~5.1 million homes"
	DisplayText string `json:"display_text"`

	// CompactText is the abbreviated format for status lines.
	CompactText string `json:"compact_text"`

	IsEmpty bool `json:"is_empty"`
}
