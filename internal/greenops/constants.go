package greenops

// EPA Formula Constants (2024 Edition)
// Source: https://www.epa.gov/energy/greenhouse-gas-equivalencies-calculator
//
// Each constant is the tonnes of CO2 attributed to one unit of the activity:
//
//	equivalency = tonnes_CO2 / factor
const (
	// EPAVehicleYearFactor is tonnes CO2 emitted by a typical passenger vehicle per year.
	EPAVehicleYearFactor = 4.6

	// EPAHomeYearFactor is tonnes CO2 from one average US home's electricity use per year.
	EPAHomeYearFactor = 5.139

	// EPATreeSeedlingFactor is tonnes CO2 sequestered by one urban tree seedling over 10 years.
	EPATreeSeedlingFactor = 0.060

	// EPAMilesDrivenFactor is tonnes CO2 per mile for an average passenger vehicle.
	EPAMilesDrivenFactor = 0.000393
)

// Unit Conversion Constants for normalizing carbon values to tonnes.
const (
	GramsToTonnes      = 1e-6
	KilogramsToTonnes  = 1e-3
	TonnesToTonnes     = 1.0
	KilotonnesToTonnes = 1e3
	MegatonnesToTonnes = 1e6
	PoundsToTonnes     = 0.000453592
)

// Display Threshold Constants control when equivalencies are shown.
const (
	// MinEquivalencyThresholdTonnes is the smallest quantity worth converting.
	MinEquivalencyThresholdTonnes = 1.0

	// LargeNumberThreshold is the threshold for using abbreviated display.
	// Values at or above this threshold use "~X.X million" format.
	LargeNumberThreshold = 1_000_000

	// BillionThreshold is the threshold for billion-scale display.
	BillionThreshold = 1_000_000_000
)
