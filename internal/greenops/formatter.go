package greenops

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer is the locale-aware message printer for number formatting.
// Uses English locale for consistent thousand separators.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// FormatNumber formats an integer with thousand separators.
// Example: FormatNumber(18248) returns "18,248".
func FormatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatFloat formats a float with the specified precision and thousand separators.
// Example: FormatFloat(1234.567, 2) returns "1,234.57".
func FormatFloat(f float64, precision int) string {
	if precision <= 0 {
		return FormatNumber(int64(math.Round(f)))
	}
	return printer.Sprintf(fmt.Sprintf("%%.%df", precision), f)
}

// FormatLarge formats large numbers with abbreviated notation.
//
// Values below LargeNumberThreshold (1 million) use comma-separated format.
// Values at or above LargeNumberThreshold use "~X.X million" format.
// Values at or above BillionThreshold use "~X.X billion" format.
//
// Example: FormatLarge(1500000000) returns "~1.5 billion".
func FormatLarge(n float64) string {
	if n >= BillionThreshold {
		return fmt.Sprintf("~%.1f billion", n/BillionThreshold)
	}
	if n >= LargeNumberThreshold {
		return fmt.Sprintf("~%.1f million", n/LargeNumberThreshold)
	}
	return FormatNumber(int64(math.Round(n)))
}

// FormatMass renders a tonnage in t, kt or Mt, whichever keeps the number readable.
// Example: FormatMass(25_866_667) returns "25.9 Mt".
func FormatMass(tonnes float64) string {
	const precision = 1
	switch {
	case math.Abs(tonnes) >= MegatonnesToTonnes:
		return FormatFloat(tonnes/MegatonnesToTonnes, precision) + " Mt"
	case math.Abs(tonnes) >= KilotonnesToTonnes:
		return FormatFloat(tonnes/KilotonnesToTonnes, precision) + " kt"
	default:
		return FormatFloat(tonnes, precision) + " t"
	}
}

// FormatMt renders a value already in million tonnes, e.g. FormatMt(1234.5, 1) is "1,234.5 Mt".
func FormatMt(mt float64, precision int) string {
	if math.IsNaN(mt) {
		return "n/a"
	}
	return FormatFloat(mt, precision) + " Mt"
}
