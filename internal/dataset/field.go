package dataset

import (
	"fmt"
	"strings"
)

// Field enumerates the numeric columns the dashboard reads from the dataset.
type Field int

const (
	// FieldCO2 is annual territorial CO2 emissions in million tonnes.
	FieldCO2 Field = iota
	// FieldCumulativeCO2 is the running total of FieldCO2 since records began.
	FieldCumulativeCO2
	// FieldCO2PerCapita is annual CO2 emissions in tonnes per person.
	FieldCO2PerCapita
	FieldCementCO2
	FieldCumulativeCementCO2
	FieldCoalCO2
	FieldCumulativeCoalCO2
	FieldOilCO2
	FieldCumulativeOilCO2

	fieldCount
)

// fieldColumns maps each Field to its CSV header name.
//
//nolint:gochecknoglobals // Compile-time constant lookup table.
var fieldColumns = [fieldCount]string{
	FieldCO2:                 "co2",
	FieldCumulativeCO2:       "cumulative_co2",
	FieldCO2PerCapita:        "co2_per_capita",
	FieldCementCO2:           "cement_co2",
	FieldCumulativeCementCO2: "cumulative_cement_co2",
	FieldCoalCO2:             "coal_co2",
	FieldCumulativeCoalCO2:   "cumulative_coal_co2",
	FieldOilCO2:              "oil_co2",
	FieldCumulativeOilCO2:    "cumulative_oil_co2",
}

// cumulativeOf pairs each annual field with its running-total counterpart.
// co2_per_capita has no cumulative column in the source data.
//
//nolint:gochecknoglobals // Compile-time constant lookup table.
var cumulativeOf = map[Field]Field{
	FieldCO2:       FieldCumulativeCO2,
	FieldCementCO2: FieldCumulativeCementCO2,
	FieldCoalCO2:   FieldCumulativeCoalCO2,
	FieldOilCO2:    FieldCumulativeOilCO2,
}

// CumulativePrefix is prepended to an annual column name to obtain its running total.
const CumulativePrefix = "cumulative_"

// Fields returns every field in declaration order.
func Fields() []Field {
	out := make([]Field, 0, fieldCount)
	for f := range fieldCount {
		out = append(out, f)
	}
	return out
}

// Valid reports whether f is a member of the enumeration.
func (f Field) Valid() bool {
	return f >= 0 && f < fieldCount
}

// Column returns the CSV header name of f.
func (f Field) Column() string {
	if !f.Valid() {
		return ""
	}
	return fieldColumns[f]
}

// String returns the column name, or Field(n) for values outside the enumeration.
func (f Field) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldColumns[f]
}

// Required reports whether the CSV header must contain f. The per-source
// running totals are optional; a file without them loads those fields as
// entirely missing.
func (f Field) Required() bool {
	switch f {
	case FieldCumulativeCementCO2, FieldCumulativeCoalCO2, FieldCumulativeOilCO2:
		return false
	default:
		return f.Valid()
	}
}

// IsCumulative reports whether f is a running-total column.
func (f Field) IsCumulative() bool {
	return strings.HasPrefix(f.Column(), CumulativePrefix)
}

// Cumulative returns the running-total counterpart of an annual field.
func (f Field) Cumulative() (Field, bool) {
	c, ok := cumulativeOf[f]
	return c, ok
}

// Unit returns the measurement unit of the field's values.
func (f Field) Unit() string {
	if f == FieldCO2PerCapita {
		return "t/person"
	}
	return "Mt"
}

// ParseField maps a CSV column name onto the enumeration.
func ParseField(name string) (Field, error) {
	for f, col := range fieldColumns {
		if col == name {
			return Field(f), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// MarshalText implements encoding.TextMarshaler.
func (f Field) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownField, int(f))
	}
	return []byte(f.Column()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Field) UnmarshalText(text []byte) error {
	parsed, err := ParseField(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
