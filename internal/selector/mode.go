// Package selector maps a base emissions field and a view mode onto the column
// a chart should plot, and fills gaps in sparse columns.
package selector

import "fmt"

// ViewMode selects between the annual and running-total view of a field.
type ViewMode int

const (
	// ModeAnnual plots yearly values.
	ModeAnnual ViewMode = iota + 1
	// ModeCumulative plots running totals.
	ModeCumulative
)

const (
	annualLiteral     = "Annual"
	cumulativeLiteral = "Cumulative"
)

// Modes returns both view modes in display order.
func Modes() []ViewMode {
	return []ViewMode{ModeAnnual, ModeCumulative}
}

// ParseViewMode accepts exactly "Annual" or "Cumulative". Matching is case-sensitive.
func ParseViewMode(s string) (ViewMode, error) {
	switch s {
	case annualLiteral:
		return ModeAnnual, nil
	case cumulativeLiteral:
		return ModeCumulative, nil
	default:
		return 0, &InvalidModeError{Mode: s}
	}
}

// Valid reports whether m is ModeAnnual or ModeCumulative.
func (m ViewMode) Valid() bool {
	return m == ModeAnnual || m == ModeCumulative
}

func (m ViewMode) String() string {
	switch m {
	case ModeAnnual:
		return annualLiteral
	case ModeCumulative:
		return cumulativeLiteral
	default:
		return fmt.Sprintf("ViewMode(%d)", int(m))
	}
}

// Toggle returns the other mode. Invalid modes toggle to ModeAnnual.
func (m ViewMode) Toggle() ViewMode {
	if m == ModeAnnual {
		return ModeCumulative
	}
	return ModeAnnual
}

// MarshalText implements encoding.TextMarshaler.
func (m ViewMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, &InvalidModeError{Mode: m.String()}
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ViewMode) UnmarshalText(text []byte) error {
	parsed, err := ParseViewMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
