package selector

import "fmt"

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrNoCumulativeVariant indicates an annual field without a running-total column.
	ErrNoCumulativeVariant = constError("field has no cumulative variant")

	// ErrNotAnnualField indicates a cumulative field passed where an annual base is expected.
	ErrNotAnnualField = constError("field is not an annual base field")

	// ErrTooFewPoints indicates a column with interior gaps but fewer than three observations.
	ErrTooFewPoints = constError("too few observed points for quadratic interpolation")
)

// InvalidModeError reports a view mode outside {"Annual", "Cumulative"}.
// The request should be rejected and the previous chart left as it was.
type InvalidModeError struct {
	Mode string
}

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid view mode %q: must be %q or %q", e.Mode, annualLiteral, cumulativeLiteral)
}
