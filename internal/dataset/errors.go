package dataset

import (
	"fmt"
	"strings"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel causes wrapped by DataLoadError and returned by field lookups.
var (
	// ErrEmptyFile indicates the CSV has no header row.
	ErrEmptyFile = constError("empty file")

	// ErrMissingColumn indicates a required column is absent from the header.
	ErrMissingColumn = constError("missing required column")

	// ErrDuplicateRecord indicates two rows share the same iso_code and year.
	ErrDuplicateRecord = constError("duplicate record")

	// ErrInvalidValue indicates a cell that cannot be parsed.
	ErrInvalidValue = constError("invalid value")

	// ErrUnknownField indicates a field name outside the Field enumeration.
	ErrUnknownField = constError("unknown field")

	// ErrUnknownCountry indicates an ISO code that is not one of RecognizedCodes.
	ErrUnknownCountry = constError("unknown country")
)

// DataLoadError reports why the emissions dataset could not be loaded.
// It is fatal at startup: no chart can be served without the dataset.
type DataLoadError struct {
	Path   string
	Line   int
	Reason string
	Err    error
}

func (e *DataLoadError) Error() string {
	var b strings.Builder
	b.WriteString("loading dataset")
	if e.Path != "" {
		fmt.Fprintf(&b, " %q", e.Path)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " line %d", e.Line)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DataLoadError) Unwrap() error { return e.Err }
