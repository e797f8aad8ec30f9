package projection

import "fmt"

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrRangePrecondition indicates a projection whose end year precedes its start year.
	ErrRangePrecondition = constError("projection end year precedes start year")

	// ErrNilModel indicates a projection requested without a model.
	ErrNilModel = constError("regression model is nil")

	// ErrNonFinitePrediction indicates the model produced NaN or ±Inf.
	ErrNonFinitePrediction = constError("model produced a non-finite prediction")

	// ErrYearOutOfRange indicates a target year outside the selectable range.
	ErrYearOutOfRange = constError("target year out of range")

	// ErrInvalidArtifact indicates a model file that decodes but is not a usable model.
	ErrInvalidArtifact = constError("invalid model artifact")

	// ErrUnsupportedVersion indicates an artifact format version this build cannot read.
	ErrUnsupportedVersion = constError("unsupported model format version")
)

// ModelUnavailableError reports that the persisted model could not be loaded.
// Only the regression chart depends on it; every other chart stays servable.
type ModelUnavailableError struct {
	Path string
	Err  error
}

func (e *ModelUnavailableError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("regression model unavailable: %v", e.Err)
	}
	return fmt.Sprintf("regression model %q unavailable: %v", e.Path, e.Err)
}

func (e *ModelUnavailableError) Unwrap() error { return e.Err }
