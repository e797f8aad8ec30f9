package server

import (
	"errors"
	"net/http"

	"github.com/rshade/co2focus/internal/chart"
	"github.com/rshade/co2focus/internal/dataset"
	"github.com/rshade/co2focus/internal/projection"
	"github.com/rshade/co2focus/internal/selector"
)

type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrInternal is reported to clients in place of a recovered panic.
	ErrInternal = constError("internal error")

	// ErrBadQuery indicates a malformed query parameter.
	ErrBadQuery = constError("invalid query parameter")
)

// statusFor maps an engine error onto an HTTP status code.
func statusFor(err error) int {
	var (
		unavailable *projection.ModelUnavailableError
		badMode     *selector.InvalidModeError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, chart.ErrUnknownFigure),
		errors.Is(err, dataset.ErrUnknownCountry),
		errors.Is(err, dataset.ErrUnknownField):
		return http.StatusNotFound
	case errors.As(err, &badMode),
		errors.Is(err, ErrBadQuery),
		errors.Is(err, projection.ErrYearOutOfRange),
		errors.Is(err, projection.ErrRangePrecondition),
		errors.Is(err, selector.ErrNoCumulativeVariant),
		errors.Is(err, selector.ErrNotAnnualField),
		errors.Is(err, selector.ErrTooFewPoints):
		return http.StatusBadRequest
	case errors.Is(err, chart.ErrNoData):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
