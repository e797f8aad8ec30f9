package selector

import (
	"fmt"

	"github.com/rshade/co2focus/internal/dataset"
)

// ResolveField returns the column to plot for base under mode.
// Annual returns base unchanged; Cumulative returns its running-total member.
func ResolveField(base dataset.Field, mode ViewMode) (dataset.Field, error) {
	if !mode.Valid() {
		return 0, &InvalidModeError{Mode: mode.String()}
	}
	if !base.Valid() {
		return 0, fmt.Errorf("%w: %s", dataset.ErrUnknownField, base)
	}
	if base.IsCumulative() {
		return 0, fmt.Errorf("%w: %s", ErrNotAnnualField, base)
	}
	if mode == ModeAnnual {
		return base, nil
	}
	cumulative, ok := base.Cumulative()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoCumulativeVariant, base)
	}
	return cumulative, nil
}

// ResolveFieldName is ResolveField over column names and mode literals.
// The mode is checked first, so an invalid mode fails for any base name.
func ResolveFieldName(base, mode string) (string, error) {
	m, err := ParseViewMode(mode)
	if err != nil {
		return "", err
	}
	f, err := dataset.ParseField(base)
	if err != nil {
		return "", err
	}
	resolved, err := ResolveField(f, m)
	if err != nil {
		return "", err
	}
	return resolved.Column(), nil
}

// SelectColumn resolves base under mode and extracts it from s.
func SelectColumn(s *dataset.CountrySeries, base dataset.Field, mode ViewMode) (dataset.Column, error) {
	f, err := ResolveField(base, mode)
	if err != nil {
		return dataset.Column{}, err
	}
	return s.Column(f), nil
}
