package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rshade/co2focus/internal/logging"
)

const (
	columnISOCode = "iso_code"
	columnYear    = "year"

	utf8BOM = "\ufeff"
)

// columnIndex records where each column sits in the header; -1 marks an
// absent optional field.
type columnIndex struct {
	isoCode int
	year    int
	fields  [fieldCount]int
}

// Load reads the CSV at path and returns the eight country series.
// Rows for unrecognized ISO codes are skipped. Any failure is a *DataLoadError.
func Load(ctx context.Context, path string) (*Dataset, error) {
	log := logging.FromContext(ctx)
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("path", path).Msg("failed to open dataset")
		return nil, &DataLoadError{Path: path, Reason: "opening file", Err: err}
	}
	defer f.Close()

	d, err := Parse(f, path)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("path", path).Msg("failed to parse dataset")
		return nil, err
	}

	log.Debug().Ctx(ctx).
		Str(logging.FieldOperation, "dataset_load").
		Str("path", path).
		Int("panama_rows", d.Panama().Len()).
		Dur("duration_ms", time.Since(start)).
		Msg("dataset loaded")

	return d, nil
}

// Parse reads CSV from r. source names the input in errors.
func Parse(r io.Reader, source string) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &DataLoadError{Path: source, Reason: "reading header", Err: ErrEmptyFile}
	}
	if err != nil {
		return nil, &DataLoadError{Path: source, Line: 1, Reason: "reading header", Err: err}
	}

	idx, err := indexColumns(header)
	if err != nil {
		return nil, &DataLoadError{Path: source, Line: 1, Reason: "validating header", Err: err}
	}

	grouped := make(map[string][]Record, len(RecognizedCodes))
	seen := make(map[string]map[int]int, len(RecognizedCodes))

	for {
		row, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, &DataLoadError{Path: source, Reason: "reading row", Err: readErr}
		}
		line, _ := reader.FieldPos(0)

		code := strings.TrimSpace(row[idx.isoCode])
		if !IsRecognized(code) {
			continue
		}

		rec, parseErr := parseRecord(row, idx, code)
		if parseErr != nil {
			return nil, &DataLoadError{Path: source, Line: line, Reason: "parsing row", Err: parseErr}
		}

		if seen[code] == nil {
			seen[code] = make(map[int]int)
		}
		if first, dup := seen[code][rec.Year]; dup {
			return nil, &DataLoadError{
				Path:   source,
				Line:   line,
				Reason: fmt.Sprintf("%s %d already defined on line %d", code, rec.Year, first),
				Err:    ErrDuplicateRecord,
			}
		}
		seen[code][rec.Year] = line
		grouped[code] = append(grouped[code], rec)
	}

	return newDataset(source, grouped), nil
}

func indexColumns(header []string) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		if _, dup := positions[name]; !dup {
			positions[name] = i
		}
	}

	var idx columnIndex
	var missing []string
	lookup := func(name string, required bool) int {
		pos, ok := positions[name]
		if !ok {
			if required {
				missing = append(missing, name)
			}
			return -1
		}
		return pos
	}

	idx.isoCode = lookup(columnISOCode, true)
	idx.year = lookup(columnYear, true)
	for f := range fieldCount {
		idx.fields[f] = lookup(f.Column(), f.Required())
	}

	if len(missing) > 0 {
		return idx, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseRecord(row []string, idx columnIndex, code string) (Record, error) {
	rec := Record{ISOCode: code}

	yearCell := strings.TrimSpace(row[idx.year])
	year, err := strconv.Atoi(yearCell)
	if err != nil {
		return rec, fmt.Errorf("%w: year %q", ErrInvalidValue, yearCell)
	}
	rec.Year = year

	for f := range fieldCount {
		if idx.fields[f] < 0 {
			rec.values[f] = math.NaN()
			continue
		}
		cell := strings.TrimSpace(row[idx.fields[f]])
		if cell == "" {
			rec.values[f] = math.NaN()
			continue
		}
		v, parseErr := strconv.ParseFloat(cell, 64)
		if parseErr != nil {
			return rec, fmt.Errorf("%w: %s %q", ErrInvalidValue, f.Column(), cell)
		}
		// Missing data is an empty cell; NaN and Inf spelled out are rejected.
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return rec, fmt.Errorf("%w: %s %q is not finite", ErrInvalidValue, f.Column(), cell)
		}
		rec.values[f] = v
	}

	return rec, nil
}
