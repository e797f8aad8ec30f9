package dataset

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"io"
	"math"
	"slices"
)

// Record is one row of the dataset: the emissions of one country in one year.
// Missing cells are NaN.
type Record struct {
	ISOCode string
	Year    int
	values  [fieldCount]float64
}

// NewRecord builds a record; fields absent from values are missing.
func NewRecord(code string, year int, values map[Field]float64) Record {
	r := Record{ISOCode: code, Year: year}
	for i := range r.values {
		r.values[i] = math.NaN()
	}
	for f, v := range values {
		if f.Valid() {
			r.values[f] = v
		}
	}
	return r
}

// Value returns the value of f, NaN when missing or when f is not a Field.
func (r Record) Value(f Field) float64 {
	if !f.Valid() {
		return math.NaN()
	}
	return r.values[f]
}

// Has reports whether f has an observed value.
func (r Record) Has(f Field) bool {
	return !math.IsNaN(r.Value(f))
}

// Column is one field of a country series, aligned by year.
type Column struct {
	Field  Field
	Years  []int
	Values []float64
}

// Len returns the number of rows.
func (c Column) Len() int {
	return len(c.Years)
}

// Observed returns the number of non-missing values.
func (c Column) Observed() int {
	n := 0
	for _, v := range c.Values {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (c Column) Clone() Column {
	return Column{
		Field:  c.Field,
		Years:  slices.Clone(c.Years),
		Values: slices.Clone(c.Values),
	}
}

// CountrySeries is the year-ordered emissions history of one country.
// It is never modified after the dataset is loaded; accessors return copies.
type CountrySeries struct {
	code    string
	records []Record
}

func newCountrySeries(code string, records []Record) *CountrySeries {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b Record) int { return a.Year - b.Year })
	return &CountrySeries{code: code, records: sorted}
}

// ISOCode returns the country's ISO code.
func (s *CountrySeries) ISOCode() string { return s.code }

// Name returns the country's display name.
func (s *CountrySeries) Name() string { return CountryName(s.code) }

// Len returns the number of yearly records.
func (s *CountrySeries) Len() int { return len(s.records) }

// Records returns a copy of the records in ascending year order.
func (s *CountrySeries) Records() []Record {
	return slices.Clone(s.records)
}

// Years returns the years present, ascending.
func (s *CountrySeries) Years() []int {
	years := make([]int, len(s.records))
	for i, r := range s.records {
		years[i] = r.Year
	}
	return years
}

// At returns the record for year.
func (s *CountrySeries) At(year int) (Record, bool) {
	i, found := slices.BinarySearchFunc(s.records, year, func(r Record, y int) int { return r.Year - y })
	if !found {
		return Record{}, false
	}
	return s.records[i], true
}

// Column extracts one field across all years.
func (s *CountrySeries) Column(f Field) Column {
	col := Column{
		Field:  f,
		Years:  make([]int, len(s.records)),
		Values: make([]float64, len(s.records)),
	}
	for i, r := range s.records {
		col.Years[i] = r.Year
		col.Values[i] = r.Value(f)
	}
	return col
}

// canonicalNaN keeps digests stable across NaN payloads.
const canonicalNaN = 0x7FF8000000000001

// Digest returns a hex SHA-256 over the series' canonical binary form.
// Two series with the same code, years, and values have the same digest.
func (s *CountrySeries) Digest() string {
	h := sha256.New()
	writeSeries(h, s)
	return hex.EncodeToString(h.Sum(nil))
}

func writeSeries(h io.Writer, s *CountrySeries) {
	var buf [8]byte
	_, _ = h.Write([]byte(s.code))
	binary.BigEndian.PutUint64(buf[:], uint64(len(s.records)))
	_, _ = h.Write(buf[:])
	for _, r := range s.records {
		binary.BigEndian.PutUint64(buf[:], uint64(int64(r.Year)))
		_, _ = h.Write(buf[:])
		for _, v := range r.values {
			bits := math.Float64bits(v)
			if math.IsNaN(v) {
				bits = canonicalNaN
			}
			binary.BigEndian.PutUint64(buf[:], bits)
			_, _ = h.Write(buf[:])
		}
	}
}

// Dataset holds the eight country series. It is safe for concurrent reads.
type Dataset struct {
	source string
	series map[string]*CountrySeries
}

// newDataset groups records by code; every recognized code gets a series.
func newDataset(source string, grouped map[string][]Record) *Dataset {
	d := &Dataset{source: source, series: make(map[string]*CountrySeries, len(RecognizedCodes))}
	for _, code := range RecognizedCodes {
		d.series[code] = newCountrySeries(code, grouped[code])
	}
	return d
}

// Source returns the path or name the dataset was parsed from.
func (d *Dataset) Source() string { return d.source }

// Codes returns the ISO codes in display order.
func (d *Dataset) Codes() []string {
	return slices.Clone(RecognizedCodes)
}

// Series returns the series for code.
func (d *Dataset) Series(code string) (*CountrySeries, bool) {
	s, ok := d.series[code]
	return s, ok
}

// Panama returns the Panama series.
func (d *Dataset) Panama() *CountrySeries {
	return d.series[CodePanama]
}

// Digest combines the digests of all series in display order.
func (d *Dataset) Digest() string {
	h := sha256.New()
	for _, code := range RecognizedCodes {
		writeSeries(h, d.series[code])
	}
	return hex.EncodeToString(h.Sum(nil))
}
