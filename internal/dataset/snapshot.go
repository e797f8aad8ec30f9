package dataset

import (
	"fmt"
	"math"
)

// ErrSnapshotMismatch indicates a snapshot whose content does not match its digest.
const ErrSnapshotMismatch = constError("snapshot digest mismatch")

// Snapshot is the JSON form of a Dataset kept by the on-disk cache.
// Missing values are omitted from Values.
type Snapshot struct {
	Source string                      `json:"source"`
	Digest string                      `json:"digest"`
	Series map[string][]SnapshotRecord `json:"series"`
}

// SnapshotRecord is one year of one country.
type SnapshotRecord struct {
	Year   int                `json:"year"`
	Values map[string]float64 `json:"values,omitempty"`
}

// Snapshot captures d for caching.
func (d *Dataset) Snapshot() Snapshot {
	s := Snapshot{
		Source: d.source,
		Digest: d.Digest(),
		Series: make(map[string][]SnapshotRecord, len(d.series)),
	}
	for code, series := range d.series {
		recs := make([]SnapshotRecord, 0, len(series.records))
		for _, r := range series.records {
			sr := SnapshotRecord{Year: r.Year, Values: make(map[string]float64)}
			for f := range fieldCount {
				if v := r.values[f]; !math.IsNaN(v) {
					sr.Values[f.Column()] = v
				}
			}
			recs = append(recs, sr)
		}
		s.Series[code] = recs
	}
	return s
}

// FromSnapshot rebuilds a Dataset and verifies it against the recorded digest.
func FromSnapshot(s Snapshot) (*Dataset, error) {
	grouped := make(map[string][]Record, len(s.Series))
	for code, recs := range s.Series {
		if !IsRecognized(code) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCountry, code)
		}
		for _, sr := range recs {
			values := make(map[Field]float64, len(sr.Values))
			for col, v := range sr.Values {
				f, err := ParseField(col)
				if err != nil {
					return nil, err
				}
				values[f] = v
			}
			grouped[code] = append(grouped[code], NewRecord(code, sr.Year, values))
		}
	}

	d := newDataset(s.Source, grouped)
	if got := d.Digest(); got != s.Digest {
		return nil, fmt.Errorf("%w: want %s, got %s", ErrSnapshotMismatch, s.Digest, got)
	}
	return d, nil
}
