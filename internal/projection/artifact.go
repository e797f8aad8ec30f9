package projection

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver/v3"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ArtifactFormat identifies a co2focus linear model file.
	ArtifactFormat = "co2focus.linear"
	// ArtifactVersion is the format version written by EncodeModel.
	ArtifactVersion = "1.0.0"
	// SupportedVersions is the range of format versions DecodeModel accepts.
	SupportedVersions = ">= 1.0.0, < 2.0.0"
	// FeatureYear is the only input feature the model understands.
	FeatureYear = "year"
)

// Artifact keys.
const (
	keyFormat        = "format"
	keyFormatVersion = "format_version"
	keyFeature       = "feature"
	keyScalerMean    = "scaler_mean"
	keyScalerScale   = "scaler_scale"
	keyCoef          = "coef"
	keyIntercept     = "intercept"
	keyTrainedISO    = "trained_iso"
	keyTrainedFrom   = "trained_from"
	keyTrainedTo     = "trained_to"
	keySamples       = "samples"
	keyTrainedAt     = "trained_at"
)

// LoadModel reads and validates the artifact at path.
// Every failure is a *ModelUnavailableError.
func LoadModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ModelUnavailableError{Path: path, Err: err}
	}
	m, err := DecodeModel(data)
	if err != nil {
		return nil, &ModelUnavailableError{Path: path, Err: err}
	}
	return m, nil
}

// DecodeModel parses the protobuf encoding of a model artifact.
func DecodeModel(data []byte) (*LinearModel, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidArtifact)
	}

	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	}
	r := fieldReader{fields: s.GetFields()}

	if format := r.str(keyFormat); r.err == nil && format != ArtifactFormat {
		return nil, fmt.Errorf("%w: format %q, want %q", ErrInvalidArtifact, format, ArtifactFormat)
	}
	version, err := checkVersion(r.str(keyFormatVersion))
	if r.err != nil {
		return nil, r.err
	}
	if err != nil {
		return nil, err
	}
	if feature := r.str(keyFeature); r.err == nil && feature != FeatureYear {
		return nil, fmt.Errorf("%w: feature %q, want %q", ErrInvalidArtifact, feature, FeatureYear)
	}

	m := &LinearModel{
		Scaler: Scaler{
			Mean:  r.num(keyScalerMean),
			Scale: r.num(keyScalerScale),
		},
		Coef:      r.num(keyCoef),
		Intercept: r.num(keyIntercept),
		Version:   version,
		Training: TrainingInfo{
			ISOCode:  r.optStr(keyTrainedISO),
			FromYear: int(r.optNum(keyTrainedFrom)),
			ToYear:   int(r.optNum(keyTrainedTo)),
			Samples:  int(r.optNum(keySamples)),
		},
	}
	if r.err != nil {
		return nil, r.err
	}
	if at := r.optStr(keyTrainedAt); at != "" {
		ts, parseErr := time.Parse(time.RFC3339, at)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidArtifact, keyTrainedAt, parseErr)
		}
		m.Training.TrainedAt = ts
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// EncodeModel produces the artifact bytes for m.
func EncodeModel(m *LinearModel) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	fields := map[string]any{
		keyFormat:        ArtifactFormat,
		keyFormatVersion: ArtifactVersion,
		keyFeature:       FeatureYear,
		keyScalerMean:    m.Scaler.Mean,
		keyScalerScale:   m.Scaler.Scale,
		keyCoef:          m.Coef,
		keyIntercept:     m.Intercept,
		keyTrainedISO:    m.Training.ISOCode,
		keyTrainedFrom:   float64(m.Training.FromYear),
		keyTrainedTo:     float64(m.Training.ToYear),
		keySamples:       float64(m.Training.Samples),
	}
	if !m.Training.TrainedAt.IsZero() {
		fields[keyTrainedAt] = m.Training.TrainedAt.UTC().Format(time.RFC3339)
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("building artifact: %w", err)
	}
	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding artifact: %w", err)
	}
	return data, nil
}

// WriteModel encodes m to path atomically.
func WriteModel(path string, m *LinearModel) error {
	data, err := EncodeModel(m)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if mkErr := os.MkdirAll(dir, 0o750); mkErr != nil {
			return fmt.Errorf("creating model directory: %w", mkErr)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing model: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming model: %w", err)
	}
	return nil
}

func checkVersion(raw string) (*semver.Version, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: format_version %q: %w", ErrInvalidArtifact, raw, err)
	}
	c, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return nil, fmt.Errorf("parsing version constraint: %w", err)
	}
	if !c.Check(v) {
		return nil, fmt.Errorf("%w: %s not in %s", ErrUnsupportedVersion, v, SupportedVersions)
	}
	return v, nil
}

// fieldReader pulls typed values out of a struct, keeping the first error.
type fieldReader struct {
	fields map[string]*structpb.Value
	err    error
}

var errWrongKind = errors.New("wrong value kind")

func (r *fieldReader) lookup(key string, required bool) (*structpb.Value, bool) {
	if r.err != nil {
		return nil, false
	}
	v, ok := r.fields[key]
	if !ok || v == nil {
		if required {
			r.err = fmt.Errorf("%w: missing %s", ErrInvalidArtifact, key)
		}
		return nil, false
	}
	return v, true
}

func (r *fieldReader) num(key string) float64 {
	return r.number(key, true)
}

func (r *fieldReader) optNum(key string) float64 {
	return r.number(key, false)
}

func (r *fieldReader) number(key string, required bool) float64 {
	v, ok := r.lookup(key, required)
	if !ok {
		if required {
			return math.NaN()
		}
		return 0
	}
	n, isNum := v.GetKind().(*structpb.Value_NumberValue)
	if !isNum {
		r.err = fmt.Errorf("%w: %s: %w", ErrInvalidArtifact, key, errWrongKind)
		return math.NaN()
	}
	return n.NumberValue
}

func (r *fieldReader) str(key string) string {
	return r.text(key, true)
}

func (r *fieldReader) optStr(key string) string {
	return r.text(key, false)
}

func (r *fieldReader) text(key string, required bool) string {
	v, ok := r.lookup(key, required)
	if !ok {
		return ""
	}
	s, isStr := v.GetKind().(*structpb.Value_StringValue)
	if !isStr {
		r.err = fmt.Errorf("%w: %s: %w", ErrInvalidArtifact, key, errWrongKind)
		return ""
	}
	return s.StringValue
}
