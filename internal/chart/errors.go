package chart

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrUnknownFigure indicates a figure ID outside IDs().
	ErrUnknownFigure = constError("unknown figure")

	// ErrUnsupportedFormat indicates an output format other than table, json or ndjson.
	ErrUnsupportedFormat = constError("unsupported output format")

	// ErrNoData indicates a builder was given no dataset.
	ErrNoData = constError("dataset not loaded")
)
