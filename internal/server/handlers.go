package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rshade/co2focus/internal/chart"
	"github.com/rshade/co2focus/internal/dataset"
	"github.com/rshade/co2focus/internal/logging"
	"github.com/rshade/co2focus/internal/selector"
	"github.com/rshade/co2focus/pkg/version"
)

// FigureInfo describes one servable figure.
type FigureInfo struct {
	ID         chart.ID `json:"id"`
	ModeDriven bool     `json:"mode_driven"`
}

// FigureList is the body of GET /api/figures.
type FigureList struct {
	Figures        []FigureInfo `json:"figures"`
	Modes          []string     `json:"modes"`
	MinYear        int          `json:"min_year"`
	MaxYear        int          `json:"max_year"`
	DefaultYear    int          `json:"default_year"`
	ModelAvailable bool         `json:"model_available"`
}

// SeriesResponse is the body of GET /api/series/{iso}/{field}.
type SeriesResponse struct {
	ISOCode      string       `json:"iso_code"`
	Country      string       `json:"country"`
	Field        string       `json:"field"`
	Mode         string       `json:"mode"`
	Interpolated bool         `json:"interpolated"`
	Years        []int        `json:"years"`
	Values       chart.Values `json:"values"`
}

// Health is the body of GET /healthz.
type Health struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	Countries      int    `json:"countries"`
	ModelAvailable bool   `json:"model_available"`
	ModelError     string `json:"model_error,omitempty"`
}

// ErrorResponse is the body of every non-2xx answer. Figure is set when a
// figure request failed but still produced an empty-state figure.
type ErrorResponse struct {
	Error  string        `json:"error"`
	Figure *chart.Figure `json:"figure,omitempty"`
}

func (s *Server) handleListFigures(w http.ResponseWriter, _ *http.Request) {
	ids := chart.IDs()
	list := FigureList{
		Figures:        make([]FigureInfo, 0, len(ids)),
		DefaultYear:    s.state.DefaultYear,
		ModelAvailable: s.state.ModelAvailable(),
	}
	for _, id := range ids {
		list.Figures = append(list.Figures, FigureInfo{ID: id, ModeDriven: id.ModeDriven()})
	}
	for _, m := range selector.Modes() {
		list.Modes = append(list.Modes, m.String())
	}
	list.MinYear, list.MaxYear = s.state.YearBounds()
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleFigure(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rawID := r.PathValue("id")

	status := http.StatusOK
	defer func() {
		s.metrics.Observe(rawID, status, time.Since(start))
	}()

	id, err := chart.ParseID(rawID)
	if err != nil {
		// Unknown ids share one label value to keep cardinality bounded.
		rawID = "unknown"
		status = s.fail(w, r, err, nil)
		return
	}

	req, err := s.figureRequest(id, r)
	if err != nil {
		status = s.fail(w, r, err, nil)
		return
	}

	fig, err := s.state.Figure(r.Context(), req)
	if err != nil {
		var body *chart.Figure
		if fig.Error != "" {
			body = &fig
		}
		status = s.fail(w, r, err, body)
		return
	}
	writeJSON(w, status, fig)
}

func (s *Server) figureRequest(id chart.ID, r *http.Request) (chart.Request, error) {
	q := r.URL.Query()
	req := chart.Request{ID: id, Mode: selector.ModeAnnual, Year: s.state.DefaultYear}

	if v := q.Get("mode"); v != "" {
		mode, err := selector.ParseViewMode(v)
		if err != nil {
			return req, err
		}
		req.Mode = mode
	}
	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("%w: year %q", ErrBadQuery, v)
		}
		req.Year = year
	}
	return req, nil
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("iso")
	field, err := dataset.ParseField(r.PathValue("field"))
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}

	q := r.URL.Query()
	mode := selector.ModeAnnual
	if v := q.Get("mode"); v != "" {
		if mode, err = selector.ParseViewMode(v); err != nil {
			s.fail(w, r, err, nil)
			return
		}
	}
	interpolate := false
	if v := q.Get("interpolate"); v != "" {
		if interpolate, err = strconv.ParseBool(v); err != nil {
			s.fail(w, r, fmt.Errorf("%w: interpolate %q", ErrBadQuery, v), nil)
			return
		}
	}

	col, err := s.state.Series(code, field, mode, interpolate)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}

	writeJSON(w, http.StatusOK, SeriesResponse{
		ISOCode:      code,
		Country:      dataset.CountryName(code),
		Field:        col.Field.String(),
		Mode:         mode.String(),
		Interpolated: interpolate,
		Years:        col.Years,
		Values:       chart.Values(col.Values),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h := Health{
		Status:         "ok",
		Version:        version.GetVersion(),
		Countries:      len(s.state.Data.Codes()),
		ModelAvailable: s.state.ModelAvailable(),
	}
	if s.state.ModelErr != nil {
		h.ModelError = s.state.ModelErr.Error()
	}
	writeJSON(w, http.StatusOK, h)
}

// fail logs err and writes the mapped status. It returns the status written.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, fig *chart.Figure) int {
	status := statusFor(err)

	log := logging.FromContext(r.Context())
	event := log.Debug()
	if status >= http.StatusInternalServerError {
		event = log.Warn()
	}
	event.Ctx(r.Context()).
		Err(err).
		Str(logging.FieldComponent, "server").
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("request failed")

	writeJSON(w, status, ErrorResponse{Error: err.Error(), Figure: fig})
	return status
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
