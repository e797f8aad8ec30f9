package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/co2focus/internal/chart"
	"github.com/rshade/co2focus/internal/dashboard"
	"github.com/rshade/co2focus/internal/dataset/datasettest"
	"github.com/rshade/co2focus/internal/projection"
	"github.com/rshade/co2focus/internal/projection/projectiontest"
	"github.com/rshade/co2focus/internal/selector"
)

func newTestServer(t *testing.T, withModel bool) *Server {
	t.Helper()
	data := datasettest.LoadSample(t)
	if withModel {
		return New(dashboard.NewAppStateFrom(data, projectiontest.SampleModel(), nil), Config{})
	}
	modelErr := &projection.ModelUnavailableError{Path: "model.pb", Err: errors.New("file does not exist")}
	return New(dashboard.NewAppStateFrom(data, nil, modelErr), Config{})
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandleFigure(t *testing.T) {
	s := newTestServer(t, true)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		check      func(t *testing.T, fig chart.Figure)
	}{
		{
			name: "regression to 2030", target: "/api/figures/pan-co2-reg?year=2030", wantStatus: http.StatusOK,
			check: func(t *testing.T, fig chart.Figure) {
				require.Len(t, fig.Traces, 2)
				assert.Len(t, fig.Traces[1].X, 10)
				assert.Equal(t, "2030", fig.Meta[chart.MetaProjectionTo])
			},
		},
		{
			name: "regression default year", target: "/api/figures/pan-co2-reg", wantStatus: http.StatusOK,
			check: func(t *testing.T, fig chart.Figure) {
				assert.Equal(t, 2021, fig.Year)
				assert.Len(t, fig.Traces[1].X, 1)
			},
		},
		{
			name: "panama cumulative", target: "/api/figures/pan-cum-co2?mode=Cumulative", wantStatus: http.StatusOK,
			check: func(t *testing.T, fig chart.Figure) {
				assert.Equal(t, "Cumulative", fig.Mode)
				require.Len(t, fig.Traces, 1)
				assert.InDelta(t, 300.0, fig.Traces[0].Y[0], 1e-9)
			},
		},
		{
			name: "sources annual", target: "/api/figures/pan-decom-co2?mode=Annual", wantStatus: http.StatusOK,
			check: func(t *testing.T, fig chart.Figure) {
				assert.Len(t, fig.Traces, 3)
			},
		},
		{
			name: "region", target: "/api/figures/cen-am-co2", wantStatus: http.StatusOK,
			check: func(t *testing.T, fig chart.Figure) {
				assert.NotEmpty(t, fig.Traces)
			},
		},
		{name: "unknown figure", target: "/api/figures/bogus", wantStatus: http.StatusNotFound},
		{name: "invalid mode", target: "/api/figures/pan-cum-co2?mode=Quarterly", wantStatus: http.StatusBadRequest},
		{name: "lowercase mode", target: "/api/figures/pan-cum-co2?mode=annual", wantStatus: http.StatusBadRequest},
		{name: "year above range", target: "/api/figures/pan-co2-reg?year=2051", wantStatus: http.StatusBadRequest},
		{name: "year below range", target: "/api/figures/pan-co2-reg?year=2020", wantStatus: http.StatusBadRequest},
		{name: "year not a number", target: "/api/figures/pan-co2-reg?year=soon", wantStatus: http.StatusBadRequest},
		{name: "per capita cumulative", target: "/api/figures/cen-am-co2-per-cap?mode=Cumulative", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.target)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			if tt.wantStatus != http.StatusOK {
				var body ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.NotEmpty(t, body.Error)
				return
			}
			var fig chart.Figure
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fig))
			tt.check(t, fig)
		})
	}
}

func TestHandleFigure_ModelUnavailable(t *testing.T) {
	s := newTestServer(t, false)

	rec := get(t, s, "/api/figures/pan-co2-reg?year=2030")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "unavailable")
	require.NotNil(t, body.Figure)
	assert.Equal(t, chart.FigureRegression, body.Figure.ID)
	assert.NotEmpty(t, body.Figure.Error)
	assert.Empty(t, body.Figure.Traces)

	// A bad year is still a client error.
	assert.Equal(t, http.StatusBadRequest, get(t, s, "/api/figures/pan-co2-reg?year=2060").Code)

	// Figures that do not need the model keep working.
	assert.Equal(t, http.StatusOK, get(t, s, "/api/figures/pan-cum-co2").Code)
}

func TestHandleSeries(t *testing.T) {
	s := newTestServer(t, true)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		check      func(t *testing.T, got SeriesResponse)
	}{
		{
			name: "interpolated coal", target: "/api/series/PAN/coal_co2?interpolate=true", wantStatus: http.StatusOK,
			check: func(t *testing.T, got SeriesResponse) {
				assert.Equal(t, "Panama", got.Country)
				assert.True(t, got.Interpolated)
				require.Len(t, got.Values, 7)
				assert.InDelta(t, 2.6, got.Values[1], 1e-9)
			},
		},
		{
			name: "raw coal reports gaps as null", target: "/api/series/PAN/coal_co2", wantStatus: http.StatusOK,
			check: func(t *testing.T, got SeriesResponse) {
				assert.Equal(t, 5, got.Values.Observed())
			},
		},
		{
			name: "cumulative oil", target: "/api/series/MEX/oil_co2?mode=Cumulative", wantStatus: http.StatusOK,
			check: func(t *testing.T, got SeriesResponse) {
				assert.Equal(t, "cumulative_oil_co2", got.Field)
				assert.Equal(t, []int{2019, 2020}, got.Years)
			},
		},
		{name: "excluded country", target: "/api/series/USA/co2", wantStatus: http.StatusNotFound},
		{name: "unknown field", target: "/api/series/PAN/methane", wantStatus: http.StatusNotFound},
		{name: "cumulative base field", target: "/api/series/PAN/cumulative_co2", wantStatus: http.StatusBadRequest},
		{name: "per capita cumulative", target: "/api/series/PAN/co2_per_capita?mode=Cumulative", wantStatus: http.StatusBadRequest},
		{name: "bad interpolate flag", target: "/api/series/PAN/coal_co2?interpolate=maybe", wantStatus: http.StatusBadRequest},
		{name: "bad mode", target: "/api/series/PAN/co2?mode=Yearly", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.target)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.check == nil {
				return
			}
			var got SeriesResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			tt.check(t, got)
		})
	}
}

func TestHandleListFigures(t *testing.T) {
	rec := get(t, newTestServer(t, false), "/api/figures")
	require.Equal(t, http.StatusOK, rec.Code)

	var list FigureList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Figures, 5)
	assert.Equal(t, []string{"Annual", "Cumulative"}, list.Modes)
	assert.Equal(t, 2021, list.MinYear)
	assert.Equal(t, 2050, list.MaxYear)
	assert.False(t, list.ModelAvailable)
	assert.False(t, list.Figures[0].ModeDriven)
	assert.True(t, list.Figures[1].ModeDriven)
}

func TestHandleHealth(t *testing.T) {
	rec := get(t, newTestServer(t, false), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var h Health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &h))
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, 8, h.Countries)
	assert.False(t, h.ModelAvailable)
	assert.Contains(t, h.ModelError, "model.pb")
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t, true)

	get(t, s, "/api/figures/pan-cum-co2")
	get(t, s, "/api/figures/pan-cum-co2")
	get(t, s, "/api/figures/pan-cum-co2?mode=Weekly")
	get(t, s, "/api/figures/nope")

	assert.InDelta(t, 2, testutil.ToFloat64(s.Metrics().requests.WithLabelValues("pan-cum-co2", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(s.Metrics().requests.WithLabelValues("pan-cum-co2", "400")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(s.Metrics().requests.WithLabelValues("unknown", "404")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(s.Metrics().modelAvailable), 0)

	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "co2focus_chart_requests_total")
	assert.Contains(t, body, "co2focus_chart_request_duration_seconds_bucket")
}

func TestTraceHeader(t *testing.T) {
	s := newTestServer(t, true)

	rec := get(t, s, "/healthz")
	assert.Len(t, rec.Header().Get(TraceHeader), 26)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(TraceHeader, "caller-trace")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "caller-trace", rec.Header().Get(TraceHeader))
}

func TestWithRecover(t *testing.T) {
	h := withRecover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "model", err: &projection.ModelUnavailableError{Err: projection.ErrNilModel}, want: http.StatusServiceUnavailable},
		{name: "figure", err: chart.ErrUnknownFigure, want: http.StatusNotFound},
		{name: "year", err: projection.ErrYearOutOfRange, want: http.StatusBadRequest},
		{name: "bad query", err: ErrBadQuery, want: http.StatusBadRequest},
		{name: "range", err: projection.ErrRangePrecondition, want: http.StatusBadRequest},
		{name: "too few points", err: selector.ErrTooFewPoints, want: http.StatusBadRequest},
		{name: "no data", err: chart.ErrNoData, want: http.StatusServiceUnavailable},
		{name: "other", err: io.ErrUnexpectedEOF, want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestServe_GracefulShutdown(t *testing.T) {
	s := newTestServer(t, true)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/healthz"
	require.Eventually(t, func() bool {
		resp, getErr := http.Get(url) //nolint:noctx // test helper
		if getErr != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && strings.Contains(string(body), `"status":"ok"`)
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
