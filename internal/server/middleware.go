package server

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/rshade/co2focus/internal/logging"
)

// TraceHeader carries a caller-supplied trace ID; one is generated when absent.
const TraceHeader = "X-Trace-Id"

func withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		traceID := r.Header.Get(TraceHeader)
		if traceID == "" {
			traceID = logging.GetOrGenerateTraceID(ctx)
		}
		ctx = logging.ContextWithTraceID(ctx, traceID)
		w.Header().Set(TraceHeader, traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}
			log := logging.FromContext(r.Context())
			log.Error().Ctx(r.Context()).
				Str(logging.FieldComponent, "server").
				Str("path", r.URL.Path).
				Str("panic", fmt.Sprint(rec)).
				Bytes("stack", debug.Stack()).
				Msg("handler panic")
			writeError(w, http.StatusInternalServerError, ErrInternal)
		}()
		next.ServeHTTP(w, r)
	})
}
