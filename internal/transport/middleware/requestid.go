package middleware

import (
	"net/http"

	"github.com/rizkypratama/crm-management/pkg/logger"

	"github.com/google/uuid"
)

// RequestID assigns a trace ID to each request and injects it into the
// request-scoped logger. Incoming X-Trace-ID headers are honored so IDs
// survive proxy hops.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.With(r.Context(), "trace_id", traceID)
		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
