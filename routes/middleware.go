package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/abiiranathan/pdfterms/logger"
	"github.com/abiiranathan/pdfterms/metrics"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in requests and responses.
const RequestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logger logs every request with its latency, status and request id, and
// records it in m (which may be nil). A request id from the client is kept,
// otherwise a new one is generated.
func Logger(log *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)
			r = r.WithContext(logger.WithRequestID(r.Context(), requestID))

			if m != nil {
				m.HTTPRequestsInFlight.Inc()
				defer m.HTTPRequestsInFlight.Dec()
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)
			took := time.Since(start)

			// Route patterns keep the label set small.
			path := r.Pattern
			if path == "" {
				path = "unmatched"
			}
			m.ObserveRequest(r.Method, path, rec.status, took)

			log.Info("",
				"latency", took.String(),
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"request_id", requestID)
		})
	}
}

func loggerFrom(r *http.Request) *slog.Logger {
	return logger.FromContext(r.Context())
}
