package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/abiiranathan/pdfterms/document"
	"github.com/abiiranathan/pdfterms/match"
	"github.com/abiiranathan/pdfterms/search"
	"github.com/abiiranathan/pdfterms/terms"
)

var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "err", err)
	}
}

// statusOf maps an error to the HTTP status reported to clients.
func statusOf(err error) int {
	switch {
	case errors.Is(err, terms.ErrCategoryNotFound),
		errors.Is(err, terms.ErrQuestionNotFound),
		errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, terms.ErrBlankName),
		errors.Is(err, terms.ErrGroupOutOfRange),
		errors.Is(err, match.ErrInvalidThreshold),
		errors.Is(err, match.ErrUnknownMode),
		errors.Is(err, document.ErrUnsupportedFormat),
		errors.Is(err, search.ErrNoDocument):
		return http.StatusBadRequest
	case errors.Is(err, search.ErrSemanticUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		loggerFrom(r).Error("request failed", "status", status, "err", err)
	}
	writeJSON(w, status, map[string]string{
		"message": err.Error(),
	})
}
