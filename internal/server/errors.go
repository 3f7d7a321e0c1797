package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"maps"
	"net/http"

	"github.com/dmitrymomot/disk/pkg/disk"
	"github.com/dmitrymomot/disk/pkg/upload"
)

// Error codes returned in the "code" member of error responses.
const (
	errCodeNotFound    = "not_found"
	errCodeInvalidPath = "invalid_path"
	errCodeInternal    = "internal_error"
)

// httpError is the JSON error body sent to clients.
type httpError struct {
	// Err is the underlying error, logged but never sent.
	Err error `json:"-"`

	Details   map[string]any `json:"details,omitempty"`
	Message   string         `json:"message"`
	ErrorCode string         `json:"code"`

	// Code is the HTTP status code.
	Code int `json:"-"`
}

func (e *httpError) Error() string {
	return e.Message
}

func (e *httpError) Unwrap() error {
	return e.Err
}

// toHTTPError maps storage and validation errors to a client response.
func toHTTPError(err error) *httpError {
	var verr *upload.ValidationError
	switch {
	case errors.As(err, &verr):
		details := make(map[string]any, len(verr.Details)+1)
		maps.Copy(details, verr.Details)
		if verr.Field != "" {
			details["field"] = verr.Field
		}
		return &httpError{
			Err:       err,
			Code:      http.StatusBadRequest,
			Message:   verr.Message,
			ErrorCode: verr.Code,
			Details:   details,
		}
	case errors.Is(err, disk.ErrFileDoesNotExist):
		return &httpError{Err: err, Code: http.StatusNotFound, Message: "file not found", ErrorCode: errCodeNotFound}
	case errors.Is(err, disk.ErrInvalidPath):
		return &httpError{Err: err, Code: http.StatusBadRequest, Message: "invalid file path", ErrorCode: errCodeInvalidPath}
	default:
		return &httpError{
			Err:       err,
			Code:      http.StatusInternalServerError,
			Message:   http.StatusText(http.StatusInternalServerError),
			ErrorCode: errCodeInternal,
		}
	}
}

// errorHandler renders err as a JSON error response.
// Nothing is written when the client has already gone away.
func errorHandler(log *slog.Logger) upload.ErrorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
			log.DebugContext(r.Context(), "request canceled", slog.String("path", r.URL.Path))
			return
		}

		he := toHTTPError(err)
		if he.Code >= http.StatusInternalServerError {
			log.ErrorContext(r.Context(), "request failed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()),
			)
		}

		writeJSON(w, he.Code, map[string]any{"error": he})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
