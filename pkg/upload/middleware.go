package upload

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// ErrorHandler writes the response for a rejected upload.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type contextKey struct{}

// Middleware validates the request body before next runs.
// The accepted form is available to next through FromContext.
func (v *Validator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, err := v.validate(w, r)
		if err != nil {
			v.errorHandler(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithResult(r.Context(), res)))
	})
}

// WithResult stores res in ctx.
func WithResult(ctx context.Context, res *Result) context.Context {
	return context.WithValue(ctx, contextKey{}, res)
}

// FromContext returns the form accepted by Middleware.
func FromContext(ctx context.Context) (*Result, bool) {
	res, ok := ctx.Value(contextKey{}).(*Result)
	return res, ok && res != nil
}

// DefaultErrorHandler responds 400 with the validation error as JSON,
// or 500 for storage and other failures.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		return
	}

	status := http.StatusInternalServerError
	body := map[string]any{
		"error": &ValidationError{
			Code:    "internal_error",
			Message: http.StatusText(http.StatusInternalServerError),
		},
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		status = http.StatusBadRequest
		body["error"] = verr
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
