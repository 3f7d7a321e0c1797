package upload

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/disk/pkg/disk"
)

func TestValidator_Middleware(t *testing.T) {
	t.Parallel()

	t.Run("accepted form reaches handler", func(t *testing.T) {
		t.Parallel()
		store, _ := newLocalStore(t)
		v, err := New(store, imageSchema())
		require.NoError(t, err)

		var got *Result
		h := v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, ok := FromContext(r.Context())
			require.True(t, ok)
			got = res
			w.WriteHeader(http.StatusCreated)
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest(t, fileData("image", "a.png", "image/png", []byte("png"))))

		require.Equal(t, http.StatusCreated, rec.Code)
		require.NotNil(t, got)
		require.Equal(t, int64(3), got.File("image").Size)
	})

	t.Run("validation error is a JSON 400", func(t *testing.T) {
		t.Parallel()
		store, _ := newLocalStore(t)
		v, err := New(store, imageSchema())
		require.NoError(t, err)

		h := v.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Error("handler must not run")
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest(t, fileData("image", "a.pdf", "application/pdf", []byte("pdf"))))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

		var body struct {
			Error ValidationError `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, ErrCodeInvalidMIME, body.Error.Code)
		require.Equal(t, "image", body.Error.Field)
	})

	t.Run("storage error is a 500", func(t *testing.T) {
		t.Parallel()
		store, _ := newLocalStore(t)
		store.writeErr = fmt.Errorf("%w: images: disk full", disk.ErrWrite)
		v, err := New(store, imageSchema())
		require.NoError(t, err)

		h := v.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Error("handler must not run")
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest(t, fileData("image", "a.png", "image/png", []byte("png"))))

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.NotContains(t, rec.Body.String(), "disk full")
	})

	t.Run("custom error handler", func(t *testing.T) {
		t.Parallel()
		var handled error
		v, err := New(nil, Schema{Fields: map[string]TextField{"name": {Required: true}}},
			WithErrorHandler(func(w http.ResponseWriter, _ *http.Request, err error) {
				handled = err
				w.WriteHeader(http.StatusUnprocessableEntity)
			}),
		)
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		v.Middleware(http.NotFoundHandler()).ServeHTTP(rec, newRequest(t))

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.True(t, errors.Is(handled, ErrValidation))
	})
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	_, ok := FromContext(t.Context())
	require.False(t, ok)

	res := newResult()
	got, ok := FromContext(WithResult(t.Context(), res))
	require.True(t, ok)
	require.Same(t, res, got)
}
