package disk

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrInvalidConfig,
		ErrFileDoesNotExist,
		ErrWrite,
		ErrRead,
		ErrInvalidPath,
		ErrHealthcheckFailed,
	}

	seen := make(map[string]bool)
	for _, err := range sentinels {
		msg := err.Error()
		require.False(t, seen[msg], "duplicate error message: %s", msg)
		seen[msg] = true
	}
}

func TestIsFileDoesNotExist(t *testing.T) {
	t.Parallel()

	require.True(t, IsFileDoesNotExist(ErrFileDoesNotExist))
	require.True(t, IsFileDoesNotExist(fileDoesNotExist("movies/a.avi")))
	require.True(t, IsFileDoesNotExist(fmt.Errorf("serve: %w", fileDoesNotExist("a"))))
	require.False(t, IsFileDoesNotExist(ErrRead))
	require.False(t, IsFileDoesNotExist(nil))
}

// mockAPIError implements smithy.APIError for testing.
type mockAPIError struct {
	code    string
	message string
}

func (e *mockAPIError) ErrorCode() string             { return e.code }
func (e *mockAPIError) ErrorMessage() string          { return e.message }
func (e *mockAPIError) ErrorFault() smithy.ErrorFault { return smithy.FaultUnknown }
func (e *mockAPIError) Error() string                 { return fmt.Sprintf("%s: %s", e.code, e.message) }

func TestWrapS3Error(t *testing.T) {
	t.Parallel()

	t.Run("NoSuchKey code", func(t *testing.T) {
		t.Parallel()
		apiErr := &mockAPIError{code: "NoSuchKey", message: "key not found"}
		wrapped := wrapS3Error(apiErr, "a.txt", ErrRead)
		require.ErrorIs(t, wrapped, ErrFileDoesNotExist)
		require.NotErrorIs(t, wrapped, ErrRead)
		require.Contains(t, wrapped.Error(), "a.txt")
	})

	t.Run("NotFound code", func(t *testing.T) {
		t.Parallel()
		apiErr := &mockAPIError{code: "NotFound", message: "not found"}
		require.ErrorIs(t, wrapS3Error(apiErr, "a.txt", ErrWrite), ErrFileDoesNotExist)
	})

	t.Run("typed NoSuchKey", func(t *testing.T) {
		t.Parallel()
		require.ErrorIs(t, wrapS3Error(&types.NoSuchKey{}, "a.txt", ErrRead), ErrFileDoesNotExist)
	})

	t.Run("other API error uses fallback", func(t *testing.T) {
		t.Parallel()
		apiErr := &mockAPIError{code: "AccessDenied", message: "access denied"}
		wrapped := wrapS3Error(apiErr, "a.txt", ErrWrite)
		require.ErrorIs(t, wrapped, ErrWrite)
		require.NotErrorIs(t, wrapped, ErrFileDoesNotExist)
		require.Contains(t, wrapped.Error(), "AccessDenied")
	})

	t.Run("SDK error is not unwrappable", func(t *testing.T) {
		t.Parallel()
		apiErr := &mockAPIError{code: "InternalError", message: "boom"}
		wrapped := wrapS3Error(apiErr, "a.txt", ErrRead)

		var target smithy.APIError
		require.False(t, errors.As(wrapped, &target))
	})

	t.Run("generic error", func(t *testing.T) {
		t.Parallel()
		wrapped := wrapS3Error(errors.New("connection reset"), "a.txt", ErrRead)
		require.ErrorIs(t, wrapped, ErrRead)
	})
}

func TestWrapMinioError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		notFound bool
	}{
		{"NoSuchKey", minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}, true},
		{"NoSuchObject", minio.ErrorResponse{Code: "NoSuchObject"}, true},
		{"bare 404", minio.ErrorResponse{StatusCode: http.StatusNotFound}, true},
		{"missing bucket", minio.ErrorResponse{Code: "NoSuchBucket", StatusCode: http.StatusNotFound}, false},
		{"access denied", minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}, false},
		{"network", errors.New("dial tcp: connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			wrapped := wrapMinioError(tt.err, "a.txt", ErrWrite)
			if tt.notFound {
				require.ErrorIs(t, wrapped, ErrFileDoesNotExist)
				return
			}
			require.ErrorIs(t, wrapped, ErrWrite)
			require.NotErrorIs(t, wrapped, ErrFileDoesNotExist)
		})
	}
}
