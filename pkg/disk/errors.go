package disk

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/minio/minio-go/v7"
)

// Sentinel errors for disk operations.
var (
	// Configuration errors.
	ErrInvalidConfig = errors.New("disk: invalid configuration")

	// ErrFileDoesNotExist is returned by Read, ReadSize, Delete and HTTPResponse
	// when the requested path is absent from the backend.
	ErrFileDoesNotExist = errors.New("disk: file does not exist")

	// ErrWrite reports a backend failure while writing or deleting a file.
	ErrWrite = errors.New("disk: write failed")

	// ErrRead reports a backend failure while reading a file that is not a missing file.
	ErrRead = errors.New("disk: read failed")

	// ErrInvalidPath is returned for empty, absolute or escaping paths.
	ErrInvalidPath = errors.New("disk: invalid path")

	// ErrHealthcheckFailed is returned by Healthcheck closures.
	ErrHealthcheckFailed = errors.New("disk: healthcheck failed")
)

// IsFileDoesNotExist reports whether err means the requested file is absent.
func IsFileDoesNotExist(err error) bool {
	return errors.Is(err, ErrFileDoesNotExist)
}

// fileDoesNotExist builds a not-found error carrying the offending path.
func fileDoesNotExist(path string) error {
	return fmt.Errorf("%w: %s", ErrFileDoesNotExist, path)
}

// wrapS3Error maps S3 errors onto the package sentinels.
// The SDK error is formatted with %v (not %w) so AWS types never leak to callers.
func wrapS3Error(err error, path string, fallback error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fileDoesNotExist(path)
		}
	}

	var notFound *types.NoSuchKey
	if errors.As(err, &notFound) {
		return fileDoesNotExist(path)
	}

	return fmt.Errorf("%w: %s: %v", fallback, path, err)
}

// wrapMinioError maps MinIO client errors onto the package sentinels.
func wrapMinioError(err error, path string, fallback error) error {
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey", resp.Code == "NoSuchObject", resp.StatusCode == http.StatusNotFound && resp.Code != "NoSuchBucket":
		return fileDoesNotExist(path)
	}
	return fmt.Errorf("%w: %s: %v", fallback, path, err)
}
