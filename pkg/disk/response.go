package disk

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
)

// ResponseOption configures HTTPResponse.
type ResponseOption func(*responseOptions)

// responseOptions holds configuration for HTTPResponse.
type responseOptions struct {
	filename      string // Filename announced in Content-Disposition
	forceDownload bool   // attachment instead of inline
}

// WithFilename sets the filename announced in Content-Disposition.
// Defaults to the base name of the stored path.
func WithFilename(name string) ResponseOption {
	return func(o *responseOptions) {
		o.filename = name
	}
}

// WithForceDownload makes browsers save the file instead of displaying it.
func WithForceDownload() ResponseOption {
	return func(o *responseOptions) {
		o.forceDownload = true
	}
}

// Response is a ready-to-send HTTP response streaming a stored file.
// The caller owns Body and must either call Write or close it.
type Response struct {
	Header     http.Header
	Body       io.ReadCloser
	StatusCode int
}

// NewHTTPResponse builds a 200 response for the file at p on b.
// It fails with ErrFileDoesNotExist before opening any stream if p is absent.
// Content-Length is taken from the opened file when b is a SizedReader.
func NewHTTPResponse(ctx context.Context, b Backend, p string, opts ...ResponseOption) (*Response, error) {
	o := &responseOptions{}
	for _, opt := range opts {
		opt(o)
	}

	body, size, err := readWithSize(ctx, b, p)
	if err != nil {
		return nil, err
	}

	filename := o.filename
	if filename == "" {
		filename = path.Base(p)
	}
	disposition := "inline"
	if o.forceDownload {
		disposition = "attachment"
	}

	h := make(http.Header, 3)
	h.Set("Content-Type", TypeByPath(p))
	h.Set("Content-Length", strconv.FormatInt(size, 10))
	h.Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": filename}))

	return &Response{
		StatusCode: http.StatusOK,
		Header:     h,
		Body:       body,
	}, nil
}

// Write sends the response to w and closes Body.
func (r *Response) Write(w http.ResponseWriter) error {
	defer r.Body.Close()

	for k, v := range r.Header {
		w.Header()[k] = v
	}
	w.WriteHeader(r.StatusCode)

	if _, err := io.Copy(w, r.Body); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
