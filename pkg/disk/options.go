package disk

import (
	"log/slog"
	"strings"
)

// WriteOption configures Write operations.
type WriteOption func(*writeOptions)

// writeOptions holds configuration for Write operations.
type writeOptions struct {
	name        string // Explicit file name (replaces the generated one)
	extension   string // Extension appended to the generated name
	contentType string // MIME type stored with the object
}

// WithName sets an explicit file name inside dirname, replacing the generated ULID name.
// The name must be a single path segment. An existing file with that name is replaced.
func WithName(name string) WriteOption {
	return func(o *writeOptions) {
		o.name = name
	}
}

// WithExtension sets the extension of the generated file name, with or without the leading dot.
// Ignored when WithName is used.
func WithExtension(ext string) WriteOption {
	return func(o *writeOptions) {
		ext = strings.TrimSpace(ext)
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		o.extension = ext
	}
}

// WithContentType records the MIME type of the content.
// Cloud backends store it with the object; when no extension is given,
// the generated file name gets the extension matching this type.
func WithContentType(ct string) WriteOption {
	return func(o *writeOptions) {
		o.contentType = ct
	}
}

func newWriteOptions(opts []WriteOption) *writeOptions {
	o := &writeOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Option configures a Disk.
type Option func(*Disk)

// WithLogger sets the logger used by the Disk facade.
func WithLogger(l *slog.Logger) Option {
	return func(d *Disk) {
		if l != nil {
			d.logger = l
		}
	}
}
