package disk

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Backend defines the contract every storage medium implements.
// Paths are backend-relative, slash-separated keys.
type Backend interface {
	// Write streams r into dirname under a generated (or WithName) file name.
	// Fails with ErrWrite on backend I/O failure; nothing is left behind on failure.
	Write(ctx context.Context, dirname string, r io.Reader, opts ...WriteOption) (*FileDescriptor, error)

	// Read opens the file at path. The caller must close the returned reader.
	// Fails with ErrFileDoesNotExist if path is absent.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// ReadSize returns the byte length of the file without reading its content.
	// Fails with ErrFileDoesNotExist if path is absent.
	ReadSize(ctx context.Context, path string) (int64, error)

	// Delete removes the file at path.
	// Fails with ErrFileDoesNotExist if path is absent.
	Delete(ctx context.Context, path string) error
}

// SizedReader is implemented by backends that open a file together with the size
// of the opened version, so the two never disagree across a concurrent replace.
type SizedReader interface {
	ReadWithSize(ctx context.Context, path string) (io.ReadCloser, int64, error)
}

// Pinger is implemented by backends that can report their availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// FileDescriptor identifies a stored file. It is never modified after Write returns it.
type FileDescriptor struct {
	// Path is the backend-relative key of the file.
	Path string `json:"path"`

	// MIMEType is the content type recorded at write time, if known.
	MIMEType string `json:"mime_type,omitempty"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`
}

// Disk is the single storage entry point of a process.
// It owns one backend chosen from configuration and forwards every call to it.
type Disk struct {
	backend Backend
	logger  *slog.Logger
	driver  Driver
}

// New builds the backend selected by cfg and wraps it in a Disk.
// Configuration must be fully loaded before New is called; cfg is copied.
func New(ctx context.Context, cfg Config, opts ...Option) (*Disk, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var (
		backend Backend
		err     error
	)
	switch cfg.Driver {
	case DriverLocal:
		backend, err = NewLocal(cfg.Local)
	case DriverCloud:
		backend, err = newCloud(ctx, cfg.Cloud)
	}
	if err != nil {
		return nil, err
	}

	d := NewWithBackend(backend, opts...)
	d.driver = cfg.Driver
	return d, nil
}

// newCloud builds the object-store backend named by cfg.Provider.
func newCloud(ctx context.Context, cfg CloudConfig) (Backend, error) {
	switch cfg.Provider {
	case ProviderMinio:
		return NewMinio(ctx, cfg)
	case ProviderS3:
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}

// NewWithBackend wraps an already constructed backend.
func NewWithBackend(b Backend, opts ...Option) *Disk {
	d := &Disk{
		backend: b,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Driver returns the backend kind selected at construction (empty for NewWithBackend).
func (d *Disk) Driver() Driver {
	return d.driver
}

// Backend returns the underlying backend.
func (d *Disk) Backend() Backend {
	return d.backend
}

// Write forwards to the backend's Write.
func (d *Disk) Write(ctx context.Context, dirname string, r io.Reader, opts ...WriteOption) (*FileDescriptor, error) {
	fd, err := d.backend.Write(ctx, dirname, r, opts...)
	if err != nil {
		d.logger.DebugContext(ctx, "disk write failed",
			slog.String("dirname", dirname),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	d.logger.DebugContext(ctx, "disk write",
		slog.String("path", fd.Path),
		slog.Int64("size", fd.Size),
	)
	return fd, nil
}

// Read forwards to the backend's Read.
func (d *Disk) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	return d.backend.Read(ctx, path)
}

// ReadSize forwards to the backend's ReadSize.
func (d *Disk) ReadSize(ctx context.Context, path string) (int64, error) {
	return d.backend.ReadSize(ctx, path)
}

// Delete forwards to the backend's Delete.
func (d *Disk) Delete(ctx context.Context, path string) error {
	if err := d.backend.Delete(ctx, path); err != nil {
		d.logger.DebugContext(ctx, "disk delete failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return err
	}
	d.logger.DebugContext(ctx, "disk delete", slog.String("path", path))
	return nil
}

// ReadWithSize opens path and returns its size, atomically when the backend is a SizedReader.
func (d *Disk) ReadWithSize(ctx context.Context, path string) (io.ReadCloser, int64, error) {
	return readWithSize(ctx, d.backend, path)
}

func readWithSize(ctx context.Context, b Backend, path string) (io.ReadCloser, int64, error) {
	if sr, ok := b.(SizedReader); ok {
		return sr.ReadWithSize(ctx, path)
	}
	size, err := b.ReadSize(ctx, path)
	if err != nil {
		return nil, 0, err
	}
	rc, err := b.Read(ctx, path)
	if err != nil {
		return nil, 0, err
	}
	return rc, size, nil
}

// HTTPResponse builds a response streaming the file at path. See NewHTTPResponse.
func (d *Disk) HTTPResponse(ctx context.Context, path string, opts ...ResponseOption) (*Response, error) {
	return NewHTTPResponse(ctx, d.backend, path, opts...)
}

// Healthcheck returns a closure reporting backend availability.
func (d *Disk) Healthcheck() func(context.Context) error {
	return Healthcheck(d.backend)
}

// Ensure Disk implements Backend and SizedReader.
var (
	_ Backend     = (*Disk)(nil)
	_ SizedReader = (*Disk)(nil)
)
