package disk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// LocalDisk implements Backend on the local filesystem.
// Every path resolves under the configured root directory.
type LocalDisk struct {
	root string
}

// NewLocal creates a LocalDisk rooted at cfg.Directory, creating the directory if needed.
func NewLocal(cfg LocalConfig) (*LocalDisk, error) {
	dir := cfg.Directory
	if dir == "" {
		dir = DefaultDirectory
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: directory %q: %v", ErrInvalidConfig, dir, err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create directory %q: %v", ErrInvalidConfig, root, err)
	}
	return &LocalDisk{root: root}, nil
}

// Root returns the absolute root directory.
func (d *LocalDisk) Root() string {
	return d.root
}

// Write streams r into a temporary file next to the destination and renames it into place.
// The temporary file is removed on any failure, including context cancellation.
func (d *LocalDisk) Write(ctx context.Context, dirname string, r io.Reader, opts ...WriteOption) (*FileDescriptor, error) {
	o := newWriteOptions(opts)
	key, err := buildPath(dirname, o)
	if err != nil {
		return nil, err
	}
	full, err := d.resolve(key)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrWrite, key, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrWrite, key, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	n, err := io.Copy(tmp, newContextReader(ctx, r))
	if err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrWrite, key, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrWrite, key, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrWrite, key, err)
	}
	if err := os.Rename(tmpName, full); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrWrite, key, err)
	}
	committed = true

	return &FileDescriptor{
		Path:     key,
		Size:     n,
		MIMEType: o.contentType,
	}, nil
}

// Read opens the file at path.
func (d *LocalDisk) Read(_ context.Context, path string) (io.ReadCloser, error) {
	f, _, err := d.open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ReadWithSize opens the file at path and returns the size of the opened file.
// A concurrent replace does not change the size or content of the returned stream.
func (d *LocalDisk) ReadWithSize(_ context.Context, path string) (io.ReadCloser, int64, error) {
	f, info, err := d.open(path)
	if err != nil {
		return nil, 0, err
	}
	return f, info.Size(), nil
}

func (d *LocalDisk) open(path string) (*os.File, fs.FileInfo, error) {
	key, full, err := d.locate(path)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(full)
	if err != nil {
		return nil, nil, d.wrapError(err, key, ErrRead)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, d.wrapError(err, key, ErrRead)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, nil, fileDoesNotExist(key)
	}
	return f, info, nil
}

// ReadSize returns the size of the file at path.
func (d *LocalDisk) ReadSize(_ context.Context, path string) (int64, error) {
	key, full, err := d.locate(path)
	if err != nil {
		return 0, err
	}

	info, err := os.Stat(full)
	if err != nil {
		return 0, d.wrapError(err, key, ErrRead)
	}
	if info.IsDir() {
		return 0, fileDoesNotExist(key)
	}
	return info.Size(), nil
}

// Delete removes the file at path. Directories are never removed.
func (d *LocalDisk) Delete(_ context.Context, path string) error {
	key, full, err := d.locate(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(full)
	if err != nil {
		return d.wrapError(err, key, ErrWrite)
	}
	if info.IsDir() {
		return fileDoesNotExist(key)
	}
	if err := os.Remove(full); err != nil {
		return d.wrapError(err, key, ErrWrite)
	}
	return nil
}

// Ping checks that the root directory is still present.
func (d *LocalDisk) Ping(_ context.Context) error {
	info, err := os.Stat(d.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", d.root)
	}
	return nil
}

// locate validates path and resolves it to a filesystem path under the root.
func (d *LocalDisk) locate(path string) (string, string, error) {
	key, err := cleanPath(path)
	if err != nil {
		return "", "", err
	}
	full, err := d.resolve(key)
	if err != nil {
		return "", "", err
	}
	return key, full, nil
}

// resolve joins key to the root and rejects results escaping it.
func (d *LocalDisk) resolve(key string) (string, error) {
	full := filepath.Join(d.root, filepath.FromSlash(key))
	rel, err := filepath.Rel(d.root, full)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, key)
	}
	return full, nil
}

func (d *LocalDisk) wrapError(err error, key string, fallback error) error {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
		return fileDoesNotExist(key)
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		err = pathErr.Err
	}
	return fmt.Errorf("%w: %s: %v", fallback, key, err)
}

// Ensure LocalDisk implements Backend.
var (
	_ Backend     = (*LocalDisk)(nil)
	_ SizedReader = (*LocalDisk)(nil)
	_ Pinger      = (*LocalDisk)(nil)
)
