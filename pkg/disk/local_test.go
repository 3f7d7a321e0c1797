package disk

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// failingReader returns n bytes of data and then err.
type failingReader struct {
	n   int
	err error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.n <= 0 {
		return 0, r.err
	}
	k := min(len(p), r.n)
	for i := range k {
		p[i] = 'x'
	}
	r.n -= k
	return k, nil
}

func newTestLocal(t *testing.T) *LocalDisk {
	t.Helper()
	d, err := NewLocal(LocalConfig{Directory: t.TempDir()})
	require.NoError(t, err)
	return d
}

func readAll(t *testing.T, b Backend, p string) string {
	t.Helper()
	rc, err := b.Read(t.Context(), p)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestNewLocal(t *testing.T) {
	t.Parallel()

	t.Run("creates missing root", func(t *testing.T) {
		t.Parallel()
		root := filepath.Join(t.TempDir(), "nested", "uploads")

		d, err := NewLocal(LocalConfig{Directory: root})
		require.NoError(t, err)
		require.Equal(t, root, d.Root())

		info, err := os.Stat(root)
		require.NoError(t, err)
		require.True(t, info.IsDir())
	})

	t.Run("root is a file", func(t *testing.T) {
		t.Parallel()
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

		_, err := NewLocal(LocalConfig{Directory: filepath.Join(file, "uploads")})
		require.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestLocalDisk_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	d := newTestLocal(t)

	fd, err := d.Write(ctx, "movies", strings.NewReader("hello"), WithContentType("text/plain"))
	require.NoError(t, err)
	require.Regexp(t, `^movies/[0-9A-Z]{26}\.txt$`, fd.Path)
	require.Equal(t, int64(5), fd.Size)
	require.Equal(t, "text/plain", fd.MIMEType)

	require.Equal(t, "hello", readAll(t, d, fd.Path))

	size, err := d.ReadSize(ctx, fd.Path)
	require.NoError(t, err)
	require.Equal(t, int64(5), size)

	require.NoError(t, d.Delete(ctx, fd.Path))

	_, err = d.Read(ctx, fd.Path)
	require.ErrorIs(t, err, ErrFileDoesNotExist)
	_, err = d.ReadSize(ctx, fd.Path)
	require.ErrorIs(t, err, ErrFileDoesNotExist)
	require.ErrorIs(t, d.Delete(ctx, fd.Path), ErrFileDoesNotExist)
}

func TestLocalDisk_Write(t *testing.T) {
	t.Parallel()

	t.Run("unique names", func(t *testing.T) {
		t.Parallel()
		d := newTestLocal(t)

		a, err := d.Write(t.Context(), "", strings.NewReader("a"))
		require.NoError(t, err)
		b, err := d.Write(t.Context(), "", strings.NewReader("b"))
		require.NoError(t, err)
		require.NotEqual(t, a.Path, b.Path)
	})

	t.Run("explicit name replaces file", func(t *testing.T) {
		t.Parallel()
		d := newTestLocal(t)

		_, err := d.Write(t.Context(), "movies", strings.NewReader("old"), WithName("iron-man.avi"))
		require.NoError(t, err)
		fd, err := d.Write(t.Context(), "movies", strings.NewReader("new content"), WithName("iron-man.avi"))
		require.NoError(t, err)
		require.Equal(t, "movies/iron-man.avi", fd.Path)
		require.Equal(t, "new content", readAll(t, d, "movies/iron-man.avi"))
	})

	t.Run("empty file", func(t *testing.T) {
		t.Parallel()
		d := newTestLocal(t)

		fd, err := d.Write(t.Context(), "", strings.NewReader(""))
		require.NoError(t, err)
		require.Zero(t, fd.Size)
		require.Empty(t, readAll(t, d, fd.Path))
	})

	t.Run("failing reader leaves nothing behind", func(t *testing.T) {
		t.Parallel()
		d := newTestLocal(t)
		srcErr := errors.New("client went away")

		_, err := d.Write(t.Context(), "movies", &failingReader{n: 64 << 10, err: srcErr})
		require.ErrorIs(t, err, ErrWrite)
		require.ErrorIs(t, err, srcErr)

		entries, err := os.ReadDir(filepath.Join(d.Root(), "movies"))
		require.NoError(t, err)
		require.Empty(t, entries)
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()
		d := newTestLocal(t)
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, err := d.Write(ctx, "movies", strings.NewReader("hello"))
		require.ErrorIs(t, err, ErrWrite)
		require.ErrorIs(t, err, context.Canceled)

		entries, err := os.ReadDir(filepath.Join(d.Root(), "movies"))
		require.NoError(t, err)
		require.Empty(t, entries)
	})

	t.Run("traversal rejected", func(t *testing.T) {
		t.Parallel()
		d := newTestLocal(t)

		_, err := d.Write(t.Context(), "../outside", strings.NewReader("x"))
		require.ErrorIs(t, err, ErrInvalidPath)

		_, err = d.Write(t.Context(), "movies", strings.NewReader("x"), WithName(".."))
		require.ErrorIs(t, err, ErrInvalidPath)
	})
}

func TestLocalDisk_ReadWithSize(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	d := newTestLocal(t)
	_, err := d.Write(ctx, "docs", strings.NewReader("short"), WithName("a.txt"))
	require.NoError(t, err)

	rc, size, err := d.ReadWithSize(ctx, "docs/a.txt")
	require.NoError(t, err)
	defer rc.Close()

	// Replace the file while the first version is open.
	_, err = d.Write(ctx, "docs", strings.NewReader("a much longer replacement"), WithName("a.txt"))
	require.NoError(t, err)

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "short", string(got))
	require.Equal(t, int64(len(got)), size)

	require.Equal(t, "a much longer replacement", readAll(t, d, "docs/a.txt"))

	_, _, err = d.ReadWithSize(ctx, "docs/missing.txt")
	require.ErrorIs(t, err, ErrFileDoesNotExist)
	_, _, err = d.ReadWithSize(ctx, "docs")
	require.ErrorIs(t, err, ErrFileDoesNotExist)
}

func TestLocalDisk_InvalidPaths(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	d := newTestLocal(t)

	for _, p := range []string{"", "/etc/passwd", "../secret", "a/../../secret"} {
		_, err := d.Read(ctx, p)
		require.ErrorIs(t, err, ErrInvalidPath, p)

		_, err = d.ReadSize(ctx, p)
		require.ErrorIs(t, err, ErrInvalidPath, p)

		require.ErrorIs(t, d.Delete(ctx, p), ErrInvalidPath, p)
	}
}

func TestLocalDisk_Directories(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	d := newTestLocal(t)
	_, err := d.Write(ctx, "movies", strings.NewReader("x"), WithName("a.avi"))
	require.NoError(t, err)

	_, err = d.Read(ctx, "movies")
	require.ErrorIs(t, err, ErrFileDoesNotExist)

	_, err = d.ReadSize(ctx, "movies")
	require.ErrorIs(t, err, ErrFileDoesNotExist)

	require.ErrorIs(t, d.Delete(ctx, "movies"), ErrFileDoesNotExist)
	require.Equal(t, "x", readAll(t, d, "movies/a.avi"))

	// A file used as a directory is a missing path, not an I/O failure.
	_, err = d.Read(ctx, "movies/a.avi/b")
	require.ErrorIs(t, err, ErrFileDoesNotExist)
}

func TestLocalDisk_Ping(t *testing.T) {
	t.Parallel()

	d := newTestLocal(t)
	require.NoError(t, d.Ping(t.Context()))

	require.NoError(t, os.RemoveAll(d.Root()))
	require.Error(t, d.Ping(t.Context()))
}
