package disk

import (
	"context"
	"fmt"
	"io"
	"os"
)

// contextReader stops reading once ctx is done, so an aborted request
// interrupts the copy at the next chunk boundary.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func newContextReader(ctx context.Context, r io.Reader) io.Reader {
	return &contextReader{ctx: ctx, r: r}
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// spooledFile is a seekable copy of a stream kept in a temporary file.
type spooledFile struct {
	*os.File
	size int64
}

// Close closes and removes the temporary file.
func (s *spooledFile) Close() error {
	err := s.File.Close()
	if rerr := os.Remove(s.Name()); rerr != nil && err == nil {
		err = rerr
	}
	return err
}

// spool copies r into a temporary file and rewinds it.
// On any error the temporary file is removed before returning.
func spool(ctx context.Context, r io.Reader) (*spooledFile, error) {
	f, err := os.CreateTemp("", "disk-spool-*")
	if err != nil {
		return nil, fmt.Errorf("create spool file: %w", err)
	}
	s := &spooledFile{File: f}

	n, err := io.Copy(f, newContextReader(ctx, r))
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("rewind spool file: %w", err)
	}
	s.size = n
	return s, nil
}

// seekableSize returns the bytes remaining from the current offset of rs.
func seekableSize(rs io.ReadSeeker) (int64, error) {
	cur, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := rs.Seek(cur, io.SeekStart); err != nil {
		return 0, err
	}
	return end - cur, nil
}
