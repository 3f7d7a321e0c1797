package disk

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"path"
	"strings"
	"time"
)

// Crockford's Base32 alphabet (excludes I, L, O, U to avoid confusion).
const crockfordBase32 = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// newULID returns a 26-character ULID: 48-bit millisecond timestamp followed by 80 random bits.
// Generated file names are sortable by creation time and unique within a namespace.
func newULID() string {
	var b [16]byte
	ms := uint64(time.Now().UnixMilli())
	b[0] = byte(ms >> 40)
	b[1] = byte(ms >> 32)
	b[2] = byte(ms >> 24)
	b[3] = byte(ms >> 16)
	b[4] = byte(ms >> 8)
	b[5] = byte(ms)
	if _, err := rand.Read(b[6:]); err != nil {
		// Degraded but functional: fall back to time-based entropy.
		binary.BigEndian.PutUint64(b[8:], uint64(time.Now().UnixNano()))
	}

	// 128 bits encode into 26 base32 chars, lowest 5 bits last.
	hi := binary.BigEndian.Uint64(b[:8])
	lo := binary.BigEndian.Uint64(b[8:])
	var out [26]byte
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = crockfordBase32[lo&0x1F]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}

// cleanPath validates a backend-relative file path and returns its clean form.
func cleanPath(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	return cleanKey(p)
}

// cleanDir validates a directory key. An empty dirname or "." means the backend root.
func cleanDir(dirname string) (string, error) {
	if dirname == "" || dirname == "." {
		return "", nil
	}
	return cleanKey(strings.TrimSuffix(dirname, "/"))
}

// cleanKey rejects absolute keys, NUL bytes, backslashes and ".." segments.
func cleanKey(key string) (string, error) {
	if strings.HasPrefix(key, "/") || strings.ContainsAny(key, "\x00\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, key)
	}
	for seg := range strings.SplitSeq(key, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, key)
		}
	}
	cleaned := path.Clean(key)
	if cleaned == "." {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, key)
	}
	return cleaned, nil
}

// buildPath joins dirname with either the explicit name or a generated one.
// Generated names are {ulid}{ext}, where ext comes from WithExtension or the content type.
func buildPath(dirname string, o *writeOptions) (string, error) {
	dir, err := cleanDir(dirname)
	if err != nil {
		return "", err
	}

	name := o.name
	if name == "" {
		ext := o.extension
		if ext == "" && o.contentType != "" {
			ext = ExtFromMIME(o.contentType)
		}
		name = newULID() + ext
	} else if name == "." || name == ".." || strings.ContainsAny(name, "/\\\x00") {
		return "", fmt.Errorf("%w: name %q", ErrInvalidPath, name)
	}

	return path.Join(dir, name), nil
}
