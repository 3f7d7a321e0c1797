package disk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtFromMIME(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mime string
		want string
	}{
		{"image/jpeg", ".jpg"},
		{"image/png", ".png"},
		{"IMAGE/PNG", ".png"},
		{"text/plain; charset=utf-8", ".txt"},
		{"video/x-msvideo", ".avi"},
		{"application/pdf", ".pdf"},
		{"application/x-unknown", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, ExtFromMIME(tt.mime))
		})
	}
}

func TestTypeByPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"movies/iron-man.avi", "video/x-msvideo"},
		{"a/b/photo.JPG", "image/jpeg"},
		{"photo.jpeg", "image/jpeg"},
		{"index.htm", "text/html"},
		{"report.pdf", "application/pdf"},
		{"noext", MIMEOctetStream},
		{"file.zzzunknown", MIMEOctetStream},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, TypeByPath(tt.path))
		})
	}
}

func TestMatchesMIME(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mime    string
		allowed []string
		want    bool
	}{
		{"exact", "image/png", []string{"image/png"}, true},
		{"wildcard", "image/webp", []string{"image/*"}, true},
		{"wildcard other family", "video/mp4", []string{"image/*"}, false},
		{"case insensitive", "Image/PNG", []string{"image/png"}, true},
		{"params ignored", "text/plain; charset=utf-8", []string{"text/plain"}, true},
		{"pattern whitespace", "application/pdf", []string{" application/pdf "}, true},
		{"no match", "application/zip", []string{"image/*", "application/pdf"}, false},
		{"empty allowlist", "image/png", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, MatchesMIME(tt.mime, tt.allowed))
		})
	}
}
