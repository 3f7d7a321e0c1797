package disk

import (
	"mime"
	"path"
	"strings"
)

// MIMEOctetStream is the fallback content type for unknown content.
const MIMEOctetStream = "application/octet-stream"

// mimeExtensions maps MIME types to preferred file extensions.
var mimeExtensions = map[string]string{
	// Images
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
	"image/bmp":     ".bmp",
	"image/tiff":    ".tiff",
	"image/x-icon":  ".ico",
	"image/heic":    ".heic",
	"image/heif":    ".heif",
	"image/avif":    ".avif",
	// Documents
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"application/vnd.ms-excel": ".xls",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         ".xlsx",
	"application/vnd.ms-powerpoint":                                             ".ppt",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": ".pptx",
	"text/plain":      ".txt",
	"text/csv":        ".csv",
	"text/html":       ".html",
	"text/css":        ".css",
	"application/rtf": ".rtf",
	// Data
	"application/json":       ".json",
	"application/xml":        ".xml",
	"application/javascript": ".js",
	// Video
	"video/mp4":        ".mp4",
	"video/webm":       ".webm",
	"video/ogg":        ".ogv",
	"video/quicktime":  ".mov",
	"video/x-msvideo":  ".avi",
	"video/x-matroska": ".mkv",
	// Audio
	"audio/mpeg": ".mp3",
	"audio/wav":  ".wav",
	"audio/ogg":  ".ogg",
	"audio/webm": ".weba",
	"audio/aac":  ".aac",
	"audio/flac": ".flac",
	"audio/mp4":  ".m4a",
	// Archives
	"application/zip":              ".zip",
	"application/gzip":             ".gz",
	"application/x-tar":            ".tar",
	"application/x-7z-compressed":  ".7z",
	"application/x-rar-compressed": ".rar",
}

// extensionTypes is the reverse of mimeExtensions plus common aliases.
var extensionTypes = func() map[string]string {
	m := make(map[string]string, len(mimeExtensions)+2)
	for typ, ext := range mimeExtensions {
		m[ext] = typ
	}
	m[".jpeg"] = "image/jpeg"
	m[".htm"] = "text/html"
	return m
}()

// ExtFromMIME returns the file extension for a MIME type.
// Returns empty string if MIME type is unknown.
func ExtFromMIME(mimeType string) string {
	return mimeExtensions[normalizeMIME(mimeType)]
}

// TypeByPath returns the MIME type implied by the extension of p.
// Returns MIMEOctetStream if the extension is unknown.
func TypeByPath(p string) string {
	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return MIMEOctetStream
	}
	if typ, ok := extensionTypes[ext]; ok {
		return typ
	}
	if typ := mime.TypeByExtension(ext); typ != "" {
		return typ
	}
	return MIMEOctetStream
}

// MatchesMIME checks if a MIME type matches any of the allowed patterns.
// Supports wildcards like "image/*". Parameters such as charset are ignored.
func MatchesMIME(mimeType string, allowed []string) bool {
	mimeType = normalizeMIME(mimeType)

	for _, pattern := range allowed {
		pattern = strings.TrimSpace(strings.ToLower(pattern))

		if mimeType == pattern {
			return true
		}

		if strings.HasSuffix(pattern, "/*") {
			prefix := strings.TrimSuffix(pattern, "*")
			if strings.HasPrefix(mimeType, prefix) {
				return true
			}
		}
	}

	return false
}

// normalizeMIME extracts the base MIME type, removing parameters like charset.
// Returns the lowercase MIME type.
func normalizeMIME(mimeType string) string {
	mimeType, _, _ = strings.Cut(mimeType, ";")
	return strings.TrimSpace(strings.ToLower(mimeType))
}
