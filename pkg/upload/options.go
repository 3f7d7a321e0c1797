package upload

import "log/slog"

// Default limits.
const (
	DefaultMaxFileSize  int64 = 10 << 20 // 10 MiB
	DefaultMaxFieldSize int64 = 1 << 20  // 1 MiB
)

// Option configures a Validator.
type Option func(*Validator)

// WithIgnoreUnknownFields discards parts whose name the schema does not declare
// instead of rejecting the form.
func WithIgnoreUnknownFields() Option {
	return func(v *Validator) {
		v.ignoreUnknown = true
	}
}

// WithContentSniffing detects file types from their first 512 bytes
// instead of trusting the Content-Type header sent by the client.
func WithContentSniffing() Option {
	return func(v *Validator) {
		v.sniff = true
	}
}

// WithMaxFiles limits the number of files across all fields. Zero means no limit.
func WithMaxFiles(n int) Option {
	return func(v *Validator) {
		if n >= 0 {
			v.maxFiles = n
		}
	}
}

// WithMaxFileSize sets the size limit for file fields without their own MaxSize.
func WithMaxFileSize(n int64) Option {
	return func(v *Validator) {
		if n > 0 {
			v.maxFileSize = n
		}
	}
}

// WithMaxFieldSize sets the length limit for text fields without their own MaxLength.
func WithMaxFieldSize(n int64) Option {
	return func(v *Validator) {
		if n > 0 {
			v.maxFieldSize = n
		}
	}
}

// WithMaxBodySize limits the whole request body. Zero means no limit.
func WithMaxBodySize(n int64) Option {
	return func(v *Validator) {
		if n >= 0 {
			v.maxBodySize = n
		}
	}
}

// WithLogger sets the logger for rejected uploads and cleanup failures.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.logger = l
		}
	}
}

// WithErrorHandler replaces the error handler used by Middleware.
func WithErrorHandler(h ErrorHandler) Option {
	return func(v *Validator) {
		if h != nil {
			v.errorHandler = h
		}
	}
}
