package upload

import "errors"

// Sentinel errors for upload validation.
var (
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("upload: validation failed")

	// ErrInvalidSchema is returned by New for inconsistent schemas.
	ErrInvalidSchema = errors.New("upload: invalid schema")

	// errFileTooLarge is returned by limitedReader once the limit is crossed.
	errFileTooLarge = errors.New("upload: file exceeds size limit")
)

// Error codes for ValidationError.
const (
	ErrCodeNotMultipart  = "not_multipart"
	ErrCodeMalformedBody = "malformed_body"
	ErrCodeBodyTooLarge  = "body_too_large"
	ErrCodeUnknownField  = "unknown_field"
	ErrCodeRequired      = "required"
	ErrCodeInvalidMIME   = "invalid_mime"
	ErrCodeFileTooLarge  = "file_too_large"
	ErrCodeTooManyFiles  = "too_many_files"
	ErrCodeFieldTooLong  = "field_too_long"
)

// ValidationError represents a rejected upload. It is always a client input failure.
type ValidationError struct {
	Details map[string]any `json:"details,omitempty"` // Error-specific data
	Field   string         `json:"field,omitempty"`   // Form field name
	Code    string         `json:"code"`              // One of the ErrCode* constants
	Message string         `json:"message"`           // Human-readable message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrValidation) true for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(field, code, message string, details map[string]any) *ValidationError {
	if details == nil {
		details = map[string]any{}
	}
	return &ValidationError{
		Field:   field,
		Code:    code,
		Message: message,
		Details: details,
	}
}
