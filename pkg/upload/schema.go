package upload

import "fmt"

// Schema declares the fields a multipart form may carry.
// A name may appear in Files or Fields, not both.
type Schema struct {
	Files  map[string]FileField
	Fields map[string]TextField
}

// FileField describes a file part.
type FileField struct {
	// AllowedTypes lists accepted MIME types; "image/*" style wildcards are supported.
	// Empty accepts any type.
	AllowedTypes []string

	// SaveTo is the storage directory the file is streamed into.
	// Empty keeps the file in memory (File.Data).
	SaveTo string

	// MaxSize is the per-file size limit in bytes. Zero uses the validator default.
	MaxSize int64

	// Required rejects forms without at least one file for this field.
	Required bool

	// Multiple accepts more than one file for this field.
	Multiple bool
}

// TextField describes a plain form value.
type TextField struct {
	// MaxLength is the value limit in bytes. Zero uses the validator default.
	MaxLength int64

	// Required rejects forms without this value.
	Required bool
}

func (s Schema) validate(hasStore bool) error {
	if len(s.Files) == 0 && len(s.Fields) == 0 {
		return fmt.Errorf("%w: no fields declared", ErrInvalidSchema)
	}
	for name, f := range s.Files {
		if name == "" {
			return fmt.Errorf("%w: empty file field name", ErrInvalidSchema)
		}
		if _, ok := s.Fields[name]; ok {
			return fmt.Errorf("%w: %q declared as file and text field", ErrInvalidSchema, name)
		}
		if f.MaxSize < 0 {
			return fmt.Errorf("%w: %q: negative max size", ErrInvalidSchema, name)
		}
		if f.SaveTo != "" && !hasStore {
			return fmt.Errorf("%w: %q: save target requires storage", ErrInvalidSchema, name)
		}
	}
	for name, f := range s.Fields {
		if name == "" {
			return fmt.Errorf("%w: empty text field name", ErrInvalidSchema)
		}
		if f.MaxLength < 0 {
			return fmt.Errorf("%w: %q: negative max length", ErrInvalidSchema, name)
		}
	}
	return nil
}
