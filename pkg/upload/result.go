package upload

import "github.com/dmitrymomot/disk/pkg/disk"

// File is an accepted file part.
type File struct {
	// Descriptor is set when the field has a SaveTo directory.
	Descriptor *disk.FileDescriptor `json:"descriptor,omitempty"`

	Field       string `json:"field"`
	Filename    string `json:"filename"`     // Client-supplied name, untrusted
	ContentType string `json:"content_type"` // Declared or sniffed MIME type

	// Data holds the content of in-memory fields.
	Data []byte `json:"-"`

	Size int64 `json:"size"`
}

// Result holds the accepted form, keyed by field name in arrival order.
type Result struct {
	Files  map[string][]*File  `json:"files"`
	Fields map[string][]string `json:"fields"`
}

func newResult() *Result {
	return &Result{
		Files:  make(map[string][]*File),
		Fields: make(map[string][]string),
	}
}

// File returns the first file of field name, or nil.
func (r *Result) File(name string) *File {
	if files := r.Files[name]; len(files) > 0 {
		return files[0]
	}
	return nil
}

// Value returns the first value of field name, or "".
func (r *Result) Value(name string) string {
	if values := r.Fields[name]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// Paths returns the storage paths of every persisted file.
func (r *Result) Paths() []string {
	var paths []string
	for _, files := range r.Files {
		for _, f := range files {
			if f.Descriptor != nil {
				paths = append(paths, f.Descriptor.Path)
			}
		}
	}
	return paths
}
