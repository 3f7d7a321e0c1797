package upload

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/disk/pkg/disk"
)

// sniffLen is the number of bytes http.DetectContentType considers.
const sniffLen = 512

// cleanupConcurrency bounds parallel deletes after a rejected upload.
const cleanupConcurrency = 4

// Storage is the part of a disk the validator persists files to.
// *disk.Disk and every disk.Backend satisfy it.
type Storage interface {
	Write(ctx context.Context, dirname string, r io.Reader, opts ...disk.WriteOption) (*disk.FileDescriptor, error)
	Delete(ctx context.Context, path string) error
}

// Validator parses multipart/form-data bodies against a Schema.
// It holds no per-request state and is safe for concurrent use.
type Validator struct {
	store         Storage
	schema        Schema
	logger        *slog.Logger
	errorHandler  ErrorHandler
	maxFileSize   int64
	maxFieldSize  int64
	maxBodySize   int64
	maxFiles      int
	ignoreUnknown bool
	sniff         bool
}

// New creates a Validator. store may be nil when no file field has a SaveTo directory.
func New(store Storage, schema Schema, opts ...Option) (*Validator, error) {
	if err := schema.validate(store != nil); err != nil {
		return nil, err
	}

	v := &Validator{
		store:        store,
		schema:       schema,
		logger:       slog.New(slog.DiscardHandler),
		errorHandler: DefaultErrorHandler,
		maxFileSize:  DefaultMaxFileSize,
		maxFieldSize: DefaultMaxFieldSize,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Validate parses and validates the body of r.
// On error, files already persisted for this request have been deleted.
func (v *Validator) Validate(r *http.Request) (*Result, error) {
	return v.validate(nil, r)
}

func (v *Validator) validate(w http.ResponseWriter, r *http.Request) (*Result, error) {
	var body io.Reader = http.NoBody
	if r.Body != nil {
		body = r.Body
		if v.maxBodySize > 0 {
			body = http.MaxBytesReader(w, r.Body, v.maxBodySize)
		}
	}
	return v.ValidateReader(r.Context(), body, r.Header.Get("Content-Type"))
}

// ValidateReader parses a multipart body with the given Content-Type header value.
func (v *Validator) ValidateReader(ctx context.Context, body io.Reader, contentType string) (*Result, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "multipart/form-data" || params["boundary"] == "" {
		return nil, newValidationError("", ErrCodeNotMultipart,
			"content type must be multipart/form-data",
			map[string]any{"content_type": contentType},
		)
	}

	s := &session{
		v:      v,
		ctx:    ctx,
		result: newResult(),
	}
	if err := s.run(multipart.NewReader(body, params["boundary"])); err != nil {
		if cerr := s.cleanup(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		v.logger.DebugContext(ctx, "upload rejected",
			slog.String("error", err.Error()),
			slog.Int("discarded_files", len(s.saved)),
		)
		return nil, err
	}
	return s.result, nil
}

// session is the state of one validation run.
type session struct {
	v      *Validator
	ctx    context.Context
	result *Result
	saved  []string // paths persisted so far, deleted on failure
	files  int
}

func (s *session) run(mr *multipart.Reader) error {
	for {
		if err := s.ctx.Err(); err != nil {
			return err
		}
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return s.readError("", err)
		}
		err = s.handlePart(part)
		_ = part.Close()
		if err != nil {
			return err
		}
	}
	return s.checkRequired()
}

func (s *session) handlePart(part *multipart.Part) error {
	name := part.FormName()
	if f, ok := s.v.schema.Files[name]; ok {
		return s.handleFile(name, f, part)
	}
	if f, ok := s.v.schema.Fields[name]; ok {
		return s.handleField(name, f, part)
	}
	if s.v.ignoreUnknown {
		if _, err := io.Copy(io.Discard, part); err != nil {
			return s.readError(name, err)
		}
		return nil
	}
	return newValidationError(name, ErrCodeUnknownField,
		fmt.Sprintf("unexpected field %q", name), nil)
}

func (s *session) handleFile(name string, field FileField, part *multipart.Part) error {
	filename := part.FileName()
	br := bufio.NewReaderSize(part, sniffLen)

	// Browsers send an empty nameless part for a file input left blank.
	if filename == "" {
		if _, err := br.Peek(1); errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return s.readError(name, err)
		}
	}

	contentType := part.Header.Get("Content-Type")
	if s.v.sniff {
		head, err := br.Peek(sniffLen)
		if err != nil && !errors.Is(err, io.EOF) {
			return s.readError(name, err)
		}
		contentType = http.DetectContentType(head)
	}
	if contentType == "" {
		contentType = disk.MIMEOctetStream
	}

	if !field.Multiple && len(s.result.Files[name]) > 0 {
		return newValidationError(name, ErrCodeTooManyFiles,
			fmt.Sprintf("field %q accepts a single file", name), nil)
	}
	if s.v.maxFiles > 0 && s.files >= s.v.maxFiles {
		return newValidationError(name, ErrCodeTooManyFiles,
			fmt.Sprintf("too many files, maximum is %d", s.v.maxFiles),
			map[string]any{"max_files": s.v.maxFiles})
	}
	if len(field.AllowedTypes) > 0 && !disk.MatchesMIME(contentType, field.AllowedTypes) {
		return newValidationError(name, ErrCodeInvalidMIME,
			fmt.Sprintf("file type %s is not allowed", contentType),
			map[string]any{"mime_type": contentType, "allowed": field.AllowedTypes})
	}

	maxSize := field.MaxSize
	if maxSize == 0 {
		maxSize = s.v.maxFileSize
	}
	lr := &limitedReader{r: br, remaining: maxSize}
	f := &File{
		Field:       name,
		Filename:    filename,
		ContentType: contentType,
	}

	if field.SaveTo != "" {
		fd, err := s.v.store.Write(s.ctx, field.SaveTo, lr, writeOptions(filename, contentType)...)
		switch {
		case lr.exceeded:
			return fileTooLarge(name, maxSize)
		case err == nil:
		case lr.err != nil:
			return s.readError(name, lr.err)
		case s.ctx.Err() != nil:
			return s.ctx.Err()
		default:
			return err
		}
		s.saved = append(s.saved, fd.Path)
		f.Descriptor = fd
		f.Size = fd.Size
	} else {
		data, err := io.ReadAll(lr)
		if lr.exceeded {
			return fileTooLarge(name, maxSize)
		}
		if err != nil {
			return s.readError(name, err)
		}
		f.Data = data
		f.Size = int64(len(data))
	}

	s.result.Files[name] = append(s.result.Files[name], f)
	s.files++
	return nil
}

func (s *session) handleField(name string, field TextField, part *multipart.Part) error {
	maxLen := field.MaxLength
	if maxLen == 0 {
		maxLen = s.v.maxFieldSize
	}

	data, err := io.ReadAll(io.LimitReader(part, maxLen+1))
	if err != nil {
		return s.readError(name, err)
	}
	if int64(len(data)) > maxLen {
		return newValidationError(name, ErrCodeFieldTooLong,
			fmt.Sprintf("field %q exceeds %d bytes", name, maxLen),
			map[string]any{"max_length": maxLen})
	}

	s.result.Fields[name] = append(s.result.Fields[name], string(data))
	return nil
}

func (s *session) checkRequired() error {
	for _, name := range slices.Sorted(maps.Keys(s.v.schema.Files)) {
		if s.v.schema.Files[name].Required && len(s.result.Files[name]) == 0 {
			return newValidationError(name, ErrCodeRequired,
				fmt.Sprintf("file %q is required", name), nil)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(s.v.schema.Fields)) {
		if s.v.schema.Fields[name].Required && len(s.result.Fields[name]) == 0 {
			return newValidationError(name, ErrCodeRequired,
				fmt.Sprintf("field %q is required", name), nil)
		}
	}
	return nil
}

// readError classifies a failure to read the request body.
func (s *session) readError(field string, err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return newValidationError(field, ErrCodeBodyTooLarge,
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
			map[string]any{"max_bytes": tooLarge.Limit})
	case s.ctx.Err() != nil:
		return s.ctx.Err()
	default:
		return newValidationError(field, ErrCodeMalformedBody,
			"malformed multipart body",
			map[string]any{"reason": err.Error()})
	}
}

// cleanup deletes every file persisted by this session.
// It runs detached from request cancellation so an aborted upload is still cleaned.
func (s *session) cleanup() error {
	if len(s.saved) == 0 {
		return nil
	}
	ctx := context.WithoutCancel(s.ctx)

	var g errgroup.Group
	g.SetLimit(cleanupConcurrency)
	errs := make([]error, len(s.saved))
	for i, p := range s.saved {
		g.Go(func() error {
			if err := s.v.store.Delete(ctx, p); err != nil && !disk.IsFileDoesNotExist(err) {
				s.v.logger.ErrorContext(ctx, "upload cleanup failed",
					slog.String("path", p),
					slog.String("error", err.Error()),
				)
				errs[i] = fmt.Errorf("upload: cleanup %s: %w", p, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func fileTooLarge(field string, maxSize int64) error {
	return newValidationError(field, ErrCodeFileTooLarge,
		fmt.Sprintf("file exceeds maximum size of %d bytes", maxSize),
		map[string]any{"max_bytes": maxSize})
}

// writeOptions names the stored file after its content type,
// falling back to the client extension when the type has none.
func writeOptions(filename, contentType string) []disk.WriteOption {
	opts := []disk.WriteOption{disk.WithContentType(contentType)}
	if disk.ExtFromMIME(contentType) == "" {
		if ext := safeExtension(filename); ext != "" {
			opts = append(opts, disk.WithExtension(ext))
		}
	}
	return opts
}

// safeExtension returns the lowercase extension of filename if it is short and alphanumeric.
func safeExtension(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, c := range ext[1:] {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return ""
		}
	}
	return ext
}

// limitedReader fails with errFileTooLarge on the first byte past its limit.
// It records the first read error of the underlying reader.
type limitedReader struct {
	r         io.Reader
	err       error
	remaining int64
	exceeded  bool
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.exceeded {
		return 0, errFileTooLarge
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	if int64(n) > l.remaining {
		n = int(l.remaining)
		l.remaining = 0
		l.exceeded = true
		return n, errFileTooLarge
	}
	l.remaining -= int64(n)
	if err != nil && !errors.Is(err, io.EOF) && l.err == nil {
		l.err = err
	}
	return n, err
}
