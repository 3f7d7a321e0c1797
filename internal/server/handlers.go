package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/disk/pkg/disk"
	"github.com/dmitrymomot/disk/pkg/upload"
)

type uploadedFile struct {
	disk.FileDescriptor
	Filename string `json:"filename"`
}

type uploadResponse struct {
	Description string         `json:"description,omitempty"`
	Files       []uploadedFile `json:"files"`
}

// handleUpload answers POST /files after the validator has stored the files.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	res, ok := upload.FromContext(r.Context())
	if !ok {
		s.writeError(w, r, errMissingResult)
		return
	}

	resp := uploadResponse{
		Description: res.Value(descriptionField),
		Files:       make([]uploadedFile, 0, len(res.Files[fileField])),
	}
	for _, f := range res.Files[fileField] {
		if f.Descriptor == nil {
			continue
		}
		resp.Files = append(resp.Files, uploadedFile{FileDescriptor: *f.Descriptor, Filename: f.Filename})
	}

	s.logger.InfoContext(r.Context(), "files uploaded", slog.Any("paths", res.Paths()))
	writeJSON(w, http.StatusCreated, resp)
}

// handleDownload answers GET /files/{path}.
// Query parameters: filename overrides the suggested name, download=true forces an attachment.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	p := chi.URLParam(r, "*")
	q := r.URL.Query()

	var opts []disk.ResponseOption
	if name := q.Get("filename"); name != "" {
		opts = append(opts, disk.WithFilename(name))
	}
	if force, _ := strconv.ParseBool(q.Get("download")); force {
		opts = append(opts, disk.WithForceDownload())
	}

	resp, err := s.disk.HTTPResponse(r.Context(), p, opts...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := resp.Write(w); err != nil {
		// Headers are sent; the client sees a truncated body.
		s.logger.WarnContext(r.Context(), "file stream interrupted",
			slog.String("path", p),
			slog.String("error", err.Error()),
		)
	}
}

// handleDelete answers DELETE /files/{path}.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	p := chi.URLParam(r, "*")
	if err := s.disk.Delete(r.Context(), p); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	errorHandler(s.logger)(w, r, err)
}
