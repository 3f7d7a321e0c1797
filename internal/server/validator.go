package server

import (
	"errors"
	"log/slog"

	"github.com/dmitrymomot/disk/internal/config"
	"github.com/dmitrymomot/disk/pkg/logger"
	"github.com/dmitrymomot/disk/pkg/upload"
)

// Form fields accepted by POST /files.
const (
	fileField        = "file"
	descriptionField = "description"

	maxDescriptionLength = 1024
)

var errMissingResult = errors.New("server: upload result missing from context")

// NewValidator builds the upload validator for POST /files: one or more
// "file" parts stored under cfg.Directory and an optional "description".
func NewValidator(store upload.Storage, cfg config.UploadConfig, log *slog.Logger) (*upload.Validator, error) {
	if log == nil {
		log = logger.NewNope()
	}

	schema := upload.Schema{
		Files: map[string]upload.FileField{
			fileField: {
				AllowedTypes: cfg.AllowedTypes,
				SaveTo:       cfg.Directory,
				MaxSize:      cfg.MaxFileSize,
				Required:     true,
				Multiple:     true,
			},
		},
		Fields: map[string]upload.TextField{
			descriptionField: {MaxLength: maxDescriptionLength},
		},
	}

	return upload.New(store, schema,
		upload.WithMaxFileSize(cfg.MaxFileSize),
		upload.WithMaxBodySize(cfg.MaxBodySize),
		upload.WithLogger(log),
		upload.WithErrorHandler(errorHandler(log)),
	)
}
