package services

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// External service interfaces that our domain services depend on

// StorageService interface for deliverable file storage
type StorageService interface {
	Store(ctx context.Context, params StorageParams) (string, error)
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}

// StorageParams contains parameters for storing files
type StorageParams struct {
	PropertyID  uuid.UUID
	FileReader  io.Reader
	Filename    string
	ContentType string
	Size        int64
	// Subdirectory under the property folder, e.g. "sigef"
	Subdir string
}
