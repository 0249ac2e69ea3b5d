package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ruralgeo/ruralgeo/internal/domain/services"
)

// StorageService stores deliverable files on the local filesystem, laid out
// as {base}/{property_id}/{subdir}/{filename}.
type StorageService struct {
	basePath string
}

func NewStorageService(basePath string) *StorageService {
	return &StorageService{
		basePath: basePath,
	}
}

func (s *StorageService) Store(ctx context.Context, params services.StorageParams) (string, error) {
	dir := filepath.Join(s.basePath, params.PropertyID.String(), params.Subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	filePath := filepath.Join(dir, params.Filename)
	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, params.FileReader); err != nil {
		return "", fmt.Errorf("failed to write file content: %w", err)
	}

	// Return relative path from base
	return filepath.Join(params.PropertyID.String(), params.Subdir, params.Filename), nil
}

func (s *StorageService) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := os.Open(filepath.Join(s.basePath, path))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

func (s *StorageService) Delete(ctx context.Context, path string) error {
	if err := os.Remove(filepath.Join(s.basePath, path)); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
