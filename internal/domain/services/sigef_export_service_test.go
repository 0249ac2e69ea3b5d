package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database/models"
)

func TestComposeSigefSheet(t *testing.T) {
	env := newTestEnv(t)
	property := env.createProperty(t)
	geometry := env.createGeometry(t, property.ID, squarePolygon(-63.9, -10.7, 0.001))

	sheet, err := env.sigefService.Compose(context.Background(), geometry.ID, "")
	require.NoError(t, err)

	assert.Equal(t, geometry.ID, sheet.GeometryID)
	assert.Equal(t, 32720, sheet.UTMEpsg)

	lines := strings.Split(strings.TrimRight(sheet.CSV, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "ordem;vertice_de;vertice_ate;x_utm_m;y_utm_m;azimute_graus;rumo;distancia_m;epsg_utm", lines[0])

	fields := strings.Split(lines[1], ";")
	require.Len(t, fields, 9)
	assert.Equal(t, "1", fields[0])
	assert.Equal(t, "V1", fields[1])
	assert.Equal(t, "V2", fields[2])
	assert.Equal(t, "32720", fields[8])

	// UTM coordinates with millimeter precision
	assert.Regexp(t, `^\d+\.\d{3}$`, fields[3])
	assert.Regexp(t, `^\d+\.\d{3}$`, fields[4])
	assert.Regexp(t, `^\d+\.\d{6}$`, fields[5])

	assert.Equal(t, "CSV", sheet.Metadata["formato"])
	assert.Equal(t, ";", sheet.Metadata["delimitador"])
	assert.Equal(t, 4326, sheet.Metadata["epsg_origem"])
	assert.Equal(t, 32720, sheet.Metadata["epsg_utm"])
	assert.Equal(t, 4, sheet.Metadata["linhas"])
}

func TestGenerateSigefDocumentWithoutStorage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := env.createProperty(t)
	geometry := env.createGeometry(t, property.ID, squarePolygon(-63.9, -10.7, 0.001))

	document, err := env.sigefService.GenerateDocument(ctx, geometry.ID, "")
	require.NoError(t, err)

	assert.Equal(t, models.GroupSigefSheet, document.GroupKey)
	assert.Equal(t, "Planilha SIGEF", document.Type)
	assert.Equal(t, 1, document.Version)
	assert.Empty(t, document.FilePath)
	assert.Contains(t, document.ContentText, "ordem;vertice_de")
	require.NotNil(t, document.GeneratedAt)
}

// dirStorage is a minimal storage backend for exercising the file path flow.
type dirStorage struct {
	base string
}

func (s *dirStorage) Store(ctx context.Context, params StorageParams) (string, error) {
	dir := filepath.Join(s.base, params.PropertyID.String(), params.Subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	content, err := io.ReadAll(params.FileReader)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, params.Filename), content, 0644); err != nil {
		return "", err
	}
	return filepath.Join(params.PropertyID.String(), params.Subdir, params.Filename), nil
}

func (s *dirStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.base, path))
}

func (s *dirStorage) Delete(ctx context.Context, path string) error {
	return os.Remove(filepath.Join(s.base, path))
}

func TestGenerateSigefDocumentStoresCSV(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := env.createProperty(t)
	geometry := env.createGeometry(t, property.ID, squarePolygon(-63.9, -10.7, 0.001))

	base := t.TempDir()
	sigefService := NewSigefExportService(env.geometryService, env.documentService, &dirStorage{base: base})

	document, err := sigefService.GenerateDocument(ctx, geometry.ID, "")
	require.NoError(t, err)

	require.NotEmpty(t, document.FilePath)
	assert.Contains(t, document.FilePath, property.ID.String())
	assert.Contains(t, document.FilePath, "sigef")
	assert.True(t, strings.HasPrefix(filepath.Base(document.FilePath), "planilha_sigef_"))

	content, err := os.ReadFile(filepath.Join(base, document.FilePath))
	require.NoError(t, err)
	assert.Equal(t, document.ContentText, string(content))
}
