package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database/models"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/repositories/postgresql"
	"github.com/ruralgeo/ruralgeo/pkg/logger"
)

// testEnv wires the full service stack against a throwaway SQLite database.
// The automation observer is not registered by default; tests that exercise
// it call RegisterObserver themselves.
type testEnv struct {
	repos *postgresql.Repositories

	auditService      *AuditService
	propertyService   *PropertyService
	geometryService   *GeometryService
	documentService   *TechnicalDocumentService
	validationService *ValidationService
	automationService *StatusAutomationService
	memorialService   *MemorialService
	sigefService      *SigefExportService
	overlapService    *OverlapService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "ruralgeo_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.AutoMigrate(models.GetAllModels()...))

	repos := postgresql.NewRepositories(db)
	log := logger.NewForTesting()

	auditService := NewAuditService(repos.AuditRepo, log)
	propertyService := NewPropertyService(repos.PropertyRepo, auditService)
	geometryService := NewGeometryService(repos.GeometryRepo, repos.PropertyRepo, auditService, GeoDefaults{})
	documentService := NewTechnicalDocumentService(repos.DocumentRepo, repos.PropertyRepo, auditService, nil)
	validationService := NewValidationService(repos.DocumentRepo, repos.ChecklistRepo, auditService)
	automationService := NewStatusAutomationService(validationService, repos.DocumentRepo, repos.GeometryRepo, auditService, nil, log)
	memorialService := NewMemorialService(geometryService, documentService)
	sigefService := NewSigefExportService(geometryService, documentService, nil)
	overlapService := NewOverlapService(repos.GeometryRepo, repos.OverlapRepo, auditService)

	return &testEnv{
		repos:             repos,
		auditService:      auditService,
		propertyService:   propertyService,
		geometryService:   geometryService,
		documentService:   documentService,
		validationService: validationService,
		automationService: automationService,
		memorialService:   memorialService,
		sigefService:      sigefService,
		overlapService:    overlapService,
	}
}

// squarePolygon builds a closed GeoJSON square with the given lower-left
// corner and side length in degrees.
func squarePolygon(lon, lat, side float64) string {
	return fmt.Sprintf(
		`{"type":"Polygon","coordinates":[[[%f,%f],[%f,%f],[%f,%f],[%f,%f],[%f,%f]]]}`,
		lon, lat,
		lon+side, lat,
		lon+side, lat+side,
		lon, lat+side,
		lon, lat,
	)
}

func (e *testEnv) createProperty(t *testing.T) *models.Property {
	t.Helper()

	property := &models.Property{
		Name:           "Fazenda Boa Vista",
		OwnerName:      "José da Silva",
		Municipality:   "Ji-Paraná",
		State:          "RO",
		OfficialAreaHa: 1.2,
	}
	require.NoError(t, e.propertyService.Create(context.Background(), property))
	return property
}

func (e *testEnv) createGeometry(t *testing.T, propertyID uuid.UUID, geojson string) *models.Geometry {
	t.Helper()

	geometry := &models.Geometry{
		PropertyID: propertyID,
		GeoJSON:    geojson,
		SourceEpsg: 4326,
		Name:       "Perímetro principal",
	}
	require.NoError(t, e.geometryService.Create(context.Background(), geometry))
	return geometry
}

// createDocumentDirect inserts a version through the repository, skipping the
// service-level side effects (cache, audit, observers).
func (e *testEnv) createDocumentDirect(t *testing.T, propertyID uuid.UUID, groupKey string, status models.TechnicalStatus) *models.TechnicalDocument {
	t.Helper()

	document := &models.TechnicalDocument{
		PropertyID:      propertyID,
		GroupKey:        groupKey,
		Type:            "Documento de Teste",
		TechnicalStatus: status,
	}
	require.NoError(t, e.repos.DocumentRepo.CreateVersion(context.Background(), document, nil))
	return document
}
