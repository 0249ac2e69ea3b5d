package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ruralgeo/ruralgeo/internal/domain/geodesy"
	"github.com/ruralgeo/ruralgeo/internal/domain/repositories"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database/models"
)

var (
	ErrGeometryNotFound   = errors.New("geometry not found")
	ErrMetricsNotComputed = errors.New("geometry metrics not computed")
)

// Fallbacks applied when GeoDefaults fields are left zero.
const (
	DefaultSourceEpsg   = 4326
	DefaultVertexPrefix = "V"
)

// GeoDefaults are the configured fallbacks applied when a request omits the
// source EPSG of an uploaded polygon or the vertex label prefix used in
// memorials and SIGEF sheets.
type GeoDefaults struct {
	SourceEpsg   int
	VertexPrefix string
}

// GeometryService handles parcel boundary polygons. UTM EPSG, area and
// perimeter are derived attributes: every create and update recomputes the
// three together from the stored GeoJSON, so they can never drift from the
// polygon they describe.
type GeometryService struct {
	geometryRepo repositories.GeometryRepository
	propertyRepo repositories.PropertyRepository
	auditService *AuditService
	defaults     GeoDefaults
}

func NewGeometryService(
	geometryRepo repositories.GeometryRepository,
	propertyRepo repositories.PropertyRepository,
	auditService *AuditService,
	defaults GeoDefaults,
) *GeometryService {
	if defaults.SourceEpsg == 0 {
		defaults.SourceEpsg = DefaultSourceEpsg
	}
	if defaults.VertexPrefix == "" {
		defaults.VertexPrefix = DefaultVertexPrefix
	}
	return &GeometryService{
		geometryRepo: geometryRepo,
		propertyRepo: propertyRepo,
		auditService: auditService,
		defaults:     defaults,
	}
}

func (s *GeometryService) Create(ctx context.Context, geometry *models.Geometry) error {
	if _, err := s.propertyRepo.GetByID(ctx, geometry.PropertyID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPropertyNotFound
		}
		return err
	}

	if geometry.SourceEpsg == 0 {
		geometry.SourceEpsg = s.defaults.SourceEpsg
	}

	if err := s.recompute(geometry); err != nil {
		return err
	}

	if err := s.geometryRepo.Create(ctx, geometry); err != nil {
		return err
	}

	s.auditService.Record(ctx, AuditEntityGeometry, geometry.ID.String(), models.AuditCreate, AuditSourceAPI, nil, models.JSONB{
		"property_id":   geometry.PropertyID.String(),
		"utm_epsg":      *geometry.UTMEpsg,
		"area_hectares": *geometry.AreaHectares,
	})
	return nil
}

func (s *GeometryService) Get(ctx context.Context, id uuid.UUID) (*models.Geometry, error) {
	geometry, err := s.geometryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrGeometryNotFound
		}
		return nil, err
	}
	return geometry, nil
}

func (s *GeometryService) Update(ctx context.Context, geometry *models.Geometry) error {
	if geometry.SourceEpsg == 0 {
		geometry.SourceEpsg = s.defaults.SourceEpsg
	}

	if err := s.recompute(geometry); err != nil {
		return err
	}

	if err := s.geometryRepo.Update(ctx, geometry); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrGeometryNotFound
		}
		return err
	}

	s.auditService.Record(ctx, AuditEntityGeometry, geometry.ID.String(), models.AuditUpdate, AuditSourceAPI, nil, models.JSONB{
		"utm_epsg":      *geometry.UTMEpsg,
		"area_hectares": *geometry.AreaHectares,
	})
	return nil
}

func (s *GeometryService) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.Geometry, error) {
	return s.geometryRepo.ListByProperty(ctx, propertyID)
}

func (s *GeometryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.geometryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrGeometryNotFound
		}
		return err
	}

	s.auditService.Record(ctx, AuditEntityGeometry, id.String(), models.AuditDelete, AuditSourceAPI, nil, nil)
	return nil
}

// Segments projects the geometry into its UTM zone and returns the boundary
// segments with distance, azimuth and quadrant bearing per segment.
func (s *GeometryService) Segments(ctx context.Context, id uuid.UUID, vertexPrefix string) (*models.Geometry, int, []geodesy.Segment, error) {
	geometry, err := s.Get(ctx, id)
	if err != nil {
		return nil, 0, nil, err
	}

	utmEpsg, _, segments, err := s.projectedSegments(geometry, vertexPrefix)
	if err != nil {
		return nil, 0, nil, err
	}

	return geometry, utmEpsg, segments, nil
}

func (s *GeometryService) recompute(geometry *models.Geometry) error {
	metrics, err := geodesy.ComputeMetrics(geometry.GeoJSON, geometry.SourceEpsg)
	if err != nil {
		return err
	}

	geometry.UTMEpsg = &metrics.UTMEpsg
	geometry.AreaHectares = &metrics.AreaHectares
	geometry.PerimeterM = &metrics.PerimeterM
	return nil
}

// vertexPrefix resolves a requested vertex label prefix against the
// configured default.
func (s *GeometryService) vertexPrefix(prefix string) string {
	if prefix == "" {
		return s.defaults.VertexPrefix
	}
	return prefix
}

// projectedSegments is the shared projection pipeline behind memorials and
// SIGEF sheets.
func (s *GeometryService) projectedSegments(geometry *models.Geometry, vertexPrefix string) (int, []geodesy.Point, []geodesy.Segment, error) {
	utmEpsg, ring, err := geodesy.Project(geometry.GeoJSON, geometry.SourceEpsg)
	if err != nil {
		return 0, nil, nil, err
	}

	segments, err := geodesy.ComputeSegments(ring, s.vertexPrefix(vertexPrefix))
	if err != nil {
		return 0, nil, nil, err
	}

	return utmEpsg, ring, segments, nil
}
