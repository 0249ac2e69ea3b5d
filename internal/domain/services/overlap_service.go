package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/peterstace/simplefeatures/geom"

	"github.com/ruralgeo/ruralgeo/internal/domain/geodesy"
	"github.com/ruralgeo/ruralgeo/internal/domain/repositories"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database/models"
)

// OverlapResult is the outcome of one overlap analysis run. Record is nil
// when the geometries do not overlap.
type OverlapResult struct {
	Intersects        bool            `json:"intersects"`
	OverlapAreaHa     float64         `json:"overlap_area_ha"`
	OverlapPercentage float64         `json:"overlap_percentage"`
	Record            *models.Overlap `json:"record,omitempty"`
}

// OverlapService intersects parcel boundaries and records overlaps against
// SIGEF parcels, CAR registries or sibling parcels. Intersection runs in the
// stored geographic coordinates; the intersection area is then projected to
// UTM for hectares.
type OverlapService struct {
	geometryRepo repositories.GeometryRepository
	overlapRepo  repositories.OverlapRepository
	auditService *AuditService
}

func NewOverlapService(
	geometryRepo repositories.GeometryRepository,
	overlapRepo repositories.OverlapRepository,
	auditService *AuditService,
) *OverlapService {
	return &OverlapService{
		geometryRepo: geometryRepo,
		overlapRepo:  overlapRepo,
		auditService: auditService,
	}
}

// Analyze intersects the base geometry with the affected one. A positive
// overlap area is persisted as a new append-only overlap record; percentage
// is relative to the base geometry's area.
func (s *OverlapService) Analyze(ctx context.Context, baseID, affectedID uuid.UUID, kind models.OverlapKind) (*OverlapResult, error) {
	base, err := s.getGeometry(ctx, baseID)
	if err != nil {
		return nil, err
	}
	affected, err := s.getGeometry(ctx, affectedID)
	if err != nil {
		return nil, err
	}

	basePoly, err := geodesy.ParsePolygon(base.GeoJSON)
	if err != nil {
		return nil, err
	}
	affectedPoly, err := geodesy.ParsePolygon(affected.GeoJSON)
	if err != nil {
		return nil, err
	}

	intersection, err := geom.Intersection(basePoly.AsGeometry(), affectedPoly.AsGeometry())
	if err != nil {
		return nil, fmt.Errorf("overlap intersection failed: %w", err)
	}
	if intersection.IsEmpty() {
		return &OverlapResult{}, nil
	}

	overlapHa, err := s.intersectionAreaHa(intersection, base.SourceEpsg)
	if err != nil {
		return nil, err
	}
	if overlapHa <= 0 {
		// Boundary touch: shared edge or vertex without shared area.
		return &OverlapResult{}, nil
	}

	baseAreaHa, err := s.baseAreaHa(base)
	if err != nil {
		return nil, err
	}

	record := &models.Overlap{
		BaseGeometryID:     baseID,
		AffectedGeometryID: affectedID,
		OverlapAreaHa:      overlapHa,
		OverlapPercentage:  (overlapHa / baseAreaHa) * 100.0,
		Kind:               kind,
	}
	if err := s.overlapRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	s.auditService.Record(ctx, AuditEntityOverlap, record.ID.String(), models.AuditCreate, AuditSourceAPI, nil, models.JSONB{
		"base_geometry_id":     baseID.String(),
		"affected_geometry_id": affectedID.String(),
		"kind":                 string(kind),
		"overlap_area_ha":      overlapHa,
	})

	return &OverlapResult{
		Intersects:        true,
		OverlapAreaHa:     record.OverlapAreaHa,
		OverlapPercentage: record.OverlapPercentage,
		Record:            record,
	}, nil
}

// History returns the recorded analysis runs for a base geometry, newest
// first.
func (s *OverlapService) History(ctx context.Context, baseGeometryID uuid.UUID) ([]models.Overlap, error) {
	return s.overlapRepo.ListByBaseGeometry(ctx, baseGeometryID)
}

func (s *OverlapService) getGeometry(ctx context.Context, id uuid.UUID) (*models.Geometry, error) {
	geometry, err := s.geometryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrGeometryNotFound
		}
		return nil, err
	}
	return geometry, nil
}

// intersectionAreaHa projects each polygonal component of the intersection
// to UTM and sums their areas.
func (s *OverlapService) intersectionAreaHa(intersection geom.Geometry, sourceEpsg int) (float64, error) {
	total := 0.0
	for _, poly := range polygonalComponents(intersection) {
		encoded, err := json.Marshal(poly.AsGeometry())
		if err != nil {
			return 0, err
		}
		metrics, err := geodesy.ComputeMetrics(string(encoded), sourceEpsg)
		if err != nil {
			return 0, err
		}
		total += metrics.AreaHectares
	}
	return total, nil
}

func (s *OverlapService) baseAreaHa(base *models.Geometry) (float64, error) {
	if base.AreaHectares != nil && *base.AreaHectares > 0 {
		return *base.AreaHectares, nil
	}

	metrics, err := geodesy.ComputeMetrics(base.GeoJSON, base.SourceEpsg)
	if err != nil {
		return 0, err
	}
	if metrics.AreaHectares <= 0 {
		return 0, ErrMetricsNotComputed
	}
	return metrics.AreaHectares, nil
}

func polygonalComponents(g geom.Geometry) []geom.Polygon {
	if poly, ok := g.AsPolygon(); ok {
		return []geom.Polygon{poly}
	}
	if multi, ok := g.AsMultiPolygon(); ok {
		polys := make([]geom.Polygon, 0, multi.NumPolygons())
		for i := 0; i < multi.NumPolygons(); i++ {
			polys = append(polys, multi.PolygonN(i))
		}
		return polys
	}
	if collection, ok := g.AsGeometryCollection(); ok {
		var polys []geom.Polygon
		for i := 0; i < collection.NumGeometries(); i++ {
			polys = append(polys, polygonalComponents(collection.GeometryN(i))...)
		}
		return polys
	}
	return nil
}
