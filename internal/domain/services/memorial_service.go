package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ruralgeo/ruralgeo/internal/domain/geodesy"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database/models"
)

// Memorial is the composed descriptive memorial of a parcel boundary.
type Memorial struct {
	GeometryID   uuid.UUID         `json:"geometria_id"`
	UTMEpsg      int               `json:"epsg_utm"`
	AreaHectares float64           `json:"area_hectares"`
	PerimeterM   float64           `json:"perimetro_m"`
	Segments     []geodesy.Segment `json:"linhas"`
	Text         string            `json:"texto"`
	GeneratedAt  time.Time         `json:"gerado_em"`
}

// MemorialService composes descriptive memorials (memorial descritivo) from
// parcel geometries and files them as versioned technical documents in the
// MEMORIAL group.
type MemorialService struct {
	geometryService *GeometryService
	documentService *TechnicalDocumentService
}

func NewMemorialService(geometryService *GeometryService, documentService *TechnicalDocumentService) *MemorialService {
	return &MemorialService{
		geometryService: geometryService,
		documentService: documentService,
	}
}

// Compose builds the memorial for a geometry without persisting anything.
// The geometry must have its derived metrics computed.
func (s *MemorialService) Compose(ctx context.Context, geometryID uuid.UUID, vertexPrefix string) (*Memorial, error) {
	geometry, err := s.geometryService.Get(ctx, geometryID)
	if err != nil {
		return nil, err
	}
	return s.compose(geometry, vertexPrefix)
}

// GenerateDocument composes the memorial and files it as a new version in
// the property's MEMORIAL document group.
func (s *MemorialService) GenerateDocument(ctx context.Context, geometryID uuid.UUID, vertexPrefix string) (*models.TechnicalDocument, error) {
	geometry, err := s.geometryService.Get(ctx, geometryID)
	if err != nil {
		return nil, err
	}

	memorial, err := s.compose(geometry, vertexPrefix)
	if err != nil {
		return nil, err
	}

	segments := make([]interface{}, 0, len(memorial.Segments))
	for _, segment := range memorial.Segments {
		segments = append(segments, map[string]interface{}{
			"ordem":         segment.Order,
			"de_vertice":    segment.FromLabel,
			"ate_vertice":   segment.ToLabel,
			"distancia_m":   segment.DistanceM,
			"azimute_graus": segment.AzimuthDeg,
			"rumo":          segment.Bearing,
		})
	}

	generatedAt := memorial.GeneratedAt
	document := &models.TechnicalDocument{
		PropertyID:      geometry.PropertyID,
		GroupKey:        models.GroupMemorial,
		Type:            "Memorial Descritivo",
		TechnicalStatus: models.TechnicalStatusDraft,
		ContentText:     memorial.Text,
		ContentJSON: models.JSONB{
			"geometria_id":  memorial.GeometryID.String(),
			"epsg_utm":      memorial.UTMEpsg,
			"area_hectares": memorial.AreaHectares,
			"perimetro_m":   memorial.PerimeterM,
			"linhas":        segments,
		},
		Metadata: models.JSONB{
			"geometria_id":    memorial.GeometryID.String(),
			"epsg_utm":        memorial.UTMEpsg,
			"prefixo_vertice": s.geometryService.vertexPrefix(vertexPrefix),
			"gerado_em_utc":   generatedAt.Format(time.RFC3339),
			"total_segmentos": len(memorial.Segments),
		},
		GeneratedAt: &generatedAt,
	}

	if err := s.documentService.CreateDocument(ctx, document); err != nil {
		return nil, err
	}
	return document, nil
}

func (s *MemorialService) compose(geometry *models.Geometry, vertexPrefix string) (*Memorial, error) {
	if geometry.UTMEpsg == nil || geometry.AreaHectares == nil || geometry.PerimeterM == nil {
		return nil, ErrMetricsNotComputed
	}

	utmEpsg, _, segments, err := s.geometryService.projectedSegments(geometry, vertexPrefix)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	memorial := &Memorial{
		GeometryID:   geometry.ID,
		UTMEpsg:      utmEpsg,
		AreaHectares: *geometry.AreaHectares,
		PerimeterM:   *geometry.PerimeterM,
		Segments:     segments,
		GeneratedAt:  now,
	}
	memorial.Text = memorialText(memorial)
	return memorial, nil
}

func memorialText(memorial *Memorial) string {
	lines := []string{
		"MEMORIAL DESCRITIVO",
		fmt.Sprintf("Geometria ID: %s", memorial.GeometryID),
		fmt.Sprintf("Sistema de Referência: SIRGAS2000 / UTM (EPSG:%d)", memorial.UTMEpsg),
		fmt.Sprintf("Área: %.4f ha", memorial.AreaHectares),
		fmt.Sprintf("Perímetro: %.2f m", memorial.PerimeterM),
		"",
		"DESCRIÇÃO PERIMÉTRICA (RUMOS E DISTÂNCIAS):",
	}

	for _, segment := range memorial.Segments {
		lines = append(lines, fmt.Sprintf(
			"%02d) Do %s ao %s: Rumo %s — Distância %.2f m (Azimute %.6f°)",
			segment.Order, segment.FromLabel, segment.ToLabel,
			segment.Bearing, segment.DistanceM, segment.AzimuthDeg,
		))
	}

	lines = append(lines, "", fmt.Sprintf("Gerado em (UTC): %s", memorial.GeneratedAt.Format(time.RFC3339)))
	return strings.Join(lines, "\n")
}
