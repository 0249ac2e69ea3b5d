package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database/models"
)

// SigefSheet is a composed SIGEF submission spreadsheet.
type SigefSheet struct {
	GeometryID  uuid.UUID    `json:"geometria_id"`
	UTMEpsg     int          `json:"epsg_utm"`
	CSV         string       `json:"csv"`
	Metadata    models.JSONB `json:"metadata"`
	GeneratedAt time.Time    `json:"gerado_em"`
}

// SigefExportService generates SIGEF submission spreadsheets (semicolon CSV
// with projected vertices and segment bearings) and files them as versioned
// technical documents in the PLANILHA_SIGEF group.
type SigefExportService struct {
	geometryService *GeometryService
	documentService *TechnicalDocumentService
	storage         StorageService
}

func NewSigefExportService(
	geometryService *GeometryService,
	documentService *TechnicalDocumentService,
	storage StorageService,
) *SigefExportService {
	return &SigefExportService{
		geometryService: geometryService,
		documentService: documentService,
		storage:         storage,
	}
}

// Compose builds the spreadsheet for a geometry without persisting anything.
func (s *SigefExportService) Compose(ctx context.Context, geometryID uuid.UUID, vertexPrefix string) (*SigefSheet, error) {
	geometry, err := s.geometryService.Get(ctx, geometryID)
	if err != nil {
		return nil, err
	}
	return s.compose(geometry, vertexPrefix)
}

// GenerateDocument composes the spreadsheet, stores the CSV file when a
// storage backend is configured, and files the result as a new version in
// the property's PLANILHA_SIGEF document group.
func (s *SigefExportService) GenerateDocument(ctx context.Context, geometryID uuid.UUID, vertexPrefix string) (*models.TechnicalDocument, error) {
	geometry, err := s.geometryService.Get(ctx, geometryID)
	if err != nil {
		return nil, err
	}

	sheet, err := s.compose(geometry, vertexPrefix)
	if err != nil {
		return nil, err
	}

	filePath := ""
	if s.storage != nil {
		filename := fmt.Sprintf("planilha_sigef_%d.csv", sheet.GeneratedAt.Unix())
		filePath, err = s.storage.Store(ctx, StorageParams{
			PropertyID:  geometry.PropertyID,
			FileReader:  strings.NewReader(sheet.CSV),
			Filename:    filename,
			ContentType: "text/csv",
			Size:        int64(len(sheet.CSV)),
			Subdir:      "sigef",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to store SIGEF spreadsheet: %w", err)
		}
	}

	generatedAt := sheet.GeneratedAt
	document := &models.TechnicalDocument{
		PropertyID:      geometry.PropertyID,
		GroupKey:        models.GroupSigefSheet,
		Type:            "Planilha SIGEF",
		TechnicalStatus: models.TechnicalStatusDraft,
		ContentText:     sheet.CSV,
		FilePath:        filePath,
		Metadata:        sheet.Metadata,
		GeneratedAt:     &generatedAt,
	}

	if err := s.documentService.CreateDocument(ctx, document); err != nil {
		return nil, err
	}
	return document, nil
}

func (s *SigefExportService) compose(geometry *models.Geometry, vertexPrefix string) (*SigefSheet, error) {
	utmEpsg, ring, segments, err := s.geometryService.projectedSegments(geometry, vertexPrefix)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	writer.Comma = ';'

	header := []string{
		"ordem", "vertice_de", "vertice_ate",
		"x_utm_m", "y_utm_m",
		"azimute_graus", "rumo", "distancia_m",
		"epsg_utm",
	}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for i, segment := range segments {
		from := ring[i]
		record := []string{
			strconv.Itoa(segment.Order),
			segment.FromLabel,
			segment.ToLabel,
			fmt.Sprintf("%.3f", from.X),
			fmt.Sprintf("%.3f", from.Y),
			fmt.Sprintf("%.6f", segment.AzimuthDeg),
			segment.Bearing,
			fmt.Sprintf("%.3f", segment.DistanceM),
			strconv.Itoa(utmEpsg),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &SigefSheet{
		GeometryID: geometry.ID,
		UTMEpsg:    utmEpsg,
		CSV:        buf.String(),
		Metadata: models.JSONB{
			"formato":         "CSV",
			"delimitador":     ";",
			"epsg_origem":     geometry.SourceEpsg,
			"epsg_utm":        utmEpsg,
			"prefixo_vertice": s.geometryService.vertexPrefix(vertexPrefix),
			"linhas":          len(segments),
			"gerado_em_utc":   now.Format(time.RFC3339),
		},
		GeneratedAt: now,
	}, nil
}
