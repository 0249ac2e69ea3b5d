package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ruralgeo/ruralgeo/internal/domain/repositories"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database/models"
	"github.com/ruralgeo/ruralgeo/pkg/logger"
)

// Property readiness statuses derived from the current document set
const (
	ReadinessAwaitingDocuments   = "AGUARDANDO_DOCUMENTOS"
	ReadinessInReview            = "DOCUMENTOS_EM_ANALISE"
	ReadinessFixesPending        = "CORRECOES_PENDENTES"
	ReadinessTechnicallyApproved = "APROVADO_TECNICAMENTE"
	ReadinessReadyForSigef       = "PRONTO_PARA_SIGEF"
)

// requiredSigefGroups are the document groups a property must carry before
// it can be submitted to SIGEF.
var requiredSigefGroups = []string{models.GroupMemorial, models.GroupSketch}

// Readiness is the derived regularization state of a property.
type Readiness struct {
	Status      string    `json:"status"`
	Description string    `json:"descricao"`
	EvaluatedAt time.Time `json:"avaliado_em"`
}

// StatusAutomationService reacts to document mutations: it re-validates
// freshly created versions against their checklist and re-derives the
// property's regularization readiness. It observes TechnicalDocumentService
// and never mutates documents through it, so notifications cannot recurse.
type StatusAutomationService struct {
	validationService *ValidationService
	docRepo           repositories.TechnicalDocumentRepository
	geometryRepo      repositories.GeometryRepository
	auditService      *AuditService
	cache             CacheService
	logger            *logger.Logger
}

func NewStatusAutomationService(
	validationService *ValidationService,
	docRepo repositories.TechnicalDocumentRepository,
	geometryRepo repositories.GeometryRepository,
	auditService *AuditService,
	cache CacheService,
	log *logger.Logger,
) *StatusAutomationService {
	return &StatusAutomationService{
		validationService: validationService,
		docRepo:           docRepo,
		geometryRepo:      geometryRepo,
		auditService:      auditService,
		cache:             cache,
		logger:            log,
	}
}

// DocumentChanged implements DocumentObserver.
func (s *StatusAutomationService) DocumentChanged(ctx context.Context, document *models.TechnicalDocument, action models.AuditAction) {
	if action == models.AuditCreate {
		if _, err := s.validationService.ValidateDocument(ctx, document.ID); err != nil {
			s.logger.Warn().
				Err(err).
				Str("document_id", document.ID.String()).
				Msg("automatic validation after document event failed")
		}
	}

	readiness, err := s.EvaluateReadiness(ctx, document.PropertyID)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("property_id", document.PropertyID.String()).
			Msg("readiness evaluation after document event failed")
		return
	}

	s.auditService.Record(ctx, AuditEntityProperty, document.PropertyID.String(), models.AuditAutoEvent, AuditSourceAutomation, nil, models.JSONB{
		"status":    readiness.Status,
		"descricao": readiness.Description,
	})
}

// Readiness returns the cached readiness of a property, evaluating it when
// the cache is cold.
func (s *StatusAutomationService) Readiness(ctx context.Context, propertyID uuid.UUID) (*Readiness, error) {
	if s.cache != nil {
		key := fmt.Sprintf(ReadinessKeyPattern, propertyID)
		if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
			var readiness Readiness
			if err := json.Unmarshal([]byte(cached), &readiness); err == nil {
				return &readiness, nil
			}
		}
	}
	return s.EvaluateReadiness(ctx, propertyID)
}

// EvaluateReadiness derives the property's regularization state from the
// current document versions and the stored geometries.
func (s *StatusAutomationService) EvaluateReadiness(ctx context.Context, propertyID uuid.UUID) (*Readiness, error) {
	documents, err := s.docRepo.ListCurrentByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	readiness := &Readiness{EvaluatedAt: time.Now().UTC()}

	switch {
	case len(documents) == 0:
		readiness.Status = ReadinessAwaitingDocuments
		readiness.Description = "Nenhum documento técnico cadastrado."

	case anyStatus(documents, models.TechnicalStatusNeedsFixes, models.TechnicalStatusRejected):
		readiness.Status = ReadinessFixesPending
		readiness.Description = "Documentos técnicos com pendências a corrigir."

	case anyStatus(documents, models.TechnicalStatusDraft, models.TechnicalStatusInReview):
		readiness.Status = ReadinessInReview
		readiness.Description = "Documentos técnicos em análise."

	default:
		ready, err := s.sigefReady(ctx, propertyID, documents)
		if err != nil {
			return nil, err
		}
		if ready {
			readiness.Status = ReadinessReadyForSigef
			readiness.Description = "Imóvel tecnicamente completo e pronto para envio ao SIGEF."
		} else {
			readiness.Status = ReadinessTechnicallyApproved
			readiness.Description = "Todos os documentos técnicos foram aprovados."
		}
	}

	if s.cache != nil {
		if payload, err := json.Marshal(readiness); err == nil {
			_ = s.cache.Set(ctx, fmt.Sprintf(ReadinessKeyPattern, propertyID), string(payload), ReadinessTTL)
		}
	}

	return readiness, nil
}

// sigefReady requires at least one geometry with computed metrics and the
// mandatory document groups present among the approved current versions.
func (s *StatusAutomationService) sigefReady(ctx context.Context, propertyID uuid.UUID, documents []models.TechnicalDocument) (bool, error) {
	geometries, err := s.geometryRepo.ListByProperty(ctx, propertyID)
	if err != nil {
		return false, err
	}

	hasValidGeometry := false
	for _, geometry := range geometries {
		if geometry.GeoJSON != "" && geometry.AreaHectares != nil && geometry.PerimeterM != nil {
			hasValidGeometry = true
			break
		}
	}
	if !hasValidGeometry {
		return false, nil
	}

	groups := make(map[string]bool, len(documents))
	for _, document := range documents {
		groups[document.GroupKey] = true
	}
	for _, required := range requiredSigefGroups {
		if !groups[required] {
			return false, nil
		}
	}
	return true, nil
}

func anyStatus(documents []models.TechnicalDocument, statuses ...models.TechnicalStatus) bool {
	for _, document := range documents {
		for _, status := range statuses {
			if document.TechnicalStatus == status {
				return true
			}
		}
	}
	return false
}
