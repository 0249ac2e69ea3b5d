package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/ruralgeo/ruralgeo/internal/domain/repositories"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database/models"
	"github.com/ruralgeo/ruralgeo/pkg/logger"
)

// Audit entity type labels
const (
	AuditEntityProperty  = "Imovel"
	AuditEntityGeometry  = "Geometria"
	AuditEntityDocument  = "DocumentoTecnico"
	AuditEntityChecklist = "ChecklistItem"
	AuditEntityOverlap   = "Sobreposicao"
)

// Audit sources
const (
	AuditSourceAPI        = "api"
	AuditSourceAutomation = "automation"
	AuditSourceSystem     = "system"
)

// AuditService writes the append-only audit trail. Recording is best-effort:
// a failed audit write never fails the business operation that triggered it.
type AuditService struct {
	auditRepo repositories.AuditLogRepository
	logger    *logger.Logger
}

func NewAuditService(auditRepo repositories.AuditLogRepository, log *logger.Logger) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
		logger:    log,
	}
}

// Record writes one audit entry. The write uses a detached context so it
// survives cancellation of the request that produced it.
func (s *AuditService) Record(ctx context.Context, entityType, entityID string, action models.AuditAction, source string, actorUserID *uuid.UUID, payload models.JSONB) {
	if source == "" {
		source = AuditSourceAPI
	}

	entry := &models.AuditLog{
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      action,
		ActorUserID: actorUserID,
		Source:      source,
		Payload:     payload,
	}

	if err := s.auditRepo.Create(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warn().
			Err(err).
			Str("entity_type", entityType).
			Str("entity_id", entityID).
			Str("action", string(action)).
			Msg("failed to write audit log")
	}
}

// History returns the audit entries for one entity, newest first.
func (s *AuditService) History(ctx context.Context, entityType, entityID string, params repositories.ListParams) ([]models.AuditLog, int64, error) {
	return s.auditRepo.ListByEntity(ctx, entityType, entityID, params)
}
