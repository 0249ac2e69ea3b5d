package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ruralgeo/ruralgeo/internal/domain/repositories"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database/models"
)

var (
	ErrChecklistItemNotFound = errors.New("checklist item not found")
)

// Automatic validation messages (Portuguese, shown to analysts)
const (
	notesNoChecklist     = "Checklist técnico não encontrado."
	notesCriticalPending = "Itens críticos pendentes"
	notesFixesPending    = "Itens pendentes para correção"
	notesApproved        = "Documento técnico validado automaticamente com sucesso."
)

// UpdateChecklistInput carries the mutable fields of a checklist item. Nil
// pointers leave the field untouched.
type UpdateChecklistInput struct {
	Description *string
	Mandatory   *bool
	Critical    *bool
	Status      *models.ChecklistStatus
	Message     *string
	ValidatedBy *uuid.UUID
}

// ValidationService derives the technical status of a document from its
// checklist and keeps the two in sync: every checklist mutation re-runs the
// validation of the owning document. It writes the document status directly,
// bypassing the approved-version lock, since it is the authority that grants
// and revokes approval.
type ValidationService struct {
	docRepo       repositories.TechnicalDocumentRepository
	checklistRepo repositories.ChecklistRepository
	auditService  *AuditService
}

func NewValidationService(
	docRepo repositories.TechnicalDocumentRepository,
	checklistRepo repositories.ChecklistRepository,
	auditService *AuditService,
) *ValidationService {
	return &ValidationService{
		docRepo:       docRepo,
		checklistRepo: checklistRepo,
		auditService:  auditService,
	}
}

// DeriveStatus applies the validation cascade to a checklist:
//
//	no items                -> CORRIGIR
//	any critical item open  -> REPROVADO
//	any other item open     -> CORRIGIR
//	otherwise               -> APROVADO
//
// An item is satisfied when its status is OK or NA. The returned notes
// explain the decision.
func (s *ValidationService) DeriveStatus(items []models.ChecklistItem) (models.TechnicalStatus, string) {
	if len(items) == 0 {
		return models.TechnicalStatusNeedsFixes, notesNoChecklist
	}

	var criticalPending, pending []models.ChecklistItem
	for _, item := range items {
		if itemSatisfied(item) {
			continue
		}
		if item.Critical {
			criticalPending = append(criticalPending, item)
		} else {
			pending = append(pending, item)
		}
	}

	if len(criticalPending) > 0 {
		return models.TechnicalStatusRejected, pendingNotes(notesCriticalPending, criticalPending)
	}
	if len(pending) > 0 {
		return models.TechnicalStatusNeedsFixes, pendingNotes(notesFixesPending, pending)
	}
	return models.TechnicalStatusApproved, notesApproved
}

// ValidateDocument re-evaluates a document against its checklist and
// persists the derived status and notes. It is idempotent: re-running on an
// unchanged checklist yields the same result.
func (s *ValidationService) ValidateDocument(ctx context.Context, documentID uuid.UUID) (*models.TechnicalDocument, error) {
	document, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	items, err := s.checklistRepo.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	status, notes := s.DeriveStatus(items)
	statusChanged := document.TechnicalStatus != status

	document.TechnicalStatus = status
	document.TechnicalNotes = notes
	if err := s.docRepo.Update(ctx, document); err != nil {
		return nil, err
	}

	if statusChanged {
		s.auditService.Record(ctx, AuditEntityDocument, document.ID.String(), models.AuditStatusChange, AuditSourceAutomation, nil, models.JSONB{
			"group_key":        document.GroupKey,
			"version":          document.Version,
			"technical_status": string(status),
		})
	}

	return document, nil
}

// AddChecklistItem attaches a validation line to a document and re-runs the
// document's validation.
func (s *ValidationService) AddChecklistItem(ctx context.Context, documentID uuid.UUID, item *models.ChecklistItem) error {
	if _, err := s.docRepo.GetByID(ctx, documentID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}

	item.TechnicalDocumentID = documentID
	if item.Status == "" {
		item.Status = models.ChecklistStatusNotApplicable
	}

	if err := s.checklistRepo.Create(ctx, item); err != nil {
		return err
	}

	s.auditService.Record(ctx, AuditEntityChecklist, item.ID.String(), models.AuditCreate, AuditSourceAPI, nil, models.JSONB{
		"technical_document_id": documentID.String(),
		"key":                   item.Key,
	})

	_, err := s.ValidateDocument(ctx, documentID)
	return err
}

// UpdateChecklistItem mutates a checklist item and re-runs the validation of
// the owning document.
func (s *ValidationService) UpdateChecklistItem(ctx context.Context, itemID uuid.UUID, input UpdateChecklistInput) (*models.ChecklistItem, error) {
	item, err := s.checklistRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrChecklistItemNotFound
		}
		return nil, err
	}

	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.Mandatory != nil {
		item.Mandatory = *input.Mandatory
	}
	if input.Critical != nil {
		item.Critical = *input.Critical
	}
	if input.Message != nil {
		item.Message = *input.Message
	}
	if input.Status != nil {
		item.Status = *input.Status
		now := time.Now().UTC()
		item.ValidatedAt = &now
		item.ValidatedBy = input.ValidatedBy
		item.ValidatedAutomatically = input.ValidatedBy == nil
	}

	if err := s.checklistRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.auditService.Record(ctx, AuditEntityChecklist, item.ID.String(), models.AuditUpdate, AuditSourceAPI, input.ValidatedBy, models.JSONB{
		"key":    item.Key,
		"status": string(item.Status),
	})

	if _, err := s.ValidateDocument(ctx, item.TechnicalDocumentID); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ValidationService) ListChecklist(ctx context.Context, documentID uuid.UUID) ([]models.ChecklistItem, error) {
	return s.checklistRepo.ListByDocument(ctx, documentID)
}

// DeleteChecklistItem removes a validation line and re-runs the validation
// of the owning document.
func (s *ValidationService) DeleteChecklistItem(ctx context.Context, itemID uuid.UUID) error {
	item, err := s.checklistRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrChecklistItemNotFound
		}
		return err
	}

	if err := s.checklistRepo.Delete(ctx, itemID); err != nil {
		return err
	}

	s.auditService.Record(ctx, AuditEntityChecklist, itemID.String(), models.AuditDelete, AuditSourceAPI, nil, models.JSONB{
		"key": item.Key,
	})

	_, err = s.ValidateDocument(ctx, item.TechnicalDocumentID)
	return err
}

func itemSatisfied(item models.ChecklistItem) bool {
	return item.Status == models.ChecklistStatusOK || item.Status == models.ChecklistStatusNotApplicable
}

func pendingNotes(title string, items []models.ChecklistItem) string {
	lines := make([]string, 0, len(items)+1)
	lines = append(lines, title+":")
	for _, item := range items {
		lines = append(lines, "- "+item.Description)
	}
	return strings.Join(lines, "\n")
}
