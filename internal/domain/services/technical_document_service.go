package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ruralgeo/ruralgeo/internal/domain/repositories"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database/models"
)

var (
	ErrDocumentNotFound = errors.New("technical document not found")
	ErrDocumentLocked   = errors.New("approved current version cannot be modified, create a new version")
	ErrVersionConflict  = errors.New("concurrent version creation conflict")
	ErrMissingGroupKey  = errors.New("document group key is required")
)

// DocumentObserver is notified after a document mutation has been committed.
// Observers run synchronously in registration order and must not call back
// into TechnicalDocumentService mutations for the same document.
type DocumentObserver interface {
	DocumentChanged(ctx context.Context, document *models.TechnicalDocument, action models.AuditAction)
}

// UpdateDocumentInput carries the mutable fields of a document version. Nil
// pointers leave the field untouched.
type UpdateDocumentInput struct {
	Type            *string
	TechnicalStatus *models.TechnicalStatus
	TechnicalNotes  *string
	ContentText     *string
	ContentJSON     models.JSONB
	FilePath        *string
	Metadata        models.JSONB
}

// NewVersionInput carries the content of a freshly created version. Type is
// inherited from the previous version unless overridden.
type NewVersionInput struct {
	Type           string
	TechnicalNotes string
	ContentText    string
	ContentJSON    models.JSONB
	FilePath       string
	Metadata       models.JSONB
}

// TechnicalDocumentService owns the versioned document lifecycle: version
// creation, the single-current invariant, the approved-version lock and the
// post-commit observer notifications.
type TechnicalDocumentService struct {
	docRepo      repositories.TechnicalDocumentRepository
	propertyRepo repositories.PropertyRepository
	auditService *AuditService
	cache        CacheService

	observers []DocumentObserver
}

func NewTechnicalDocumentService(
	docRepo repositories.TechnicalDocumentRepository,
	propertyRepo repositories.PropertyRepository,
	auditService *AuditService,
	cache CacheService,
) *TechnicalDocumentService {
	return &TechnicalDocumentService{
		docRepo:      docRepo,
		propertyRepo: propertyRepo,
		auditService: auditService,
		cache:        cache,
	}
}

// RegisterObserver adds a post-commit observer. Call during startup wiring,
// before the service starts receiving requests.
func (s *TechnicalDocumentService) RegisterObserver(observer DocumentObserver) {
	s.observers = append(s.observers, observer)
}

// CreateDocument creates a new version in the document's lineage. A first
// document of a group becomes version 1; subsequent ones get the next version
// number and demote the previous current version.
func (s *TechnicalDocumentService) CreateDocument(ctx context.Context, document *models.TechnicalDocument) error {
	if document.GroupKey == "" {
		return ErrMissingGroupKey
	}

	if _, err := s.propertyRepo.GetByID(ctx, document.PropertyID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPropertyNotFound
		}
		return err
	}

	if document.TechnicalStatus == "" {
		document.TechnicalStatus = models.TechnicalStatusDraft
	}

	if err := s.docRepo.CreateVersion(ctx, document, nil); err != nil {
		if errors.Is(err, repositories.ErrVersionConflict) {
			return ErrVersionConflict
		}
		return err
	}

	s.invalidatePropertyCache(ctx, document.PropertyID)
	s.auditService.Record(ctx, AuditEntityDocument, document.ID.String(), models.AuditCreate, AuditSourceAPI, nil, models.JSONB{
		"group_key": document.GroupKey,
		"version":   document.Version,
	})
	s.notify(ctx, document, models.AuditCreate)
	return nil
}

// CreateNewVersion creates the next version of an existing document's
// lineage, inheriting the human type label from the referenced version.
func (s *TechnicalDocumentService) CreateNewVersion(ctx context.Context, documentID uuid.UUID, input NewVersionInput) (*models.TechnicalDocument, error) {
	previous, err := s.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	next := &models.TechnicalDocument{
		PropertyID:      previous.PropertyID,
		GroupKey:        previous.GroupKey,
		Type:            previous.Type,
		TechnicalStatus: models.TechnicalStatusDraft,
		TechnicalNotes:  input.TechnicalNotes,
		ContentText:     input.ContentText,
		ContentJSON:     input.ContentJSON,
		FilePath:        input.FilePath,
		Metadata:        input.Metadata,
	}
	if input.Type != "" {
		next.Type = input.Type
	}

	if err := s.docRepo.CreateVersion(ctx, next, nil); err != nil {
		if errors.Is(err, repositories.ErrVersionConflict) {
			return nil, ErrVersionConflict
		}
		return nil, err
	}

	s.invalidatePropertyCache(ctx, next.PropertyID)
	s.auditService.Record(ctx, AuditEntityDocument, next.ID.String(), models.AuditCreate, AuditSourceAPI, nil, models.JSONB{
		"group_key":        next.GroupKey,
		"version":          next.Version,
		"previous_version": previous.Version,
	})
	s.notify(ctx, next, models.AuditCreate)
	return next, nil
}

func (s *TechnicalDocumentService) GetDocument(ctx context.Context, id uuid.UUID) (*models.TechnicalDocument, error) {
	document, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return document, nil
}

// UpdateDocument mutates a version in place. The current version of a
// lineage is locked once approved: changing it requires a new version.
func (s *TechnicalDocumentService) UpdateDocument(ctx context.Context, id uuid.UUID, input UpdateDocumentInput) (*models.TechnicalDocument, error) {
	document, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	if document.IsCurrentVersion && document.TechnicalStatus == models.TechnicalStatusApproved {
		return nil, ErrDocumentLocked
	}

	statusChanged := false
	if input.Type != nil {
		document.Type = *input.Type
	}
	if input.TechnicalStatus != nil && *input.TechnicalStatus != document.TechnicalStatus {
		document.TechnicalStatus = *input.TechnicalStatus
		statusChanged = true
	}
	if input.TechnicalNotes != nil {
		document.TechnicalNotes = *input.TechnicalNotes
	}
	if input.ContentText != nil {
		document.ContentText = *input.ContentText
	}
	if input.ContentJSON != nil {
		document.ContentJSON = input.ContentJSON
	}
	if input.FilePath != nil {
		document.FilePath = *input.FilePath
	}
	if input.Metadata != nil {
		document.Metadata = input.Metadata
	}

	if err := s.docRepo.Update(ctx, document); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	action := models.AuditUpdate
	if statusChanged {
		action = models.AuditStatusChange
	}

	s.invalidatePropertyCache(ctx, document.PropertyID)
	s.auditService.Record(ctx, AuditEntityDocument, document.ID.String(), action, AuditSourceAPI, nil, models.JSONB{
		"group_key":        document.GroupKey,
		"version":          document.Version,
		"technical_status": string(document.TechnicalStatus),
	})
	s.notify(ctx, document, action)
	return document, nil
}

// DeleteDocument removes a version. Deleting the current version promotes
// the highest remaining version of the lineage.
func (s *TechnicalDocumentService) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	document, err := s.GetDocument(ctx, id)
	if err != nil {
		return err
	}

	if err := s.docRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}

	s.invalidatePropertyCache(ctx, document.PropertyID)
	s.auditService.Record(ctx, AuditEntityDocument, id.String(), models.AuditDelete, AuditSourceAPI, nil, models.JSONB{
		"group_key": document.GroupKey,
		"version":   document.Version,
	})
	s.notify(ctx, document, models.AuditDelete)
	return nil
}

func (s *TechnicalDocumentService) GetCurrent(ctx context.Context, propertyID uuid.UUID, groupKey string) (*models.TechnicalDocument, error) {
	document, err := s.docRepo.GetCurrent(ctx, propertyID, groupKey)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return document, nil
}

func (s *TechnicalDocumentService) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.TechnicalDocument, error) {
	return s.docRepo.ListByProperty(ctx, propertyID)
}

// ListVersions returns the full lineage of the group the given document
// belongs to, newest first.
func (s *TechnicalDocumentService) ListVersions(ctx context.Context, documentID uuid.UUID) ([]models.TechnicalDocument, error) {
	document, err := s.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return s.docRepo.ListVersions(ctx, document.PropertyID, document.GroupKey)
}

// ListCurrentDocuments returns the current version of every document group
// of a property. The feed is cached briefly; mutations invalidate it.
func (s *TechnicalDocumentService) ListCurrentDocuments(ctx context.Context, propertyID uuid.UUID) ([]models.TechnicalDocument, error) {
	cacheKey := fmt.Sprintf(CurrentDocumentsKeyPattern, propertyID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
			var documents []models.TechnicalDocument
			if err := json.Unmarshal([]byte(cached), &documents); err == nil {
				return documents, nil
			}
		}
	}

	documents, err := s.docRepo.ListCurrentByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(documents); err == nil {
			_ = s.cache.Set(ctx, cacheKey, string(payload), CurrentDocumentsTTL)
		}
	}

	return documents, nil
}

// StatusSummary counts the current versions of a property by technical
// status.
func (s *TechnicalDocumentService) StatusSummary(ctx context.Context, propertyID uuid.UUID) (map[models.TechnicalStatus]int64, error) {
	statuses := []models.TechnicalStatus{
		models.TechnicalStatusDraft,
		models.TechnicalStatusInReview,
		models.TechnicalStatusApproved,
		models.TechnicalStatusNeedsFixes,
		models.TechnicalStatusRejected,
	}

	summary := make(map[models.TechnicalStatus]int64, len(statuses))
	for _, status := range statuses {
		count, err := s.docRepo.CountCurrentByStatus(ctx, propertyID, status)
		if err != nil {
			return nil, err
		}
		summary[status] = count
	}
	return summary, nil
}

func (s *TechnicalDocumentService) notify(ctx context.Context, document *models.TechnicalDocument, action models.AuditAction) {
	for _, observer := range s.observers {
		observer.DocumentChanged(ctx, document, action)
	}
}

func (s *TechnicalDocumentService) invalidatePropertyCache(ctx context.Context, propertyID uuid.UUID) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, fmt.Sprintf(CurrentDocumentsKeyPattern, propertyID))
	_ = s.cache.Delete(ctx, fmt.Sprintf(ReadinessKeyPattern, propertyID))
}
