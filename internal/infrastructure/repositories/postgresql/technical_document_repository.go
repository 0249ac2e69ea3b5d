package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ruralgeo/ruralgeo/internal/domain/repositories"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database/models"
)

// TechnicalDocumentRepository implements the versioned document store on top
// of GORM. Version numbering and the single-current invariant are enforced
// inside transactions; the composite unique index on
// (property_id, group_key, version) is the backstop for races.
type TechnicalDocumentRepository struct {
	db *database.DB
}

func NewTechnicalDocumentRepository(db *database.DB) *TechnicalDocumentRepository {
	return &TechnicalDocumentRepository{db: db}
}

// CreateVersion inserts a new version into the document's lineage and flips
// the previous current version off atomically. When two auto-numbered
// creations race, the loser hits the unique index and is retried once with a
// freshly computed version number.
func (r *TechnicalDocumentRepository) CreateVersion(ctx context.Context, document *models.TechnicalDocument, explicitVersion *int) error {
	err := r.createVersionTx(ctx, document, explicitVersion)
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		if explicitVersion != nil {
			return fmt.Errorf("version %d already exists for group %s: %w",
				*explicitVersion, document.GroupKey, repositories.ErrVersionConflict)
		}
		if retryErr := r.createVersionTx(ctx, document, nil); retryErr != nil {
			if errors.Is(retryErr, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("failed to allocate version for group %s: %w",
					document.GroupKey, repositories.ErrVersionConflict)
			}
			return retryErr
		}
		return nil
	}

	return err
}

func (r *TechnicalDocumentRepository) createVersionTx(ctx context.Context, document *models.TechnicalDocument, explicitVersion *int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the highest version row so concurrent writers on the same
		// lineage serialize. An empty lineage has nothing to lock; the
		// unique index covers that window.
		lineage := tx.Where("property_id = ? AND group_key = ?", document.PropertyID, document.GroupKey)
		if r.db.IsPostgres() {
			lineage = lineage.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var last models.TechnicalDocument
		maxVersion := 0
		if err := lineage.Order("version DESC").First(&last).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		} else {
			maxVersion = last.Version
		}

		if explicitVersion != nil {
			document.Version = *explicitVersion
		} else {
			document.Version = maxVersion + 1
		}
		document.IsCurrentVersion = true

		if err := tx.Model(&models.TechnicalDocument{}).
			Where("property_id = ? AND group_key = ? AND is_current_version = ?",
				document.PropertyID, document.GroupKey, true).
			Update("is_current_version", false).Error; err != nil {
			return fmt.Errorf("failed to demote current version: %w", err)
		}

		if err := tx.Create(document).Error; err != nil {
			return err
		}

		return nil
	})
}

func (r *TechnicalDocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TechnicalDocument, error) {
	var document models.TechnicalDocument
	err := r.db.WithContext(ctx).
		Preload("ChecklistItems").
		Where("id = ?", id).
		First(&document).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("technical document %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get technical document: %w", err)
	}
	return &document, nil
}

// Update persists the mutable fields of a version. Version number and the
// current flag are owned by CreateVersion and Delete and are left untouched.
func (r *TechnicalDocumentRepository) Update(ctx context.Context, document *models.TechnicalDocument) error {
	result := r.db.WithContext(ctx).Model(&models.TechnicalDocument{}).
		Where("id = ?", document.ID).
		Updates(map[string]interface{}{
			"type":             document.Type,
			"technical_status": document.TechnicalStatus,
			"technical_notes":  document.TechnicalNotes,
			"content_text":     document.ContentText,
			"content_json":     document.ContentJSON,
			"file_path":        document.FilePath,
			"metadata":         document.Metadata,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update technical document: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("technical document %s: %w", document.ID, repositories.ErrNotFound)
	}
	return nil
}

// Delete removes a version and, when it was the lineage's current one,
// promotes the highest remaining version in the same transaction.
func (r *TechnicalDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var document models.TechnicalDocument
		query := tx.Where("id = ?", id)
		if r.db.IsPostgres() {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := query.First(&document).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("technical document %s: %w", id, repositories.ErrNotFound)
			}
			return err
		}

		// SQLite does not enforce the FK cascade by default, so checklist
		// items are removed explicitly.
		if err := tx.Where("technical_document_id = ?", id).
			Delete(&models.ChecklistItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete checklist items: %w", err)
		}

		if err := tx.Delete(&models.TechnicalDocument{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete technical document: %w", err)
		}

		if !document.IsCurrentVersion {
			return nil
		}

		var next models.TechnicalDocument
		err := tx.Where("property_id = ? AND group_key = ?", document.PropertyID, document.GroupKey).
			Order("version DESC").
			First(&next).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if err := tx.Model(&models.TechnicalDocument{}).
			Where("id = ?", next.ID).
			Update("is_current_version", true).Error; err != nil {
			return fmt.Errorf("failed to promote version %d: %w", next.Version, err)
		}

		return nil
	})
}

func (r *TechnicalDocumentRepository) GetCurrent(ctx context.Context, propertyID uuid.UUID, groupKey string) (*models.TechnicalDocument, error) {
	var document models.TechnicalDocument
	err := r.db.WithContext(ctx).
		Preload("ChecklistItems").
		Where("property_id = ? AND group_key = ? AND is_current_version = ?", propertyID, groupKey, true).
		First(&document).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no current document for group %s: %w", groupKey, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get current document: %w", err)
	}
	return &document, nil
}

func (r *TechnicalDocumentRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.TechnicalDocument, error) {
	var documents []models.TechnicalDocument
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("group_key ASC, version DESC").
		Find(&documents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list technical documents: %w", err)
	}
	return documents, nil
}

func (r *TechnicalDocumentRepository) ListVersions(ctx context.Context, propertyID uuid.UUID, groupKey string) ([]models.TechnicalDocument, error) {
	var documents []models.TechnicalDocument
	err := r.db.WithContext(ctx).
		Where("property_id = ? AND group_key = ?", propertyID, groupKey).
		Order("version DESC").
		Find(&documents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list document versions: %w", err)
	}
	return documents, nil
}

func (r *TechnicalDocumentRepository) ListCurrentByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.TechnicalDocument, error) {
	var documents []models.TechnicalDocument
	err := r.db.WithContext(ctx).
		Where("property_id = ? AND is_current_version = ?", propertyID, true).
		Order("group_key ASC").
		Find(&documents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list current documents: %w", err)
	}
	return documents, nil
}

func (r *TechnicalDocumentRepository) CountCurrentByStatus(ctx context.Context, propertyID uuid.UUID, status models.TechnicalStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TechnicalDocument{}).
		Where("property_id = ? AND is_current_version = ? AND technical_status = ?", propertyID, true, status).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count current documents: %w", err)
	}
	return count, nil
}
