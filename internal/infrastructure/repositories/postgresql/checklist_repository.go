package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ruralgeo/ruralgeo/internal/domain/repositories"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database/models"
)

type ChecklistRepository struct {
	db *database.DB
}

func NewChecklistRepository(db *database.DB) *ChecklistRepository {
	return &ChecklistRepository{db: db}
}

func (r *ChecklistRepository) Create(ctx context.Context, item *models.ChecklistItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("checklist key %q already exists for document: %w", item.Key, err)
		}
		return fmt.Errorf("failed to create checklist item: %w", err)
	}
	return nil
}

func (r *ChecklistRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ChecklistItem, error) {
	var item models.ChecklistItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("checklist item %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get checklist item: %w", err)
	}
	return &item, nil
}

func (r *ChecklistRepository) Update(ctx context.Context, item *models.ChecklistItem) error {
	result := r.db.WithContext(ctx).Model(&models.ChecklistItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"description":             item.Description,
			"mandatory":               item.Mandatory,
			"critical":                item.Critical,
			"status":                  item.Status,
			"message":                 item.Message,
			"validated_automatically": item.ValidatedAutomatically,
			"validated_by":            item.ValidatedBy,
			"validated_at":            item.ValidatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update checklist item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("checklist item %s: %w", item.ID, repositories.ErrNotFound)
	}
	return nil
}

func (r *ChecklistRepository) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]models.ChecklistItem, error) {
	var items []models.ChecklistItem
	err := r.db.WithContext(ctx).
		Where("technical_document_id = ?", documentID).
		Order("key ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist items: %w", err)
	}
	return items, nil
}

func (r *ChecklistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ChecklistItem{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete checklist item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("checklist item %s: %w", id, repositories.ErrNotFound)
	}
	return nil
}
