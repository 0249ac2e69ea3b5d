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

// OverlapRepository stores overlap analysis results. Rows are append-only;
// every analysis run writes new records and the history stays queryable.
type OverlapRepository struct {
	db *database.DB
}

func NewOverlapRepository(db *database.DB) *OverlapRepository {
	return &OverlapRepository{db: db}
}

func (r *OverlapRepository) Create(ctx context.Context, overlap *models.Overlap) error {
	if err := r.db.WithContext(ctx).Create(overlap).Error; err != nil {
		return fmt.Errorf("failed to create overlap record: %w", err)
	}
	return nil
}

func (r *OverlapRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Overlap, error) {
	var overlap models.Overlap
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&overlap).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("overlap %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get overlap: %w", err)
	}
	return &overlap, nil
}

func (r *OverlapRepository) ListByBaseGeometry(ctx context.Context, baseGeometryID uuid.UUID) ([]models.Overlap, error) {
	var overlaps []models.Overlap
	err := r.db.WithContext(ctx).
		Where("base_geometry_id = ?", baseGeometryID).
		Order("created_at DESC").
		Find(&overlaps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list overlaps: %w", err)
	}
	return overlaps, nil
}
