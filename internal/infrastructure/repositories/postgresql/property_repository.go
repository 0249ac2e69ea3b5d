package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ruralgeo/ruralgeo/internal/domain/repositories"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database/models"
)

type PropertyRepository struct {
	db *database.DB
}

func NewPropertyRepository(db *database.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) Create(ctx context.Context, property *models.Property) error {
	if err := r.db.WithContext(ctx).Create(property).Error; err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}
	return nil
}

func (r *PropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	var property models.Property
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&property).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("property %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	return &property, nil
}

func (r *PropertyRepository) Update(ctx context.Context, property *models.Property) error {
	result := r.db.WithContext(ctx).Model(&models.Property{}).
		Where("id = ?", property.ID).
		Updates(map[string]interface{}{
			"name":              property.Name,
			"owner_name":        property.OwnerName,
			"municipality":      property.Municipality,
			"state":             property.State,
			"official_area_ha":  property.OfficialAreaHa,
			"ccir":              property.CCIR,
			"main_registration": property.MainRegistration,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update property: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("property %s: %w", property.ID, repositories.ErrNotFound)
	}
	return nil
}

func (r *PropertyRepository) List(ctx context.Context, params repositories.ListParams) ([]models.Property, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Property{})

	if params.Search != "" {
		term := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(owner_name) LIKE ? OR LOWER(municipality) LIKE ?",
			term, term, term,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count properties: %w", err)
	}

	sortBy := "created_at"
	switch params.SortBy {
	case "name", "municipality", "state", "created_at", "updated_at":
		sortBy = params.SortBy
	}
	direction := "ASC"
	if params.SortDesc {
		direction = "DESC"
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var properties []models.Property
	err := query.
		Order(fmt.Sprintf("%s %s", sortBy, direction)).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&properties).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list properties: %w", err)
	}

	return properties, total, nil
}

func (r *PropertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Dependent rows are removed explicitly so SQLite behaves like the
		// PostgreSQL cascade constraints.
		var geometryIDs []uuid.UUID
		if err := tx.Model(&models.Geometry{}).
			Where("property_id = ?", id).
			Pluck("id", &geometryIDs).Error; err != nil {
			return err
		}
		if len(geometryIDs) > 0 {
			if err := tx.Where("base_geometry_id IN ? OR affected_geometry_id IN ?", geometryIDs, geometryIDs).
				Delete(&models.Overlap{}).Error; err != nil {
				return err
			}
		}

		var documentIDs []uuid.UUID
		if err := tx.Model(&models.TechnicalDocument{}).
			Where("property_id = ?", id).
			Pluck("id", &documentIDs).Error; err != nil {
			return err
		}
		if len(documentIDs) > 0 {
			if err := tx.Where("technical_document_id IN ?", documentIDs).
				Delete(&models.ChecklistItem{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("property_id = ?", id).Delete(&models.TechnicalDocument{}).Error; err != nil {
			return err
		}
		if err := tx.Where("property_id = ?", id).Delete(&models.Geometry{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Property{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete property: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("property %s: %w", id, repositories.ErrNotFound)
		}
		return nil
	})
}
