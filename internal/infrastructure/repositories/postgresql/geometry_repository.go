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

type GeometryRepository struct {
	db *database.DB
}

func NewGeometryRepository(db *database.DB) *GeometryRepository {
	return &GeometryRepository{db: db}
}

func (r *GeometryRepository) Create(ctx context.Context, geometry *models.Geometry) error {
	if err := r.db.WithContext(ctx).Create(geometry).Error; err != nil {
		return fmt.Errorf("failed to create geometry: %w", err)
	}
	return nil
}

func (r *GeometryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Geometry, error) {
	var geometry models.Geometry
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&geometry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("geometry %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get geometry: %w", err)
	}
	return &geometry, nil
}

// Update rewrites the geometry together with its derived metrics. The service
// layer recomputes utm_epsg, area and perimeter before calling this, so the
// stored polygon and its metrics never drift apart.
func (r *GeometryRepository) Update(ctx context.Context, geometry *models.Geometry) error {
	result := r.db.WithContext(ctx).Model(&models.Geometry{}).
		Where("id = ?", geometry.ID).
		Updates(map[string]interface{}{
			"name":          geometry.Name,
			"geojson":       geometry.GeoJSON,
			"source_epsg":   geometry.SourceEpsg,
			"utm_epsg":      geometry.UTMEpsg,
			"area_hectares": geometry.AreaHectares,
			"perimeter_m":   geometry.PerimeterM,
			"notes":         geometry.Notes,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update geometry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("geometry %s: %w", geometry.ID, repositories.ErrNotFound)
	}
	return nil
}

func (r *GeometryRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.Geometry, error) {
	var geometries []models.Geometry
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("created_at ASC").
		Find(&geometries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list geometries: %w", err)
	}
	return geometries, nil
}

// Delete removes the geometry together with its overlap history, on both
// sides: records where it was the analyzed base and records where it was the
// affected neighbor.
func (r *GeometryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("base_geometry_id = ? OR affected_geometry_id = ?", id, id).Delete(&models.Overlap{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Geometry{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete geometry: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("geometry %s: %w", id, repositories.ErrNotFound)
		}
		return nil
	})
}
