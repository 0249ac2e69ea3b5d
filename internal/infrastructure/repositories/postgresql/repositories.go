package postgresql

import (
	"context"
	"fmt"

	"github.com/ruralgeo/ruralgeo/internal/domain/repositories"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	PropertyRepo  repositories.PropertyRepository
	GeometryRepo  repositories.GeometryRepository
	DocumentRepo  repositories.TechnicalDocumentRepository
	ChecklistRepo repositories.ChecklistRepository
	OverlapRepo   repositories.OverlapRepository
	AuditRepo     repositories.AuditLogRepository

	// Internal reference to database for health checks
	db *database.DB
}

// NewRepositories creates a new repositories container
func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		PropertyRepo:  NewPropertyRepository(db),
		GeometryRepo:  NewGeometryRepository(db),
		DocumentRepo:  NewTechnicalDocumentRepository(db),
		ChecklistRepo: NewChecklistRepository(db),
		OverlapRepo:   NewOverlapRepository(db),
		AuditRepo:     NewAuditLogRepository(db),
		db:            db,
	}
}

// HealthCheck verifies database connectivity
func (r *Repositories) HealthCheck(ctx context.Context) error {
	sqlDB, err := r.db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
