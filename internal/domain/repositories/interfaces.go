package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrVersionConflict is returned when concurrent version creations for
	// the same document lineage collide even after a retry.
	ErrVersionConflict = errors.New("concurrent version conflict")
)

// Core repository interfaces for clean architecture

type ListParams struct {
	Page     int
	PageSize int
	SortBy   string
	SortDesc bool
	Search   string
}

type PropertyRepository interface {
	Create(ctx context.Context, property *models.Property) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	Update(ctx context.Context, property *models.Property) error
	List(ctx context.Context, params ListParams) ([]models.Property, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type GeometryRepository interface {
	Create(ctx context.Context, geometry *models.Geometry) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Geometry, error)
	Update(ctx context.Context, geometry *models.Geometry) error
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.Geometry, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TechnicalDocumentRepository owns the versioned-document storage. The
// CreateVersion and Delete operations are transactional: version numbering,
// the current-version flip and current re-promotion never partially apply.
type TechnicalDocumentRepository interface {
	// CreateVersion inserts a new document version. When explicitVersion is
	// nil, the next version number in the (property, group) lineage is
	// assigned. The previous current version of the lineage, if any, is
	// flipped to non-current in the same transaction.
	CreateVersion(ctx context.Context, document *models.TechnicalDocument, explicitVersion *int) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TechnicalDocument, error)
	// Update persists mutable fields of an existing version. It never touches
	// version number or the current flag.
	Update(ctx context.Context, document *models.TechnicalDocument) error
	// Delete removes a version. If it was the lineage's current version, the
	// highest remaining version is promoted to current in the same
	// transaction.
	Delete(ctx context.Context, id uuid.UUID) error
	GetCurrent(ctx context.Context, propertyID uuid.UUID, groupKey string) (*models.TechnicalDocument, error)
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.TechnicalDocument, error)
	// ListVersions returns the full lineage of one document group, newest
	// version first.
	ListVersions(ctx context.Context, propertyID uuid.UUID, groupKey string) ([]models.TechnicalDocument, error)
	ListCurrentByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.TechnicalDocument, error)
	CountCurrentByStatus(ctx context.Context, propertyID uuid.UUID, status models.TechnicalStatus) (int64, error)
}

type ChecklistRepository interface {
	Create(ctx context.Context, item *models.ChecklistItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ChecklistItem, error)
	Update(ctx context.Context, item *models.ChecklistItem) error
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]models.ChecklistItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type OverlapRepository interface {
	Create(ctx context.Context, overlap *models.Overlap) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Overlap, error)
	// ListByBaseGeometry returns the analysis history for a geometry, newest
	// first. Overlap rows are never updated in place.
	ListByBaseGeometry(ctx context.Context, baseGeometryID uuid.UUID) ([]models.Overlap, error)
}

type AuditLogRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
	ListByEntity(ctx context.Context, entityType, entityID string, params ListParams) ([]models.AuditLog, int64, error)
}
