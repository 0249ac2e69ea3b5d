package services

import (
	"context"
	"fmt"

	"github.com/ruralgeo/ruralgeo/internal/app/config"
	"github.com/ruralgeo/ruralgeo/internal/domain/services"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/cache"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/repositories/postgresql"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/storage/local"
	"github.com/ruralgeo/ruralgeo/pkg/logger"
)

// ServiceManager manages all application services
type ServiceManager struct {
	Config *config.Config

	// Infrastructure
	DB           *database.DB
	Repositories *postgresql.Repositories
	CacheService services.CacheService
	Storage      services.StorageService

	// Domain services
	AuditService       *services.AuditService
	PropertyService    *services.PropertyService
	GeometryService    *services.GeometryService
	DocumentService    *services.TechnicalDocumentService
	ValidationService  *services.ValidationService
	MemorialService    *services.MemorialService
	SigefExportService *services.SigefExportService
	OverlapService     *services.OverlapService
	AutomationService  *services.StatusAutomationService
}

// NewServiceManager wires repositories, infrastructure and domain services.
// Redis is optional: without REDIS_URL the services run uncached.
func NewServiceManager(cfg *config.Config, db *database.DB, log *logger.Logger) (*ServiceManager, error) {
	repos := postgresql.NewRepositories(db)

	var cacheService services.CacheService
	if cfg.Redis.Enabled {
		var err error
		cacheService, err = cache.CreateCacheService(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cache service: %w", err)
		}
	}

	storage := local.NewStorageService(cfg.Storage.Path)

	auditService := services.NewAuditService(repos.AuditRepo, log)
	propertyService := services.NewPropertyService(repos.PropertyRepo, auditService)
	geometryService := services.NewGeometryService(repos.GeometryRepo, repos.PropertyRepo, auditService, services.GeoDefaults{
		SourceEpsg:   cfg.Geo.DefaultSourceEpsg,
		VertexPrefix: cfg.Geo.VertexPrefix,
	})
	documentService := services.NewTechnicalDocumentService(repos.DocumentRepo, repos.PropertyRepo, auditService, cacheService)
	validationService := services.NewValidationService(repos.DocumentRepo, repos.ChecklistRepo, auditService)
	memorialService := services.NewMemorialService(geometryService, documentService)
	sigefService := services.NewSigefExportService(geometryService, documentService, storage)
	overlapService := services.NewOverlapService(repos.GeometryRepo, repos.OverlapRepo, auditService)
	automationService := services.NewStatusAutomationService(
		validationService, repos.DocumentRepo, repos.GeometryRepo, auditService, cacheService, log)

	// Post-commit hook: document events trigger automatic validation and
	// readiness re-evaluation.
	documentService.RegisterObserver(automationService)

	sm := &ServiceManager{
		Config:             cfg,
		DB:                 db,
		Repositories:       repos,
		CacheService:       cacheService,
		Storage:            storage,
		AuditService:       auditService,
		PropertyService:    propertyService,
		GeometryService:    geometryService,
		DocumentService:    documentService,
		ValidationService:  validationService,
		MemorialService:    memorialService,
		SigefExportService: sigefService,
		OverlapService:     overlapService,
		AutomationService:  automationService,
	}

	return sm, nil
}

// Health check for all services
func (sm *ServiceManager) HealthCheck() error {
	if err := sm.Repositories.HealthCheck(context.Background()); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	if sm.CacheService != nil {
		if err := sm.CacheService.Ping(context.Background()); err != nil {
			return fmt.Errorf("redis health check failed: %w", err)
		}
	}

	return nil
}

// Close gracefully shuts down all services
func (sm *ServiceManager) Close() error {
	if sm.CacheService != nil {
		if err := sm.CacheService.Close(); err != nil {
			return fmt.Errorf("failed to close cache service: %w", err)
		}
	}

	if err := sm.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
