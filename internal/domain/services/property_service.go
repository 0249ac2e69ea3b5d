package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ruralgeo/ruralgeo/internal/domain/repositories"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database/models"
)

var (
	ErrPropertyNotFound = errors.New("property not found")
)

// PropertyService handles rural property (imóvel) business logic
type PropertyService struct {
	propertyRepo repositories.PropertyRepository
	auditService *AuditService
}

func NewPropertyService(propertyRepo repositories.PropertyRepository, auditService *AuditService) *PropertyService {
	return &PropertyService{
		propertyRepo: propertyRepo,
		auditService: auditService,
	}
}

func (s *PropertyService) Create(ctx context.Context, property *models.Property) error {
	if err := s.propertyRepo.Create(ctx, property); err != nil {
		return err
	}

	s.auditService.Record(ctx, AuditEntityProperty, property.ID.String(), models.AuditCreate, AuditSourceAPI, nil, models.JSONB{
		"name":         property.Name,
		"municipality": property.Municipality,
	})
	return nil
}

func (s *PropertyService) Get(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	property, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return property, nil
}

func (s *PropertyService) Update(ctx context.Context, property *models.Property) error {
	if err := s.propertyRepo.Update(ctx, property); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPropertyNotFound
		}
		return err
	}

	s.auditService.Record(ctx, AuditEntityProperty, property.ID.String(), models.AuditUpdate, AuditSourceAPI, nil, nil)
	return nil
}

func (s *PropertyService) List(ctx context.Context, params repositories.ListParams) ([]models.Property, int64, error) {
	return s.propertyRepo.List(ctx, params)
}

func (s *PropertyService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.propertyRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPropertyNotFound
		}
		return err
	}

	s.auditService.Record(ctx, AuditEntityProperty, id.String(), models.AuditDelete, AuditSourceAPI, nil, nil)
	return nil
}
