package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ruralgeo/ruralgeo/internal/domain/repositories"
	"github.com/ruralgeo/ruralgeo/internal/domain/services"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database/models"
)

// PropertyHandler handles rural property (imóvel) operations
type PropertyHandler struct {
	*BaseHandler
	propertyService   *services.PropertyService
	documentService   *services.TechnicalDocumentService
	automationService *services.StatusAutomationService
}

// NewPropertyHandler creates a new property handler
func NewPropertyHandler(
	propertyService *services.PropertyService,
	documentService *services.TechnicalDocumentService,
	automationService *services.StatusAutomationService,
) *PropertyHandler {
	return &PropertyHandler{
		BaseHandler:       NewBaseHandler(),
		propertyService:   propertyService,
		documentService:   documentService,
		automationService: automationService,
	}
}

// RegisterRoutes sets up the property routes
func (h *PropertyHandler) RegisterRoutes(router *gin.RouterGroup) {
	properties := router.Group("/properties")
	{
		properties.POST("", h.CreateProperty)
		properties.GET("", h.ListProperties)
		properties.GET("/:id", h.GetProperty)
		properties.PUT("/:id", h.UpdateProperty)
		properties.DELETE("/:id", h.DeleteProperty)

		// Derived views
		properties.GET("/:id/documents", h.ListDocuments)
		properties.GET("/:id/documents/current", h.ListCurrentDocuments)
		properties.GET("/:id/documents/summary", h.DocumentStatusSummary)
		properties.GET("/:id/readiness", h.GetReadiness)
	}
}

// Request/Response DTOs

// CreatePropertyRequest contains property creation data
type CreatePropertyRequest struct {
	Name             string  `json:"name" binding:"required,min=1,max=255"`
	Description      string  `json:"description,omitempty"`
	OwnerName        string  `json:"owner_name,omitempty" binding:"omitempty,max=255"`
	Municipality     string  `json:"municipality,omitempty" binding:"omitempty,max=120"`
	State            string  `json:"state,omitempty" binding:"omitempty,len=2"`
	OfficialAreaHa   float64 `json:"official_area_ha,omitempty" binding:"omitempty,gte=0"`
	CCIR             string  `json:"ccir,omitempty" binding:"omitempty,max=50"`
	MainRegistration string  `json:"main_registration,omitempty" binding:"omitempty,max=100"`
}

// UpdatePropertyRequest contains property update data
type UpdatePropertyRequest struct {
	Name             *string  `json:"name,omitempty" binding:"omitempty,min=1,max=255"`
	OwnerName        *string  `json:"owner_name,omitempty" binding:"omitempty,max=255"`
	Municipality     *string  `json:"municipality,omitempty" binding:"omitempty,max=120"`
	State            *string  `json:"state,omitempty" binding:"omitempty,len=2"`
	OfficialAreaHa   *float64 `json:"official_area_ha,omitempty" binding:"omitempty,gte=0"`
	CCIR             *string  `json:"ccir,omitempty" binding:"omitempty,max=50"`
	MainRegistration *string  `json:"main_registration,omitempty" binding:"omitempty,max=100"`
}

// PropertyListResponse represents a paginated property list
type PropertyListResponse struct {
	Properties []models.Property `json:"properties"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PerPage    int               `json:"per_page"`
}

// CreateProperty creates a new rural property
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	property := &models.Property{
		Name:             req.Name,
		Description:      req.Description,
		OwnerName:        req.OwnerName,
		Municipality:     req.Municipality,
		State:            req.State,
		OfficialAreaHa:   req.OfficialAreaHa,
		CCIR:             req.CCIR,
		MainRegistration: req.MainRegistration,
	}

	if err := h.propertyService.Create(c.Request.Context(), property); err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondCreated(c, property)
}

// GetProperty returns one property by ID
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "property ID", c.Param("id"))
	if !ok {
		return
	}

	property, err := h.propertyService.Get(c.Request.Context(), id)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondSuccess(c, property)
}

// ListProperties returns a paginated property list
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	page, pageSize := h.ParsePagination(c)
	sortBy, sortDesc := h.ParseSorting(c, "created_at")

	properties, total, err := h.propertyService.List(c.Request.Context(), repositories.ListParams{
		Page:     page,
		PageSize: pageSize,
		SortBy:   sortBy,
		SortDesc: sortDesc,
		Search:   c.Query("search"),
	})
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondSuccess(c, PropertyListResponse{
		Properties: properties,
		Total:      total,
		Page:       page,
		PerPage:    pageSize,
	})
}

// UpdateProperty updates mutable property fields
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "property ID", c.Param("id"))
	if !ok {
		return
	}

	var req UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	property, err := h.propertyService.Get(c.Request.Context(), id)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}

	if req.Name != nil {
		property.Name = *req.Name
	}
	if req.OwnerName != nil {
		property.OwnerName = *req.OwnerName
	}
	if req.Municipality != nil {
		property.Municipality = *req.Municipality
	}
	if req.State != nil {
		property.State = *req.State
	}
	if req.OfficialAreaHa != nil {
		property.OfficialAreaHa = *req.OfficialAreaHa
	}
	if req.CCIR != nil {
		property.CCIR = *req.CCIR
	}
	if req.MainRegistration != nil {
		property.MainRegistration = *req.MainRegistration
	}

	if err := h.propertyService.Update(c.Request.Context(), property); err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondSuccess(c, property)
}

// DeleteProperty removes a property and all dependent records
func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "property ID", c.Param("id"))
	if !ok {
		return
	}

	if err := h.propertyService.Delete(c.Request.Context(), id); err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"deleted": true})
}

// ListDocuments returns every technical document version of a property
func (h *PropertyHandler) ListDocuments(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "property ID", c.Param("id"))
	if !ok {
		return
	}

	documents, err := h.documentService.ListByProperty(c.Request.Context(), id)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"documents": documents, "total": len(documents)})
}

// ListCurrentDocuments returns the current version of each document group
func (h *PropertyHandler) ListCurrentDocuments(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "property ID", c.Param("id"))
	if !ok {
		return
	}

	documents, err := h.documentService.ListCurrentDocuments(c.Request.Context(), id)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"documents": documents, "total": len(documents)})
}

// DocumentStatusSummary counts current versions by technical status
func (h *PropertyHandler) DocumentStatusSummary(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "property ID", c.Param("id"))
	if !ok {
		return
	}

	summary, err := h.documentService.StatusSummary(c.Request.Context(), id)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"summary": summary})
}

// GetReadiness returns the derived regularization readiness of a property
func (h *PropertyHandler) GetReadiness(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "property ID", c.Param("id"))
	if !ok {
		return
	}

	readiness, err := h.automationService.Readiness(c.Request.Context(), id)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondSuccess(c, readiness)
}
