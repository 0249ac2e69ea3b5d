package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ruralgeo/ruralgeo/internal/domain/services"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database/models"
)

// TechnicalDocumentHandler handles versioned technical documents and their
// validation checklists
type TechnicalDocumentHandler struct {
	*BaseHandler
	documentService   *services.TechnicalDocumentService
	validationService *services.ValidationService
}

// NewTechnicalDocumentHandler creates a new technical document handler
func NewTechnicalDocumentHandler(
	documentService *services.TechnicalDocumentService,
	validationService *services.ValidationService,
) *TechnicalDocumentHandler {
	return &TechnicalDocumentHandler{
		BaseHandler:       NewBaseHandler(),
		documentService:   documentService,
		validationService: validationService,
	}
}

// RegisterRoutes sets up the technical document routes
func (h *TechnicalDocumentHandler) RegisterRoutes(router *gin.RouterGroup) {
	documents := router.Group("/technical-documents")
	{
		documents.POST("", h.CreateDocument)
		documents.GET("/:id", h.GetDocument)
		documents.PUT("/:id", h.UpdateDocument)
		documents.DELETE("/:id", h.DeleteDocument)

		// Versioning
		documents.GET("/:id/versions", h.ListVersions)
		documents.POST("/:id/versions", h.CreateNewVersion)

		// Validation
		documents.POST("/:id/validate", h.ValidateDocument)
		documents.GET("/:id/checklist", h.ListChecklist)
		documents.POST("/:id/checklist", h.AddChecklistItem)
	}

	checklist := router.Group("/checklist-items")
	{
		checklist.PUT("/:id", h.UpdateChecklistItem)
		checklist.DELETE("/:id", h.DeleteChecklistItem)
	}
}

// Request/Response DTOs

// CreateDocumentRequest contains document creation data
type CreateDocumentRequest struct {
	PropertyID     uuid.UUID    `json:"property_id" binding:"required"`
	GroupKey       string       `json:"group_key" binding:"required,min=1,max=80"`
	Type           string       `json:"type" binding:"required,min=1,max=120"`
	TechnicalNotes string       `json:"technical_notes,omitempty"`
	ContentText    string       `json:"content_text,omitempty"`
	ContentJSON    models.JSONB `json:"content_json,omitempty"`
	FilePath       string       `json:"file_path,omitempty" binding:"omitempty,max=512"`
	Metadata       models.JSONB `json:"metadata,omitempty"`
}

// UpdateDocumentRequest contains document update data
type UpdateDocumentRequest struct {
	Type            *string                 `json:"type,omitempty" binding:"omitempty,min=1,max=120"`
	TechnicalStatus *models.TechnicalStatus `json:"technical_status,omitempty" binding:"omitempty,oneof=RASCUNHO EM_ANALISE APROVADO CORRIGIR REPROVADO"`
	TechnicalNotes  *string                 `json:"technical_notes,omitempty"`
	ContentText     *string                 `json:"content_text,omitempty"`
	ContentJSON     models.JSONB            `json:"content_json,omitempty"`
	FilePath        *string                 `json:"file_path,omitempty" binding:"omitempty,max=512"`
	Metadata        models.JSONB            `json:"metadata,omitempty"`
}

// NewVersionRequest contains the content of a new document version
type NewVersionRequest struct {
	Type           string       `json:"type,omitempty" binding:"omitempty,min=1,max=120"`
	TechnicalNotes string       `json:"technical_notes,omitempty"`
	ContentText    string       `json:"content_text,omitempty"`
	ContentJSON    models.JSONB `json:"content_json,omitempty"`
	FilePath       string       `json:"file_path,omitempty" binding:"omitempty,max=512"`
	Metadata       models.JSONB `json:"metadata,omitempty"`
}

// AddChecklistItemRequest contains checklist item creation data
type AddChecklistItemRequest struct {
	Key         string                  `json:"key" binding:"required,min=1,max=80"`
	Description string                  `json:"description" binding:"required,min=1,max=255"`
	Mandatory   *bool                   `json:"mandatory,omitempty"`
	Critical    bool                    `json:"critical,omitempty"`
	Status      *models.ChecklistStatus `json:"status,omitempty" binding:"omitempty,oneof=OK ALERTA ERRO NA"`
	Message     string                  `json:"message,omitempty"`
}

// UpdateChecklistItemRequest contains checklist item update data
type UpdateChecklistItemRequest struct {
	Description *string                 `json:"description,omitempty" binding:"omitempty,min=1,max=255"`
	Mandatory   *bool                   `json:"mandatory,omitempty"`
	Critical    *bool                   `json:"critical,omitempty"`
	Status      *models.ChecklistStatus `json:"status,omitempty" binding:"omitempty,oneof=OK ALERTA ERRO NA"`
	Message     *string                 `json:"message,omitempty"`
	ValidatedBy *uuid.UUID              `json:"validated_by,omitempty"`
}

// CreateDocument files a new technical document version
func (h *TechnicalDocumentHandler) CreateDocument(c *gin.Context) {
	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	document := &models.TechnicalDocument{
		PropertyID:     req.PropertyID,
		GroupKey:       req.GroupKey,
		Type:           req.Type,
		TechnicalNotes: req.TechnicalNotes,
		ContentText:    req.ContentText,
		ContentJSON:    req.ContentJSON,
		FilePath:       req.FilePath,
		Metadata:       req.Metadata,
	}

	if err := h.documentService.CreateDocument(c.Request.Context(), document); err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondCreated(c, document)
}

// GetDocument returns one document version with its checklist
func (h *TechnicalDocumentHandler) GetDocument(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "document ID", c.Param("id"))
	if !ok {
		return
	}

	document, err := h.documentService.GetDocument(c.Request.Context(), id)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondSuccess(c, document)
}

// UpdateDocument mutates a document version. Approved current versions are
// locked and respond with 409.
func (h *TechnicalDocumentHandler) UpdateDocument(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "document ID", c.Param("id"))
	if !ok {
		return
	}

	var req UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	document, err := h.documentService.UpdateDocument(c.Request.Context(), id, services.UpdateDocumentInput{
		Type:            req.Type,
		TechnicalStatus: req.TechnicalStatus,
		TechnicalNotes:  req.TechnicalNotes,
		ContentText:     req.ContentText,
		ContentJSON:     req.ContentJSON,
		FilePath:        req.FilePath,
		Metadata:        req.Metadata,
	})
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondSuccess(c, document)
}

// DeleteDocument removes a version, promoting the highest remaining one
func (h *TechnicalDocumentHandler) DeleteDocument(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "document ID", c.Param("id"))
	if !ok {
		return
	}

	if err := h.documentService.DeleteDocument(c.Request.Context(), id); err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"deleted": true})
}

// ListVersions returns the full lineage of the document's group
func (h *TechnicalDocumentHandler) ListVersions(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "document ID", c.Param("id"))
	if !ok {
		return
	}

	versions, err := h.documentService.ListVersions(c.Request.Context(), id)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"versions": versions, "total": len(versions)})
}

// CreateNewVersion files the next version of the document's lineage
func (h *TechnicalDocumentHandler) CreateNewVersion(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "document ID", c.Param("id"))
	if !ok {
		return
	}

	var req NewVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	document, err := h.documentService.CreateNewVersion(c.Request.Context(), id, services.NewVersionInput{
		Type:           req.Type,
		TechnicalNotes: req.TechnicalNotes,
		ContentText:    req.ContentText,
		ContentJSON:    req.ContentJSON,
		FilePath:       req.FilePath,
		Metadata:       req.Metadata,
	})
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondCreated(c, document)
}

// ValidateDocument re-runs the checklist validation cascade
func (h *TechnicalDocumentHandler) ValidateDocument(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "document ID", c.Param("id"))
	if !ok {
		return
	}

	document, err := h.validationService.ValidateDocument(c.Request.Context(), id)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondSuccess(c, document)
}

// ListChecklist returns the validation checklist of a document
func (h *TechnicalDocumentHandler) ListChecklist(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "document ID", c.Param("id"))
	if !ok {
		return
	}

	items, err := h.validationService.ListChecklist(c.Request.Context(), id)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"items": items, "total": len(items)})
}

// AddChecklistItem attaches a checklist line and re-validates the document
func (h *TechnicalDocumentHandler) AddChecklistItem(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "document ID", c.Param("id"))
	if !ok {
		return
	}

	var req AddChecklistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	item := &models.ChecklistItem{
		Key:         req.Key,
		Description: req.Description,
		Mandatory:   true,
		Critical:    req.Critical,
		Message:     req.Message,
	}
	if req.Mandatory != nil {
		item.Mandatory = *req.Mandatory
	}
	if req.Status != nil {
		item.Status = *req.Status
	}

	if err := h.validationService.AddChecklistItem(c.Request.Context(), id, item); err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondCreated(c, item)
}

// UpdateChecklistItem mutates a checklist line and re-validates the document
func (h *TechnicalDocumentHandler) UpdateChecklistItem(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "checklist item ID", c.Param("id"))
	if !ok {
		return
	}

	var req UpdateChecklistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	item, err := h.validationService.UpdateChecklistItem(c.Request.Context(), id, services.UpdateChecklistInput{
		Description: req.Description,
		Mandatory:   req.Mandatory,
		Critical:    req.Critical,
		Status:      req.Status,
		Message:     req.Message,
		ValidatedBy: req.ValidatedBy,
	})
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondSuccess(c, item)
}

// DeleteChecklistItem removes a checklist line and re-validates the document
func (h *TechnicalDocumentHandler) DeleteChecklistItem(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "checklist item ID", c.Param("id"))
	if !ok {
		return
	}

	if err := h.validationService.DeleteChecklistItem(c.Request.Context(), id); err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"deleted": true})
}
