package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ruralgeo/ruralgeo/internal/domain/repositories"
	"github.com/ruralgeo/ruralgeo/internal/domain/services"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database/models"
)

// AuditHandler exposes the audit trail
type AuditHandler struct {
	*BaseHandler
	auditService *services.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{
		BaseHandler:  NewBaseHandler(),
		auditService: auditService,
	}
}

// RegisterRoutes sets up the audit routes
func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/audit-logs", h.ListAuditLogs)
}

// AuditLogListResponse represents a paginated audit trail
type AuditLogListResponse struct {
	Logs    []models.AuditLog `json:"logs"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	PerPage int               `json:"per_page"`
}

// ListAuditLogs returns the audit trail filtered by entity
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	page, pageSize := h.ParsePagination(c)

	logs, total, err := h.auditService.History(
		c.Request.Context(),
		c.Query("entity_type"),
		c.Query("entity_id"),
		repositories.ListParams{Page: page, PageSize: pageSize},
	)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondSuccess(c, AuditLogListResponse{
		Logs:    logs,
		Total:   total,
		Page:    page,
		PerPage: pageSize,
	})
}
