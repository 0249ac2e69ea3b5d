package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ruralgeo/ruralgeo/internal/domain/services"
)

// DeliverableHandler generates cadastral deliverables (descriptive memorial
// and SIGEF spreadsheet) from parcel geometries
type DeliverableHandler struct {
	*BaseHandler
	memorialService *services.MemorialService
	sigefService    *services.SigefExportService
}

// NewDeliverableHandler creates a new deliverable handler
func NewDeliverableHandler(
	memorialService *services.MemorialService,
	sigefService *services.SigefExportService,
) *DeliverableHandler {
	return &DeliverableHandler{
		BaseHandler:     NewBaseHandler(),
		memorialService: memorialService,
		sigefService:    sigefService,
	}
}

// RegisterRoutes sets up the deliverable routes
func (h *DeliverableHandler) RegisterRoutes(router *gin.RouterGroup) {
	geometries := router.Group("/geometries")
	{
		// Compose without persisting
		geometries.GET("/:id/memorial", h.ComposeMemorial)
		geometries.GET("/:id/sigef-sheet", h.ComposeSigefSheet)

		// Compose and file as a new document version
		geometries.POST("/:id/memorial", h.GenerateMemorialDocument)
		geometries.POST("/:id/sigef-sheet", h.GenerateSigefDocument)
	}
}

// ComposeMemorial builds the descriptive memorial without persisting it
func (h *DeliverableHandler) ComposeMemorial(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "geometry ID", c.Param("id"))
	if !ok {
		return
	}

	memorial, err := h.memorialService.Compose(c.Request.Context(), id, c.Query("vertex_prefix"))
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondSuccess(c, memorial)
}

// GenerateMemorialDocument files the memorial as a new MEMORIAL version
func (h *DeliverableHandler) GenerateMemorialDocument(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "geometry ID", c.Param("id"))
	if !ok {
		return
	}

	document, err := h.memorialService.GenerateDocument(c.Request.Context(), id, c.Query("vertex_prefix"))
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondCreated(c, document)
}

// ComposeSigefSheet builds the SIGEF spreadsheet without persisting it
func (h *DeliverableHandler) ComposeSigefSheet(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "geometry ID", c.Param("id"))
	if !ok {
		return
	}

	sheet, err := h.sigefService.Compose(c.Request.Context(), id, c.Query("vertex_prefix"))
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}

	if c.Query("format") == "csv" {
		c.Header("Content-Disposition", "attachment; filename=planilha_sigef.csv")
		c.Data(200, "text/csv; charset=utf-8", []byte(sheet.CSV))
		return
	}

	h.RespondSuccess(c, sheet)
}

// GenerateSigefDocument stores the CSV and files it as a new PLANILHA_SIGEF
// version
func (h *DeliverableHandler) GenerateSigefDocument(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "geometry ID", c.Param("id"))
	if !ok {
		return
	}

	document, err := h.sigefService.GenerateDocument(c.Request.Context(), id, c.Query("vertex_prefix"))
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondCreated(c, document)
}
