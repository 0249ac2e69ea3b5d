package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ruralgeo/ruralgeo/internal/domain/services"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database/models"
)

// GeometryHandler handles parcel boundary operations
type GeometryHandler struct {
	*BaseHandler
	geometryService *services.GeometryService
	overlapService  *services.OverlapService
}

// NewGeometryHandler creates a new geometry handler
func NewGeometryHandler(
	geometryService *services.GeometryService,
	overlapService *services.OverlapService,
) *GeometryHandler {
	return &GeometryHandler{
		BaseHandler:     NewBaseHandler(),
		geometryService: geometryService,
		overlapService:  overlapService,
	}
}

// RegisterRoutes sets up the geometry routes
func (h *GeometryHandler) RegisterRoutes(router *gin.RouterGroup) {
	geometries := router.Group("/geometries")
	{
		geometries.POST("", h.CreateGeometry)
		geometries.GET("/:id", h.GetGeometry)
		geometries.PUT("/:id", h.UpdateGeometry)
		geometries.DELETE("/:id", h.DeleteGeometry)

		// Geodetic views
		geometries.GET("/:id/segments", h.GetSegments)

		// Overlap analysis
		geometries.POST("/:id/overlaps", h.AnalyzeOverlap)
		geometries.GET("/:id/overlaps", h.ListOverlaps)
	}

	router.GET("/properties/:id/geometries", h.ListByProperty)
}

// Request/Response DTOs

// CreateGeometryRequest contains geometry creation data
type CreateGeometryRequest struct {
	PropertyID uuid.UUID `json:"property_id" binding:"required"`
	GeoJSON    string    `json:"geojson" binding:"required"`
	SourceEpsg int       `json:"source_epsg,omitempty" binding:"omitempty,gt=0"`
	Name       string    `json:"name,omitempty" binding:"omitempty,max=120"`
	Notes      string    `json:"notes,omitempty"`
}

// UpdateGeometryRequest contains geometry update data
type UpdateGeometryRequest struct {
	GeoJSON    *string `json:"geojson,omitempty"`
	SourceEpsg *int    `json:"source_epsg,omitempty" binding:"omitempty,gt=0"`
	Name       *string `json:"name,omitempty" binding:"omitempty,max=120"`
	Notes      *string `json:"notes,omitempty"`
}

// AnalyzeOverlapRequest contains overlap analysis parameters
type AnalyzeOverlapRequest struct {
	AffectedGeometryID uuid.UUID          `json:"affected_geometry_id" binding:"required"`
	Kind               models.OverlapKind `json:"kind" binding:"required,oneof=SIGEF CAR IMOVEL_INTERNO"`
}

// CreateGeometry stores a boundary polygon and computes its metrics
func (h *GeometryHandler) CreateGeometry(c *gin.Context) {
	var req CreateGeometryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	geometry := &models.Geometry{
		PropertyID: req.PropertyID,
		GeoJSON:    req.GeoJSON,
		SourceEpsg: req.SourceEpsg,
		Name:       req.Name,
		Notes:      req.Notes,
	}

	if err := h.geometryService.Create(c.Request.Context(), geometry); err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondCreated(c, geometry)
}

// GetGeometry returns one geometry with its derived metrics
func (h *GeometryHandler) GetGeometry(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "geometry ID", c.Param("id"))
	if !ok {
		return
	}

	geometry, err := h.geometryService.Get(c.Request.Context(), id)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondSuccess(c, geometry)
}

// UpdateGeometry mutates a geometry, recomputing its derived metrics
func (h *GeometryHandler) UpdateGeometry(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "geometry ID", c.Param("id"))
	if !ok {
		return
	}

	var req UpdateGeometryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	geometry, err := h.geometryService.Get(c.Request.Context(), id)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}

	if req.GeoJSON != nil {
		geometry.GeoJSON = *req.GeoJSON
	}
	if req.SourceEpsg != nil {
		geometry.SourceEpsg = *req.SourceEpsg
	}
	if req.Name != nil {
		geometry.Name = *req.Name
	}
	if req.Notes != nil {
		geometry.Notes = *req.Notes
	}

	if err := h.geometryService.Update(c.Request.Context(), geometry); err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondSuccess(c, geometry)
}

// DeleteGeometry removes a geometry and its overlap history
func (h *GeometryHandler) DeleteGeometry(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "geometry ID", c.Param("id"))
	if !ok {
		return
	}

	if err := h.geometryService.Delete(c.Request.Context(), id); err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"deleted": true})
}

// ListByProperty returns all geometries of a property
func (h *GeometryHandler) ListByProperty(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "property ID", c.Param("id"))
	if !ok {
		return
	}

	geometries, err := h.geometryService.ListByProperty(c.Request.Context(), id)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"geometries": geometries, "total": len(geometries)})
}

// GetSegments returns the projected boundary segments of a geometry
func (h *GeometryHandler) GetSegments(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "geometry ID", c.Param("id"))
	if !ok {
		return
	}

	geometry, utmEpsg, segments, err := h.geometryService.Segments(c.Request.Context(), id, c.Query("vertex_prefix"))
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{
		"geometry_id": geometry.ID,
		"epsg_utm":    utmEpsg,
		"segments":    segments,
	})
}

// AnalyzeOverlap runs an overlap analysis against another geometry
func (h *GeometryHandler) AnalyzeOverlap(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "geometry ID", c.Param("id"))
	if !ok {
		return
	}

	var req AnalyzeOverlapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.overlapService.Analyze(c.Request.Context(), id, req.AffectedGeometryID, req.Kind)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondSuccess(c, result)
}

// ListOverlaps returns the overlap analysis history of a geometry
func (h *GeometryHandler) ListOverlaps(c *gin.Context) {
	id, ok := h.ValidateUUID(c, "geometry ID", c.Param("id"))
	if !ok {
		return
	}

	overlaps, err := h.overlapService.History(c.Request.Context(), id)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"overlaps": overlaps, "total": len(overlaps)})
}
