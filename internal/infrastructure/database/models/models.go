package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Custom enum types
type TechnicalStatus string
type ChecklistStatus string
type OverlapKind string
type AuditAction string

const (
	// Technical document status
	TechnicalStatusDraft       TechnicalStatus = "RASCUNHO"
	TechnicalStatusInReview    TechnicalStatus = "EM_ANALISE"
	TechnicalStatusApproved    TechnicalStatus = "APROVADO"
	TechnicalStatusNeedsFixes  TechnicalStatus = "CORRIGIR"
	TechnicalStatusRejected    TechnicalStatus = "REPROVADO"

	// Checklist item validation status
	ChecklistStatusOK            ChecklistStatus = "OK"
	ChecklistStatusWarning       ChecklistStatus = "ALERTA"
	ChecklistStatusError         ChecklistStatus = "ERRO"
	ChecklistStatusNotApplicable ChecklistStatus = "NA"

	// Overlap classification
	OverlapKindSigef    OverlapKind = "SIGEF"
	OverlapKindCar      OverlapKind = "CAR"
	OverlapKindInternal OverlapKind = "IMOVEL_INTERNO"

	// Audit actions
	AuditCreate       AuditAction = "CREATE"
	AuditUpdate       AuditAction = "UPDATE"
	AuditDelete       AuditAction = "DELETE"
	AuditStatusChange AuditAction = "STATUS_CHANGE"
	AuditAutoEvent    AuditAction = "AUTO_EVENT"
)

// Well-known document group keys
const (
	GroupMemorial      = "MEMORIAL"
	GroupSketch        = "CROQUI"
	GroupSigefSheet    = "PLANILHA_SIGEF"
	GroupOverlapReport = "RELATORIO_SOBREPOSICAO"
)

// JSONB type for PostgreSQL jsonb columns
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return errors.New("unsupported type for JSONB scan")
	}
}

// Property is the rural parcel (imóvel) being regularized. It owns all
// geometries and technical documents attached to it.
type Property struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Name        string    `json:"name" gorm:"type:varchar(255)"`
	Description string    `json:"description" gorm:"type:text"`

	OwnerName    string `json:"owner_name" gorm:"type:varchar(255)"`
	Municipality string `json:"municipality" gorm:"type:varchar(120);index"`
	State        string `json:"state" gorm:"type:varchar(2)"`

	// Official area of the parcel (hectares), as declared in registration
	OfficialAreaHa float64 `json:"official_area_ha" gorm:"not null;default:0"`

	// Rural registration identifiers
	CCIR             string `json:"ccir" gorm:"type:varchar(50)"`
	MainRegistration string `json:"main_registration" gorm:"type:varchar(100);index"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`

	// Relationships
	Geometries         []Geometry          `json:"geometries,omitempty" gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`
	TechnicalDocuments []TechnicalDocument `json:"technical_documents,omitempty" gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`
}

// Geometry stores a parcel boundary polygon (GeoJSON, geographic coordinates)
// together with its derived geodetic attributes. AreaHectares, PerimeterM and
// UTMEpsg are always recomputed together when GeoJSON or SourceEpsg changes;
// they are never written independently.
type Geometry struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	PropertyID uuid.UUID `json:"property_id" gorm:"type:uuid;not null;index"`

	// Raw Polygon GeoJSON, normally EPSG:4326
	GeoJSON    string `json:"geojson" gorm:"column:geojson;type:text;not null"`
	SourceEpsg int    `json:"source_epsg" gorm:"not null;default:4326"`

	// Derived attributes (jointly recomputed)
	UTMEpsg      *int     `json:"utm_epsg" gorm:"column:utm_epsg"`
	AreaHectares *float64 `json:"area_hectares"`
	PerimeterM   *float64 `json:"perimeter_m"`

	Name  string `json:"name" gorm:"type:varchar(120)"`
	Notes string `json:"notes" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`

	// Relationships
	Property Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
}

// TechnicalDocument is one version of a cadastral deliverable (memorial,
// sketch, SIGEF sheet...). Identity within a property is the pair
// (GroupKey, Version); at most one row per group is the current version.
type TechnicalDocument struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	PropertyID uuid.UUID `json:"property_id" gorm:"type:uuid;not null;index:idx_tecdoc_property_group,priority:1;uniqueIndex:uq_tecdoc_group_version,priority:1"`

	// Logical document lineage within the property, e.g. "MEMORIAL"
	GroupKey string `json:"group_key" gorm:"type:varchar(80);not null;index:idx_tecdoc_property_group,priority:2;uniqueIndex:uq_tecdoc_group_version,priority:2"`

	// Incremental version per group, starting at 1
	Version          int  `json:"version" gorm:"not null;default:1;uniqueIndex:uq_tecdoc_group_version,priority:3"`
	IsCurrentVersion bool `json:"is_current_version" gorm:"not null;default:true"`

	// Human type label, e.g. "Memorial Descritivo"
	Type string `json:"type" gorm:"type:varchar(120);not null"`

	// RASCUNHO | EM_ANALISE | APROVADO | CORRIGIR | REPROVADO
	TechnicalStatus TechnicalStatus `json:"technical_status" gorm:"type:varchar(30);not null;default:'RASCUNHO';index"`
	TechnicalNotes  string          `json:"technical_notes" gorm:"type:text"`

	// Generated content
	ContentText string `json:"content_text" gorm:"type:text"`
	ContentJSON JSONB  `json:"content_json" gorm:"type:jsonb"`
	FilePath    string `json:"file_path" gorm:"type:varchar(512)"`
	Metadata    JSONB  `json:"metadata" gorm:"type:jsonb"`

	GeneratedAt *time.Time `json:"generated_at"`
	CreatedAt   time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"not null"`

	// Relationships
	Property       Property        `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	ChecklistItems []ChecklistItem `json:"checklist_items,omitempty" gorm:"foreignKey:TechnicalDocumentID;constraint:OnDelete:CASCADE"`
}

// ChecklistItem is a validation line attached to a specific technical
// document version.
type ChecklistItem struct {
	ID                  uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	TechnicalDocumentID uuid.UUID `json:"technical_document_id" gorm:"type:uuid;not null;index;uniqueIndex:uq_checklist_doc_key,priority:1"`

	// Technical identifier of the item, e.g. "AREA_CONFERE", "VERTICES_FECHADOS"
	Key         string `json:"key" gorm:"type:varchar(80);not null;uniqueIndex:uq_checklist_doc_key,priority:2"`
	Description string `json:"description" gorm:"type:varchar(255);not null"`

	Mandatory bool `json:"mandatory" gorm:"not null;default:true"`
	Critical  bool `json:"critical" gorm:"not null;default:false"`

	// OK | ALERTA | ERRO | NA
	Status  ChecklistStatus `json:"status" gorm:"type:varchar(20);not null;default:'NA'"`
	Message string          `json:"message" gorm:"type:text"`

	ValidatedAutomatically bool       `json:"validated_automatically" gorm:"not null;default:false"`
	ValidatedBy            *uuid.UUID `json:"validated_by" gorm:"type:uuid"`
	ValidatedAt            *time.Time `json:"validated_at"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`

	// Relationships
	TechnicalDocument TechnicalDocument `json:"technical_document,omitempty" gorm:"foreignKey:TechnicalDocumentID"`
}

// Overlap records the result of an overlap analysis between two geometries.
// Rows are append-only: re-running an analysis creates a new record.
type Overlap struct {
	ID uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`

	BaseGeometryID     uuid.UUID `json:"base_geometry_id" gorm:"type:uuid;not null;index"`
	AffectedGeometryID uuid.UUID `json:"affected_geometry_id" gorm:"type:uuid;not null;index"`

	OverlapAreaHa     float64 `json:"overlap_area_ha" gorm:"not null"`
	OverlapPercentage float64 `json:"overlap_percentage" gorm:"not null"`

	// SIGEF | CAR | IMOVEL_INTERNO
	Kind OverlapKind `json:"kind" gorm:"type:varchar(50);not null"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`

	// Relationships
	BaseGeometry     Geometry `json:"base_geometry,omitempty" gorm:"foreignKey:BaseGeometryID"`
	AffectedGeometry Geometry `json:"affected_geometry,omitempty" gorm:"foreignKey:AffectedGeometryID"`
}

// AuditLog is the append-only audit trail written by the core services.
type AuditLog struct {
	ID uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`

	// e.g. "DocumentoTecnico", "Geometria", "Imovel"
	EntityType string `json:"entity_type" gorm:"type:varchar(80);not null;index:idx_audit_entity,priority:1"`
	// Kept as string to support int/uuid identities
	EntityID string `json:"entity_id" gorm:"type:varchar(80);not null;index:idx_audit_entity,priority:2"`

	Action AuditAction `json:"action" gorm:"type:varchar(40);not null;index"`

	ActorUserID *uuid.UUID `json:"actor_user_id" gorm:"type:uuid"`

	// e.g. "api", "system", "automation"
	Source string `json:"source" gorm:"type:varchar(30);not null;default:'api'"`

	Payload JSONB `json:"payload" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;index"`
}

// BeforeCreate hooks assign UUIDs so the models work on SQLite as well,
// where the uuid_generate_v4() column default is unavailable.

func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (g *Geometry) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

func (d *TechnicalDocument) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

func (c *ChecklistItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (o *Overlap) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// GetAllModels returns all models for migration
func GetAllModels() []interface{} {
	return []interface{}{
		&Property{},
		&Geometry{},
		&TechnicalDocument{},
		&ChecklistItem{},
		&Overlap{},
		&AuditLog{},
	}
}
