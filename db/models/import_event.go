package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ImportKind selects which validator set and commit routine an event uses.
// It is fixed at event creation and never re-branched afterwards.
type ImportKind string

const (
	TreeImportKind    ImportKind = "tree"
	SpeciesImportKind ImportKind = "species"
)

// Import event statuses. FINISHED_CREATING and FAILED_FILE_VERIFICATION
// are terminal.
const (
	EventUploaded               = "UPLOADED"
	EventFileVerification       = "FILE_VERIFICATION"
	EventFailedFileVerification = "FAILED_FILE_VERIFICATION"
	EventValidating             = "VALIDATING"
	EventFinishedVerification   = "FINISHED_VERIFICATION"
	EventCreating               = "CREATING"
	EventFinishedCreating       = "FINISHED_CREATING"
)

// ImportEvent is one bulk-upload run. Events are kept forever as an audit
// trail; they are mutated through the validation and commit phases but
// never deleted.
type ImportEvent struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key;" json:"id"`
	Kind       ImportKind `gorm:"not null;index" json:"kind"`
	InstanceID uuid.UUID  `gorm:"type:uuid;not null;index" json:"instance_id"`
	FileName   string     `gorm:"not null" json:"file_name"`
	CreatedBy  string     `gorm:"not null" json:"created_by"`

	// Column names exactly as found in the source file, in order.
	FieldOrder datatypes.JSON `json:"field_order"`

	Status string `gorm:"not null;default:'UPLOADED';index" json:"status"`

	// File-level errors (FieldErrorList). Row-level errors live on the rows.
	Errors datatypes.JSON `json:"errors"`

	// Unit conversion factors applied to numeric fields before range
	// checks. 1 means the file already uses canonical units.
	PlotLengthFactor   decimal.Decimal `gorm:"type:decimal(10,6);default:1" json:"plot_length_factor"`
	PlotWidthFactor    decimal.Decimal `gorm:"type:decimal(10,6);default:1" json:"plot_width_factor"`
	DiameterFactor     decimal.Decimal `gorm:"type:decimal(10,6);default:1" json:"diameter_factor"`
	TreeHeightFactor   decimal.Decimal `gorm:"type:decimal(10,6);default:1" json:"tree_height_factor"`
	CanopyHeightFactor decimal.Decimal `gorm:"type:decimal(10,6);default:1" json:"canopy_height_factor"`

	Rows []ImportRow `gorm:"foreignKey:EventID" json:"rows,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (e *ImportEvent) ErrorList() FieldErrorList {
	return ParseFieldErrors(e.Errors)
}

func (e *ImportEvent) HasErrors() bool {
	return len(e.ErrorList()) > 0
}

// AppendError records a file-level error on the event.
func (e *ImportEvent) AppendError(fe FieldError) {
	list := append(e.ErrorList(), fe)
	e.Errors = datatypes.JSON(list.JSON())
}

// Terminal reports whether the event can no longer change state.
func (e *ImportEvent) Terminal() bool {
	return e.Status == EventFinishedCreating || e.Status == EventFailedFileVerification
}

// Factor returns the conversion factor for a numeric field, defaulting
// to 1 for fields without unit conversion.
func (e *ImportEvent) Factor(field string) decimal.Decimal {
	var f decimal.Decimal
	switch field {
	case FieldPlotLength:
		f = e.PlotLengthFactor
	case FieldPlotWidth:
		f = e.PlotWidthFactor
	case FieldDiameter:
		f = e.DiameterFactor
	case FieldTreeHeight:
		f = e.TreeHeightFactor
	case FieldCanopyHeight:
		f = e.CanopyHeightFactor
	}
	if f.IsZero() {
		return decimal.NewFromInt(1)
	}
	return f
}
