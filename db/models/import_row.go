package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Import row statuses. SUCCESS and VERIFIED are terminal; ERROR and WATCH
// are recoverable by edit-and-revalidate.
const (
	RowWaiting  = "WAITING"
	RowError    = "ERROR"
	RowWatch    = "WATCH"
	RowSuccess  = "SUCCESS"
	RowVerified = "VERIFIED"
)

// ImportRow is one source record within an import event. Idx is assigned
// at ingest and never changes. The errors column is fully replaced on
// every validation pass.
type ImportRow struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	EventID uuid.UUID `gorm:"type:uuid;not null;index:idx_import_rows_event_idx,unique" json:"event_id"`
	Idx     int       `gorm:"not null;index:idx_import_rows_event_idx,unique" json:"idx"`

	// Normalized field name -> raw text value.
	Data datatypes.JSON `json:"data"`

	Errors datatypes.JSON `json:"errors"`
	Status string         `gorm:"not null;default:'WAITING';index" json:"status"`

	// Set once the operator has resolved any ambiguity on this row.
	Merged bool `gorm:"default:false" json:"merged"`

	// Weak references to the permanent records this row produced, or the
	// catalog entry it was bound to. Null until commit / merge.
	PlotID    *uuid.UUID `gorm:"type:uuid" json:"plot_id,omitempty"`
	TreeID    *uuid.UUID `gorm:"type:uuid" json:"tree_id,omitempty"`
	SpeciesID *uuid.UUID `gorm:"type:uuid" json:"species_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *ImportRow) ErrorList() FieldErrorList {
	return ParseFieldErrors(r.Errors)
}

// SetErrors replaces the row's error list wholesale.
func (r *ImportRow) SetErrors(list FieldErrorList) {
	r.Errors = datatypes.JSON(list.JSON())
}

// DataDict decodes the row's normalized field mapping. A row always has a
// mapping; a corrupt column decodes as empty rather than failing reads.
func (r *ImportRow) DataDict() map[string]string {
	out := map[string]string{}
	if len(r.Data) == 0 {
		return out
	}
	if err := json.Unmarshal(r.Data, &out); err != nil {
		return map[string]string{}
	}
	return out
}

func (r *ImportRow) SetDataDict(data map[string]string) {
	b, err := json.Marshal(data)
	if err != nil {
		b = []byte("{}")
	}
	r.Data = datatypes.JSON(b)
}

// Committable reports whether the commit executor may materialize this row.
func (r *ImportRow) Committable() bool {
	return r.Status == RowSuccess || r.Status == RowVerified
}

// DeriveRowStatus computes a row status from its error list and merge
// flag. Status is always derived, never set independently, so repeated
// validation of unchanged input is idempotent.
func DeriveRowStatus(errors FieldErrorList, merged bool) string {
	if errors.HasFatal() {
		return RowError
	}
	if len(errors) > 0 {
		return RowWatch
	}
	if merged {
		return RowVerified
	}
	return RowSuccess
}
