package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Plot is a planting site in the permanent inventory.
type Plot struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	InstanceID uuid.UUID `gorm:"type:uuid;not null;index" json:"instance_id"`

	GeomX decimal.Decimal `gorm:"type:decimal(12,8);not null" json:"geom_x"`
	GeomY decimal.Decimal `gorm:"type:decimal(12,8);not null" json:"geom_y"`

	AddressStreet string `json:"address_street"`

	Width  *decimal.Decimal `gorm:"type:decimal(10,3)" json:"width"`
	Length *decimal.Decimal `gorm:"type:decimal(10,3)" json:"length"`

	PlotType          string `json:"plot_type"`
	Sidewalk          string `json:"sidewalk"`
	PowerlineConflict string `json:"powerline_conflict"`

	ReadOnly    bool   `gorm:"default:false" json:"read_only"`
	OwnerOrigID string `json:"owner_orig_id"`
	DataSource  string `json:"data_source"`
	Notes       string `json:"notes"`

	Trees []Tree `gorm:"foreignKey:PlotID" json:"trees,omitempty"`

	CreatedBy string         `json:"created_by"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Tree is a tree growing in a plot. A plot holds at most one current tree.
type Tree struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key;" json:"id"`
	InstanceID uuid.UUID  `gorm:"type:uuid;not null;index" json:"instance_id"`
	PlotID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"plot_id"`
	SpeciesID  *uuid.UUID `gorm:"type:uuid;index" json:"species_id"`

	Diameter     *decimal.Decimal `gorm:"type:decimal(10,3)" json:"diameter"`
	Height       *decimal.Decimal `gorm:"type:decimal(10,3)" json:"height"`
	CanopyHeight *decimal.Decimal `gorm:"type:decimal(10,3)" json:"canopy_height"`

	DatePlanted *time.Time `json:"date_planted"`

	Condition       string `json:"condition"`
	CanopyCondition string `json:"canopy_condition"`
	Pests           string `json:"pests"`
	Actions         string `json:"actions"`
	URL             string `json:"url"`
	Notes           string `json:"notes"`
	TreeOwner       string `json:"tree_owner"`
	Sponsor         string `json:"sponsor"`
	Steward         string `json:"steward"`
	LocalProjects   string `json:"local_projects"`
	ReadOnly        bool   `gorm:"default:false" json:"read_only"`

	Species *Species `gorm:"foreignKey:SpeciesID" json:"species,omitempty"`

	CreatedBy string         `json:"created_by"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
