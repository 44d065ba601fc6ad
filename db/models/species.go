package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Species is a catalog entry in the target inventory's reference data.
type Species struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	InstanceID uuid.UUID `gorm:"type:uuid;not null;index" json:"instance_id"`

	Genus           string `gorm:"not null;index" json:"genus"`
	Species         string `json:"species"`
	Cultivar        string `json:"cultivar"`
	OtherPartOfName string `json:"other_part_of_name"`
	CommonName      string `json:"common_name"`

	USDASymbol        string `json:"usda_symbol"`
	AltSymbol         string `json:"alt_symbol"`
	ITreeCode         string `json:"itree_code"`
	Family            string `json:"family"`
	NativeStatus      string `json:"native_status"`
	FallConspicuous   *bool  `json:"fall_conspicuous"`
	PalatableHuman    *bool  `json:"palatable_human"`
	FlowerConspicuous *bool  `json:"flower_conspicuous"`
	FloweringPeriod   string `json:"flowering_period"`
	FruitPeriod       string `json:"fruit_period"`
	WildlifeValue     *bool  `json:"wildlife_value"`
	MaxDiameter       int    `gorm:"default:200" json:"max_diameter"`
	MaxHeight         int    `gorm:"default:800" json:"max_height"`
	FactSheet         string `json:"fact_sheet"`

	TreeCount int `gorm:"default:0" json:"tree_count"`

	CreatedBy string         `json:"created_by"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// CompositeName joins the non-empty scientific name parts with single
// spaces. It is the string similarity matching runs against.
func (s *Species) CompositeName() string {
	parts := []string{}
	for _, p := range []string{s.Genus, s.Species, s.Cultivar, s.OtherPartOfName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// LongName is the catalog display name.
func (s *Species) LongName() string {
	parts := []string{}
	for _, p := range []string{s.Genus, s.Species, s.Cultivar, s.OtherPartOfName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	name := strings.Join(parts, " ")
	if s.CommonName != "" {
		name += " (" + s.CommonName + ")"
	}
	return name
}
