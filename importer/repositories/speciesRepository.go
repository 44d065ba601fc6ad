package repositories

import (
	"strings"

	"tree-inventory-backend/db/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SpeciesRepository interface {
	AllSpecies(instanceID uuid.UUID) ([]models.Species, error)
	FindSpeciesByComposite(instanceID uuid.UUID, genus, species, cultivar, other string) ([]models.Species, error)
	GetSpeciesByID(id uuid.UUID) (*models.Species, error)
	CreateSpecies(species *models.Species) error
	SaveSpecies(species *models.Species) error
	MergeSpecies(keepID uuid.UUID, removeIDs []uuid.UUID) error
}

type speciesRepository struct {
	DB *gorm.DB
}

func NewSpeciesRepository(db *gorm.DB) SpeciesRepository {
	return &speciesRepository{DB: db}
}

// AllSpecies returns the instance's catalog in insertion order, so that
// similarity ranking ties always resolve the same way
func (r *speciesRepository) AllSpecies(instanceID uuid.UUID) ([]models.Species, error) {
	var all []models.Species
	err := r.DB.
		Where("instance_id = ?", instanceID).
		Order("created_at ASC, id ASC").
		Find(&all).Error
	if err != nil {
		return nil, err
	}
	return all, nil
}

// FindSpeciesByComposite matches the four scientific name parts exactly,
// ignoring case and surrounding whitespace
func (r *speciesRepository) FindSpeciesByComposite(instanceID uuid.UUID, genus, species, cultivar, other string) ([]models.Species, error) {
	var matches []models.Species
	err := r.DB.
		Where("instance_id = ?", instanceID).
		Where("LOWER(TRIM(genus)) = ?", strings.ToLower(strings.TrimSpace(genus))).
		Where("LOWER(TRIM(species)) = ?", strings.ToLower(strings.TrimSpace(species))).
		Where("LOWER(TRIM(cultivar)) = ?", strings.ToLower(strings.TrimSpace(cultivar))).
		Where("LOWER(TRIM(other_part_of_name)) = ?", strings.ToLower(strings.TrimSpace(other))).
		Order("created_at ASC, id ASC").
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *speciesRepository) GetSpeciesByID(id uuid.UUID) (*models.Species, error) {
	var species models.Species
	if err := r.DB.First(&species, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &species, nil
}

func (r *speciesRepository) CreateSpecies(species *models.Species) error {
	return r.DB.Create(species).Error
}

func (r *speciesRepository) SaveSpecies(species *models.Species) error {
	return r.DB.Save(species).Error
}

// MergeSpecies retargets every tree of the removed entries onto the kept
// entry, refreshes its tree count, and soft-deletes the removed entries.
// The whole merge is one transaction.
func (r *speciesRepository) MergeSpecies(keepID uuid.UUID, removeIDs []uuid.UUID) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Tree{}).
			Where("species_id IN ?", removeIDs).
			Update("species_id", keepID).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Tree{}).
			Where("species_id = ?", keepID).
			Count(&count).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Species{}).
			Where("id = ?", keepID).
			Update("tree_count", count).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Species{}, "id IN ?", removeIDs).Error
	})
}
