package repositories

import (
	"tree-inventory-backend/db/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InventoryRepository interface {
	CreatePlotAndTree(plot *models.Plot, tree *models.Tree) error
	GetPlotByID(id uuid.UUID) (*models.Plot, error)
	GetTreeByID(id uuid.UUID) (*models.Tree, error)
	GetSpeciesByID(id uuid.UUID) (*models.Species, error)
	AllSpecies(instanceID uuid.UUID) ([]models.Species, error)
	CreateSpecies(species *models.Species) error
	SaveSpecies(species *models.Species) error
	CreateEmailLog(entry *models.EmailLog) error
}

type inventoryRepository struct {
	DB *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{DB: db}
}

// CreatePlotAndTree inserts a plot and its optional tree in a single
// transaction. The species tree count is maintained on the same write.
func (r *inventoryRepository) CreatePlotAndTree(plot *models.Plot, tree *models.Tree) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(plot).Error; err != nil {
			return err
		}
		if tree == nil {
			return nil
		}

		tree.PlotID = plot.ID
		if err := tx.Create(tree).Error; err != nil {
			return err
		}

		if tree.SpeciesID != nil {
			if err := tx.Model(&models.Species{}).
				Where("id = ?", *tree.SpeciesID).
				Update("tree_count", gorm.Expr("tree_count + 1")).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *inventoryRepository) GetPlotByID(id uuid.UUID) (*models.Plot, error) {
	var plot models.Plot
	if err := r.DB.First(&plot, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &plot, nil
}

func (r *inventoryRepository) GetTreeByID(id uuid.UUID) (*models.Tree, error) {
	var tree models.Tree
	if err := r.DB.Preload("Species").First(&tree, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tree, nil
}

func (r *inventoryRepository) GetSpeciesByID(id uuid.UUID) (*models.Species, error) {
	var species models.Species
	if err := r.DB.First(&species, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &species, nil
}

func (r *inventoryRepository) AllSpecies(instanceID uuid.UUID) ([]models.Species, error) {
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

func (r *inventoryRepository) CreateSpecies(species *models.Species) error {
	return r.DB.Create(species).Error
}

func (r *inventoryRepository) SaveSpecies(species *models.Species) error {
	return r.DB.Save(species).Error
}

func (r *inventoryRepository) CreateEmailLog(entry *models.EmailLog) error {
	return r.DB.Create(entry).Error
}
