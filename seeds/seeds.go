package seeds

import (
	"errors"

	"tree-inventory-backend/config"
	"tree-inventory-backend/db/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type speciesSeed struct {
	genus       string
	species     string
	commonName  string
	family      string
	maxDiameter int
	maxHeight   int
}

// Common street trees, enough to exercise matching and merge resolution
// on a fresh install.
var starterSpecies = []speciesSeed{
	{"Acer", "rubrum", "Red Maple", "Sapindaceae", 300, 1200},
	{"Acer", "saccharum", "Sugar Maple", "Sapindaceae", 300, 1200},
	{"Acer", "platanoides", "Norway Maple", "Sapindaceae", 250, 1000},
	{"Quercus", "alba", "White Oak", "Fagaceae", 400, 1400},
	{"Quercus", "rubra", "Northern Red Oak", "Fagaceae", 400, 1400},
	{"Platanus", "acerifolia", "London Planetree", "Platanaceae", 400, 1300},
	{"Gleditsia", "triacanthos", "Honeylocust", "Fabaceae", 250, 1000},
	{"Tilia", "cordata", "Littleleaf Linden", "Malvaceae", 250, 900},
	{"Ulmus", "americana", "American Elm", "Ulmaceae", 350, 1200},
	{"Pyrus", "calleryana", "Callery Pear", "Rosaceae", 150, 600},
	{"Ginkgo", "biloba", "Ginkgo", "Ginkgoaceae", 250, 1000},
	{"Liquidambar", "styraciflua", "Sweetgum", "Altingiaceae", 300, 1100},
}

// SeedSpeciesCatalog inserts the starter species catalog for an instance.
// Idempotent: seeding an instance that already has a catalog does nothing.
func SeedSpeciesCatalog(db *gorm.DB, instanceID uuid.UUID) error {
	config.Logger.Info("Starting species catalog seeding...",
		zap.String("instance_id", instanceID.String()),
	)

	var existing int64
	if err := db.Model(&models.Species{}).
		Where("instance_id = ?", instanceID).
		Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		config.Logger.Info("Species catalog already seeded, skipping",
			zap.Int64("existing", existing),
		)
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, seed := range starterSpecies {
			entry := models.Species{
				ID:          uuid.New(),
				InstanceID:  instanceID,
				Genus:       seed.genus,
				Species:     seed.species,
				CommonName:  seed.commonName,
				Family:      seed.family,
				MaxDiameter: seed.maxDiameter,
				MaxHeight:   seed.maxHeight,
				CreatedBy:   "system",
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}
		config.Logger.Info("Species catalog seeded",
			zap.Int("entries", len(starterSpecies)),
		)
		return nil
	})
}

// SeedFromEnv seeds the instance named by SEED_INSTANCE_ID, when set.
func SeedFromEnv(db *gorm.DB) error {
	raw := config.GetEnv("SEED_INSTANCE_ID")
	if raw == "" {
		return nil
	}
	instanceID, err := uuid.Parse(raw)
	if err != nil {
		return errors.New("SEED_INSTANCE_ID is not a valid UUID")
	}
	return SeedSpeciesCatalog(db, instanceID)
}
