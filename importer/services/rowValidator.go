package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tree-inventory-backend/config"
	"tree-inventory-backend/db/models"
)

// SpeciesLookup is the slice of the species repository row validation
// needs.
type SpeciesLookup interface {
	AllSpecies(instanceID uuid.UUID) ([]models.Species, error)
	FindSpeciesByComposite(instanceID uuid.UUID, genus, species, cultivar, other string) ([]models.Species, error)
}

// RowService validates one import row and derives its status. Validation
// is idempotent: the error list is rebuilt from scratch on every pass and
// the status is a pure function of that list plus the merge flag.
type RowService struct {
	species SpeciesLookup
	catalog ChoiceCatalog
	region  config.Region
	logger  *zap.Logger
}

func NewRowService(species SpeciesLookup, catalog ChoiceCatalog, region config.Region, logger *zap.Logger) *RowService {
	return &RowService{
		species: species,
		catalog: catalog,
		region:  region,
		logger:  logger,
	}
}

// ValidateRow recomputes the row's error list and status in place. The
// caller persists the row. Only infrastructure failures return an error;
// bad data lands in the error list.
func (s *RowService) ValidateRow(event *models.ImportEvent, row *models.ImportRow) error {
	data := row.DataDict()

	var errs models.FieldErrorList
	switch event.Kind {
	case models.SpeciesImportKind:
		errs = ValidateSpeciesFields(data, event, s.catalog)
		if err := s.resolveSpeciesRow(event, row, data, &errs); err != nil {
			return err
		}
	default:
		errs = ValidateTreeFields(data, event, s.region, s.catalog)
		if err := s.resolveTreeSpecies(event, row, data, &errs); err != nil {
			return err
		}
	}

	row.SetErrors(errs)
	row.Status = models.DeriveRowStatus(errs, row.Merged)
	return nil
}

// speciesQuery joins the row's scientific name parts the same way the
// catalog composite name is built.
func speciesQuery(data map[string]string) string {
	parts := []string{}
	for _, field := range []string{
		models.FieldGenus, models.FieldSpecies,
		models.FieldCultivar, models.FieldOtherPartOfName,
	} {
		if v := data[field]; v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

func hasSpeciesText(data map[string]string) bool {
	return data[models.FieldGenus] != "" || data[models.FieldSpecies] != "" ||
		data[models.FieldCultivar] != "" || data[models.FieldOtherPartOfName] != ""
}

// resolveTreeSpecies binds the row's free-text species description to a
// catalog entry. Zero matches is only a watch condition (a new entry can
// be created at commit); multiple matches block the row until the
// operator resolves them.
func (s *RowService) resolveTreeSpecies(
	event *models.ImportEvent,
	row *models.ImportRow,
	data map[string]string,
	errs *models.FieldErrorList,
) error {
	if !hasSpeciesText(data) {
		return nil
	}
	// Operator already resolved this row; keep the bound reference.
	if row.Merged && row.SpeciesID != nil {
		return nil
	}

	exact, err := s.species.FindSpeciesByComposite(
		event.InstanceID,
		data[models.FieldGenus],
		data[models.FieldSpecies],
		data[models.FieldCultivar],
		data[models.FieldOtherPartOfName],
	)
	if err != nil {
		return fmt.Errorf("species lookup failed for row %d: %w", row.Idx, err)
	}
	if len(exact) == 1 {
		id := exact[0].ID
		row.SpeciesID = &id
		return nil
	}

	all, err := s.species.AllSpecies(event.InstanceID)
	if err != nil {
		return fmt.Errorf("species catalog load failed for row %d: %w", row.Idx, err)
	}

	query := speciesQuery(data)
	near := CloseSpeciesMatches(query, all)

	switch {
	case len(exact) > 1 || len(near) > 1:
		candidates := near
		if len(exact) > 1 {
			candidates = RankSpecies(query, exact, 0)
		}
		if len(candidates) > 2 {
			candidates = candidates[:2]
		}
		*errs = append(*errs, models.FieldError{
			Code:   models.ErrTooManySpecies,
			Fields: []string{models.FieldGenus, models.FieldSpecies},
			Data:   candidates,
			Fatal:  true,
		})
	case len(near) == 1:
		id, err := uuid.Parse(near[0].ID)
		if err == nil {
			row.SpeciesID = &id
		}
	default:
		*errs = append(*errs, models.FieldError{
			Code:   models.ErrInvalidSpecies,
			Fields: []string{models.FieldGenus, models.FieldSpecies},
			Data:   query,
			Fatal:  false,
		})
	}
	return nil
}

// resolveSpeciesRow handles catalog imports: a row that exactly matches
// an existing entry binds silently when all mapped fields agree, and
// requires operator merge resolution when they differ.
func (s *RowService) resolveSpeciesRow(
	event *models.ImportEvent,
	row *models.ImportRow,
	data map[string]string,
	errs *models.FieldErrorList,
) error {
	if row.Merged {
		return nil
	}

	matches, err := s.species.FindSpeciesByComposite(
		event.InstanceID,
		data[models.FieldGenus],
		data[models.FieldSpecies],
		data[models.FieldCultivar],
		data[models.FieldOtherPartOfName],
	)
	if err != nil {
		return fmt.Errorf("species lookup failed for row %d: %w", row.Idx, err)
	}
	if len(matches) == 0 {
		// New catalog entry; created at commit.
		return nil
	}

	existing := matches[0]
	diff := SpeciesRowDiff(data, &existing)
	id := existing.ID
	row.SpeciesID = &id

	if len(diff) == 0 {
		row.Merged = true
		return nil
	}

	*errs = append(*errs, models.FieldError{
		Code:   models.ErrMergeRequired,
		Fields: []string{models.FieldGenus, models.FieldSpecies},
		Data: map[string]interface{}{
			"species_id": existing.ID.String(),
			"diff":       diff,
		},
		Fatal: false,
	})
	return nil
}
