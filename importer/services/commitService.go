package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tree-inventory-backend/db/models"
)

// InventoryWriter materializes permanent records. Each call is one
// transaction so a failing row never poisons its siblings.
type InventoryWriter interface {
	CreatePlotAndTree(plot *models.Plot, tree *models.Tree) error
	CreateSpecies(species *models.Species) error
	SaveSpecies(species *models.Species) error
	GetSpeciesByID(id uuid.UUID) (*models.Species, error)
}

// CommitService materializes an import event's validated rows into the
// permanent inventory. Rows are processed strictly in index order; one
// row's failure never aborts the batch, and the event always reaches
// FINISHED_CREATING.
type CommitService struct {
	store     ImportEventStore
	rows      *RowService
	inventory InventoryWriter
	logger    *zap.Logger
}

func NewCommitService(
	store ImportEventStore,
	rows *RowService,
	inventory InventoryWriter,
	logger *zap.Logger,
) *CommitService {
	return &CommitService{
		store:     store,
		rows:      rows,
		inventory: inventory,
		logger:    logger,
	}
}

// CommitEvent is the body of the background commit job. Rows reset to
// WAITING are re-validated first; only rows landing in a terminal-success
// status are materialized. Designed to be retried: rows that already hold
// a permanent reference are not materialized twice.
func (s *CommitService) CommitEvent(eventID uuid.UUID) error {
	event, err := s.store.GetEvent(eventID)
	if err != nil {
		return fmt.Errorf("failed to load import event: %w", err)
	}
	if event.Status != models.EventCreating {
		s.logger.Warn("Commit job ignored: event not in creating state",
			zap.String("event_id", eventID.String()),
			zap.String("status", event.Status),
		)
		return nil
	}

	rows, err := s.store.RowsForEvent(eventID)
	if err != nil {
		return fmt.Errorf("failed to load rows: %w", err)
	}

	created, skipped := 0, 0
	for i := range rows {
		row := &rows[i]

		if s.alreadyMaterialized(event, row) {
			created++
			continue
		}

		if err := s.rows.ValidateRow(event, row); err != nil {
			return err
		}
		if !row.Committable() {
			if err := s.store.SaveRow(row); err != nil {
				return err
			}
			skipped++
			continue
		}

		if err := s.materialize(event, row); err != nil {
			// Materialization failures are per-row diagnostics, not
			// pipeline failures.
			errs := append(row.ErrorList(), models.FieldError{
				Code:  models.ErrCreateFailed,
				Data:  err.Error(),
				Fatal: true,
			})
			row.SetErrors(errs)
			row.Status = models.RowError
			s.logger.Error("Row materialization failed",
				zap.String("event_id", eventID.String()),
				zap.Int("idx", row.Idx),
				zap.Error(err),
			)
		} else {
			row.Status = models.RowSuccess
			created++
		}
		if err := s.store.SaveRow(row); err != nil {
			return err
		}
	}

	event.Status = models.EventFinishedCreating
	if err := s.store.SaveEvent(event); err != nil {
		return err
	}

	// Skipped rows are the caller's reconciliation signal.
	s.logger.Info("Import commit finished",
		zap.String("event_id", eventID.String()),
		zap.Int("created", created),
		zap.Int("skipped", skipped),
	)
	return nil
}

func (s *CommitService) alreadyMaterialized(event *models.ImportEvent, row *models.ImportRow) bool {
	if row.Status != models.RowSuccess {
		return false
	}
	if event.Kind == models.SpeciesImportKind {
		return row.SpeciesID != nil
	}
	return row.PlotID != nil
}

func (s *CommitService) materialize(event *models.ImportEvent, row *models.ImportRow) error {
	if event.Kind == models.SpeciesImportKind {
		return s.materializeSpecies(event, row)
	}
	return s.materializeTree(event, row)
}

func (s *CommitService) materializeTree(event *models.ImportEvent, row *models.ImportRow) error {
	data := row.DataDict()

	plot := buildPlot(event, data)
	var tree *models.Tree
	if HasTreeData(data) {
		tree = buildTree(event, data, row.SpeciesID)
	}

	if err := s.inventory.CreatePlotAndTree(plot, tree); err != nil {
		return err
	}

	row.PlotID = &plot.ID
	if tree != nil {
		row.TreeID = &tree.ID
	}
	return nil
}

func (s *CommitService) materializeSpecies(event *models.ImportEvent, row *models.ImportRow) error {
	data := row.DataDict()

	if row.SpeciesID != nil {
		existing, err := s.inventory.GetSpeciesByID(*row.SpeciesID)
		if err != nil {
			return err
		}
		applySpeciesData(existing, data)
		return s.inventory.SaveSpecies(existing)
	}

	species := &models.Species{
		ID:         uuid.New(),
		InstanceID: event.InstanceID,
		CreatedBy:  event.CreatedBy,
	}
	applySpeciesData(species, data)
	if err := s.inventory.CreateSpecies(species); err != nil {
		return err
	}
	row.SpeciesID = &species.ID
	return nil
}

func parseDecimal(raw string) (decimal.Decimal, bool) {
	if raw == "" {
		return decimal.Decimal{}, false
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return v, true
}

// converted parses a numeric cell and applies the event's unit factor.
func converted(event *models.ImportEvent, data map[string]string, field string) *decimal.Decimal {
	v, ok := parseDecimal(data[field])
	if !ok {
		return nil
	}
	out := v.Mul(event.Factor(field))
	return &out
}

func buildPlot(event *models.ImportEvent, data map[string]string) *models.Plot {
	plot := &models.Plot{
		ID:                uuid.New(),
		InstanceID:        event.InstanceID,
		AddressStreet:     data[models.FieldAddress],
		PlotType:          data[models.FieldPlotType],
		Sidewalk:          data[models.FieldSidewalk],
		PowerlineConflict: data[models.FieldPowerlineConflict],
		OwnerOrigID:       data[models.FieldOrigIDNumber],
		DataSource:        data[models.FieldDataSource],
		Notes:             data[models.FieldNotes],
		CreatedBy:         event.CreatedBy,
	}

	if x, ok := parseDecimal(data[models.FieldPointX]); ok {
		plot.GeomX = x
	}
	if y, ok := parseDecimal(data[models.FieldPointY]); ok {
		plot.GeomY = y
	}
	plot.Width = converted(event, data, models.FieldPlotWidth)
	plot.Length = converted(event, data, models.FieldPlotLength)

	if readOnly, ok := ParseBoolField(data[models.FieldReadOnly]); ok {
		plot.ReadOnly = readOnly
	}
	return plot
}

func buildTree(event *models.ImportEvent, data map[string]string, speciesID *uuid.UUID) *models.Tree {
	tree := &models.Tree{
		ID:         uuid.New(),
		InstanceID: event.InstanceID,
		SpeciesID:  speciesID,

		Condition:       data[models.FieldTreeCondition],
		CanopyCondition: data[models.FieldCanopyCondition],
		Pests:           data[models.FieldPests],
		Actions:         data[models.FieldActions],
		URL:             data[models.FieldURL],
		TreeOwner:       data[models.FieldOwner],
		Sponsor:         data[models.FieldSponsor],
		Steward:         data[models.FieldSteward],
		LocalProjects:   data[models.FieldLocalProjects],
		CreatedBy:       event.CreatedBy,
	}

	tree.Diameter = converted(event, data, models.FieldDiameter)
	tree.Height = converted(event, data, models.FieldTreeHeight)
	tree.CanopyHeight = converted(event, data, models.FieldCanopyHeight)

	if planted, ok := ParseDateField(data[models.FieldDatePlanted]); ok {
		tree.DatePlanted = &planted
	}
	if readOnly, ok := ParseBoolField(data[models.FieldReadOnly]); ok {
		tree.ReadOnly = readOnly
	}
	return tree
}

func applySpeciesData(species *models.Species, data map[string]string) {
	set := func(dst *string, field string) {
		if v, ok := data[field]; ok && v != "" {
			*dst = v
		}
	}
	setBool := func(dst **bool, field string) {
		if v, ok := data[field]; ok && v != "" {
			if b, parsed := ParseBoolField(v); parsed {
				*dst = &b
			}
		}
	}

	set(&species.Genus, models.FieldGenus)
	set(&species.Species, models.FieldSpecies)
	set(&species.Cultivar, models.FieldCultivar)
	set(&species.OtherPartOfName, models.FieldOtherPartOfName)
	set(&species.CommonName, models.FieldCommonName)
	set(&species.USDASymbol, models.FieldUSDASymbol)
	set(&species.AltSymbol, models.FieldAltSymbol)
	set(&species.ITreeCode, models.FieldITreeCode)
	set(&species.Family, models.FieldFamily)
	set(&species.NativeStatus, models.FieldNativeStatus)
	set(&species.FloweringPeriod, models.FieldFloweringPeriod)
	set(&species.FruitPeriod, models.FieldFruitPeriod)
	set(&species.FactSheet, models.FieldFactSheet)

	setBool(&species.PalatableHuman, models.FieldEdible)
	setBool(&species.FlowerConspicuous, models.FieldFlowering)
	setBool(&species.FallConspicuous, models.FieldFallColors)
	setBool(&species.WildlifeValue, models.FieldWildlife)

	if v, ok := parseDecimal(data[models.FieldMaxDiameter]); ok {
		species.MaxDiameter = int(v.IntPart())
	}
	if v, ok := parseDecimal(data[models.FieldMaxHeight]); ok {
		species.MaxHeight = int(v.IntPart())
	}
}
