package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"

	"tree-inventory-backend/db/models"
)

// InventoryReader is the read surface exports need to show canonical
// values for rows that were already materialized.
type InventoryReader interface {
	GetPlotByID(id uuid.UUID) (*models.Plot, error)
	GetTreeByID(id uuid.UUID) (*models.Tree, error)
	GetSpeciesByID(id uuid.UUID) (*models.Species, error)
	AllSpecies(instanceID uuid.UUID) ([]models.Species, error)
}

// ExportService renders import events and the species catalog back out
// as delimited text.
type ExportService struct {
	store     ImportEventStore
	inventory InventoryReader
}

func NewExportService(store ImportEventStore, inventory InventoryReader) *ExportService {
	return &ExportService{store: store, inventory: inventory}
}

// ExportEvent writes the event's rows as CSV in the canonical column
// order for its kind. Rows already bound to permanent records export the
// record's current values; everything else falls back to the raw cell,
// and absent fields export empty.
func (s *ExportService) ExportEvent(w io.Writer, eventID uuid.UUID) error {
	event, err := s.store.GetEvent(eventID)
	if err != nil {
		return fmt.Errorf("failed to load import event: %w", err)
	}
	rows, err := s.store.RowsForEvent(eventID)
	if err != nil {
		return fmt.Errorf("failed to load rows: %w", err)
	}

	fields := models.TreeImportFields
	if event.Kind == models.SpeciesImportKind {
		fields = models.SpeciesImportFields
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(fields); err != nil {
		return err
	}

	for i := range rows {
		values, err := s.rowExportValues(event, &rows[i])
		if err != nil {
			return err
		}
		record := make([]string, len(fields))
		for j, f := range fields {
			record[j] = values[f]
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportSpeciesCatalog writes the instance's full species catalog as
// CSV. extra adds the identifier and tree count columns used by the
// catalog management screens.
func (s *ExportService) ExportSpeciesCatalog(w io.Writer, instanceID uuid.UUID, extra bool) error {
	all, err := s.inventory.AllSpecies(instanceID)
	if err != nil {
		return fmt.Errorf("failed to load species catalog: %w", err)
	}

	fields := models.SpeciesImportFields
	if extra {
		fields = append(append([]string{}, fields...), models.FieldSpeciesID, models.FieldTreeCount)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(fields); err != nil {
		return err
	}
	for i := range all {
		values := speciesExportValues(&all[i])
		if extra {
			values[models.FieldSpeciesID] = all[i].ID.String()
			values[models.FieldTreeCount] = strconv.Itoa(all[i].TreeCount)
		}
		record := make([]string, len(fields))
		for j, f := range fields {
			record[j] = values[f]
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func (s *ExportService) rowExportValues(event *models.ImportEvent, row *models.ImportRow) (map[string]string, error) {
	values := row.DataDict()

	if event.Kind == models.SpeciesImportKind {
		if row.SpeciesID != nil {
			species, err := s.inventory.GetSpeciesByID(*row.SpeciesID)
			if err != nil {
				return nil, err
			}
			overlay(values, speciesExportValues(species))
		}
		return values, nil
	}

	if row.PlotID != nil {
		plot, err := s.inventory.GetPlotByID(*row.PlotID)
		if err != nil {
			return nil, err
		}
		overlay(values, plotExportValues(plot))
	}
	if row.TreeID != nil {
		tree, err := s.inventory.GetTreeByID(*row.TreeID)
		if err != nil {
			return nil, err
		}
		overlay(values, treeExportValues(tree))
	}
	return values, nil
}

func overlay(dst, src map[string]string) {
	for k, v := range src {
		if v != "" {
			dst[k] = v
		}
	}
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func formatBoolPtr(b *bool) string {
	if b == nil {
		return ""
	}
	return formatBool(*b)
}

func plotExportValues(plot *models.Plot) map[string]string {
	values := map[string]string{
		models.FieldPointX:            plot.GeomX.String(),
		models.FieldPointY:            plot.GeomY.String(),
		models.FieldAddress:           plot.AddressStreet,
		models.FieldPlotType:          plot.PlotType,
		models.FieldSidewalk:          plot.Sidewalk,
		models.FieldPowerlineConflict: plot.PowerlineConflict,
		models.FieldReadOnly:          formatBool(plot.ReadOnly),
		models.FieldOrigIDNumber:      plot.OwnerOrigID,
		models.FieldDataSource:        plot.DataSource,
		models.FieldNotes:             plot.Notes,
	}
	if plot.Width != nil {
		values[models.FieldPlotWidth] = plot.Width.String()
	}
	if plot.Length != nil {
		values[models.FieldPlotLength] = plot.Length.String()
	}
	return values
}

func treeExportValues(tree *models.Tree) map[string]string {
	values := map[string]string{
		models.FieldTreePresent:     "true",
		models.FieldTreeCondition:   tree.Condition,
		models.FieldCanopyCondition: tree.CanopyCondition,
		models.FieldPests:           tree.Pests,
		models.FieldActions:         tree.Actions,
		models.FieldURL:             tree.URL,
		models.FieldOwner:           tree.TreeOwner,
		models.FieldSponsor:         tree.Sponsor,
		models.FieldSteward:         tree.Steward,
		models.FieldLocalProjects:   tree.LocalProjects,
	}
	if tree.Diameter != nil {
		values[models.FieldDiameter] = tree.Diameter.String()
	}
	if tree.Height != nil {
		values[models.FieldTreeHeight] = tree.Height.String()
	}
	if tree.CanopyHeight != nil {
		values[models.FieldCanopyHeight] = tree.CanopyHeight.String()
	}
	if tree.DatePlanted != nil {
		values[models.FieldDatePlanted] = tree.DatePlanted.Format("2006-01-02")
	}
	if tree.Species != nil {
		overlay(values, map[string]string{
			models.FieldGenus:           tree.Species.Genus,
			models.FieldSpecies:         tree.Species.Species,
			models.FieldCultivar:        tree.Species.Cultivar,
			models.FieldOtherPartOfName: tree.Species.OtherPartOfName,
		})
	}
	return values
}

func speciesExportValues(species *models.Species) map[string]string {
	return map[string]string{
		models.FieldGenus:           species.Genus,
		models.FieldSpecies:         species.Species,
		models.FieldCultivar:        species.Cultivar,
		models.FieldOtherPartOfName: species.OtherPartOfName,
		models.FieldCommonName:      species.CommonName,
		models.FieldUSDASymbol:      species.USDASymbol,
		models.FieldAltSymbol:       species.AltSymbol,
		models.FieldITreeCode:       species.ITreeCode,
		models.FieldFamily:          species.Family,
		models.FieldNativeStatus:    species.NativeStatus,
		models.FieldFallColors:      formatBoolPtr(species.FallConspicuous),
		models.FieldEdible:          formatBoolPtr(species.PalatableHuman),
		models.FieldFlowering:       formatBoolPtr(species.FlowerConspicuous),
		models.FieldFloweringPeriod: species.FloweringPeriod,
		models.FieldFruitPeriod:     species.FruitPeriod,
		models.FieldWildlife:        formatBoolPtr(species.WildlifeValue),
		models.FieldMaxDiameter:     strconv.Itoa(species.MaxDiameter),
		models.FieldMaxHeight:       strconv.Itoa(species.MaxHeight),
		models.FieldFactSheet:       species.FactSheet,
	}
}
