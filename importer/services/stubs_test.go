package services

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tree-inventory-backend/config"
	"tree-inventory-backend/db/models"
)

// stubSpeciesLookup serves a fixed in-memory catalog.
type stubSpeciesLookup struct {
	catalog []models.Species
	err     error
}

func (s *stubSpeciesLookup) AllSpecies(instanceID uuid.UUID) ([]models.Species, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.catalog, nil
}

func (s *stubSpeciesLookup) FindSpeciesByComposite(instanceID uuid.UUID, genus, species, cultivar, other string) ([]models.Species, error) {
	if s.err != nil {
		return nil, s.err
	}
	var matches []models.Species
	for _, sp := range s.catalog {
		if equalFold(sp.Genus, genus) && equalFold(sp.Species, species) &&
			equalFold(sp.Cultivar, cultivar) && equalFold(sp.OtherPartOfName, other) {
			matches = append(matches, sp)
		}
	}
	return matches, nil
}

// stubStore is an in-memory ImportEventStore.
type stubStore struct {
	events map[uuid.UUID]*models.ImportEvent
	rows   map[uuid.UUID]map[int]*models.ImportRow

	savedRows int
	resets    int
}

func newStubStore() *stubStore {
	return &stubStore{
		events: map[uuid.UUID]*models.ImportEvent{},
		rows:   map[uuid.UUID]map[int]*models.ImportRow{},
	}
}

func (s *stubStore) SaveEvent(event *models.ImportEvent) error {
	copied := *event
	s.events[event.ID] = &copied
	return nil
}

func (s *stubStore) GetEvent(id uuid.UUID) (*models.ImportEvent, error) {
	event, ok := s.events[id]
	if !ok {
		return nil, fmt.Errorf("event %s not found", id)
	}
	copied := *event
	return &copied, nil
}

func (s *stubStore) CreateRow(row *models.ImportRow) error {
	if s.rows[row.EventID] == nil {
		s.rows[row.EventID] = map[int]*models.ImportRow{}
	}
	if _, exists := s.rows[row.EventID][row.Idx]; exists {
		return fmt.Errorf("duplicate row %d", row.Idx)
	}
	copied := *row
	s.rows[row.EventID][row.Idx] = &copied
	return nil
}

func (s *stubStore) SaveRow(row *models.ImportRow) error {
	if s.rows[row.EventID] == nil {
		s.rows[row.EventID] = map[int]*models.ImportRow{}
	}
	copied := *row
	s.rows[row.EventID][row.Idx] = &copied
	s.savedRows++
	return nil
}

func (s *stubStore) RowsForEvent(eventID uuid.UUID) ([]models.ImportRow, error) {
	var out []models.ImportRow
	for _, row := range s.rows[eventID] {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Idx < out[j].Idx })
	return out, nil
}

func (s *stubStore) RowStatusCounts(eventID uuid.UUID) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, row := range s.rows[eventID] {
		counts[row.Status]++
	}
	return counts, nil
}

func (s *stubStore) TransitionEventStatus(id uuid.UUID, from, to string) (bool, error) {
	event, ok := s.events[id]
	if !ok {
		return false, fmt.Errorf("event %s not found", id)
	}
	if event.Status != from {
		return false, nil
	}
	event.Status = to
	return true, nil
}

func (s *stubStore) ResetRowsToWaiting(eventID uuid.UUID) error {
	for _, row := range s.rows[eventID] {
		row.Status = models.RowWaiting
	}
	s.resets++
	return nil
}

// stubDispatcher records enqueued jobs.
type stubDispatcher struct {
	validations []uuid.UUID
	commits     []uuid.UUID
	err         error
}

func (d *stubDispatcher) EnqueueValidation(eventID uuid.UUID, kind models.ImportKind) error {
	if d.err != nil {
		return d.err
	}
	d.validations = append(d.validations, eventID)
	return nil
}

func (d *stubDispatcher) EnqueueCommit(eventID uuid.UUID, kind models.ImportKind) error {
	if d.err != nil {
		return d.err
	}
	d.commits = append(d.commits, eventID)
	return nil
}

// stubNotifier records error report deliveries.
type stubNotifier struct {
	events []uuid.UUID
	rows   int
}

func (n *stubNotifier) NotifyValidationErrors(event *models.ImportEvent, failed []models.ImportRow) {
	n.events = append(n.events, event.ID)
	n.rows += len(failed)
}

// stubInventory is an in-memory InventoryWriter and InventoryReader.
type stubInventory struct {
	plots   map[uuid.UUID]*models.Plot
	trees   map[uuid.UUID]*models.Tree
	species map[uuid.UUID]*models.Species

	failPlots bool
	creates   int
}

func newStubInventory() *stubInventory {
	return &stubInventory{
		plots:   map[uuid.UUID]*models.Plot{},
		trees:   map[uuid.UUID]*models.Tree{},
		species: map[uuid.UUID]*models.Species{},
	}
}

func (s *stubInventory) CreatePlotAndTree(plot *models.Plot, tree *models.Tree) error {
	if s.failPlots {
		return fmt.Errorf("plot insert rejected")
	}
	s.plots[plot.ID] = plot
	if tree != nil {
		tree.PlotID = plot.ID
		s.trees[tree.ID] = tree
	}
	s.creates++
	return nil
}

func (s *stubInventory) CreateSpecies(species *models.Species) error {
	s.species[species.ID] = species
	s.creates++
	return nil
}

func (s *stubInventory) SaveSpecies(species *models.Species) error {
	s.species[species.ID] = species
	return nil
}

func (s *stubInventory) GetSpeciesByID(id uuid.UUID) (*models.Species, error) {
	sp, ok := s.species[id]
	if !ok {
		return nil, fmt.Errorf("species %s not found", id)
	}
	return sp, nil
}

func (s *stubInventory) GetPlotByID(id uuid.UUID) (*models.Plot, error) {
	plot, ok := s.plots[id]
	if !ok {
		return nil, fmt.Errorf("plot %s not found", id)
	}
	return plot, nil
}

func (s *stubInventory) GetTreeByID(id uuid.UUID) (*models.Tree, error) {
	tree, ok := s.trees[id]
	if !ok {
		return nil, fmt.Errorf("tree %s not found", id)
	}
	return tree, nil
}

func (s *stubInventory) AllSpecies(instanceID uuid.UUID) ([]models.Species, error) {
	var out []models.Species
	for _, sp := range s.species {
		out = append(out, *sp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func testRegion() config.Region {
	return config.Region{
		MinX: decimal.NewFromInt(-180),
		MinY: decimal.NewFromInt(-90),
		MaxX: decimal.NewFromInt(180),
		MaxY: decimal.NewFromInt(90),
	}
}

func testRowService(catalog []models.Species) *RowService {
	return NewRowService(
		&stubSpeciesLookup{catalog: catalog},
		DefaultChoiceCatalog(),
		testRegion(),
		zap.NewNop(),
	)
}

func testTreeEvent() *models.ImportEvent {
	return &models.ImportEvent{
		ID:         uuid.New(),
		Kind:       models.TreeImportKind,
		InstanceID: uuid.New(),
		FileName:   "trees.csv",
		CreatedBy:  "inventory@example.com",
		Status:     models.EventUploaded,
	}
}

func testSpeciesEvent() *models.ImportEvent {
	event := testTreeEvent()
	event.Kind = models.SpeciesImportKind
	event.FileName = "species.csv"
	return event
}

func makeSpecies(genus, species, common string) models.Species {
	return models.Species{
		ID:         uuid.New(),
		Genus:      genus,
		Species:    species,
		CommonName: common,
	}
}
