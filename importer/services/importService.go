package services

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"tree-inventory-backend/db/models"
)

// ErrCommitNotAllowed is returned when a commit is requested for an event
// that is not sitting in FINISHED_VERIFICATION. The atomic status check
// makes a second commit of the same event impossible.
var ErrCommitNotAllowed = errors.New("import event is not ready to be committed")

// ImportEventStore is the persistence surface the import pipeline needs.
// The gorm repository implements it; tests use stubs.
type ImportEventStore interface {
	SaveEvent(event *models.ImportEvent) error
	GetEvent(id uuid.UUID) (*models.ImportEvent, error)
	CreateRow(row *models.ImportRow) error
	SaveRow(row *models.ImportRow) error
	RowsForEvent(eventID uuid.UUID) ([]models.ImportRow, error)
	RowStatusCounts(eventID uuid.UUID) (map[string]int64, error)
	TransitionEventStatus(id uuid.UUID, from, to string) (bool, error)
	ResetRowsToWaiting(eventID uuid.UUID) error
}

// TaskDispatcher submits background jobs. Dispatch is fire-and-forget and
// must only happen after the state the job reads has been persisted.
type TaskDispatcher interface {
	EnqueueValidation(eventID uuid.UUID, kind models.ImportKind) error
	EnqueueCommit(eventID uuid.UUID, kind models.ImportKind) error
}

// ValidationNotifier is told when an event finishes validating with
// failed rows, so an error report can be delivered to the owner. Nil
// disables notification.
type ValidationNotifier interface {
	NotifyValidationErrors(event *models.ImportEvent, failed []models.ImportRow)
}

// ImportService owns the import event lifecycle: ingest, asynchronous
// validation, and the guarded hand-off to the commit executor.
type ImportService struct {
	store    ImportEventStore
	rows     *RowService
	queue    TaskDispatcher
	notifier ValidationNotifier
	logger   *zap.Logger
}

func NewImportService(
	store ImportEventStore,
	rows *RowService,
	queue TaskDispatcher,
	notifier ValidationNotifier,
	logger *zap.Logger,
) *ImportService {
	return &ImportService{
		store:    store,
		rows:     rows,
		queue:    queue,
		notifier: notifier,
		logger:   logger,
	}
}

// Ingest parses the uploaded table into rows. The header is persisted
// before any row work so that a crash mid-file still leaves consistent
// file-level state. Returns false when the file failed structural
// verification; the caller must not schedule background validation then.
func (s *ImportService) Ingest(event *models.ImportEvent, r io.Reader) (bool, error) {
	reader := csv.NewReader(Latin1Reader(r))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return false, s.failFileVerification(event, models.FieldError{
				Code: models.ErrEmptyFile, Fatal: true,
			})
		}
		return false, s.failFileVerification(event, models.FieldError{
			Code: models.ErrGeneric, Data: err.Error(), Fatal: true,
		})
	}

	fieldOrder, err := json.Marshal(header)
	if err != nil {
		return false, fmt.Errorf("failed to encode field order: %w", err)
	}
	event.FieldOrder = datatypes.JSON(fieldOrder)
	event.Status = models.EventFileVerification
	if err := s.store.SaveEvent(event); err != nil {
		return false, fmt.Errorf("failed to persist field order: %w", err)
	}

	fatal := s.verifyHeader(event, header)
	if err := s.store.SaveEvent(event); err != nil {
		return false, fmt.Errorf("failed to persist header verification: %w", err)
	}
	if fatal {
		return false, nil
	}

	idx := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return false, s.failFileVerification(event, models.FieldError{
				Code: models.ErrGeneric, Data: err.Error(), Fatal: true,
			})
		}

		raw := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				raw[name] = record[i]
			} else {
				raw[name] = ""
			}
		}

		row := &models.ImportRow{
			ID:      uuid.New(),
			EventID: event.ID,
			Idx:     idx,
			Status:  models.RowWaiting,
		}
		row.SetDataDict(NormalizeRow(raw))
		if err := s.store.CreateRow(row); err != nil {
			return false, fmt.Errorf("failed to persist row %d: %w", idx, err)
		}

		// Validate the first record right away: structural problems show
		// up without waiting for the background pass.
		if idx == 0 {
			if err := s.rows.ValidateRow(event, row); err != nil {
				return false, err
			}
			if err := s.store.SaveRow(row); err != nil {
				return false, err
			}
		}
		idx++
	}

	if idx == 0 {
		return false, s.failFileVerification(event, models.FieldError{
			Code: models.ErrEmptyFile, Fatal: true,
		})
	}
	return true, nil
}

// verifyHeader records file-structural errors. Missing required columns
// are fatal; unrecognized columns only produce a warning.
func (s *ImportService) verifyHeader(event *models.ImportEvent, header []string) bool {
	known := models.TreeImportFields
	required := models.TreeRequiredFields
	if event.Kind == models.SpeciesImportKind {
		known = models.SpeciesImportFields
		required = models.SpeciesRequiredFields
	}

	seen := map[string]bool{}
	var unmatched []string
	for _, h := range header {
		name := NormalizeHeader(h)
		if name == "ignore" || name == "" {
			continue
		}
		seen[name] = true
		found := false
		for _, k := range known {
			if k == name {
				found = true
				break
			}
		}
		if !found {
			unmatched = append(unmatched, name)
		}
	}

	var missing []string
	for _, req := range required {
		if !seen[req] {
			missing = append(missing, req)
		}
	}

	if len(unmatched) > 0 {
		event.AppendError(models.FieldError{
			Code:   models.ErrUnmatchedFields,
			Fields: unmatched,
			Fatal:  false,
		})
	}
	if len(missing) > 0 {
		event.AppendError(models.FieldError{
			Code:   models.ErrMissingField,
			Fields: missing,
			Fatal:  true,
		})
		event.Status = models.EventFailedFileVerification
		return true
	}
	return false
}

func (s *ImportService) failFileVerification(event *models.ImportEvent, fe models.FieldError) error {
	event.AppendError(fe)
	event.Status = models.EventFailedFileVerification
	if err := s.store.SaveEvent(event); err != nil {
		return fmt.Errorf("failed to record file verification failure: %w", err)
	}
	s.logger.Warn("Import file failed verification",
		zap.String("event_id", event.ID.String()),
		zap.String("code", fe.Code),
	)
	return nil
}

// ValidateEvent is the body of the background validation job: every row
// is validated in index order and the event moves to
// FINISHED_VERIFICATION. Entry goes through the same atomic status
// transition as Commit, so a replayed job delivered after the event has
// moved on is a no-op instead of rewinding the state machine. A job
// retried mid-validation (status already VALIDATING) resumes; row
// validation is idempotent.
func (s *ImportService) ValidateEvent(eventID uuid.UUID) error {
	event, err := s.store.GetEvent(eventID)
	if err != nil {
		return fmt.Errorf("failed to load import event: %w", err)
	}

	ok, err := s.store.TransitionEventStatus(eventID, models.EventFileVerification, models.EventValidating)
	if err != nil {
		return fmt.Errorf("failed to transition event status: %w", err)
	}
	if !ok && event.Status != models.EventValidating {
		s.logger.Warn("Validation job ignored: event not awaiting validation",
			zap.String("event_id", eventID.String()),
			zap.String("status", event.Status),
		)
		return nil
	}
	event.Status = models.EventValidating

	rows, err := s.store.RowsForEvent(eventID)
	if err != nil {
		return fmt.Errorf("failed to load rows: %w", err)
	}

	var failed []models.ImportRow
	for i := range rows {
		row := &rows[i]
		if err := s.rows.ValidateRow(event, row); err != nil {
			return err
		}
		if err := s.store.SaveRow(row); err != nil {
			return err
		}
		if row.Status == models.RowError {
			failed = append(failed, *row)
		}
	}

	event.Status = models.EventFinishedVerification
	if err := s.store.SaveEvent(event); err != nil {
		return err
	}

	s.logger.Info("Import event validated",
		zap.String("event_id", event.ID.String()),
		zap.Int("rows", len(rows)),
		zap.Int("failed", len(failed)),
	)

	if len(failed) > 0 && s.notifier != nil {
		s.notifier.NotifyValidationErrors(event, failed)
	}
	return nil
}

// Commit transitions the event into CREATING and dispatches the commit
// job. The transition is the single point of mutual exclusion: it only
// succeeds from FINISHED_VERIFICATION, so a second call is rejected
// rather than silently double-committing.
func (s *ImportService) Commit(eventID uuid.UUID) error {
	event, err := s.store.GetEvent(eventID)
	if err != nil {
		return fmt.Errorf("failed to load import event: %w", err)
	}

	ok, err := s.store.TransitionEventStatus(eventID, models.EventFinishedVerification, models.EventCreating)
	if err != nil {
		return fmt.Errorf("failed to transition event status: %w", err)
	}
	if !ok {
		return ErrCommitNotAllowed
	}

	if err := s.store.ResetRowsToWaiting(eventID); err != nil {
		return fmt.Errorf("failed to reset rows: %w", err)
	}

	// State is durable; the job may fire.
	if err := s.queue.EnqueueCommit(eventID, event.Kind); err != nil {
		return fmt.Errorf("failed to enqueue commit job: %w", err)
	}

	s.logger.Info("Import commit dispatched",
		zap.String("event_id", eventID.String()),
		zap.String("kind", string(event.Kind)),
	)
	return nil
}

// RowTypeCounts returns the live per-status row counts for one event,
// always computed from persisted state.
func (s *ImportService) RowTypeCounts(eventID uuid.UUID) (map[string]int64, error) {
	return s.store.RowStatusCounts(eventID)
}
