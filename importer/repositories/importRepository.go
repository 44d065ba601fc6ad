package repositories

import (
	"tree-inventory-backend/db/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ImportRepository interface {
	CreateEvent(event *models.ImportEvent) (*models.ImportEvent, error)
	SaveEvent(event *models.ImportEvent) error
	GetEvent(id uuid.UUID) (*models.ImportEvent, error)
	ActiveEvents(instanceID uuid.UUID, kind models.ImportKind) ([]models.ImportEvent, error)
	TransitionEventStatus(id uuid.UUID, from, to string) (bool, error)

	CreateRow(row *models.ImportRow) error
	SaveRow(row *models.ImportRow) error
	GetRow(eventID uuid.UUID, idx int) (*models.ImportRow, error)
	RowsForEvent(eventID uuid.UUID) ([]models.ImportRow, error)
	RowsByStatus(eventID uuid.UUID, statuses []string, offset, limit int) ([]models.ImportRow, int64, error)
	RowStatusCounts(eventID uuid.UUID) (map[string]int64, error)
	ResetRowsToWaiting(eventID uuid.UUID) error
}

type importRepository struct {
	DB *gorm.DB
}

func NewImportRepository(db *gorm.DB) ImportRepository {
	return &importRepository{DB: db}
}

// CreateEvent persists a freshly uploaded import event
func (r *importRepository) CreateEvent(event *models.ImportEvent) (*models.ImportEvent, error) {
	if err := r.DB.Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

func (r *importRepository) SaveEvent(event *models.ImportEvent) error {
	return r.DB.Save(event).Error
}

func (r *importRepository) GetEvent(id uuid.UUID) (*models.ImportEvent, error) {
	var event models.ImportEvent
	if err := r.DB.First(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// ActiveEvents returns the instance's non-terminal events of one kind,
// newest first
func (r *importRepository) ActiveEvents(instanceID uuid.UUID, kind models.ImportKind) ([]models.ImportEvent, error) {
	var events []models.ImportEvent
	err := r.DB.
		Where("instance_id = ? AND kind = ?", instanceID, kind).
		Where("status NOT IN ?", []string{models.EventFinishedCreating, models.EventFailedFileVerification}).
		Order("created_at DESC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// TransitionEventStatus atomically moves an event from one status to
// another. Returns false when the event was not in the expected status,
// which makes the transition safe against concurrent requests.
func (r *importRepository) TransitionEventStatus(id uuid.UUID, from, to string) (bool, error) {
	result := r.DB.Model(&models.ImportEvent{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *importRepository) CreateRow(row *models.ImportRow) error {
	return r.DB.Create(row).Error
}

func (r *importRepository) SaveRow(row *models.ImportRow) error {
	return r.DB.Save(row).Error
}

func (r *importRepository) GetRow(eventID uuid.UUID, idx int) (*models.ImportRow, error) {
	var row models.ImportRow
	if err := r.DB.First(&row, "event_id = ? AND idx = ?", eventID, idx).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *importRepository) RowsForEvent(eventID uuid.UUID) ([]models.ImportRow, error) {
	var rows []models.ImportRow
	err := r.DB.
		Where("event_id = ?", eventID).
		Order("idx ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// RowsByStatus returns one page of an event's rows in the given statuses,
// plus the total match count for pagination. A limit of zero or less
// returns all matches.
func (r *importRepository) RowsByStatus(eventID uuid.UUID, statuses []string, offset, limit int) ([]models.ImportRow, int64, error) {
	query := r.DB.Model(&models.ImportRow{}).Where("event_id = ?", eventID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("idx ASC")
	if limit > 0 {
		query = query.Offset(offset).Limit(limit)
	}

	var rows []models.ImportRow
	err := query.Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *importRepository) RowStatusCounts(eventID uuid.UUID) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	err := r.DB.Model(&models.ImportRow{}).
		Select("status, COUNT(*) AS count").
		Where("event_id = ?", eventID).
		Group("status").
		Find(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(results))
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// ResetRowsToWaiting puts every row of an event back to WAITING ahead of
// the commit executor's re-validation pass
func (r *importRepository) ResetRowsToWaiting(eventID uuid.UUID) error {
	return r.DB.Model(&models.ImportRow{}).
		Where("event_id = ?", eventID).
		Update("status", models.RowWaiting).Error
}
