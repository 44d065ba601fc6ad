package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"tree-inventory-backend/db/models"
)

// Task type names routed through the asynq mux.
const (
	TypeImportValidate = "import:validate"
	TypeImportCommit   = "import:commit"
)

// ImportTaskPayload identifies the event a background job works on.
type ImportTaskPayload struct {
	EventID uuid.UUID         `json:"event_id"`
	Kind    models.ImportKind `json:"kind"`
}

// Dispatcher enqueues import jobs on the shared asynq client. It
// implements the import service's TaskDispatcher.
type Dispatcher struct {
	client *asynq.Client
	logger *zap.Logger
}

func NewDispatcher(client *asynq.Client, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{client: client, logger: logger}
}

func (d *Dispatcher) EnqueueValidation(eventID uuid.UUID, kind models.ImportKind) error {
	return d.enqueue(TypeImportValidate, eventID, kind)
}

// EnqueueCommit carries a deterministic task ID so a commit retried by an
// impatient client cannot produce a second queued job for the same event.
func (d *Dispatcher) EnqueueCommit(eventID uuid.UUID, kind models.ImportKind) error {
	return d.enqueue(TypeImportCommit, eventID, kind,
		asynq.TaskID(fmt.Sprintf("%s:%s", TypeImportCommit, eventID)))
}

func (d *Dispatcher) enqueue(taskType string, eventID uuid.UUID, kind models.ImportKind, opts ...asynq.Option) error {
	payload, err := json.Marshal(ImportTaskPayload{EventID: eventID, Kind: kind})
	if err != nil {
		return fmt.Errorf("failed to encode task payload: %w", err)
	}

	opts = append(opts, asynq.MaxRetry(3))
	info, err := d.client.Enqueue(asynq.NewTask(taskType, payload), opts...)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", taskType, err)
	}

	d.logger.Info("Background job enqueued",
		zap.String("type", taskType),
		zap.String("task_id", info.ID),
		zap.String("event_id", eventID.String()),
	)
	return nil
}
