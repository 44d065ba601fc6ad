package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"tree-inventory-backend/importer/services"
)

// Worker runs the background side of the import pipeline: row validation
// after upload and materialization after commit.
type Worker struct {
	server  *asynq.Server
	imports *services.ImportService
	commits *services.CommitService
	logger  *zap.Logger
}

func NewWorker(
	redisOpt asynq.RedisClientOpt,
	imports *services.ImportService,
	commits *services.CommitService,
	logger *zap.Logger,
) *Worker {
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 4,
		Queues: map[string]int{
			"default": 1,
		},
	})
	return &Worker{
		server:  server,
		imports: imports,
		commits: commits,
		logger:  logger,
	}
}

// Run blocks serving jobs until Shutdown is called.
func (w *Worker) Run() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeImportValidate, w.handleValidate)
	mux.HandleFunc(TypeImportCommit, w.handleCommit)
	return w.server.Run(mux)
}

func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func (w *Worker) handleValidate(ctx context.Context, t *asynq.Task) error {
	payload, err := decodePayload(t)
	if err != nil {
		return err
	}

	w.logger.Info("Running import validation job",
		zap.String("event_id", payload.EventID.String()),
	)
	if err := w.imports.ValidateEvent(payload.EventID); err != nil {
		w.logger.Error("Import validation job failed",
			zap.String("event_id", payload.EventID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (w *Worker) handleCommit(ctx context.Context, t *asynq.Task) error {
	payload, err := decodePayload(t)
	if err != nil {
		return err
	}

	w.logger.Info("Running import commit job",
		zap.String("event_id", payload.EventID.String()),
	)
	if err := w.commits.CommitEvent(payload.EventID); err != nil {
		w.logger.Error("Import commit job failed",
			zap.String("event_id", payload.EventID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func decodePayload(t *asynq.Task) (ImportTaskPayload, error) {
	var payload ImportTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		// A payload that cannot decode will never succeed on retry.
		return payload, fmt.Errorf("invalid task payload: %v: %w", err, asynq.SkipRetry)
	}
	return payload, nil
}
