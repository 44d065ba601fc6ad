package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tree-inventory-backend/db/models"
	"tree-inventory-backend/utils"
)

// EmailLogStore records every notification that went out.
type EmailLogStore interface {
	CreateEmailLog(entry *models.EmailLog) error
}

// ErrorReportNotifier emails the uploading user an Excel workbook of the
// rows that failed validation. It implements ValidationNotifier.
type ErrorReportNotifier struct {
	emails EmailLogStore
	logger *zap.Logger
}

func NewErrorReportNotifier(emails EmailLogStore, logger *zap.Logger) *ErrorReportNotifier {
	return &ErrorReportNotifier{emails: emails, logger: logger}
}

// NotifyValidationErrors builds and sends the report. Notification is
// best effort: failures are logged, never propagated into the pipeline.
func (n *ErrorReportNotifier) NotifyValidationErrors(event *models.ImportEvent, failed []models.ImportRow) {
	reportPath, err := utils.GenerateErrorReport(event, failed)
	if err != nil {
		n.logger.Error("Failed to generate import error report",
			zap.String("event_id", event.ID.String()),
			zap.Error(err),
		)
		return
	}

	subject := fmt.Sprintf("Import of %s finished with %d failed rows", event.FileName, len(failed))
	message := fmt.Sprintf(
		"Validation of %s finished. %d rows need attention before the import can be committed. The attached report lists every error.",
		event.FileName, len(failed),
	)

	if err := utils.SendEmail(event.CreatedBy, message, subject, reportPath); err != nil {
		n.logger.Error("Failed to send import error report",
			zap.String("event_id", event.ID.String()),
			zap.String("recipient", event.CreatedBy),
			zap.Error(err),
		)
		return
	}

	active := true
	entry := &models.EmailLog{
		ID:             uuid.New(),
		Recipient:      event.CreatedBy,
		Subject:        subject,
		Message:        message,
		SentAt:         time.Now(),
		Active:         &active,
		AttachmentPath: reportPath,
	}
	if err := n.emails.CreateEmailLog(entry); err != nil {
		n.logger.Error("Failed to record email log entry",
			zap.String("event_id", event.ID.String()),
			zap.Error(err),
		)
	}
}
