package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"marketflow/internal/events"
	"marketflow/internal/notify"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeLeaveStatus turns leave status transitions into employee-facing
// notifications. Malformed payloads are committed and dropped; a failing
// sink leaves the message uncommitted so it is retried.
func ConsumeLeaveStatus(
	ctx context.Context,
	reader *kafkago.Reader,
	notifier notify.Notifier,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_status")
	log.Info("leave status consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave status consumer stopped")
				return
			}
			log.Error("fetch leave status message failed", zap.Error(err))
			continue
		}

		var event events.LeaveStatusChangedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode leave status event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		message, severity := renderLeaveNotification(event)
		if message != "" {
			notifier.Notify(event.EmployeeID, message, severity)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave status message failed", zap.Error(err))
			continue
		}

		log.Info("leave status event handled",
			zap.String("leave_id", event.LeaveID),
			zap.String("employee_id", event.EmployeeID),
			zap.String("new_status", event.NewStatus),
		)
	}
}

func renderLeaveNotification(event events.LeaveStatusChangedEvent) (string, notify.Severity) {
	switch event.NewStatus {
	case "APPROVED":
		return fmt.Sprintf("Pengajuan izin Anda (%s) telah disetujui.", event.Kind), notify.SeveritySuccess
	case "REJECTED":
		return fmt.Sprintf("Pengajuan izin Anda (%s) ditolak.", event.Kind), notify.SeverityError
	case "PENDING":
		// Submissions and edits back to pending are not pushed to the employee.
		return "", notify.SeveritySuccess
	default:
		return "", notify.SeveritySuccess
	}
}
