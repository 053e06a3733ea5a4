// Package notify is the fire-and-forget notification sink. The core never
// depends on delivery succeeding.
package notify

import "go.uber.org/zap"

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

//go:generate mockgen -source=notifier.go -destination=mock/notifier_mock.go -package=mock
type Notifier interface {
	Notify(employeeID, message string, severity Severity)
}

type zapNotifier struct {
	logger *zap.Logger
}

// NewZapNotifier returns a sink that surfaces notifications as structured
// log records. A push/websocket implementation can replace it without
// touching callers.
func NewZapNotifier(logger ...*zap.Logger) Notifier {
	l := zap.L().Named("notify")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notify")
	}
	return &zapNotifier{logger: l}
}

func (n *zapNotifier) Notify(employeeID, message string, severity Severity) {
	n.logger.Info("notification",
		zap.String("employee_id", employeeID),
		zap.String("severity", string(severity)),
		zap.String("message", message),
	)
}
