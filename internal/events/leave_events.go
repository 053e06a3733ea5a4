package events

import "time"

const TopicLeaveStatus = "marketflow.leave.status.v1"

const EventTypeLeaveStatusChanged = "leave.status.changed"

// LeaveStatusChangedEvent is published whenever a leave request transitions
// between statuses. Key is the employee ID so per-employee ordering holds.
type LeaveStatusChangedEvent struct {
	EventType      string    `json:"event_type"`
	LeaveID        string    `json:"leave_id"`
	EmployeeID     string    `json:"employee_id"`
	EmployeeName   string    `json:"employee_name"`
	Kind           string    `json:"kind"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date"`
	Note           string    `json:"note,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
