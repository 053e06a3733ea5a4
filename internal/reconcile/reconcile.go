// Package reconcile projects approved leave requests onto the attendance
// table. Leave is authoritative: materialized records replace whatever
// already occupies the covered employee-days, and retracting a leave
// removes exactly the records it produced.
package reconcile

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"marketflow/internal/attendance"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	KindPersonalLeave   = "PERSONAL_LEAVE"
	KindSick            = "SICK"
	KindAnnualLeave     = "ANNUAL_LEAVE"
	KindFieldAssignment = "FIELD_ASSIGNMENT"

	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Leave carries the fields the engine needs; the leave module maps its
// entity into this to avoid a package cycle.
type Leave struct {
	ID         uuid.UUID
	EmployeeID uuid.UUID
	Kind       string
	Status     string
	StartDate  time.Time
	EndDate    time.Time
}

var kindToStatus = map[string]string{
	KindPersonalLeave:   attendance.StatusOnLeave,
	KindSick:            attendance.StatusSick,
	KindAnnualLeave:     attendance.StatusPaidLeave,
	KindFieldAssignment: attendance.StatusFieldAssignment,
}

// StatusForKind maps a leave kind to the attendance status it materializes
// as. Unknown kinds are an error, never a silent default.
func StatusForKind(kind string) (string, error) {
	status, ok := kindToStatus[kind]
	if !ok {
		return "", fmt.Errorf("no attendance status mapping for leave kind %q", kind)
	}
	return status, nil
}

// ExternalRef is the deterministic trace string carried by materialized
// records, kept for log correlation alongside the source_leave_id column.
func ExternalRef(leaveID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("ATT-AUTO-%s-%s", leaveID, date.Format("2006-01-02"))
}

// DatesInRange enumerates every calendar day from start through end
// inclusive. Weekends and holidays are not skipped.
func DatesInRange(start, end time.Time) []time.Time {
	start = truncateDay(start)
	end = truncateDay(end)
	if end.Before(start) {
		return nil
	}
	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

type Reconciler struct {
	repo   attendance.Repository
	logger *zap.Logger
}

func New(repo attendance.Repository, logger ...*zap.Logger) *Reconciler {
	l := zap.L().Named("reconcile")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("reconcile")
	}
	return &Reconciler{repo: repo, logger: l}
}

// WithTx scopes the engine to the caller's transaction so the attendance
// writes commit or roll back together with the leave transition.
func (r *Reconciler) WithTx(tx *sql.Tx) *Reconciler {
	return &Reconciler{repo: r.repo.WithTx(tx), logger: r.logger}
}

// Materialize writes one synthetic record per covered day. Existing records
// on those days are cleared first, so re-running over the same approved
// leave always converges on the same set.
func (r *Reconciler) Materialize(ctx context.Context, leave Leave) error {
	status, err := StatusForKind(leave.Kind)
	if err != nil {
		return err
	}

	dates := DatesInRange(leave.StartDate, leave.EndDate)
	if len(dates) == 0 {
		return fmt.Errorf("leave %s has an empty date range", leave.ID)
	}

	if err := r.repo.DeleteByEmployeeAndDates(ctx, leave.EmployeeID.String(), dates); err != nil {
		return fmt.Errorf("clear overlapping attendance: %w", err)
	}

	for _, date := range dates {
		ref := ExternalRef(leave.ID, date)
		sourceID := leave.ID
		rec := &attendance.Attendance{
			ID:            uuid.New(),
			EmployeeID:    leave.EmployeeID,
			Date:          date,
			LocationLabel: attendance.LeaveLocationLabel,
			Status:        status,
			SourceLeaveID: &sourceID,
			ExternalRef:   &ref,
		}
		if err := r.repo.Upsert(ctx, rec); err != nil {
			return fmt.Errorf("materialize attendance for %s: %w", date.Format("2006-01-02"), err)
		}
	}

	r.logger.Info("leave materialized",
		zap.String("leave_id", leave.ID.String()),
		zap.String("employee_id", leave.EmployeeID.String()),
		zap.String("status", status),
		zap.Int("days", len(dates)),
	)

	return nil
}

// Retract removes every record the leave produced. Records it overwrote at
// materialize time are gone and are not restored.
func (r *Reconciler) Retract(ctx context.Context, leaveID uuid.UUID) error {
	if err := r.repo.DeleteBySourceLeave(ctx, leaveID.String()); err != nil {
		return fmt.Errorf("retract attendance for leave %s: %w", leaveID, err)
	}

	r.logger.Info("leave retracted", zap.String("leave_id", leaveID.String()))
	return nil
}

// Rebuild resynchronizes attendance with the leave's current state:
// retract first, then materialize iff the leave is approved. The ordering
// matters; a shrunk or moved date range must not leave orphans behind.
func (r *Reconciler) Rebuild(ctx context.Context, leave Leave) error {
	if err := r.Retract(ctx, leave.ID); err != nil {
		return err
	}
	if leave.Status != StatusApproved {
		return nil
	}
	return r.Materialize(ctx, leave)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
