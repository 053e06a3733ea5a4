package attendance

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPresent         = "PRESENT"
	StatusLate            = "LATE"
	StatusAbsent          = "ABSENT"
	StatusOnLeave         = "ON_LEAVE"
	StatusSick            = "SICK"
	StatusPaidLeave       = "PAID_LEAVE"
	StatusFieldAssignment = "FIELD_ASSIGNMENT"
)

// LeaveLocationLabel marks records materialized from an approved leave.
const LeaveLocationLabel = "OFF-CAMPUS (AUTHORIZED LEAVE)"

// Attendance is one employee-day. (EmployeeID, Date) is the natural key;
// every writer goes through Repository.Upsert so the pair stays unique.
// Records born from a leave carry SourceLeaveID; ExternalRef keeps the
// legacy ATT-AUTO trace string for log correlation.
type Attendance struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	EmployeeID    uuid.UUID  `gorm:"column:employee_id;type:uuid;not null;uniqueIndex:uq_attendance_employee_date"`
	Date          time.Time  `gorm:"column:date;type:date;not null;uniqueIndex:uq_attendance_employee_date"`
	CheckInTime   *string    `gorm:"column:check_in_time;type:varchar(5)"`
	CheckOutTime  *string    `gorm:"column:check_out_time;type:varchar(5)"`
	CheckInPhoto  *string    `gorm:"column:check_in_photo;type:text"`
	CheckOutPhoto *string    `gorm:"column:check_out_photo;type:text"`
	Latitude      *float64   `gorm:"column:latitude"`
	Longitude     *float64   `gorm:"column:longitude"`
	LocationLabel string     `gorm:"column:location_label;type:varchar(160)"`
	Status        string     `gorm:"column:status;type:varchar(20);not null;default:PRESENT"`
	WorkDuration  *string    `gorm:"column:work_duration;type:varchar(20)"`
	SourceLeaveID *uuid.UUID `gorm:"column:source_leave_id;type:uuid;index"`
	ExternalRef   *string    `gorm:"column:external_ref;type:varchar(100)"`
	CreatedAt     time.Time  `gorm:"column:created_at;<-:create"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (Attendance) TableName() string {
	return "attendances"
}
