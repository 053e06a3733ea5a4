package schedule

import (
	"time"

	"github.com/google/uuid"
)

// WorkSchedule is per-role master data consumed read-only by the
// attendance module. Times are wall-clock "HH:MM" strings.
type WorkSchedule struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	RoleID       string    `gorm:"column:role_id;type:varchar(40);not null;uniqueIndex"`
	CheckInTime  string    `gorm:"column:check_in_time;type:varchar(5);not null"`
	CheckOutTime string    `gorm:"column:check_out_time;type:varchar(5);not null"`
	GraceMinutes int       `gorm:"column:grace_minutes;type:int;not null;default:0"`
	Active       bool      `gorm:"column:active;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (WorkSchedule) TableName() string {
	return "work_schedules"
}
