package leave

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"

	KindPersonalLeave   = "PERSONAL_LEAVE"
	KindSick            = "SICK"
	KindAnnualLeave     = "ANNUAL_LEAVE"
	KindFieldAssignment = "FIELD_ASSIGNMENT"
)

// Fixed admin notes written by the console actions. The self-cancel note
// doubles as the marker that a rejection was employee-initiated.
const (
	NoteApprovedViaConsole = "Disetujui via Kelola Izin"
	NoteRejectedViaConsole = "Ditolak via Kelola Izin"
	NoteCancelledByUser    = "Dibatalkan oleh Pengguna"
)

type Leave struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_leaves_employee_dates"`

	Kind      string    `gorm:"type:varchar(30);not null"`
	StartDate time.Time `gorm:"type:date;not null;index:idx_leaves_employee_dates"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_leaves_employee_dates"`
	Reason    string    `gorm:"type:text"`

	Status     string  `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	AdminNote  *string `gorm:"type:text"`
	Attachment *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Leave) TableName() string {
	return "leaves"
}
