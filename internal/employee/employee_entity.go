package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusActive   = "AKTIF"
	StatusInactive = "NONAKTIF"
)

type Employee struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeNumber string    `gorm:"type:varchar(20);uniqueIndex:uq_employee_number;not null"`
	FullName       string    `gorm:"type:varchar(255);not null"`
	Username       string    `gorm:"type:varchar(100);uniqueIndex:uq_employee_username;not null"`
	Password       string    `gorm:"type:varchar(255);not null"`
	Phone          string    `gorm:"type:varchar(30)"`
	RoleID         string    `gorm:"type:varchar(50);not null;index"`
	JoinDate       time.Time `gorm:"type:date"`
	Status         string    `gorm:"type:varchar(10);not null;default:'AKTIF'"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}
