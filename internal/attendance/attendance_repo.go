package attendance

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Upsert(ctx context.Context, a *Attendance) error
	FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error)
	FindAll(ctx context.Context, filter ListFilter) ([]Attendance, error)
	FindByDate(ctx context.Context, date time.Time) ([]Attendance, error)
	DeleteBySourceLeave(ctx context.Context, leaveID string) error
	DeleteByEmployeeAndDates(ctx context.Context, employeeID string, dates []time.Time) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

// Upsert replaces on the (employee_id, date) natural key. CreatedAt is
// excluded from the update set so the original insert time survives.
func (r *repository) Upsert(ctx context.Context, a *Attendance) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "employee_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"check_in_time", "check_out_time",
				"check_in_photo", "check_out_photo",
				"latitude", "longitude",
				"location_label", "status", "work_duration",
				"source_leave_id", "external_ref", "updated_at",
			}),
		}).
		Create(a).Error
}

func (r *repository) FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error) {
	var a Attendance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("date = ?", date.Format("2006-01-02")).
		First(&a).Error
	return &a, err
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]Attendance, error) {
	q := r.db.WithContext(ctx).Model(&Attendance{})

	if filter.EmployeeID != "" {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.RoleID != "" {
		q = q.Where("employee_id IN (?)",
			r.db.Table("employees").Select("id").Where("role_id = ?", filter.RoleID))
	}
	if filter.DateFrom != "" {
		q = q.Where("date >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		q = q.Where("date <= ?", filter.DateTo)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var rows []Attendance
	err := q.Order("date DESC, check_in_time DESC").Find(&rows).Error
	return rows, err
}

func (r *repository) FindByDate(ctx context.Context, date time.Time) ([]Attendance, error) {
	var rows []Attendance
	err := r.db.WithContext(ctx).
		Where("date = ?", date.Format("2006-01-02")).
		Find(&rows).Error
	return rows, err
}

func (r *repository) DeleteBySourceLeave(ctx context.Context, leaveID string) error {
	return r.db.WithContext(ctx).
		Where("source_leave_id = ?", leaveID).
		Delete(&Attendance{}).Error
}

func (r *repository) DeleteByEmployeeAndDates(ctx context.Context, employeeID string, dates []time.Time) error {
	if len(dates) == 0 {
		return nil
	}
	formatted := make([]string, 0, len(dates))
	for _, d := range dates {
		formatted = append(formatted, d.Format("2006-01-02"))
	}
	return r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("date IN ?", formatted).
		Delete(&Attendance{}).Error
}
