package schedule

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=schedule_repo.go -destination=mock/schedule_repo_mock.go -package=mock
type Repository interface {
	FindByRole(ctx context.Context, roleID string) (*WorkSchedule, error)
	FindAll(ctx context.Context) ([]WorkSchedule, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByRole(ctx context.Context, roleID string) (*WorkSchedule, error) {
	var s WorkSchedule
	err := r.db.WithContext(ctx).
		Where("role_id = ?", roleID).
		Where("active = true").
		First(&s).Error
	return &s, err
}

func (r *repository) FindAll(ctx context.Context) ([]WorkSchedule, error) {
	var rows []WorkSchedule
	err := r.db.WithContext(ctx).
		Order("role_id ASC").
		Find(&rows).Error
	return rows, err
}
