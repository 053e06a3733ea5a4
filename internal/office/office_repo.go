package office

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=office_repo.go -destination=mock/office_repo_mock.go -package=mock
type Repository interface {
	Get(ctx context.Context) (*Config, error)
	Save(ctx context.Context, cfg *Config) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context) (*Config, error) {
	var cfg Config
	err := r.db.WithContext(ctx).First(&cfg, "id = ?", 1).Error
	return &cfg, err
}

func (r *repository) Save(ctx context.Context, cfg *Config) error {
	cfg.ID = 1
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(cfg).Error
}
