package office

import (
	"context"
	"errors"
	"net/http"

	"marketflow/internal/shared/apperror"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=office_service.go -destination=mock/office_service_mock.go -package=mock
type Service interface {
	Get(ctx context.Context) (ConfigResponse, error)
	Update(ctx context.Context, req UpdateConfigRequest) (ConfigResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("office.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("office.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Get(ctx context.Context) (ConfigResponse, error) {
	cfg, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ConfigResponse{}, apperror.New(apperror.CodeNotFound, "office config not seeded", http.StatusNotFound)
		}
		return ConfigResponse{}, err
	}
	return mapToResponse(*cfg), nil
}

func (s *service) Update(ctx context.Context, req UpdateConfigRequest) (ConfigResponse, error) {
	cfg := &Config{
		Latitude:              req.Latitude,
		Longitude:             req.Longitude,
		ToleranceRadiusMeters: req.ToleranceRadiusMeters,
		Label:                 req.Label,
	}
	if err := s.repo.Save(ctx, cfg); err != nil {
		s.logger.Error("save office config failed", zap.Error(err))
		return ConfigResponse{}, err
	}
	s.logger.Info("office config updated",
		zap.Float64("latitude", cfg.Latitude),
		zap.Float64("longitude", cfg.Longitude),
		zap.Float64("radius_m", cfg.ToleranceRadiusMeters),
	)
	return mapToResponse(*cfg), nil
}

func mapToResponse(c Config) ConfigResponse {
	return ConfigResponse{
		Latitude:              c.Latitude,
		Longitude:             c.Longitude,
		ToleranceRadiusMeters: c.ToleranceRadiusMeters,
		Label:                 c.Label,
	}
}
