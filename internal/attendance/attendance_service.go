package attendance

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	attendanceerrors "marketflow/internal/attendance/errors"
	"marketflow/internal/auditlog"
	"marketflow/internal/employee"
	"marketflow/internal/geo"
	"marketflow/internal/office"
	"marketflow/internal/schedule"
	"marketflow/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// TodaySummaryCacheKey holds the cached dashboard summary. Other modules
// whose writes change today's numbers (the leave decisions in particular)
// delete it after commit so the next read recomputes.
const TodaySummaryCacheKey = "attendance:summary:today"

const todaySummaryTTL = 30 * time.Second

// LeaveChecker answers whether an approved leave covers the given day.
// The leave module provides the implementation; declaring the interface
// here keeps this package free of a dependency on it.
type LeaveChecker interface {
	HasApprovedLeaveOn(ctx context.Context, employeeID string, date time.Time) (bool, error)
}

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	CheckIn(ctx context.Context, employeeID string, req CheckInRequest) (AttendanceResponse, error)
	CheckOut(ctx context.Context, employeeID string, req CheckOutRequest) (AttendanceResponse, error)
	SaveManual(ctx context.Context, req SaveManualRequest) (AttendanceResponse, error)
	GetAll(ctx context.Context, filter ListFilter) ([]AttendanceResponse, error)
	GetMine(ctx context.Context, employeeID, dateFrom, dateTo string) ([]AttendanceResponse, error)
	TodaySummary(ctx context.Context) (TodaySummaryResponse, error)
}

type service struct {
	db           *sql.DB
	repo         Repository
	employeeRepo employee.Repository
	scheduleRepo schedule.Repository
	officeRepo   office.Repository
	leaves       LeaveChecker
	audit        *auditlog.Ledger
	rdb          *redis.Client
	sf           *singleflight.Group
	logger       *zap.Logger
	now          func() time.Time
}

func NewService(
	db *sql.DB,
	repo Repository,
	employeeRepo employee.Repository,
	scheduleRepo schedule.Repository,
	officeRepo office.Repository,
	leaves LeaveChecker,
	audit *auditlog.Ledger,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{
		db:           db,
		repo:         repo,
		employeeRepo: employeeRepo,
		scheduleRepo: scheduleRepo,
		officeRepo:   officeRepo,
		leaves:       leaves,
		audit:        audit,
		rdb:          rdb,
		sf:           &singleflight.Group{},
		logger:       l,
		now:          time.Now,
	}
}

func (s *service) CheckIn(ctx context.Context, employeeID string, req CheckInRequest) (AttendanceResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	now := s.now()
	today := dateOnly(now)

	s.logger.Debug("check in requested",
		zap.String("request_id", rid),
		zap.String("employee_id", employeeID),
	)

	// Leave guard runs before anything else touches the day.
	onLeave, err := s.leaves.HasApprovedLeaveOn(ctx, employeeID, today)
	if err != nil {
		s.logger.Error("check in leave guard failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	if onLeave {
		s.logger.Warn("check in blocked by approved leave",
			zap.String("employee_id", employeeID),
			zap.String("date", today.Format("2006-01-02")),
		)
		return AttendanceResponse{}, attendanceerrors.ErrOnApprovedLeave
	}

	empl, err := s.employeeRepo.FindByID(ctx, employeeID)
	if err != nil {
		return AttendanceResponse{}, err
	}

	sched, err := s.scheduleRepo.FindByRole(ctx, empl.RoleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttendanceResponse{}, attendanceerrors.ErrScheduleNotFound
		}
		return AttendanceResponse{}, err
	}

	cfg, err := s.officeRepo.Get(ctx)
	if err != nil {
		return AttendanceResponse{}, err
	}

	dist := geo.DistanceMeters(req.Latitude, req.Longitude, cfg.Latitude, cfg.Longitude)
	cls := geo.Classify(dist, cfg.ToleranceRadiusMeters)

	label := fmt.Sprintf("%s (WFO)", cfg.Label)
	if !cls.WithinRange {
		label = remoteLabel(cls.DistanceMeters)
	}

	status, err := checkInStatus(now, sched.CheckInTime, sched.GraceMinutes)
	if err != nil {
		return AttendanceResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	row, err := qtx.FindByEmployeeAndDate(ctx, employeeID, today)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return AttendanceResponse{}, err
		}
		row = &Attendance{
			ID:         uuid.New(),
			EmployeeID: uuid.MustParse(employeeID),
			Date:       today,
		}
	}

	checkInAt := formatClock(now)
	row.CheckInTime = &checkInAt
	row.CheckInPhoto = &req.Photo
	row.Latitude = &req.Latitude
	row.Longitude = &req.Longitude
	row.LocationLabel = label
	row.Status = status
	row.SourceLeaveID = nil
	row.ExternalRef = nil

	if err := qtx.Upsert(ctx, row); err != nil {
		s.logger.Error("check in persist failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return AttendanceResponse{}, err
	}

	s.invalidateSummary(ctx)

	if s.audit != nil {
		s.audit.Append(empl.FullName, empl.RoleID, "Check-in",
			fmt.Sprintf("Berhasil MASUK pukul %s", checkInAt))
	}

	s.logger.Info("check in success",
		zap.String("request_id", rid),
		zap.String("employee_id", employeeID),
		zap.String("status", status),
		zap.Float64("distance_m", cls.DistanceMeters),
		zap.Bool("within_range", cls.WithinRange),
	)

	return mapToResponse(*row), nil
}

func (s *service) CheckOut(ctx context.Context, employeeID string, req CheckOutRequest) (AttendanceResponse, error) {
	now := s.now()
	today := dateOnly(now)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	row, err := qtx.FindByEmployeeAndDate(ctx, employeeID, today)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttendanceResponse{}, attendanceerrors.ErrCheckInNotFound
		}
		return AttendanceResponse{}, err
	}
	if row.CheckInTime == nil {
		return AttendanceResponse{}, attendanceerrors.ErrCheckInNotFound
	}
	if row.CheckOutTime != nil {
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyCheckedOut
	}

	checkOutAt := formatClock(now)
	duration, err := workDuration(*row.CheckInTime, checkOutAt)
	if err != nil {
		return AttendanceResponse{}, err
	}

	row.CheckOutTime = &checkOutAt
	row.CheckOutPhoto = &req.Photo
	row.WorkDuration = &duration

	if err := qtx.Upsert(ctx, row); err != nil {
		s.logger.Error("check out persist failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return AttendanceResponse{}, err
	}

	if s.audit != nil {
		if empl, err := s.employeeRepo.FindByID(ctx, employeeID); err == nil {
			s.audit.Append(empl.FullName, empl.RoleID, "Check-out",
				fmt.Sprintf("Berhasil PULANG pukul %s", checkOutAt))
		}
	}

	s.logger.Info("check out success",
		zap.String("employee_id", employeeID),
		zap.String("work_duration", duration),
	)

	return mapToResponse(*row), nil
}

func (s *service) SaveManual(ctx context.Context, req SaveManualRequest) (AttendanceResponse, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidDateFormat
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	row, err := qtx.FindByEmployeeAndDate(ctx, req.EmployeeID, date)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return AttendanceResponse{}, err
		}
		row = &Attendance{
			ID:         uuid.New(),
			EmployeeID: uuid.MustParse(req.EmployeeID),
			Date:       date,
		}
	}

	row.CheckInTime = req.CheckInTime
	row.CheckOutTime = req.CheckOutTime
	row.Latitude = req.Latitude
	row.Longitude = req.Longitude
	row.LocationLabel = req.LocationLabel
	row.Status = req.Status
	row.WorkDuration = nil
	if req.CheckInTime != nil && req.CheckOutTime != nil {
		duration, err := workDuration(*req.CheckInTime, *req.CheckOutTime)
		if err != nil {
			return AttendanceResponse{}, err
		}
		row.WorkDuration = &duration
	}

	if err := qtx.Upsert(ctx, row); err != nil {
		s.logger.Error("save manual attendance failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return AttendanceResponse{}, err
	}

	s.invalidateSummary(ctx)

	s.logger.Info("save manual attendance success",
		zap.String("employee_id", req.EmployeeID),
		zap.String("date", req.Date),
		zap.String("status", req.Status),
	)

	return mapToResponse(*row), nil
}

func (s *service) GetAll(ctx context.Context, filter ListFilter) ([]AttendanceResponse, error) {
	rows, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("get all attendance failed", zap.Error(err))
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetMine(ctx context.Context, employeeID, dateFrom, dateTo string) ([]AttendanceResponse, error) {
	rows, err := s.repo.FindAll(ctx, ListFilter{
		EmployeeID: employeeID,
		DateFrom:   dateFrom,
		DateTo:     dateTo,
	})
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) TodaySummary(ctx context.Context) (TodaySummaryResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, TodaySummaryCacheKey).Result(); err == nil {
			var resp TodaySummaryResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(TodaySummaryCacheKey, func() (interface{}, error) {
		today := dateOnly(s.now())

		rows, err := s.repo.FindByDate(ctx, today)
		if err != nil {
			return TodaySummaryResponse{}, err
		}

		active, err := s.employeeRepo.FindOptions(ctx)
		if err != nil {
			return TodaySummaryResponse{}, err
		}

		var resp TodaySummaryResponse
		for _, a := range rows {
			switch a.Status {
			case StatusPresent:
				resp.Present++
			case StatusLate:
				resp.Late++
			case StatusOnLeave, StatusSick, StatusPaidLeave, StatusFieldAssignment:
				resp.OnLeave++
			}
		}
		resp.NotYetIn = len(active) - len(rows)
		if resp.NotYetIn < 0 {
			resp.NotYetIn = 0
		}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, TodaySummaryCacheKey, jsonData, todaySummaryTTL)
			}
		}

		return resp, nil
	})

	if err != nil {
		return TodaySummaryResponse{}, err
	}

	return v.(TodaySummaryResponse), nil
}

func (s *service) invalidateSummary(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, TodaySummaryCacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate today summary cache", zap.Error(err))
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// remoteLabel renders an out-of-radius distance rounded to the nearest
// whole meter.
func remoteLabel(distanceMeters float64) string {
	return fmt.Sprintf("Remote Activity (%dm dari kantor)", int(math.Round(distanceMeters)))
}

func mapToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:            a.ID.String(),
		EmployeeID:    a.EmployeeID.String(),
		Date:          a.Date.Format("2006-01-02"),
		CheckInTime:   a.CheckInTime,
		CheckOutTime:  a.CheckOutTime,
		CheckInPhoto:  a.CheckInPhoto,
		CheckOutPhoto: a.CheckOutPhoto,
		Latitude:      a.Latitude,
		Longitude:     a.Longitude,
		LocationLabel: a.LocationLabel,
		Status:        a.Status,
		WorkDuration:  a.WorkDuration,
		ExternalRef:   a.ExternalRef,
	}
	if a.SourceLeaveID != nil {
		v := a.SourceLeaveID.String()
		resp.SourceLeaveID = &v
	}
	return resp
}

func mapToListResponse(rows []Attendance) []AttendanceResponse {
	res := make([]AttendanceResponse, 0, len(rows))
	for _, r := range rows {
		res = append(res, mapToResponse(r))
	}
	return res
}
