package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"marketflow/internal/attendance"
	"marketflow/internal/auditlog"
	"marketflow/internal/events"
	leaveerrors "marketflow/internal/leave/errors"
	"marketflow/internal/messaging/kafka"
	"marketflow/internal/reconcile"
	"marketflow/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Actor identifies who performs a lifecycle transition; it feeds the audit
// ledger and the outbox event.
type Actor struct {
	ID   string
	Name string
	Role string
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, actor Actor, req SubmitLeaveRequest) (LeaveResponse, error)
	Approve(ctx context.Context, actor Actor, id, note string) (LeaveResponse, error)
	Reject(ctx context.Context, actor Actor, id, note string) (LeaveResponse, error)
	Cancel(ctx context.Context, actor Actor, id string) (LeaveResponse, error)
	AdminEdit(ctx context.Context, actor Actor, id string, req AdminEditRequest) (LeaveResponse, error)
	GetAll(ctx context.Context, filter ListFilter) ([]LeaveResponse, error)
	GetByID(ctx context.Context, id string) (LeaveResponse, error)
	HasApprovedLeaveOn(ctx context.Context, employeeID string, date time.Time) (bool, error)
}

type service struct {
	db         *sql.DB
	repo       Repository
	reconciler *reconcile.Reconciler
	outbox     kafka.OutboxRepository
	audit      *auditlog.Ledger
	rdb        *redis.Client
	logger     *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	reconciler *reconcile.Reconciler,
	outboxRepo kafka.OutboxRepository,
	audit *auditlog.Ledger,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:         db,
		repo:       repo,
		reconciler: reconciler,
		outbox:     outboxRepo,
		audit:      audit,
		rdb:        rdb,
		logger:     l,
	}
}

func (s *service) Submit(ctx context.Context, actor Actor, req SubmitLeaveRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("submit leave requested",
		zap.String("request_id", rid),
		zap.String("employee_id", actor.ID),
		zap.String("kind", req.Kind),
	)

	employeeUUID, err := uuid.Parse(actor.ID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidEmployeeID
	}

	startDate, endDate, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}

	l := &Leave{
		ID:         uuid.New(),
		EmployeeID: employeeUUID,
		Kind:       req.Kind,
		StartDate:  startDate,
		EndDate:    endDate,
		Reason:     req.Reason,
		Status:     StatusPending,
		Attachment: req.Attachment,
	}

	if err := s.repo.Create(ctx, l); err != nil {
		s.logger.Error("submit leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.audit.Append(actor.Name, actor.Role, "Ajukan Izin",
		fmt.Sprintf("Mengajukan %s dari %s s/d %s", req.Kind, req.StartDate, req.EndDate))

	s.logger.Info("submit leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", l.ID.String()),
		zap.String("employee_id", actor.ID),
	)

	return mapToResponse(*l), nil
}

func (s *service) Approve(ctx context.Context, actor Actor, id, note string) (LeaveResponse, error) {
	if note == "" {
		note = NoteApprovedViaConsole
	}
	resp, err := s.decide(ctx, actor, id, StatusApproved, note)
	if err != nil {
		return LeaveResponse{}, err
	}

	s.audit.Append(actor.Name, actor.Role, "Setujui Izin",
		fmt.Sprintf("Izin %s (%s s/d %s) disetujui", resp.Kind, resp.StartDate, resp.EndDate))

	return resp, nil
}

func (s *service) Reject(ctx context.Context, actor Actor, id, note string) (LeaveResponse, error) {
	if note == "" {
		note = NoteRejectedViaConsole
	}
	resp, err := s.decide(ctx, actor, id, StatusRejected, note)
	if err != nil {
		return LeaveResponse{}, err
	}

	s.audit.Append(actor.Name, actor.Role, "Tolak Izin",
		fmt.Sprintf("Izin %s (%s s/d %s) ditolak", resp.Kind, resp.StartDate, resp.EndDate))

	return resp, nil
}

// decide moves a PENDING leave to a terminal status and reconciles the
// attendance projection inside the same transaction.
func (s *service) decide(ctx context.Context, actor Actor, id, newStatus, note string) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("leave decision requested",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("actor_id", actor.ID),
		zap.String("new_status", newStatus),
	)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("leave decision begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	if l.Status != StatusPending {
		return LeaveResponse{}, leaveerrors.ErrNotPending
	}

	previousStatus := l.Status
	l.Status = newStatus
	l.AdminNote = &note

	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("leave decision persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := s.reconciler.WithTx(tx).Rebuild(ctx, toReconcileLeave(*l)); err != nil {
		s.logger.Error("leave decision reconcile failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	if err := s.queueStatusEvent(ctx, tx, *l, actor, previousStatus); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("leave decision commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.invalidateSummary(ctx)

	s.logger.Info("leave decision success",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("status", newStatus),
	)

	return mapToResponse(*l), nil
}

func (s *service) Cancel(ctx context.Context, actor Actor, id string) (LeaveResponse, error) {
	s.logger.Debug("cancel leave requested",
		zap.String("leave_id", id),
		zap.String("actor_id", actor.ID),
	)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	if l.EmployeeID.String() != actor.ID {
		return LeaveResponse{}, leaveerrors.ErrNotOwner
	}
	if l.Status != StatusPending {
		return LeaveResponse{}, leaveerrors.ErrNotPending
	}

	previousStatus := l.Status
	note := NoteCancelledByUser
	l.Status = StatusRejected
	l.AdminNote = &note

	if err := qtx.Update(ctx, l); err != nil {
		return LeaveResponse{}, err
	}

	if err := s.reconciler.WithTx(tx).Rebuild(ctx, toReconcileLeave(*l)); err != nil {
		return LeaveResponse{}, err
	}

	if err := s.queueStatusEvent(ctx, tx, *l, actor, previousStatus); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return LeaveResponse{}, err
	}

	s.invalidateSummary(ctx)

	s.audit.Append(actor.Name, actor.Role, "Batalkan Pengajuan",
		fmt.Sprintf("Membatalkan izin %s (%s s/d %s)", l.Kind,
			l.StartDate.Format("2006-01-02"), l.EndDate.Format("2006-01-02")))

	s.logger.Info("cancel leave success", zap.String("leave_id", id))

	return mapToResponse(*l), nil
}

// AdminEdit rewrites any field of a leave regardless of its current state,
// then resynchronizes attendance against the edited status and range.
func (s *service) AdminEdit(ctx context.Context, actor Actor, id string, req AdminEditRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("admin edit leave requested",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("actor_id", actor.ID),
		zap.String("target_status", req.Status),
	)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	startDate, endDate, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}

	previousStatus := l.Status
	l.Kind = req.Kind
	l.StartDate = startDate
	l.EndDate = endDate
	l.Status = req.Status
	if req.Note != "" {
		l.AdminNote = &req.Note
	}

	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("admin edit persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := s.reconciler.WithTx(tx).Rebuild(ctx, toReconcileLeave(*l)); err != nil {
		s.logger.Error("admin edit reconcile failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if previousStatus != l.Status {
		if err := s.queueStatusEvent(ctx, tx, *l, actor, previousStatus); err != nil {
			return LeaveResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return LeaveResponse{}, err
	}

	s.invalidateSummary(ctx)

	s.audit.Append(actor.Name, actor.Role, "Koreksi Izin (Admin)",
		fmt.Sprintf("Edit izin ID %s", id))

	s.logger.Info("admin edit leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("status", req.Status),
	)

	return mapToResponse(*l), nil
}

func (s *service) GetAll(ctx context.Context, filter ListFilter) ([]LeaveResponse, error) {
	leaves, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	return mapToResponse(*l), nil
}

func (s *service) HasApprovedLeaveOn(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	return s.repo.HasApprovedLeaveOn(ctx, employeeID, date)
}

func (s *service) queueStatusEvent(ctx context.Context, tx *sql.Tx, l Leave, actor Actor, previousStatus string) error {
	if s.outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	event := events.LeaveStatusChangedEvent{
		EventType:      events.EventTypeLeaveStatusChanged,
		LeaveID:        l.ID.String(),
		EmployeeID:     l.EmployeeID.String(),
		EmployeeName:   actor.Name,
		Kind:           l.Kind,
		PreviousStatus: previousStatus,
		NewStatus:      l.Status,
		StartDate:      l.StartDate.Format("2006-01-02"),
		EndDate:        l.EndDate.Format("2006-01-02"),
		OccurredAt:     time.Now().UTC(),
	}
	if l.AdminNote != nil {
		event.Note = *l.AdminNote
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal leave status event failed", zap.Error(err))
		return err
	}

	out := kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "leave",
		AggregateID:   l.EmployeeID.String(),
		EventType:     event.EventType,
		Topic:         events.TopicLeaveStatus,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}
	if err := kafka.ValidateOutboxEvent(out); err != nil {
		return err
	}

	if err := s.outbox.WithTx(tx).Create(ctx, out); err != nil {
		s.logger.Error("leave status outbox persist failed",
			zap.String("leave_id", l.ID.String()),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// invalidateSummary drops the cached attendance dashboard summary after a
// decision changes the attendance projection. Best effort, the cache TTL
// bounds staleness if the delete fails.
func (s *service) invalidateSummary(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, attendance.TodaySummaryCacheKey).Err(); err != nil {
		s.logger.Warn("summary cache invalidation failed", zap.Error(err))
	}
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	startDate, err := time.Parse("2006-01-02", start)
	if err != nil {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	endDate, err := time.Parse("2006-01-02", end)
	if err != nil {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}
	return startDate, endDate, nil
}

func toReconcileLeave(l Leave) reconcile.Leave {
	return reconcile.Leave{
		ID:         l.ID,
		EmployeeID: l.EmployeeID,
		Kind:       l.Kind,
		Status:     l.Status,
		StartDate:  l.StartDate,
		EndDate:    l.EndDate,
	}
}

func mapToResponse(l Leave) LeaveResponse {
	totalDays := int(l.EndDate.Sub(l.StartDate).Hours()/24) + 1
	return LeaveResponse{
		ID:         l.ID.String(),
		EmployeeID: l.EmployeeID.String(),
		Kind:       l.Kind,
		StartDate:  l.StartDate.Format("2006-01-02"),
		EndDate:    l.EndDate.Format("2006-01-02"),
		TotalDays:  totalDays,
		Reason:     l.Reason,
		Status:     l.Status,
		AdminNote:  l.AdminNote,
		Attachment: l.Attachment,
	}
}

func mapToListResponse(leaves []Leave) []LeaveResponse {
	res := make([]LeaveResponse, 0, len(leaves))
	for _, l := range leaves {
		res = append(res, mapToResponse(l))
	}
	return res
}
