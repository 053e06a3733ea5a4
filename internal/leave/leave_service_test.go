package leave

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"marketflow/internal/attendance"
	"marketflow/internal/auditlog"
	leaveerrors "marketflow/internal/leave/errors"
	"marketflow/internal/messaging/kafka"
	"marketflow/internal/reconcile"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeLeaveRepo struct {
	leaves map[string]Leave
}

func newFakeLeaveRepo() *fakeLeaveRepo {
	return &fakeLeaveRepo{leaves: make(map[string]Leave)}
}

func (f *fakeLeaveRepo) WithTx(tx *sql.Tx) Repository { return f }

func (f *fakeLeaveRepo) Create(ctx context.Context, l *Leave) error {
	f.leaves[l.ID.String()] = *l
	return nil
}

func (f *fakeLeaveRepo) FindAll(ctx context.Context, filter ListFilter) ([]Leave, error) {
	var out []Leave
	for _, l := range f.leaves {
		if filter.EmployeeID != "" && l.EmployeeID.String() != filter.EmployeeID {
			continue
		}
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (f *fakeLeaveRepo) FindByID(ctx context.Context, id string) (*Leave, error) {
	if l, ok := f.leaves[id]; ok {
		cp := l
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeaveRepo) Update(ctx context.Context, l *Leave) error {
	f.leaves[l.ID.String()] = *l
	return nil
}

func (f *fakeLeaveRepo) HasApprovedLeaveOn(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	for _, l := range f.leaves {
		if l.EmployeeID.String() != employeeID || l.Status != StatusApproved {
			continue
		}
		if !date.Before(l.StartDate) && !date.After(l.EndDate) {
			return true, nil
		}
	}
	return false, nil
}

type memAttendanceRepo struct {
	records map[string]attendance.Attendance
}

func newMemAttendanceRepo() *memAttendanceRepo {
	return &memAttendanceRepo{records: make(map[string]attendance.Attendance)}
}

func attKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format("2006-01-02")
}

func (m *memAttendanceRepo) WithTx(tx *sql.Tx) attendance.Repository { return m }

func (m *memAttendanceRepo) Upsert(ctx context.Context, a *attendance.Attendance) error {
	m.records[attKey(a.EmployeeID.String(), a.Date)] = *a
	return nil
}

func (m *memAttendanceRepo) FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	if a, ok := m.records[attKey(employeeID, date)]; ok {
		cp := a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memAttendanceRepo) FindAll(ctx context.Context, filter attendance.ListFilter) ([]attendance.Attendance, error) {
	var out []attendance.Attendance
	for _, a := range m.records {
		out = append(out, a)
	}
	return out, nil
}

func (m *memAttendanceRepo) FindByDate(ctx context.Context, date time.Time) ([]attendance.Attendance, error) {
	return nil, nil
}

func (m *memAttendanceRepo) DeleteBySourceLeave(ctx context.Context, leaveID string) error {
	for k, a := range m.records {
		if a.SourceLeaveID != nil && a.SourceLeaveID.String() == leaveID {
			delete(m.records, k)
		}
	}
	return nil
}

func (m *memAttendanceRepo) DeleteByEmployeeAndDates(ctx context.Context, employeeID string, dates []time.Time) error {
	for _, d := range dates {
		delete(m.records, attKey(employeeID, d))
	}
	return nil
}

type fakeOutbox struct {
	events []kafka.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }
func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}
func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error { return nil }
func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type leaveFixture struct {
	svc     Service
	repo    *fakeLeaveRepo
	attRepo *memAttendanceRepo
	outbox  *fakeOutbox
	audit   *auditlog.Ledger
	mock    sqlmock.Sqlmock
	cache   redismock.ClientMock
}

func newLeaveFixture(t *testing.T, txPairs int) *leaveFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	for i := 0; i < txPairs; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}

	repo := newFakeLeaveRepo()
	attRepo := newMemAttendanceRepo()
	outbox := &fakeOutbox{}
	audit := auditlog.NewLedger("leave")
	rdb, cache := redismock.NewClientMock()
	t.Cleanup(func() { rdb.Close() })

	svc := NewService(db, repo, reconcile.New(attRepo), outbox, audit, rdb)
	return &leaveFixture{svc: svc, repo: repo, attRepo: attRepo, outbox: outbox, audit: audit, mock: mock, cache: cache}
}

func adminActor() Actor {
	return Actor{ID: uuid.NewString(), Name: "Andi Wijaya", Role: "superadmin"}
}

func employeeActor(id string) Actor {
	return Actor{ID: id, Name: "Dewi Lestari", Role: "tim_packing"}
}

func TestLeave_SubmitCreatesPending(t *testing.T) {
	fx := newLeaveFixture(t, 0)
	employeeID := uuid.NewString()

	resp, err := fx.svc.Submit(context.Background(), employeeActor(employeeID), SubmitLeaveRequest{
		Kind:      KindPersonalLeave,
		StartDate: "2024-07-10",
		EndDate:   "2024-07-11",
		Reason:    "acara keluarga",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, resp.Status)
	assert.Equal(t, 2, resp.TotalDays)
	assert.Empty(t, fx.attRepo.records)
	assert.Empty(t, fx.outbox.events)

	require.Equal(t, 1, fx.audit.Len())
	entry := fx.audit.Entries()[0]
	assert.Equal(t, "Ajukan Izin", entry.Action)
	assert.Equal(t, "Mengajukan PERSONAL_LEAVE dari 2024-07-10 s/d 2024-07-11", entry.Detail)
	assert.Equal(t, "Dewi Lestari", entry.Actor)
}

func TestLeave_SubmitRejectsBadRange(t *testing.T) {
	fx := newLeaveFixture(t, 0)

	_, err := fx.svc.Submit(context.Background(), employeeActor(uuid.NewString()), SubmitLeaveRequest{
		Kind:      KindSick,
		StartDate: "2024-07-11",
		EndDate:   "2024-07-10",
		Reason:    "x",
	})
	assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateRange)
	assert.Equal(t, 0, fx.audit.Len())
}

func TestLeave_ApproveThenRejectScenario(t *testing.T) {
	// emp2 submits SICK leave for 2024-07-01..03; approval materializes
	// three SICK days, a later admin edit to REJECTED clears all of them.
	fx := newLeaveFixture(t, 2)
	ctx := context.Background()
	employeeID := uuid.NewString()

	resp, err := fx.svc.Submit(ctx, employeeActor(employeeID), SubmitLeaveRequest{
		Kind:      KindSick,
		StartDate: "2024-07-01",
		EndDate:   "2024-07-03",
		Reason:    "demam",
	})
	require.NoError(t, err)

	approved, err := fx.svc.Approve(ctx, adminActor(), resp.ID, "")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	assert.Equal(t, NoteApprovedViaConsole, *approved.AdminNote)

	require.Len(t, fx.attRepo.records, 3)
	for _, a := range fx.attRepo.records {
		assert.Equal(t, attendance.StatusSick, a.Status)
		assert.Equal(t, attendance.LeaveLocationLabel, a.LocationLabel)
		assert.Equal(t, resp.ID, a.SourceLeaveID.String())
	}

	// The guard now covers the middle day.
	covered, err := fx.svc.HasApprovedLeaveOn(ctx, employeeID, time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, covered)

	require.Equal(t, 2, fx.audit.Len())
	assert.Equal(t, "Setujui Izin", fx.audit.Entries()[0].Action)
	require.Len(t, fx.outbox.events, 1)

	edited, err := fx.svc.AdminEdit(ctx, adminActor(), resp.ID, AdminEditRequest{
		Kind:      KindSick,
		StartDate: "2024-07-01",
		EndDate:   "2024-07-03",
		Status:    StatusRejected,
		Note:      "bukti tidak lengkap",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, edited.Status)

	assert.Empty(t, fx.attRepo.records)
	require.Equal(t, 3, fx.audit.Len())
	assert.Equal(t, "Koreksi Izin (Admin)", fx.audit.Entries()[0].Action)
	assert.Equal(t, "Edit izin ID "+resp.ID, fx.audit.Entries()[0].Detail)
	assert.Len(t, fx.outbox.events, 2)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestLeave_ApproveRequiresPending(t *testing.T) {
	fx := newLeaveFixture(t, 1)
	ctx := context.Background()

	resp, err := fx.svc.Submit(ctx, employeeActor(uuid.NewString()), SubmitLeaveRequest{
		Kind:      KindAnnualLeave,
		StartDate: "2024-08-01",
		EndDate:   "2024-08-02",
		Reason:    "cuti",
	})
	require.NoError(t, err)

	_, err = fx.svc.Approve(ctx, adminActor(), resp.ID, "")
	require.NoError(t, err)

	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()
	_, err = fx.svc.Approve(ctx, adminActor(), resp.ID, "")
	assert.ErrorIs(t, err, leaveerrors.ErrNotPending)
}

func TestLeave_RejectUsesDefaultNote(t *testing.T) {
	fx := newLeaveFixture(t, 1)
	ctx := context.Background()

	resp, err := fx.svc.Submit(ctx, employeeActor(uuid.NewString()), SubmitLeaveRequest{
		Kind:      KindFieldAssignment,
		StartDate: "2024-07-20",
		EndDate:   "2024-07-21",
		Reason:    "kunjungan supplier",
	})
	require.NoError(t, err)

	rejected, err := fx.svc.Reject(ctx, adminActor(), resp.ID, "")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Equal(t, NoteRejectedViaConsole, *rejected.AdminNote)
	assert.Empty(t, fx.attRepo.records)
}

func TestLeave_CancelOwnerOnlyWhilePending(t *testing.T) {
	fx := newLeaveFixture(t, 0)
	ctx := context.Background()
	employeeID := uuid.NewString()

	resp, err := fx.svc.Submit(ctx, employeeActor(employeeID), SubmitLeaveRequest{
		Kind:      KindPersonalLeave,
		StartDate: "2024-07-15",
		EndDate:   "2024-07-15",
		Reason:    "keperluan pribadi",
	})
	require.NoError(t, err)

	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
	_, err = fx.svc.Cancel(ctx, Actor{ID: uuid.NewString(), Name: "Orang Lain", Role: "tim_packing"}, resp.ID)
	assert.ErrorIs(t, err, leaveerrors.ErrNotOwner)

	cancelled, err := fx.svc.Cancel(ctx, Actor{ID: employeeID, Name: "Pemilik", Role: "tim_packing"}, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, cancelled.Status)
	assert.Equal(t, NoteCancelledByUser, *cancelled.AdminNote)

	// Only the submit and the successful cancel reach the ledger.
	require.Equal(t, 2, fx.audit.Len())
	assert.Equal(t, "Batalkan Pengajuan", fx.audit.Entries()[0].Action)
	assert.Equal(t, "Ajukan Izin", fx.audit.Entries()[1].Action)
}

func TestLeave_CancelApprovedIsRefused(t *testing.T) {
	fx := newLeaveFixture(t, 1)
	ctx := context.Background()
	employeeID := uuid.NewString()

	resp, err := fx.svc.Submit(ctx, employeeActor(employeeID), SubmitLeaveRequest{
		Kind:      KindSick,
		StartDate: "2024-07-01",
		EndDate:   "2024-07-01",
		Reason:    "sakit",
	})
	require.NoError(t, err)

	_, err = fx.svc.Approve(ctx, adminActor(), resp.ID, "")
	require.NoError(t, err)

	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()
	_, err = fx.svc.Cancel(ctx, Actor{ID: employeeID, Name: "Pemilik", Role: "tim_packing"}, resp.ID)
	assert.ErrorIs(t, err, leaveerrors.ErrNotPending)
}

func TestLeave_AdminEditMovesRange(t *testing.T) {
	fx := newLeaveFixture(t, 2)
	ctx := context.Background()
	employeeID := uuid.NewString()

	resp, err := fx.svc.Submit(ctx, employeeActor(employeeID), SubmitLeaveRequest{
		Kind:      KindAnnualLeave,
		StartDate: "2024-07-01",
		EndDate:   "2024-07-05",
		Reason:    "liburan",
	})
	require.NoError(t, err)

	_, err = fx.svc.Approve(ctx, adminActor(), resp.ID, "")
	require.NoError(t, err)
	require.Len(t, fx.attRepo.records, 5)

	// Shift and shrink the window; the old days must not survive.
	edited, err := fx.svc.AdminEdit(ctx, adminActor(), resp.ID, AdminEditRequest{
		Kind:      KindAnnualLeave,
		StartDate: "2024-07-08",
		EndDate:   "2024-07-09",
		Status:    StatusApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, edited.Status)

	assert.Len(t, fx.attRepo.records, 2)
	_, err = fx.attRepo.FindByEmployeeAndDate(ctx, employeeID, time.Date(2024, 7, 8, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	_, err = fx.attRepo.FindByEmployeeAndDate(ctx, employeeID, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Status did not change, so no extra event was queued.
	assert.Len(t, fx.outbox.events, 1)
}

func TestLeave_DecisionDropsSummaryCache(t *testing.T) {
	fx := newLeaveFixture(t, 1)
	ctx := context.Background()

	resp, err := fx.svc.Submit(ctx, employeeActor(uuid.NewString()), SubmitLeaveRequest{
		Kind:      KindSick,
		StartDate: "2024-07-01",
		EndDate:   "2024-07-01",
		Reason:    "sakit",
	})
	require.NoError(t, err)

	// Approval flips today's numbers, so the cached dashboard summary
	// must be deleted once the transaction commits.
	fx.cache.ExpectDel(attendance.TodaySummaryCacheKey).SetVal(1)

	_, err = fx.svc.Approve(ctx, adminActor(), resp.ID, "")
	require.NoError(t, err)
	assert.NoError(t, fx.cache.ExpectationsWereMet())
}

func TestLeave_GetByIDNotFound(t *testing.T) {
	fx := newLeaveFixture(t, 0)

	_, err := fx.svc.GetByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)

	_, err = fx.svc.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, leaveerrors.ErrInvalidLeaveID)
}
