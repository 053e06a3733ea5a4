package attendance

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	attendanceerrors "marketflow/internal/attendance/errors"
	"marketflow/internal/auditlog"
	"marketflow/internal/employee"
	"marketflow/internal/office"
	"marketflow/internal/schedule"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeRepo keeps records in a map keyed by the natural key, so an upsert
// colliding with an existing employee-day replaces it like the partial
// unique index would.
type fakeRepo struct {
	mu      sync.Mutex
	records map[string]Attendance
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[string]Attendance)}
}

func key(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format("2006-01-02")
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository { return f }

func (f *fakeRepo) Upsert(ctx context.Context, a *Attendance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(a.EmployeeID.String(), a.Date)
	if existing, ok := f.records[k]; ok {
		a.ID = existing.ID
		a.CreatedAt = existing.CreatedAt
	}
	f.records[k] = *a
	return nil
}

func (f *fakeRepo) FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.records[key(employeeID, date)]; ok {
		cp := a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindAll(ctx context.Context, filter ListFilter) ([]Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Attendance
	for _, a := range f.records {
		if filter.EmployeeID != "" && a.EmployeeID.String() != filter.EmployeeID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeRepo) FindByDate(ctx context.Context, date time.Time) ([]Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Attendance
	for _, a := range f.records {
		if a.Date.Equal(date) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRepo) DeleteBySourceLeave(ctx context.Context, leaveID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, a := range f.records {
		if a.SourceLeaveID != nil && a.SourceLeaveID.String() == leaveID {
			delete(f.records, k)
		}
	}
	return nil
}

func (f *fakeRepo) DeleteByEmployeeAndDates(ctx context.Context, employeeID string, dates []time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range dates {
		delete(f.records, key(employeeID, d))
	}
	return nil
}

type fakeEmployeeRepo struct {
	byID map[string]*employee.Employee
}

func (f *fakeEmployeeRepo) WithTx(tx *sql.Tx) employee.Repository                  { return f }
func (f *fakeEmployeeRepo) Create(ctx context.Context, e *employee.Employee) error { return nil }
func (f *fakeEmployeeRepo) FindAll(ctx context.Context) ([]employee.Employee, error) {
	return nil, nil
}
func (f *fakeEmployeeRepo) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeEmployeeRepo) FindByUsername(ctx context.Context, username string) (*employee.Employee, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeEmployeeRepo) FindOptions(ctx context.Context) ([]employee.Employee, error) {
	out := make([]employee.Employee, 0, len(f.byID))
	for _, e := range f.byID {
		out = append(out, *e)
	}
	return out, nil
}
func (f *fakeEmployeeRepo) Update(ctx context.Context, e *employee.Employee) error { return nil }
func (f *fakeEmployeeRepo) Delete(ctx context.Context, id string) error            { return nil }

type fakeScheduleRepo struct {
	byRole map[string]*schedule.WorkSchedule
}

func (f *fakeScheduleRepo) FindByRole(ctx context.Context, roleID string) (*schedule.WorkSchedule, error) {
	if s, ok := f.byRole[roleID]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeScheduleRepo) FindAll(ctx context.Context) ([]schedule.WorkSchedule, error) {
	return nil, nil
}

type fakeOfficeRepo struct {
	cfg office.Config
}

func (f *fakeOfficeRepo) Get(ctx context.Context) (*office.Config, error) {
	cp := f.cfg
	return &cp, nil
}
func (f *fakeOfficeRepo) Save(ctx context.Context, cfg *office.Config) error { return nil }

type fakeLeaveChecker struct {
	onLeave bool
	err     error
}

func (f *fakeLeaveChecker) HasApprovedLeaveOn(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	return f.onLeave, f.err
}

func newTestService(t *testing.T, repo *fakeRepo, leaves LeaveChecker, at time.Time, txPairs int) (Service, *fakeEmployeeRepo, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	for i := 0; i < txPairs; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}

	emplID := uuid.New()
	emplRepo := &fakeEmployeeRepo{byID: map[string]*employee.Employee{
		emplID.String(): {ID: emplID, FullName: "Budi", RoleID: "superadmin", Status: employee.StatusActive},
	}}
	schedRepo := &fakeScheduleRepo{byRole: map[string]*schedule.WorkSchedule{
		"superadmin": {RoleID: "superadmin", CheckInTime: "08:00", CheckOutTime: "17:00", GraceMinutes: 15},
	}}
	officeRepo := &fakeOfficeRepo{cfg: office.Config{
		ID:                    1,
		Latitude:              -7.712094242672099,
		Longitude:             109.74015939318106,
		ToleranceRadiusMeters: 500,
		Label:                 "Grha Indonesia Organik",
	}}

	svc := NewService(db, repo, emplRepo, schedRepo, officeRepo, leaves, auditlog.NewLedger("attendance"), nil).(*service)
	svc.now = func() time.Time { return at }
	return svc, emplRepo, mock
}

func firstEmployeeID(repo *fakeEmployeeRepo) string {
	for id := range repo.byID {
		return id
	}
	return ""
}

func TestService_CheckIn_WithinRadius(t *testing.T) {
	repo := newFakeRepo()
	at := time.Date(2024, 7, 1, 8, 10, 0, 0, time.UTC)
	svc, emplRepo, mock := newTestService(t, repo, &fakeLeaveChecker{}, at, 1)
	emplID := firstEmployeeID(emplRepo)

	resp, err := svc.CheckIn(context.Background(), emplID, CheckInRequest{
		Latitude:  -7.712094242672099,
		Longitude: 109.74015939318106,
		Photo:     "photo-1",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPresent, resp.Status)
	assert.Equal(t, "Grha Indonesia Organik (WFO)", resp.LocationLabel)
	assert.Equal(t, "08:10", *resp.CheckInTime)
	assert.NoError(t, mock.ExpectationsWereMet())

	audit := svc.(*service).audit
	require.Equal(t, 1, audit.Len())
	entry := audit.Entries()[0]
	assert.Equal(t, "Check-in", entry.Action)
	assert.Equal(t, "Berhasil MASUK pukul 08:10", entry.Detail)
	assert.Equal(t, "Budi", entry.Actor)
}

func TestService_CheckIn_OutsideRadiusIsLateRemote(t *testing.T) {
	repo := newFakeRepo()
	at := time.Date(2024, 7, 1, 8, 30, 0, 0, time.UTC)
	svc, emplRepo, _ := newTestService(t, repo, &fakeLeaveChecker{}, at, 1)
	emplID := firstEmployeeID(emplRepo)

	// Roughly 11 km away from the office fixture.
	resp, err := svc.CheckIn(context.Background(), emplID, CheckInRequest{
		Latitude:  -7.8,
		Longitude: 109.8,
		Photo:     "photo-1",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusLate, resp.Status)
	assert.Contains(t, resp.LocationLabel, "Remote Activity (")
	assert.Contains(t, resp.LocationLabel, "m dari kantor)")
}

func TestService_CheckIn_BlockedByApprovedLeave(t *testing.T) {
	repo := newFakeRepo()
	at := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	svc, emplRepo, _ := newTestService(t, repo, &fakeLeaveChecker{onLeave: true}, at, 0)
	emplID := firstEmployeeID(emplRepo)

	_, err := svc.CheckIn(context.Background(), emplID, CheckInRequest{
		Latitude: -7.7, Longitude: 109.7, Photo: "photo-1",
	})
	assert.ErrorIs(t, err, attendanceerrors.ErrOnApprovedLeave)
	assert.Empty(t, repo.records)
}

func TestService_CheckOut_RequiresCheckIn(t *testing.T) {
	repo := newFakeRepo()
	at := time.Date(2024, 7, 1, 17, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := NewService(db, repo, &fakeEmployeeRepo{}, &fakeScheduleRepo{}, &fakeOfficeRepo{}, &fakeLeaveChecker{}, nil, nil).(*service)
	svc.now = func() time.Time { return at }

	_, err = svc.CheckOut(context.Background(), uuid.NewString(), CheckOutRequest{Photo: "p"})
	assert.ErrorIs(t, err, attendanceerrors.ErrCheckInNotFound)
}

func TestService_CheckInThenOut_SetsDuration(t *testing.T) {
	repo := newFakeRepo()
	in := time.Date(2024, 7, 1, 8, 3, 0, 0, time.UTC)
	svc, emplRepo, _ := newTestService(t, repo, &fakeLeaveChecker{}, in, 2)
	emplID := firstEmployeeID(emplRepo)

	_, err := svc.CheckIn(context.Background(), emplID, CheckInRequest{
		Latitude: -7.712094242672099, Longitude: 109.74015939318106, Photo: "in",
	})
	require.NoError(t, err)

	svc.(*service).now = func() time.Time { return time.Date(2024, 7, 1, 17, 10, 0, 0, time.UTC) }
	resp, err := svc.CheckOut(context.Background(), emplID, CheckOutRequest{Photo: "out"})
	require.NoError(t, err)
	assert.Equal(t, "9h 7m", *resp.WorkDuration)
	assert.Equal(t, StatusPresent, resp.Status)

	// Newest first: check-out on top of the check-in entry.
	audit := svc.(*service).audit
	require.Equal(t, 2, audit.Len())
	assert.Equal(t, "Check-out", audit.Entries()[0].Action)
	assert.Equal(t, "Berhasil PULANG pukul 17:10", audit.Entries()[0].Detail)
	assert.Equal(t, "Check-in", audit.Entries()[1].Action)
}

func TestService_NaturalKeyUniqueness_InterleavedWriters(t *testing.T) {
	repo := newFakeRepo()
	at := time.Date(2024, 7, 1, 8, 5, 0, 0, time.UTC)
	svc, emplRepo, _ := newTestService(t, repo, &fakeLeaveChecker{}, at, 3)
	emplID := firstEmployeeID(emplRepo)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, emplID, CheckInRequest{
		Latitude: -7.712094242672099, Longitude: 109.74015939318106, Photo: "first",
	})
	require.NoError(t, err)

	// An admin correction and a second check-in both aim at the same
	// employee-day; the store must end with exactly one record.
	lateIn := "10:00"
	_, err = svc.SaveManual(ctx, SaveManualRequest{
		EmployeeID:  emplID,
		Date:        "2024-07-01",
		CheckInTime: &lateIn,
		Status:      StatusLate,
	})
	require.NoError(t, err)

	_, err = svc.CheckIn(ctx, emplID, CheckInRequest{
		Latitude: -7.712094242672099, Longitude: 109.74015939318106, Photo: "second",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, len(repo.records))
	rec := repo.records[key(emplID, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))]
	assert.Equal(t, "second", *rec.CheckInPhoto)
}

func TestService_SaveManual_InvalidDate(t *testing.T) {
	repo := newFakeRepo()
	svc, _, _ := newTestService(t, repo, &fakeLeaveChecker{}, time.Now(), 0)

	_, err := svc.SaveManual(context.Background(), SaveManualRequest{
		EmployeeID: uuid.NewString(),
		Date:       "01-07-2024",
		Status:     StatusPresent,
	})
	assert.ErrorIs(t, err, attendanceerrors.ErrInvalidDateFormat)
}

func TestService_TodaySummary_Counts(t *testing.T) {
	repo := newFakeRepo()
	at := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	today := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	svc, emplRepo, _ := newTestService(t, repo, &fakeLeaveChecker{}, at, 0)

	// Two extra active employees besides the fixture one.
	for _, name := range []string{"Sari", "Dewi"} {
		id := uuid.New()
		emplRepo.byID[id.String()] = &employee.Employee{ID: id, FullName: name, RoleID: "tim_packing", Status: employee.StatusActive}
	}

	ids := make([]uuid.UUID, 0, 3)
	for id := range emplRepo.byID {
		ids = append(ids, uuid.MustParse(id))
	}
	require.NoError(t, repo.Upsert(context.Background(), &Attendance{
		ID: uuid.New(), EmployeeID: ids[0], Date: today, Status: StatusPresent,
	}))
	require.NoError(t, repo.Upsert(context.Background(), &Attendance{
		ID: uuid.New(), EmployeeID: ids[1], Date: today, Status: StatusSick,
	}))

	summary, err := svc.TodaySummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Present)
	assert.Equal(t, 0, summary.Late)
	assert.Equal(t, 1, summary.OnLeave)
	assert.Equal(t, 1, summary.NotYetIn)
}

func TestRemoteLabel_RoundsToNearestMeter(t *testing.T) {
	assert.Equal(t, "Remote Activity (500m dari kantor)", remoteLabel(499.6))
	assert.Equal(t, "Remote Activity (501m dari kantor)", remoteLabel(500.5))
	assert.Equal(t, "Remote Activity (500m dari kantor)", remoteLabel(500.4))
}

func TestService_CheckIn_LeaveGuardError(t *testing.T) {
	repo := newFakeRepo()
	svc, emplRepo, _ := newTestService(t, repo, &fakeLeaveChecker{err: errors.New("db down")}, time.Now(), 0)
	emplID := firstEmployeeID(emplRepo)

	_, err := svc.CheckIn(context.Background(), emplID, CheckInRequest{
		Latitude: 0, Longitude: 0, Photo: "p",
	})
	assert.EqualError(t, err, "db down")
}
