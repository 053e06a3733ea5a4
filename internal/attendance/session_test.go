package attendance

import (
	"context"
	"errors"
	"testing"

	attendanceerrors "marketflow/internal/attendance/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPositionProvider struct {
	calls        int
	lastEmployee string
	pos          Position
	err          error
}

func (p *recordingPositionProvider) CurrentPosition(ctx context.Context, employeeID string) (Position, error) {
	p.calls++
	p.lastEmployee = employeeID
	return p.pos, p.err
}

type recordingCamera struct {
	openCalls    int
	lastEmployee string
	stream       *recordingStream
	err          error
}

func (c *recordingCamera) Open(ctx context.Context, employeeID string) (CameraStream, error) {
	c.openCalls++
	c.lastEmployee = employeeID
	if c.err != nil {
		return nil, c.err
	}
	return c.stream, nil
}

type recordingStream struct {
	frame    Frame
	captures int
	closed   bool
	err      error
}

func (s *recordingStream) Capture(ctx context.Context) (Frame, error) {
	s.captures++
	return s.frame, s.err
}

func (s *recordingStream) Close() error {
	s.closed = true
	return nil
}

type stubService struct {
	Service
	checkInCalls  int
	checkOutCalls int
	lastReq       CheckInRequest
	err           error
}

func (s *stubService) CheckIn(ctx context.Context, employeeID string, req CheckInRequest) (AttendanceResponse, error) {
	s.checkInCalls++
	s.lastReq = req
	return AttendanceResponse{ID: "rec-1", Status: StatusPresent}, s.err
}

func (s *stubService) CheckOut(ctx context.Context, employeeID string, req CheckOutRequest) (AttendanceResponse, error) {
	s.checkOutCalls++
	return AttendanceResponse{ID: "rec-1"}, s.err
}

func testFrame() Frame {
	return Frame{Width: 3, Height: 2, Pixels: []byte{
		1, 2, 3,
		4, 5, 6,
	}}
}

func TestFrame_Mirrored(t *testing.T) {
	m := testFrame().Mirrored()
	assert.Equal(t, []byte{3, 2, 1, 6, 5, 4}, m.Pixels)

	// Mirroring twice restores the original.
	assert.Equal(t, testFrame().Pixels, m.Mirrored().Pixels)
}

func TestSession_LeaveGuardRunsBeforeCapabilities(t *testing.T) {
	provider := &recordingPositionProvider{}
	camera := &recordingCamera{stream: &recordingStream{frame: testFrame()}}
	mgr := NewSessionManager(&stubService{}, &fakeLeaveChecker{onLeave: true}, provider, camera)

	_, err := mgr.Start(context.Background(), "emp-1", SessionCheckIn)
	assert.ErrorIs(t, err, attendanceerrors.ErrOnApprovedLeave)

	// Neither capability was ever touched.
	assert.Equal(t, 0, provider.calls)
	assert.Equal(t, 0, camera.openCalls)
}

func TestSession_HappyPathCheckIn(t *testing.T) {
	provider := &recordingPositionProvider{pos: Position{Latitude: -7.71, Longitude: 109.74}}
	stream := &recordingStream{frame: testFrame()}
	camera := &recordingCamera{stream: stream}
	svc := &stubService{}
	mgr := NewSessionManager(svc, &fakeLeaveChecker{}, provider, camera)
	ctx := context.Background()

	sess, err := mgr.Start(ctx, "emp-1", SessionCheckIn)
	require.NoError(t, err)
	assert.Equal(t, StateCameraReady, sess.State)
	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, "emp-1", provider.lastEmployee)
	assert.Equal(t, "emp-1", camera.lastEmployee)

	require.NoError(t, mgr.Capture(ctx, "emp-1"))
	assert.Equal(t, StateCaptured, sess.State)

	resp, err := mgr.Submit(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "rec-1", resp.ID)
	assert.Equal(t, 1, svc.checkInCalls)
	assert.Equal(t, -7.71, svc.lastReq.Latitude)
	assert.NotEmpty(t, svc.lastReq.Photo)
	assert.True(t, stream.closed)

	// The slot is free again.
	_, err = mgr.Start(ctx, "emp-1", SessionCheckIn)
	assert.NoError(t, err)
}

func TestSession_SingleInFlightPerEmployee(t *testing.T) {
	provider := &recordingPositionProvider{}
	camera := &recordingCamera{stream: &recordingStream{frame: testFrame()}}
	mgr := NewSessionManager(&stubService{}, &fakeLeaveChecker{}, provider, camera)
	ctx := context.Background()

	_, err := mgr.Start(ctx, "emp-1", SessionCheckIn)
	require.NoError(t, err)

	_, err = mgr.Start(ctx, "emp-1", SessionCheckIn)
	assert.ErrorIs(t, err, attendanceerrors.ErrSessionInFlight)

	// A different employee is unaffected.
	_, err = mgr.Start(ctx, "emp-2", SessionCheckIn)
	assert.NoError(t, err)
}

func TestSession_LocationFailureAbortsToIdle(t *testing.T) {
	provider := &recordingPositionProvider{err: errors.New("no gps fix")}
	camera := &recordingCamera{stream: &recordingStream{frame: testFrame()}}
	mgr := NewSessionManager(&stubService{}, &fakeLeaveChecker{}, provider, camera)
	ctx := context.Background()

	_, err := mgr.Start(ctx, "emp-1", SessionCheckIn)
	assert.ErrorIs(t, err, attendanceerrors.ErrLocationUnavailable)
	assert.Equal(t, 0, camera.openCalls)

	// Aborted session does not linger.
	provider.err = nil
	_, err = mgr.Start(ctx, "emp-1", SessionCheckIn)
	assert.NoError(t, err)
}

func TestSession_CameraFailureAbortsToIdle(t *testing.T) {
	provider := &recordingPositionProvider{}
	camera := &recordingCamera{err: errors.New("camera busy")}
	mgr := NewSessionManager(&stubService{}, &fakeLeaveChecker{}, provider, camera)

	_, err := mgr.Start(context.Background(), "emp-1", SessionCheckIn)
	assert.ErrorIs(t, err, attendanceerrors.ErrCameraUnavailable)
}

func TestSession_DiscardAllowsRecaptureWithoutRelocating(t *testing.T) {
	provider := &recordingPositionProvider{}
	stream := &recordingStream{frame: testFrame()}
	camera := &recordingCamera{stream: stream}
	mgr := NewSessionManager(&stubService{}, &fakeLeaveChecker{}, provider, camera)
	ctx := context.Background()

	sess, err := mgr.Start(ctx, "emp-1", SessionCheckIn)
	require.NoError(t, err)

	require.NoError(t, mgr.Capture(ctx, "emp-1"))
	require.NoError(t, mgr.Discard("emp-1"))
	assert.Equal(t, StateCameraReady, sess.State)
	assert.Nil(t, sess.frame)

	require.NoError(t, mgr.Capture(ctx, "emp-1"))
	assert.Equal(t, 2, stream.captures)
	assert.Equal(t, 1, provider.calls)
}

func TestSession_SubmitRequiresCapturedFrame(t *testing.T) {
	provider := &recordingPositionProvider{}
	camera := &recordingCamera{stream: &recordingStream{frame: testFrame()}}
	mgr := NewSessionManager(&stubService{}, &fakeLeaveChecker{}, provider, camera)
	ctx := context.Background()

	_, err := mgr.Start(ctx, "emp-1", SessionCheckIn)
	require.NoError(t, err)

	_, err = mgr.Submit(ctx, "emp-1")
	assert.ErrorIs(t, err, attendanceerrors.ErrSessionState)
}

func TestSession_CancelClosesStream(t *testing.T) {
	provider := &recordingPositionProvider{}
	stream := &recordingStream{frame: testFrame()}
	camera := &recordingCamera{stream: stream}
	mgr := NewSessionManager(&stubService{}, &fakeLeaveChecker{}, provider, camera)
	ctx := context.Background()

	_, err := mgr.Start(ctx, "emp-1", SessionCheckIn)
	require.NoError(t, err)
	require.NoError(t, mgr.Capture(ctx, "emp-1"))

	mgr.Cancel("emp-1")
	assert.True(t, stream.closed)

	_, err = mgr.Start(ctx, "emp-1", SessionCheckIn)
	assert.NoError(t, err)
}

func TestSession_CheckOutSkipsLeaveGuard(t *testing.T) {
	provider := &recordingPositionProvider{}
	camera := &recordingCamera{stream: &recordingStream{frame: testFrame()}}
	svc := &stubService{}
	// On approved leave, but checking out is still allowed.
	mgr := NewSessionManager(svc, &fakeLeaveChecker{onLeave: true}, provider, camera)
	ctx := context.Background()

	_, err := mgr.Start(ctx, "emp-1", SessionCheckOut)
	require.NoError(t, err)
	require.NoError(t, mgr.Capture(ctx, "emp-1"))

	_, err = mgr.Submit(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 1, svc.checkOutCalls)
	assert.Equal(t, 0, svc.checkInCalls)
}

func TestSession_FailedSubmitKeepsSessionForRetry(t *testing.T) {
	provider := &recordingPositionProvider{}
	camera := &recordingCamera{stream: &recordingStream{frame: testFrame()}}
	svc := &stubService{err: errors.New("transient")}
	mgr := NewSessionManager(svc, &fakeLeaveChecker{}, provider, camera)
	ctx := context.Background()

	_, err := mgr.Start(ctx, "emp-1", SessionCheckIn)
	require.NoError(t, err)
	require.NoError(t, mgr.Capture(ctx, "emp-1"))

	_, err = mgr.Submit(ctx, "emp-1")
	require.Error(t, err)

	svc.err = nil
	resp, err := mgr.Submit(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "rec-1", resp.ID)
}
