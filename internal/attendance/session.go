package attendance

import (
	"context"
	"encoding/base64"
	"sync"
	"time"

	attendanceerrors "marketflow/internal/attendance/errors"

	"go.uber.org/zap"
)

type SessionState string

const (
	StateIdle        SessionState = "IDLE"
	StateLocating    SessionState = "LOCATING"
	StateCameraReady SessionState = "CAMERA_READY"
	StateCaptured    SessionState = "CAPTURED"
	StateSubmitted   SessionState = "SUBMITTED"
)

type SessionKind string

const (
	SessionCheckIn  SessionKind = "CHECK_IN"
	SessionCheckOut SessionKind = "CHECK_OUT"
)

type Position struct {
	Latitude  float64
	Longitude float64
}

// PositionProvider yields the position of one employee's device.
// Implementations may block while the fix is acquired, so the context
// must be honored.
type PositionProvider interface {
	CurrentPosition(ctx context.Context, employeeID string) (Position, error)
}

// Frame is a raw row-major pixel buffer handed over by the camera.
type Frame struct {
	Width  int
	Height int
	Pixels []byte
}

// Mirrored flips the frame horizontally, matching what the employee sees
// in a selfie preview.
func (f Frame) Mirrored() Frame {
	out := Frame{Width: f.Width, Height: f.Height, Pixels: make([]byte, len(f.Pixels))}
	for row := 0; row < f.Height; row++ {
		base := row * f.Width
		for col := 0; col < f.Width; col++ {
			out.Pixels[base+col] = f.Pixels[base+f.Width-1-col]
		}
	}
	return out
}

type CameraStream interface {
	Capture(ctx context.Context) (Frame, error)
	Close() error
}

// Camera opens a capture stream for one employee's device.
type Camera interface {
	Open(ctx context.Context, employeeID string) (CameraStream, error)
}

// Session tracks one employee's capture flow from location fix to submit.
// All mutation goes through SessionManager, which holds the lock.
type Session struct {
	EmployeeID string
	Kind       SessionKind
	State      SessionState
	Position   Position
	StartedAt  time.Time

	stream CameraStream
	frame  *Frame
}

// SessionManager enforces a single in-flight session per employee and
// drives the IDLE -> LOCATING -> CAMERA_READY -> CAPTURED -> SUBMITTED
// progression. Any failure or cancel tears the session down; no partial
// attendance record is ever written.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	svc      Service
	leaves   LeaveChecker
	position PositionProvider
	camera   Camera
	logger   *zap.Logger
}

func NewSessionManager(
	svc Service,
	leaves LeaveChecker,
	position PositionProvider,
	camera Camera,
	logger ...*zap.Logger,
) *SessionManager {
	l := zap.L().Named("attendance.session")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.session")
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		svc:      svc,
		leaves:   leaves,
		position: position,
		camera:   camera,
		logger:   l,
	}
}

// Start opens a session and walks it to CAMERA_READY. The leave guard runs
// before the position provider or camera are touched, so an employee on
// approved leave never triggers a capability prompt.
func (m *SessionManager) Start(ctx context.Context, employeeID string, kind SessionKind) (*Session, error) {
	m.mu.Lock()
	if _, ok := m.sessions[employeeID]; ok {
		m.mu.Unlock()
		return nil, attendanceerrors.ErrSessionInFlight
	}
	sess := &Session{
		EmployeeID: employeeID,
		Kind:       kind,
		State:      StateIdle,
		StartedAt:  time.Now(),
	}
	m.sessions[employeeID] = sess
	m.mu.Unlock()

	if kind == SessionCheckIn {
		onLeave, err := m.leaves.HasApprovedLeaveOn(ctx, employeeID, dateOnly(time.Now()))
		if err != nil {
			m.drop(employeeID)
			return nil, err
		}
		if onLeave {
			m.drop(employeeID)
			m.logger.Warn("session blocked by approved leave", zap.String("employee_id", employeeID))
			return nil, attendanceerrors.ErrOnApprovedLeave
		}
	}

	m.mu.Lock()
	sess.State = StateLocating
	m.mu.Unlock()

	pos, err := m.position.CurrentPosition(ctx, employeeID)
	if err != nil {
		m.drop(employeeID)
		m.logger.Error("position acquisition failed",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return nil, attendanceerrors.ErrLocationUnavailable
	}

	stream, err := m.camera.Open(ctx, employeeID)
	if err != nil {
		m.drop(employeeID)
		m.logger.Error("camera open failed",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return nil, attendanceerrors.ErrCameraUnavailable
	}

	m.mu.Lock()
	if m.sessions[employeeID] != sess {
		// Cancelled while the capabilities were being acquired.
		m.mu.Unlock()
		stream.Close()
		return nil, attendanceerrors.ErrSessionState
	}
	sess.Position = pos
	sess.stream = stream
	sess.State = StateCameraReady
	m.mu.Unlock()

	m.logger.Info("session ready",
		zap.String("employee_id", employeeID),
		zap.String("kind", string(kind)),
	)

	return sess, nil
}

// Capture grabs a frame and stores it mirrored. Recapturing over a
// previous frame is allowed; the position fix is kept.
func (m *SessionManager) Capture(ctx context.Context, employeeID string) error {
	m.mu.Lock()
	sess, ok := m.sessions[employeeID]
	if !ok || (sess.State != StateCameraReady && sess.State != StateCaptured) {
		m.mu.Unlock()
		return attendanceerrors.ErrSessionState
	}
	stream := sess.stream
	m.mu.Unlock()

	frame, err := stream.Capture(ctx)
	if err != nil {
		m.logger.Error("frame capture failed",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return attendanceerrors.ErrCameraUnavailable
	}

	mirrored := frame.Mirrored()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions[employeeID] != sess {
		return attendanceerrors.ErrSessionState
	}
	sess.frame = &mirrored
	sess.State = StateCaptured
	return nil
}

// Discard drops the captured frame and returns to CAMERA_READY.
func (m *SessionManager) Discard(employeeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[employeeID]
	if !ok || sess.State != StateCaptured {
		return attendanceerrors.ErrSessionState
	}
	sess.frame = nil
	sess.State = StateCameraReady
	return nil
}

// Submit hands the session over to the attendance service and closes it.
func (m *SessionManager) Submit(ctx context.Context, employeeID string) (AttendanceResponse, error) {
	m.mu.Lock()
	sess, ok := m.sessions[employeeID]
	if !ok || sess.State != StateCaptured || sess.frame == nil {
		m.mu.Unlock()
		return AttendanceResponse{}, attendanceerrors.ErrSessionState
	}
	kind := sess.Kind
	pos := sess.Position
	photo := encodePhoto(*sess.frame)
	m.mu.Unlock()

	var (
		resp AttendanceResponse
		err  error
	)
	switch kind {
	case SessionCheckOut:
		resp, err = m.svc.CheckOut(ctx, employeeID, CheckOutRequest{Photo: photo})
	default:
		resp, err = m.svc.CheckIn(ctx, employeeID, CheckInRequest{
			Latitude:  pos.Latitude,
			Longitude: pos.Longitude,
			Photo:     photo,
		})
	}
	if err != nil {
		// The session survives a failed submit so the employee can retry.
		return AttendanceResponse{}, err
	}

	m.mu.Lock()
	sess.State = StateSubmitted
	m.mu.Unlock()
	m.drop(employeeID)
	return resp, nil
}

// Cancel tears the session down from any pre-submission state.
func (m *SessionManager) Cancel(employeeID string) {
	m.drop(employeeID)
}

func (m *SessionManager) drop(employeeID string) {
	m.mu.Lock()
	sess, ok := m.sessions[employeeID]
	delete(m.sessions, employeeID)
	m.mu.Unlock()
	if ok && sess.stream != nil {
		if err := sess.stream.Close(); err != nil {
			m.logger.Warn("camera stream close failed",
				zap.String("employee_id", employeeID),
				zap.Error(err),
			)
		}
	}
}

func encodePhoto(f Frame) string {
	return "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(f.Pixels)
}
