package device

import (
	"context"
	"os"
	"strconv"
	"sync"

	"marketflow/internal/attendance"
	attendanceerrors "marketflow/internal/attendance/errors"

	"go.uber.org/zap"
)

// Feed bridges the browser console and the capture session. The client
// pushes its geolocation fix and camera frames over HTTP; the session
// manager blocks on the feed until a reading arrives or the context ends.
// Readings are keyed by employee so sessions running concurrently never
// consume each other's fixes or frames.
type Feed struct {
	mu        sync.Mutex
	positions map[string]chan attendance.Position
	frames    map[string]chan attendance.Frame
	logger    *zap.Logger
}

func NewFeed(logger ...*zap.Logger) *Feed {
	l := zap.L().Named("attendance.device")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.device")
	}
	return &Feed{
		positions: make(map[string]chan attendance.Position),
		frames:    make(map[string]chan attendance.Frame),
		logger:    l,
	}
}

func (f *Feed) positionChan(employeeID string) chan attendance.Position {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.positions[employeeID]
	if !ok {
		ch = make(chan attendance.Position, 1)
		f.positions[employeeID] = ch
	}
	return ch
}

func (f *Feed) frameChan(employeeID string) chan attendance.Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.frames[employeeID]
	if !ok {
		ch = make(chan attendance.Frame, 1)
		f.frames[employeeID] = ch
	}
	return ch
}

// OfferPosition records the employee's latest fix, replacing any unread one.
func (f *Feed) OfferPosition(employeeID string, p attendance.Position) {
	ch := f.positionChan(employeeID)
	select {
	case ch <- p:
	default:
		select {
		case <-ch:
		default:
		}
		ch <- p
	}
}

// OfferFrame records the employee's latest frame, replacing any unread one.
func (f *Feed) OfferFrame(employeeID string, frame attendance.Frame) {
	ch := f.frameChan(employeeID)
	select {
	case ch <- frame:
	default:
		select {
		case <-ch:
		default:
		}
		ch <- frame
	}
}

func (f *Feed) CurrentPosition(ctx context.Context, employeeID string) (attendance.Position, error) {
	select {
	case p := <-f.positionChan(employeeID):
		return p, nil
	case <-ctx.Done():
		f.logger.Warn("position fix timed out",
			zap.String("employee_id", employeeID),
			zap.Error(ctx.Err()),
		)
		return attendance.Position{}, attendanceerrors.ErrLocationUnavailable
	}
}

func (f *Feed) Open(ctx context.Context, employeeID string) (attendance.CameraStream, error) {
	return &feedStream{feed: f, employeeID: employeeID}, nil
}

type feedStream struct {
	feed       *Feed
	employeeID string
}

func (s *feedStream) Capture(ctx context.Context) (attendance.Frame, error) {
	select {
	case frame := <-s.feed.frameChan(s.employeeID):
		return frame, nil
	case <-ctx.Done():
		s.feed.logger.Warn("frame capture timed out",
			zap.String("employee_id", s.employeeID),
			zap.Error(ctx.Err()),
		)
		return attendance.Frame{}, attendanceerrors.ErrCameraUnavailable
	}
}

func (s *feedStream) Close() error { return nil }

// StaticPositionProvider reports a fixed position, for kiosk deployments
// where the terminal never moves.
type StaticPositionProvider struct {
	Position attendance.Position
}

func (p StaticPositionProvider) CurrentPosition(ctx context.Context, employeeID string) (attendance.Position, error) {
	return p.Position, nil
}

// StaticPositionFromEnv reads KIOSK_LATITUDE / KIOSK_LONGITUDE. The second
// return value is false when the deployment is not a kiosk.
func StaticPositionFromEnv() (StaticPositionProvider, bool) {
	latStr := os.Getenv("KIOSK_LATITUDE")
	lngStr := os.Getenv("KIOSK_LONGITUDE")
	if latStr == "" || lngStr == "" {
		return StaticPositionProvider{}, false
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return StaticPositionProvider{}, false
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return StaticPositionProvider{}, false
	}
	return StaticPositionProvider{Position: attendance.Position{Latitude: lat, Longitude: lng}}, true
}
