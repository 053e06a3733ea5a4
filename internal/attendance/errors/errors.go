package attendanceerrors

import (
	"net/http"

	"marketflow/internal/shared/apperror"
)

var (
	ErrRecordNotFound = apperror.New(
		apperror.CodeNotFound,
		"attendance record not found",
		http.StatusNotFound,
	)
	ErrCheckInNotFound = apperror.New(
		apperror.CodeNotFound,
		"no check-in found for today",
		http.StatusNotFound,
	)
	ErrAlreadyCheckedOut = apperror.New(
		apperror.CodeInvalidState,
		"already checked out for today",
		http.StatusBadRequest,
	)
	ErrOnApprovedLeave = apperror.New(
		apperror.CodeForbidden,
		"check-in is not allowed while on approved leave",
		http.StatusForbidden,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrScheduleNotFound = apperror.New(
		apperror.CodeNotFound,
		"no work schedule for this role",
		http.StatusNotFound,
	)
	ErrSessionInFlight = apperror.New(
		apperror.CodeConflict,
		"an attendance session is already in progress",
		http.StatusConflict,
	)
	ErrSessionState = apperror.New(
		apperror.CodeInvalidState,
		"operation not allowed in current session state",
		http.StatusBadRequest,
	)
	ErrLocationUnavailable = apperror.New(
		apperror.CodeLocationUnavailable,
		"unable to acquire device location",
		http.StatusServiceUnavailable,
	)
	ErrCameraUnavailable = apperror.New(
		apperror.CodeCameraUnavailable,
		"unable to acquire camera stream",
		http.StatusServiceUnavailable,
	)
)
