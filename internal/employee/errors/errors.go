package employeeerrors

import (
	"net/http"

	"marketflow/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrUsernameAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"username already registered",
		http.StatusConflict,
	)
	ErrEmployeeNumberAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"employee number already registered",
		http.StatusConflict,
	)
	ErrInvalidJoinDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid join_date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrUnknownRole = apperror.New(
		apperror.CodeInvalidInput,
		"role_id does not match any work schedule",
		http.StatusBadRequest,
	)
	ErrEmployeeInactive = apperror.New(
		apperror.CodeForbidden,
		"employee is not active",
		http.StatusForbidden,
	)
)
