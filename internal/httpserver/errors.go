package httpserver

import (
	"net/http"
)

type ErrorCode string

const (
	ErrCodeValidation            ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidCredentials    ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeTokenInvalid          ErrorCode = "TOKEN_INVALID"
	ErrCodeAdminLoginRequired    ErrorCode = "ADMIN_LOGIN_REQUIRED"
	ErrCodeAdminLoginUnavailable ErrorCode = "ADMIN_LOGIN_UNAVAILABLE"
	ErrCodeForbidden             ErrorCode = "FORBIDDEN"
	ErrCodeEventNotFound         ErrorCode = "EVENT_NOT_FOUND"
	ErrCodeTeamMemberNotFound    ErrorCode = "TEAM_MEMBER_NOT_FOUND"
	ErrCodeNoActiveCall          ErrorCode = "NO_ACTIVE_CALL"
	ErrCodeCallInProgress        ErrorCode = "CALL_IN_PROGRESS"
	ErrCodeCallInvalidState      ErrorCode = "CALL_INVALID_STATE"
	ErrCodeNoTrack               ErrorCode = "NO_TRACK"
	ErrCodeRemote                ErrorCode = "REMOTE_ERROR"
	ErrCodeRemoteNotConfigured   ErrorCode = "REMOTE_NOT_CONFIGURED"
	ErrCodeInternal              ErrorCode = "INTERNAL_ERROR"
	ErrCodeMethodNotAllowed      ErrorCode = "METHOD_NOT_ALLOWED"
	ErrCodeNotFound              ErrorCode = "NOT_FOUND"
)

const (
	msgAdminLoginRequired = "Please login to access the admin dashboard"
	msgEventNotFound      = "Event not found"
)

var errorHTTPStatus = map[ErrorCode]int{
	ErrCodeValidation:            http.StatusBadRequest,
	ErrCodeInvalidCredentials:    http.StatusUnauthorized,
	ErrCodeTokenInvalid:          http.StatusUnauthorized,
	ErrCodeAdminLoginRequired:    http.StatusUnauthorized,
	ErrCodeAdminLoginUnavailable: http.StatusNotImplemented,
	ErrCodeForbidden:             http.StatusForbidden,
	ErrCodeEventNotFound:         http.StatusNotFound,
	ErrCodeTeamMemberNotFound:    http.StatusNotFound,
	ErrCodeNoActiveCall:          http.StatusConflict,
	ErrCodeCallInProgress:        http.StatusConflict,
	ErrCodeCallInvalidState:      http.StatusConflict,
	ErrCodeNoTrack:               http.StatusConflict,
	ErrCodeRemote:                http.StatusBadGateway,
	ErrCodeRemoteNotConfigured:   http.StatusNotImplemented,
	ErrCodeInternal:              http.StatusInternalServerError,
	ErrCodeMethodNotAllowed:      http.StatusMethodNotAllowed,
	ErrCodeNotFound:              http.StatusNotFound,
}

func httpStatusForCode(code ErrorCode) int {
	if status, ok := errorHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
