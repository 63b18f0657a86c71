package errors

import "fmt"

type ErrorCode string

const (
	// Generic codes
	ErrInternalServer     ErrorCode = "internal_server_error"
	ErrInvalidInput       ErrorCode = "invalid_input"
	ErrInvalidRequestData ErrorCode = "invalid_request_data"
	ErrNotFound           ErrorCode = "not_found"
	ErrAlreadyExists      ErrorCode = "already_exists"
	ErrForbidden          ErrorCode = "forbidden"
	ErrUnauthorized       ErrorCode = "unauthorized"

	// Token codes
	ErrTokenExpired               ErrorCode = "token_expired"
	ErrInvalidTokenFormat         ErrorCode = "invalid_token_format"
	ErrMissingAuthorizationHeader ErrorCode = "missing_authorization_header"

	// Scheduling domain codes
	ErrInvalidRange     ErrorCode = "invalid_range"
	ErrInvalidSlot      ErrorCode = "invalid_slot"
	ErrSlotMismatch     ErrorCode = "slot_mismatch"
	ErrEmptySubmission  ErrorCode = "empty_submission"
	ErrAlreadyFinalized ErrorCode = "already_finalized"
	ErrEventClosed      ErrorCode = "event_closed"
)

// AppError carries an application error code alongside the message and an
// optional wrapped cause.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Is reports whether err is an *AppError with the given code.
func Is(err error, code ErrorCode) bool {
	ae, ok := err.(*AppError)
	return ok && ae.Code == code
}
