package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound       = "NOT_FOUND"
	CodeValidation     = "VALIDATION_ERROR"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeConflict       = "CONFLICT"
	CodeInternal       = "INTERNAL_ERROR"
	CodeTimeout        = "TIMEOUT"
	CodeUnavailable    = "SERVICE_UNAVAILABLE"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeExpired        = "EXPIRED"
	CodePartialFailure = "PARTIAL_FAILURE"
)

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}

func (e *AppError) ToJSON() []byte {
	data, _ := json.Marshal(ErrorResponse{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
	return data
}

type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func NotFoundWithID(resource, id string) *AppError {
	return NotFound(resource).WithDetails(map[string]any{
		"resource": resource,
		"id":       id,
	})
}

func Validation(message string, details map[string]any) *AppError {
	return New(CodeValidation, message, http.StatusUnprocessableEntity).WithDetails(details)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message, http.StatusBadRequest)
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message, http.StatusUnauthorized)
}

func Forbidden(message string) *AppError {
	return New(CodeForbidden, message, http.StatusForbidden)
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}

func Internal(message string, err error) *AppError {
	return Wrap(err, CodeInternal, message, http.StatusInternalServerError)
}

func Timeout(message string) *AppError {
	return New(CodeTimeout, message, http.StatusGatewayTimeout)
}

func Unavailable(service string) *AppError {
	return New(CodeUnavailable, fmt.Sprintf("%s is temporarily unavailable", service), http.StatusServiceUnavailable)
}

// Gone marks a resource that existed but is past its retention window,
// such as an uploaded file older than the expiry window.
func Gone(message string) *AppError {
	return New(CodeExpired, message, http.StatusGone)
}

// PartialFailure reports a batch where some items failed and the rest were kept.
func PartialFailure(succeeded, failed int, failures map[string]string) *AppError {
	return New(CodePartialFailure, fmt.Sprintf("%d succeeded, %d failed", succeeded, failed), http.StatusMultiStatus).
		WithDetails(map[string]any{
			"succeeded": succeeded,
			"failed":    failed,
			"failures":  failures,
		})
}

func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}
