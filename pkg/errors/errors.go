package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound             = NewError("NOT_FOUND", "resource not found", http.StatusNotFound)
	ErrValidation           = NewError("VALIDATION_ERROR", "validation failed", http.StatusBadRequest)
	ErrInternal             = NewError("INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
	ErrConflict             = NewError("CONFLICT", "resource conflict", http.StatusConflict)
	ErrRuleFetch            = NewError("RULE_FETCH_FAILED", "failed to fetch data privacy rules", http.StatusBadRequest)
	ErrOrganizationResolve  = NewError("ORG_RESOLVE_FAILED", "failed to resolve organization", http.StatusBadRequest)
	ErrPublish              = NewError("PUBLISH_FAILED", "failed to publish message", http.StatusInternalServerError)
	ErrTransportUnavailable = NewError("TRANSPORT_UNAVAILABLE", "message broker unavailable", http.StatusServiceUnavailable)
	ErrPersistence          = NewError("PERSISTENCE_FAILED", "persistence operation failed", http.StatusInternalServerError)
)

type Error struct {
	Code    string
	Message string
	Status  int
	Details map[string]interface{}
	Cause   error
}

func NewError(code, message string, status int) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Status:  status,
		Details: make(map[string]interface{}),
	}
}

func (e *Error) Error() string {
	msg := e.Message

	if len(e.Details) > 0 {
		if detailMsg, ok := e.Details["message"].(string); ok && detailMsg != "" {
			msg = detailMsg
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) WithCause(cause error) *Error {
	err := *e
	err.Cause = cause
	return &err
}

// WithDetail returns a copy carrying the extra detail. The details map is
// copied as well: the receiver is usually a shared package-level sentinel, and
// writing into its map would leak one request's details into every later use.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	err := *e
	err.Details = make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		err.Details[k] = v
	}
	err.Details[key] = value
	return &err
}

func Wrap(err error, appErr *Error) *Error {
	if err == nil {
		return nil
	}
	return appErr.WithCause(err)
}

func Is(err error, target *Error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == target.Code
	}
	return false
}

func IsNotFound(err error) bool {
	return Is(err, ErrNotFound)
}

func IsValidation(err error) bool {
	return Is(err, ErrValidation)
}

func IsTransportUnavailable(err error) bool {
	return Is(err, ErrTransportUnavailable)
}

func ToHTTPStatus(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

func ToErrorResponse(err error) map[string]interface{} {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = ErrInternal.WithCause(err)
	}

	response := map[string]interface{}{
		"error":      appErr.Message,
		"error_code": appErr.Code,
	}

	if len(appErr.Details) > 0 {
		response["details"] = appErr.Details
	}

	return response
}
