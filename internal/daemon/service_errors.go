package daemon

import (
	"fmt"
	"net/http"
)

// ErrorCode is the machine-readable reason sent next to the message in every
// error response, e.g. {"error":"chat not found","code":"chat_not_found"}.
type ErrorCode string

const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeChatNotFound     ErrorCode = "chat_not_found"
	CodeMethodNotAllowed ErrorCode = "method_not_allowed"
	CodeUnavailable      ErrorCode = "unavailable"
	CodeInternal         ErrorCode = "internal"
)

func (c ErrorCode) status() int {
	switch c {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeChatNotFound:
		return http.StatusNotFound
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ServiceError is a chat service failure. Message is safe to show to the
// caller; Err is the cause and only goes to the log.
type ServiceError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ServiceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func badRequest(message string, err error) *ServiceError {
	return &ServiceError{Code: CodeBadRequest, Message: message, Err: err}
}

func chatNotFound(err error) *ServiceError {
	return &ServiceError{Code: CodeChatNotFound, Message: "chat not found", Err: err}
}

func unavailable(message string, err error) *ServiceError {
	return &ServiceError{Code: CodeUnavailable, Message: message, Err: err}
}
