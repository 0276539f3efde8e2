package router

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flowboard/flowboard/engine/core"
)

// Error codes carried in error responses.
const (
	ErrInternalCode   = "INTERNAL_ERROR"
	ErrBadRequestCode = "BAD_REQUEST"
	ErrNotFoundCode   = "NOT_FOUND"
	ErrConflictCode   = "CONFLICT"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Data    any        `json:"data,omitempty"`
	Message string     `json:"message,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// RequestError carries an HTTP status alongside the cause.
type RequestError struct {
	StatusCode int
	Reason     string
	Err        error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func NewRequestError(statusCode int, reason string, err error) *RequestError {
	return &RequestError{StatusCode: statusCode, Reason: reason, Err: err}
}

func (e *RequestError) errorInfo() *ErrorInfo {
	code := ErrInternalCode
	switch e.StatusCode {
	case http.StatusBadRequest:
		code = ErrBadRequestCode
	case http.StatusNotFound:
		code = ErrNotFoundCode
	case http.StatusConflict:
		code = ErrConflictCode
	}
	info := &ErrorInfo{Code: code, Message: e.Reason}
	if e.Err != nil {
		info.Details = e.Err.Error()
	}
	return info
}

func RespondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Response{Data: data, Message: message})
}

func RespondCreated(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Response{Data: data, Message: message})
}

func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// RespondWithError writes the standardized error envelope. Plain errors are
// treated as internal failures. A core.Error anywhere in the chain supplies
// the machine-readable code and details; the HTTP status still comes from
// the RequestError.
func RespondWithError(c *gin.Context, err error) {
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		reqErr = NewRequestError(http.StatusInternalServerError, "internal server error", err)
	}
	info := reqErr.errorInfo()
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		info.Code = coreErr.Code
		if len(coreErr.Details) > 0 {
			info.Details = coreErr.Details
		}
	}
	c.JSON(reqErr.StatusCode, Response{Error: info})
}

// ParseIDParam reads a path parameter as a core.ID, responding 400 on failure.
// The bool result reports whether the handler should continue.
func ParseIDParam(c *gin.Context, param string) (core.ID, bool) {
	id, err := core.ParseID(c.Param(param))
	if err != nil {
		RespondWithError(c, NewRequestError(
			http.StatusBadRequest, fmt.Sprintf("invalid %s", param), err))
		return "", false
	}
	return id, true
}
