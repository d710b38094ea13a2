// Package apperr is the error model shared by all feature packages.
// Every service returns *APIError for expected failures; handlers map the
// code to an HTTP status with ToHTTPStatus.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidArgument  Code = "INVALID_ARGUMENT"
	CodeNotFound         Code = "NOT_FOUND"
	CodeDuplicateRequest Code = "DUPLICATE_REQUEST"
	CodeNoAvailableCopy  Code = "NO_AVAILABLE_COPY"
	CodeCopyUnavailable  Code = "COPY_UNAVAILABLE"
	CodeInvalidState     Code = "INVALID_STATE"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeInternal         Code = "INTERNAL"
)

type APIError struct {
	Code    Code
	Message string
}

func (e *APIError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func ErrInvalid(msg string) *APIError          { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError         { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrDuplicateRequest(msg string) *APIError { return &APIError{Code: CodeDuplicateRequest, Message: msg} }
func ErrNoAvailableCopy(msg string) *APIError  { return &APIError{Code: CodeNoAvailableCopy, Message: msg} }
func ErrCopyUnavailable(msg string) *APIError  { return &APIError{Code: CodeCopyUnavailable, Message: msg} }
func ErrInvalidState(msg string) *APIError     { return &APIError{Code: CodeInvalidState, Message: msg} }
func ErrUnauthorized(msg string) *APIError     { return &APIError{Code: CodeUnauthorized, Message: msg} }
func ErrInternal(msg string) *APIError         { return &APIError{Code: CodeInternal, Message: msg} }

// CodeOf returns the APIError code, or CodeInternal for unknown errors.
func CodeOf(err error) Code {
	var api *APIError
	if errors.As(err, &api) {
		return api.Code
	}
	return CodeInternal
}

func ToHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return http.StatusBadRequest
		case CodeNotFound:
			return http.StatusNotFound
		case CodeDuplicateRequest, CodeNoAvailableCopy, CodeCopyUnavailable, CodeInvalidState:
			return http.StatusConflict
		case CodeUnauthorized:
			return http.StatusForbidden
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

// ===== HTTP envelope =====

type ErrorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func Body(code Code, msg string) ErrorDTO {
	var e ErrorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

func FromErr(err error) ErrorDTO {
	var api *APIError
	if errors.As(err, &api) {
		return Body(api.Code, api.Message)
	}
	return Body(CodeInternal, err.Error())
}
