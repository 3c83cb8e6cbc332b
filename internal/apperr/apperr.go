package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code doubles as the http status written for the error.
type Code int

const (
	BadRequestCode      Code = http.StatusBadRequest
	UnauthenticatedCode Code = http.StatusUnauthorized
	UnauthorizedCode    Code = http.StatusForbidden
	NotFoundCode        Code = http.StatusNotFound
	ConflictCode        Code = http.StatusConflict
	TooManyRequestsCode Code = http.StatusTooManyRequests
	InternalErrorCode   Code = http.StatusInternalServerError
	BadGatewayCode      Code = http.StatusBadGateway
)

var ErrStrMap = map[Code]string{
	BadRequestCode:      "bad request",
	UnauthenticatedCode: "unauthenticated",
	UnauthorizedCode:    "unauthorized",
	NotFoundCode:        "not found",
	ConflictCode:        "conflict",
	TooManyRequestsCode: "too many requests",
	InternalErrorCode:   "internal server error",
	BadGatewayCode:      "bad gateway",
}

// Error carries a Code and a message safe to show to clients.
// ProviderResponse holds the raw gateway body when a payment provider refused a request.
type Error struct {
	Code             Code
	Message          string
	ProviderResponse any
	Err              error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by Code, so errors.Is(err, apperr.ErrNotFound) works for any not found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Code == e.Code
}

func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// code-only sentinels for errors.Is
var (
	ErrBadRequest      = &Error{Code: BadRequestCode}
	ErrUnauthenticated = &Error{Code: UnauthenticatedCode}
	ErrNotFound        = &Error{Code: NotFoundCode}
	ErrConflict        = &Error{Code: ConflictCode}
	ErrBadGateway      = &Error{Code: BadGatewayCode}
)

// CodeOf returns the Code of the first *Error in the chain, InternalErrorCode otherwise.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return InternalErrorCode
}

// MessageOf returns the client facing message, hiding internal errors.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Message != "" {
			return e.Message
		}
		return ErrStrMap[e.Code]
	}
	return ErrStrMap[InternalErrorCode]
}
