package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/modelmill/modelmill/pkg/utils"
)

// ErrorMessage is the error payload every Modelmill service responds with.
type ErrorMessage struct {
	Message        string   `json:"message"`
	Details        []string `json:"details,omitempty"`
	ErrorCode      int      `json:"errorCode,omitempty"`
	HTTPStatusCode int      `json:"httpStatusCode,omitempty"`
	Cause          error    `json:"-"`
}

func (em *ErrorMessage) UnmarshalJSON(bytes []byte) error {
	f := new(struct {
		Message        *string  `json:"message"`
		Details        []string `json:"details,omitempty"`
		ErrorCode      *int     `json:"errorCode,omitempty"`
		HTTPStatusCode *int     `json:"httpStatusCode,omitempty"`
	})
	if err := json.Unmarshal(bytes, f); err != nil {
		return err
	}

	if f.Message == nil {
		return fmt.Errorf(`required field missing: "message"`)
	}
	em.Message = *f.Message
	em.Details = f.Details
	em.ErrorCode = utils.ZeroUnless(f.ErrorCode)
	em.HTTPStatusCode = utils.ZeroUnless(f.HTTPStatusCode)

	return nil
}

func (e ErrorMessage) String() string {
	lines := []string{e.Message}
	lines = append(lines, e.Details...)
	if e.Cause != nil {
		lines = append(lines, fmt.Sprint(" caused by:", e.Cause.Error()))
	}
	return strings.Join(lines, "\n")
}

func (e ErrorMessage) Error() string {
	return e.String()
}

func (e ErrorMessage) Unwrap() error {
	return e.Cause
}

type ErrorMessageOption func(in *ErrorMessage) *ErrorMessage

func WithDetail(detail string) ErrorMessageOption {
	return func(in *ErrorMessage) *ErrorMessage {
		if detail != "" {
			in.Details = append(in.Details, detail)
		}
		return in
	}
}

func WithError(err error) ErrorMessageOption {
	return func(in *ErrorMessage) *ErrorMessage {
		if err != nil {
			in.Cause = err
		}
		return in
	}
}

func WithErrorCode(code int) ErrorMessageOption {
	return func(in *ErrorMessage) *ErrorMessage {
		in.ErrorCode = code
		return in
	}
}

// NewErrorMessage builds an echo HTTP error carrying an ErrorMessage payload.
func NewErrorMessage(code int, message string, opts ...ErrorMessageOption) *echo.HTTPError {
	msg := ErrorMessage{Message: message, HTTPStatusCode: code}
	for _, opt := range opts {
		msg = *opt(&msg)
	}

	return echo.NewHTTPError(code, msg).SetInternal(msg)
}

func BadRequest(detail string, err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusBadRequest,
		"bad request",
		WithDetail(detail),
		WithError(err),
	)
}

func Unauthorized(detail string) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusUnauthorized,
		"authentication required",
		WithDetail(detail),
	)
}

func Forbidden(detail string) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusForbidden,
		"forbidden",
		WithDetail(detail),
	)
}

func NotFound() *echo.HTTPError {
	return NewErrorMessage(http.StatusNotFound, "not found")
}

func Conflict(message string, options ...ErrorMessageOption) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusConflict,
		message,
		options...,
	)
}

func ServiceUnavailable(detail string, err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusServiceUnavailable,
		"service unavailable",
		WithDetail(detail),
		WithError(err),
	)
}

func InternalServerError(err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusInternalServerError,
		"unexpected error",
		WithError(err),
	)
}
