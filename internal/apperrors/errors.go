// Package apperrors holds the user-facing failure taxonomy of the dashboard.
// Every failure a user can trigger maps to exactly one Kind; none is retried
// automatically and all are recoverable by re-triggering the action.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	// KindAcquisition covers network, auth and rate-limit failures reaching Reddit.
	KindAcquisition Kind = "acquisition"
	// KindValidation covers malformed uploads and filter input.
	KindValidation Kind = "validation"
	// KindLabeling is never surfaced as a failure; the post degrades to Neutral.
	KindLabeling Kind = "labeling"
	// KindExport covers serialization failures of a view.
	KindExport Kind = "export"
)

type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Op, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Acquisition(op, message string, err error) *Error {
	return &Error{Kind: KindAcquisition, Op: op, Message: message, Err: err}
}

func Validation(op, message string, err error) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message, Err: err}
}

func Labeling(op, message string, err error) *Error {
	return &Error{Kind: KindLabeling, Op: op, Message: message, Err: err}
}

func Export(op, message string, err error) *Error {
	return &Error{Kind: KindExport, Op: op, Message: message, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// UserMessage renders err for display on the dashboard.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *Error
	if !errors.As(err, &appErr) {
		return "Something went wrong: " + err.Error()
	}
	switch appErr.Kind {
	case KindAcquisition:
		return appErr.Message + ". Please try again in a moment."
	case KindValidation:
		return appErr.Message
	case KindExport:
		return "Export failed: " + appErr.Message
	default:
		return appErr.Message
	}
}

// HTTPStatus maps err onto the status code the dashboard answers with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAcquisition:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
