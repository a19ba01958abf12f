package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies ingestion failures.
type ErrorCode string

const (
	CodeDuplicate         ErrorCode = "duplicate"
	CodeMalformed         ErrorCode = "malformed"
	CodePartialEnrichment ErrorCode = "partial_enrichment"
	CodeConflict          ErrorCode = "conflict"
	CodeUnexpected        ErrorCode = "unexpected"
)

// Error is the canonical ingestion error wrapper.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap annotates an existing error with a code.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

// Malformed is shorthand for a CodeMalformed error without a cause.
func Malformed(op, format string, args ...any) error {
	return NewError(CodeMalformed, op, fmt.Sprintf(format, args...), nil)
}

// IsCode checks whether err (or a wrapped err) carries code.
func IsCode(err error, code ErrorCode) bool {
	var ingErr *Error
	if !errors.As(err, &ingErr) {
		return false
	}
	return ingErr.Code == code
}

// CodeOf extracts the code when available.
func CodeOf(err error) ErrorCode {
	var ingErr *Error
	if !errors.As(err, &ingErr) {
		return ""
	}
	return ingErr.Code
}
