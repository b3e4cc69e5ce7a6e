package operations

import (
	"context"
	"errors"
	"fmt"

	"lobstat/internal/book"
	"lobstat/internal/feed"
	"lobstat/internal/normalize"
	"lobstat/internal/response"
)

// ErrorKind classifies unit failures
type ErrorKind string

const (
	// ErrorKindMissingInput means a required input file or artifact is absent.
	ErrorKindMissingInput ErrorKind = "missing_input"
	// ErrorKindMalformed means the input could not be parsed into usable data.
	ErrorKindMalformed ErrorKind = "malformed"
	// ErrorKindInconsistent means the data contradicts itself, such as an
	// event for an unknown order. Fatal for the unit.
	ErrorKindInconsistent ErrorKind = "inconsistent"
	// ErrorKindExecution covers everything else, including storage failures.
	ErrorKindExecution ErrorKind = "execution"
	// ErrorKindCancelled means the run was cancelled before the unit finished.
	ErrorKindCancelled ErrorKind = "cancelled"
)

// ErrMissingInput is wrapped by errors about absent inputs.
var ErrMissingInput = errors.New("input missing")

// UnitError is the failure of one unit
type UnitError struct {
	Kind    ErrorKind `json:"kind"`
	Unit    string    `json:"unit"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *UnitError) Error() string {
	if e == nil {
		return "unknown unit error"
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Kind, e.Unit, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Unit, e.Message)
}

// Unwrap returns the underlying error
func (e *UnitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewMissingInputError reports an absent input
func NewMissingInputError(unit, what string) *UnitError {
	return &UnitError{
		Kind:    ErrorKindMissingInput,
		Unit:    unit,
		Message: what + " not found",
		Cause:   ErrMissingInput,
	}
}

// WrapError classifies err and attaches the unit id. An existing UnitError
// keeps its kind.
func WrapError(err error, unit, message string) *UnitError {
	if err == nil {
		return nil
	}
	var uErr *UnitError
	if errors.As(err, &uErr) {
		if uErr.Unit == "" {
			uErr.Unit = unit
		}
		return uErr
	}
	return &UnitError{
		Kind:    Classify(err),
		Unit:    unit,
		Message: message,
		Cause:   err,
	}
}

// Classify maps an error from the lower layers onto an ErrorKind
func Classify(err error) ErrorKind {
	var uErr *UnitError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &uErr):
		return uErr.Kind
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorKindCancelled
	case errors.Is(err, ErrMissingInput):
		return ErrorKindMissingInput
	case errors.Is(err, normalize.ErrMalformedRecord),
		errors.Is(err, feed.ErrMissingColumn),
		errors.Is(err, book.ErrEmptyStream),
		errors.Is(err, book.ErrNoQuotes):
		return ErrorKindMalformed
	case errors.Is(err, book.ErrDuplicateOrder),
		errors.Is(err, book.ErrUnknownOrder),
		errors.Is(err, book.ErrUnknownEvent),
		errors.Is(err, book.ErrInvalidGrid),
		errors.Is(err, book.ErrUnresolvedSigns),
		errors.Is(err, response.ErrLengthMismatch):
		return ErrorKindInconsistent
	default:
		return ErrorKindExecution
	}
}

