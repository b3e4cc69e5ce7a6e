package normalize

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord is wrapped by every rejection.
var ErrMalformedRecord = errors.New("malformed record")

// Reason classifies why a record was rejected.
type Reason string

const (
	ReasonUnknownType   Reason = "unknown_type"
	ReasonBadNumber     Reason = "bad_number"
	ReasonZeroPrice     Reason = "zero_price"
	ReasonZeroVolume    Reason = "zero_volume"
	ReasonCorruptQuote  Reason = "corrupted_quote"
	ReasonCrossedQuote  Reason = "crossed_quote"
	ReasonMissingFields Reason = "missing_fields"
	// ReasonOrphaned marks an execute, cancel or delete whose insert was
	// itself rejected.
	ReasonOrphaned Reason = "orphaned"
)

// RejectError describes a single rejected record.
type RejectError struct {
	Reason Reason
	Field  string
	Value  string
	Cause  error
}

// Error implements the error interface
func (e *RejectError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrMalformedRecord, e.Reason)
	if e.Field != "" {
		msg += fmt.Sprintf(" (%s=%q)", e.Field, e.Value)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *RejectError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrMalformedRecord, e.Cause}
	}
	return []error{ErrMalformedRecord}
}

func reject(reason Reason, field, value string) *RejectError {
	return &RejectError{Reason: reason, Field: field, Value: value}
}

// ReasonOf extracts the rejection reason from err, if any.
func ReasonOf(err error) (Reason, bool) {
	var re *RejectError
	if errors.As(err, &re) {
		return re.Reason, true
	}
	return "", false
}
