package book

import (
	"errors"
	"fmt"

	"lobstat/pkg/contracts/domain"
)

var (
	// ErrDuplicateOrder is returned when an insert reuses a live order id.
	ErrDuplicateOrder = errors.New("duplicate order id")
	// ErrUnknownOrder is returned when an event references an order that is
	// not in the index.
	ErrUnknownOrder = errors.New("unknown order id")
	// ErrUnknownEvent is returned for events with an unrecognized kind.
	ErrUnknownEvent = errors.New("unknown event kind")
	// ErrEmptyStream is returned when no grid can be derived from a stream.
	ErrEmptyStream = errors.New("empty event stream")
	// ErrInvalidGrid is returned for grids with a non-positive step or
	// inverted bounds.
	ErrInvalidGrid = errors.New("invalid price grid")
	// ErrUnresolvedSigns is returned by ClassifyTicks when leading trades
	// cannot be signed because the price never changes.
	ErrUnresolvedSigns = errors.New("trade signs unresolved: no price change in day")
)

// EventError reports the event that made a reconstruction fail. Failures of
// this kind are fatal for the day.
type EventError struct {
	Index   int
	OrderID uint64
	Kind    domain.EventKind
	Cause   error
}

// Error implements the error interface
func (e *EventError) Error() string {
	return fmt.Sprintf("event %d (%s, order %d): %v", e.Index, e.Kind, e.OrderID, e.Cause)
}

// Unwrap returns the underlying cause
func (e *EventError) Unwrap() error {
	return e.Cause
}
