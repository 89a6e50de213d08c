package splits

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the typed errors below.
var (
	ErrOrdering = errors.New("split markers out of order")
	ErrRange    = errors.New("split marker out of range")
)

// OrderingError reports a marker whose distance does not exceed the one
// before it.
type OrderingError struct {
	Index    int
	Distance int
	Previous int
}

func (e *OrderingError) Error() string {
	if e.Distance == e.Previous {
		return fmt.Sprintf("split %d: duplicate distance %dm", e.Index, e.Distance)
	}
	return fmt.Sprintf("split %d: distance %dm after %dm", e.Index, e.Distance, e.Previous)
}

func (e *OrderingError) Is(target error) bool { return target == ErrOrdering }

// Kind is a short label for metrics.
func (e *OrderingError) Kind() string {
	if e.Distance == e.Previous {
		return "duplicate"
	}
	return "order"
}

// RangeError reports a marker outside the race.
type RangeError struct {
	Index  int
	Marker int
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("split %d at %dm: %s", e.Index, e.Marker, e.Reason)
}

func (e *RangeError) Is(target error) bool { return target == ErrRange }

// Kind is a short label for metrics.
func (e *RangeError) Kind() string { return "range" }
