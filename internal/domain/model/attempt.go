// Package model contains the value objects shared by the analytics packages.
package model

import (
	"fmt"
	"math"
)

// AttemptKey identifies one rep of one set for one swimmer within a session.
type AttemptKey struct {
	OwnerID   string
	SetNumber int
	RepNumber int
}

func (k AttemptKey) String() string {
	return fmt.Sprintf("%s/%d/%d", k.OwnerID, k.SetNumber, k.RepNumber)
}

// less orders keys by owner, then set, then rep.
func (k AttemptKey) less(o AttemptKey) bool {
	if k.OwnerID != o.OwnerID {
		return k.OwnerID < o.OwnerID
	}
	if k.SetNumber != o.SetNumber {
		return k.SetNumber < o.SetNumber
	}
	return k.RepNumber < o.RepNumber
}

// TimedAttempt is one timed repetition. Duration is in seconds.
type TimedAttempt struct {
	OwnerID   string  `json:"owner_id"`
	SetNumber int     `json:"set_number"`
	RepNumber int     `json:"rep_number"`
	Duration  float64 `json:"duration"`
}

// Key returns the attempt's identity.
func (a TimedAttempt) Key() AttemptKey {
	return AttemptKey{OwnerID: a.OwnerID, SetNumber: a.SetNumber, RepNumber: a.RepNumber}
}

// Validate checks the attempt's own invariants.
func (a TimedAttempt) Validate() error {
	switch {
	case a.OwnerID == "":
		return fmt.Errorf("%w: owner id is required", ErrInvalidAttempt)
	case a.SetNumber < 1:
		return fmt.Errorf("%w: set number %d must be positive", ErrInvalidAttempt, a.SetNumber)
	case a.RepNumber < 1:
		return fmt.Errorf("%w: rep number %d must be positive", ErrInvalidAttempt, a.RepNumber)
	case math.IsNaN(a.Duration) || math.IsInf(a.Duration, 0) || a.Duration < 0:
		return fmt.Errorf("%w: duration %v must be a non-negative number", ErrInvalidAttempt, a.Duration)
	}
	return nil
}
