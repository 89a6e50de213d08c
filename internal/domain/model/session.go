package model

import (
	"fmt"
	"math"
	"sort"
)

// TrainingSession groups the timed attempts of one practice. Circle is the
// target interval per rep in seconds; zero means no pacing target. Sets and
// RepsPerSet describe the cadence; zero leaves that dimension unbounded.
//
// Attempts are kept in (owner, set, rep) order as they are added. A session is
// built with Add and then only read; readers may run concurrently.
type TrainingSession struct {
	ID         string
	Circle     float64
	Sets       int
	RepsPerSet int

	attempts []TimedAttempt
}

// NewTrainingSession validates the session header and returns an empty session.
func NewTrainingSession(id string, circle float64, sets, repsPerSet int) (*TrainingSession, error) {
	if math.IsNaN(circle) || math.IsInf(circle, 0) || circle < 0 {
		return nil, fmt.Errorf("%w: circle %v must be non-negative", ErrInvalidSession, circle)
	}
	if sets < 0 || repsPerSet < 0 {
		return nil, fmt.Errorf("%w: cadence %dx%d must not be negative", ErrInvalidSession, sets, repsPerSet)
	}
	return &TrainingSession{
		ID:         id,
		Circle:     circle,
		Sets:       sets,
		RepsPerSet: repsPerSet,
	}, nil
}

// HasTarget reports whether the session carries a pacing target.
func (s *TrainingSession) HasTarget() bool {
	return s.Circle > 0
}

// Add appends an attempt. A second attempt for the same key fails with
// ErrDuplicateAttempt and leaves the first in place.
func (s *TrainingSession) Add(a TimedAttempt) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if s.Sets > 0 && a.SetNumber > s.Sets {
		return fmt.Errorf("%w: set %d of %d", ErrOutsideCadence, a.SetNumber, s.Sets)
	}
	if s.RepsPerSet > 0 && a.RepNumber > s.RepsPerSet {
		return fmt.Errorf("%w: rep %d of %d", ErrOutsideCadence, a.RepNumber, s.RepsPerSet)
	}
	key := a.Key()
	i := s.search(key)
	if i < len(s.attempts) && s.attempts[i].Key() == key {
		return fmt.Errorf("%w: %s", ErrDuplicateAttempt, key)
	}
	s.attempts = append(s.attempts, TimedAttempt{})
	copy(s.attempts[i+1:], s.attempts[i:])
	s.attempts[i] = a
	return nil
}

// search returns the position of the first attempt not ordered before key.
func (s *TrainingSession) search(key AttemptKey) int {
	return sort.Search(len(s.attempts), func(i int) bool {
		return !s.attempts[i].Key().less(key)
	})
}

// Len returns the number of attempts.
func (s *TrainingSession) Len() int {
	return len(s.attempts)
}

// Get returns the attempt stored under key.
func (s *TrainingSession) Get(key AttemptKey) (TimedAttempt, bool) {
	i := s.search(key)
	if i < len(s.attempts) && s.attempts[i].Key() == key {
		return s.attempts[i], true
	}
	return TimedAttempt{}, false
}

// Attempts returns a copy of all attempts ordered by owner, set and rep.
func (s *TrainingSession) Attempts() []TimedAttempt {
	out := make([]TimedAttempt, len(s.attempts))
	copy(out, s.attempts)
	return out
}

// Owners returns the distinct owner ids in ascending order.
func (s *TrainingSession) Owners() []string {
	var owners []string
	for _, a := range s.attempts {
		if n := len(owners); n == 0 || owners[n-1] != a.OwnerID {
			owners = append(owners, a.OwnerID)
		}
	}
	return owners
}

// ByOwner returns the owner's attempts in set then rep order.
func (s *TrainingSession) ByOwner(ownerID string) []TimedAttempt {
	var out []TimedAttempt
	for _, a := range s.attempts {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out
}

// Durations returns the owner's durations in set then rep order.
func (s *TrainingSession) Durations(ownerID string) []float64 {
	attempts := s.ByOwner(ownerID)
	out := make([]float64, len(attempts))
	for i, a := range attempts {
		out[i] = a.Duration
	}
	return out
}

// SetGroup holds the durations of one set in rep order.
type SetGroup struct {
	SetNumber int
	Durations []float64
}

// DurationsBySet groups the owner's durations by set, in set order.
func (s *TrainingSession) DurationsBySet(ownerID string) []SetGroup {
	var groups []SetGroup
	for _, a := range s.ByOwner(ownerID) {
		n := len(groups)
		if n == 0 || groups[n-1].SetNumber != a.SetNumber {
			groups = append(groups, SetGroup{SetNumber: a.SetNumber})
			n++
		}
		groups[n-1].Durations = append(groups[n-1].Durations, a.Duration)
	}
	return groups
}
