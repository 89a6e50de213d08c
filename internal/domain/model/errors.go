package model

import "errors"

// Sentinel errors for building training sessions.
var (
	ErrDuplicateAttempt = errors.New("attempt already recorded for owner, set and rep")
	ErrInvalidAttempt   = errors.New("invalid attempt")
	ErrOutsideCadence   = errors.New("attempt outside session cadence")
	ErrInvalidSession   = errors.New("invalid training session")
)
