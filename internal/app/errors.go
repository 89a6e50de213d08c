package service

import "errors"

// Sentinel errors returned by the service.
var (
	ErrNotStarted = errors.New("service not started")
	ErrInvalidN   = errors.New("leaderboard size must be positive")
)
