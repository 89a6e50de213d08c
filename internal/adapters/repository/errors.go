package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidLimit  = errors.New("invalid leaderboard limit")
	ErrInvalidResult = errors.New("invalid competition result")
	ErrConflict      = errors.New("result id already used for another event")
)
