// Package repository holds the in-memory result log and the per-style
// ranking index fed by the result pipeline.
package repository

import (
	"context"

	"github.com/okian/swimstats/internal/domain/model"
)

// Entry is one leaderboard row: a swimmer's best result in a style.
type Entry struct {
	Rank     int     `json:"rank"`
	OwnerID  string  `json:"owner_id"`
	StyleID  string  `json:"style_id"`
	Duration float64 `json:"duration"`
	ResultID string  `json:"result_id"`
	EventID  string  `json:"event_id"`
}

// Ranking orders swimmers per style by ascending best time. Equal times share
// a rank and are listed by owner id.
type Ranking interface {
	// Put sets best as the owner's ranked result for its style, replacing any
	// earlier entry.
	Put(ctx context.Context, best model.CompetitionResult) error
	// Remove drops the owner from the style. Unknown owners are ignored.
	Remove(ctx context.Context, styleID, ownerID string)

	// Rank returns the owner's row. Returns ErrNotFound if the owner is not ranked.
	Rank(ctx context.Context, styleID, ownerID string) (Entry, error)
	// TopN returns the fastest n rows of the style.
	TopN(ctx context.Context, styleID string, n int) ([]Entry, error)
	// Count returns the number of ranked swimmers in the style.
	Count(ctx context.Context, styleID string) int
	// Styles lists the styles that have at least one ranked swimmer.
	Styles(ctx context.Context) []string
}
