// Package besttime resolves a swimmer's best competition time for a style and
// decides whether a new time improves on it.
package besttime

import (
	"strconv"

	"github.com/okian/swimstats/internal/domain/model"
)

// Resolve returns the minimal duration among the owner's results for style.
// A non-empty excludeID drops that result, so a freshly entered time can be
// compared against the previous best instead of itself.
func Resolve(ownerID, styleID string, candidates []model.CompetitionResult, excludeID string) (float64, bool) {
	r, ok := ResolveResult(ownerID, styleID, candidates, excludeID)
	if !ok {
		return 0, false
	}
	return r.Duration, true
}

// ResolveResult is Resolve returning the winning record. Equal durations
// resolve to the lowest id.
func ResolveResult(ownerID, styleID string, candidates []model.CompetitionResult, excludeID string) (model.CompetitionResult, bool) {
	var (
		best  model.CompetitionResult
		found bool
	)
	for _, c := range candidates {
		if c.OwnerID != ownerID || c.StyleID != styleID {
			continue
		}
		if excludeID != "" && c.ID == excludeID {
			continue
		}
		if !found || c.Duration < best.Duration || (c.Duration == best.Duration && LessID(c.ID, best.ID)) {
			best, found = c, true
		}
	}
	return best, found
}

// IsImprovement reports whether next beats previous. Any time improves on no
// time at all; equal times do not count.
func IsImprovement(next float64, previous *float64) bool {
	return previous == nil || next < *previous
}

// LessID orders result ids numerically when both parse as integers and
// lexicographically otherwise.
func LessID(a, b string) bool {
	ai, aerr := strconv.ParseInt(a, 10, 64)
	bi, berr := strconv.ParseInt(b, 10, 64)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}
