// Package splits validates intermediate split markers and attaches them to a
// competition result.
package splits

import (
	"math"

	"github.com/okian/swimstats/internal/domain/model"
)

// Attach returns a copy of result carrying markers in place of any previous
// splits. Markers must be strictly increasing by distance in the order given,
// positive, within the race distance when it is known, and carry a
// non-negative duration. On error result is returned unchanged.
func Attach(result model.CompetitionResult, markers []model.SplitMarker) (model.CompetitionResult, error) {
	if err := Validate(result.Distance, markers); err != nil {
		return result, err
	}
	out := result
	out.Splits = nil
	if len(markers) > 0 {
		out.Splits = make([]model.SplitMarker, len(markers))
		copy(out.Splits, markers)
	}
	return out, nil
}

// Validate checks markers against a race of raceDistance metres; zero means
// the race distance is unknown.
func Validate(raceDistance int, markers []model.SplitMarker) error {
	for i, m := range markers {
		if m.Distance <= 0 {
			return &RangeError{Index: i, Marker: m.Distance, Reason: "distance must be positive"}
		}
		if raceDistance > 0 && m.Distance > raceDistance {
			return &RangeError{Index: i, Marker: m.Distance, Reason: "beyond race distance"}
		}
		if math.IsNaN(m.Duration) || math.IsInf(m.Duration, 0) || m.Duration < 0 {
			return &RangeError{Index: i, Marker: m.Distance, Reason: "duration must be a non-negative number"}
		}
		if i > 0 && m.Distance <= markers[i-1].Distance {
			return &OrderingError{Index: i, Distance: m.Distance, Previous: markers[i-1].Distance}
		}
	}
	return nil
}
