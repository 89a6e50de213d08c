package model

// SplitMarker is an intermediate time at Distance metres into a race.
type SplitMarker struct {
	Distance int     `json:"distance" yaml:"distance"`
	Duration float64 `json:"duration" yaml:"duration"`
}

// CompetitionResult is one swimmer's time in one event. Distance is the race
// distance in metres, zero when unknown. At most one result exists per
// (OwnerID, StyleID, EventID).
type CompetitionResult struct {
	ID       string        `json:"id"`
	OwnerID  string        `json:"owner_id"`
	StyleID  string        `json:"style_id"`
	EventID  string        `json:"event_id"`
	Distance int           `json:"distance,omitempty"`
	Duration float64       `json:"duration"`
	Splits   []SplitMarker `json:"splits,omitempty"`
}

// ResultKey is the natural key of a competition result.
type ResultKey struct {
	OwnerID string
	StyleID string
	EventID string
}

// Key returns the result's natural key.
func (r CompetitionResult) Key() ResultKey {
	return ResultKey{OwnerID: r.OwnerID, StyleID: r.StyleID, EventID: r.EventID}
}

// Submission carries a result and the raw split markers entered with it.
// Seq is the position the pipeline assigned on enqueue.
type Submission struct {
	Result CompetitionResult
	Splits []SplitMarker
	Seq    uint64
}
