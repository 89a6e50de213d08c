package stats

import (
	"math"

	"github.com/okian/swimstats/internal/domain/model"
	"github.com/okian/swimstats/internal/domain/timecodec"
)

// Option configures an Engine.
type Option func(*Engine)

// WithOnTargetTolerance sets the on-target window in seconds. Non-positive or
// non-finite values are ignored.
func WithOnTargetTolerance(seconds float64) Option {
	return func(e *Engine) {
		if seconds > 0 && !math.IsInf(seconds, 0) {
			e.tolerance = seconds
		}
	}
}

// Engine builds session reports.
type Engine struct {
	tolerance float64
}

// New returns an Engine with the default tolerance unless overridden.
func New(opts ...Option) *Engine {
	e := &Engine{tolerance: DefaultOnTargetTolerance}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tolerance returns the on-target window in seconds.
func (e *Engine) Tolerance() float64 {
	return e.tolerance
}

// Pace partitions durations against target with the engine's tolerance.
func (e *Engine) Pace(durations []float64, target float64) *Pace {
	return paceAnalysis(durations, target, e.tolerance)
}

// Display holds the headline figures rendered through the time codec.
type Display struct {
	Best             string `json:"best"`
	Worst            string `json:"worst"`
	Average          string `json:"average"`
	AverageDeviation string `json:"average_deviation,omitempty"`
}

// SetReport summarises one set.
type SetReport struct {
	SetNumber int     `json:"set_number"`
	Summary   Summary `json:"summary"`
}

// OwnerReport collects one swimmer's figures for a session.
type OwnerReport struct {
	OwnerID string      `json:"owner_id"`
	Summary Summary     `json:"summary"`
	Pace    *Pace       `json:"pace_analysis,omitempty"`
	Trend   *Trend      `json:"trend_analysis,omitempty"`
	Sets    []SetReport `json:"sets"`
	Display Display     `json:"display"`
}

// SessionReport is the analysis of a whole training session.
type SessionReport struct {
	SessionID string        `json:"session_id"`
	Circle    float64       `json:"circle,omitempty"`
	Owners    []OwnerReport `json:"owners"`
}

// AnalyzeSession reports every swimmer in s, ordered by owner id. The session
// must not be modified while it is analysed.
func (e *Engine) AnalyzeSession(s *model.TrainingSession) SessionReport {
	report := SessionReport{SessionID: s.ID, Circle: s.Circle}
	for _, owner := range s.Owners() {
		report.Owners = append(report.Owners, e.analyzeOwner(s, owner))
	}
	return report
}

func (e *Engine) analyzeOwner(s *model.TrainingSession, owner string) OwnerReport {
	durations := s.Durations(owner)
	groups := s.DurationsBySet(owner)

	r := OwnerReport{
		OwnerID: owner,
		Summary: Summarize(durations),
		Pace:    e.Pace(durations, s.Circle),
		Sets:    make([]SetReport, 0, len(groups)),
	}
	sets := make([][]float64, 0, len(groups))
	for _, g := range groups {
		sets = append(sets, g.Durations)
		r.Sets = append(r.Sets, SetReport{SetNumber: g.SetNumber, Summary: Summarize(g.Durations)})
	}
	r.Trend = TrendAnalysis(sets)

	r.Display = Display{
		Best:    timecodec.FormatOptional(r.Summary.Best),
		Worst:   timecodec.FormatOptional(r.Summary.Worst),
		Average: timecodec.FormatOptional(average(r.Summary)),
	}
	if r.Pace != nil {
		r.Display.AverageDeviation = timecodec.Format(r.Pace.AverageDeviation)
	}
	return r
}

func average(s Summary) *float64 {
	if s.Count == 0 {
		return nil
	}
	return &s.Average
}
