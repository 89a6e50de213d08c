// Package stats aggregates swim durations into summaries, pace and trend
// figures. All functions are pure and safe for concurrent use.
package stats

import "math"

// DefaultOnTargetTolerance is the distance from the target, in seconds, within
// which an attempt counts as on target.
const DefaultOnTargetTolerance = 1.0

const perfectConsistency = 100.0

// Summary describes one ordered sequence of durations. Best and Worst are nil
// for an empty sequence.
type Summary struct {
	Count            int      `json:"count"`
	Best             *float64 `json:"best"`
	Worst            *float64 `json:"worst"`
	Average          float64  `json:"average"`
	Variance         float64  `json:"variance"`
	ConsistencyScore float64  `json:"consistency_score"`
	FatigueIndex     float64  `json:"fatigue_index"`
}

// Pace partitions attempts against a target interval.
type Pace struct {
	Target           float64 `json:"target"`
	Faster           int     `json:"faster"`
	OnTarget         int     `json:"on_target"`
	Slower           int     `json:"slower"`
	AverageDeviation float64 `json:"average_deviation"`
}

// Trend compares the first and last set averages.
type Trend struct {
	SetAverages      []float64 `json:"set_averages"`
	Improvement      bool      `json:"improvement"`
	TimeChange       float64   `json:"time_change"`
	PercentageChange float64   `json:"percentage_change"`
}

// Summarize computes every scalar statistic of durations.
func Summarize(durations []float64) Summary {
	s := Summary{
		Count:            len(durations),
		Average:          Average(durations),
		Variance:         Variance(durations),
		ConsistencyScore: ConsistencyScore(durations),
		FatigueIndex:     FatigueIndex(durations),
	}
	if best, ok := Best(durations); ok {
		s.Best = &best
	}
	if worst, ok := Worst(durations); ok {
		s.Worst = &worst
	}
	return s
}

// Best returns the minimal duration.
func Best(durations []float64) (float64, bool) {
	if len(durations) == 0 {
		return 0, false
	}
	best := durations[0]
	for _, d := range durations[1:] {
		if d < best {
			best = d
		}
	}
	return best, true
}

// Worst returns the maximal duration.
func Worst(durations []float64) (float64, bool) {
	if len(durations) == 0 {
		return 0, false
	}
	worst := durations[0]
	for _, d := range durations[1:] {
		if d > worst {
			worst = d
		}
	}
	return worst, true
}

// Average returns the arithmetic mean, 0 for an empty sequence.
func Average(durations []float64) float64 {
	if len(durations) == 0 {
		return 0
	}
	return sum(durations) / float64(len(durations))
}

// Variance returns the population standard deviation. The name follows the
// reports this engine feeds; fewer than two values yield 0.
func Variance(durations []float64) float64 {
	if len(durations) < 2 {
		return 0
	}
	avg := Average(durations)
	var sq float64
	for _, d := range durations {
		diff := d - avg
		sq += diff * diff
	}
	return math.Sqrt(sq / float64(len(durations)))
}

// ConsistencyScore maps the coefficient of variation onto (0, 100], rounded
// to one decimal. Fewer than two values, or a zero average, score 100.
func ConsistencyScore(durations []float64) float64 {
	if len(durations) < 2 {
		return perfectConsistency
	}
	avg := Average(durations)
	if avg <= 0 {
		return perfectConsistency
	}
	return round1(1 / (1 + Variance(durations)/avg) * 100)
}

// FatigueIndex is the percentage change from the first quarter average to the
// last quarter average, rounded to two decimals. Positive means slowing down.
func FatigueIndex(durations []float64) float64 {
	n := len(durations)
	if n < 2 {
		return 0
	}
	quarter := max(1, n/4)
	first := Average(durations[:quarter])
	last := Average(durations[n-quarter:])
	if first == 0 {
		return 0
	}
	return round2((last - first) / first * 100)
}

// PaceAnalysis partitions durations against target using the default
// tolerance. It returns nil when target is not positive.
func PaceAnalysis(durations []float64, target float64) *Pace {
	return paceAnalysis(durations, target, DefaultOnTargetTolerance)
}

// An attempt within tolerance is on target even if it is also under target;
// the three counts always add up to len(durations).
func paceAnalysis(durations []float64, target, tolerance float64) *Pace {
	if !(target > 0) {
		return nil
	}
	p := &Pace{Target: target}
	for _, d := range durations {
		switch {
		case math.Abs(d-target) < tolerance:
			p.OnTarget++
		case d < target:
			p.Faster++
		default:
			p.Slower++
		}
	}
	if n := len(durations); n > 0 {
		p.AverageDeviation = (sum(durations) - target*float64(n)) / float64(n)
	}
	return p
}

// TrendAnalysis compares set averages. Empty sets are ignored; fewer than two
// remaining sets yield nil.
func TrendAnalysis(sets [][]float64) *Trend {
	averages := make([]float64, 0, len(sets))
	for _, set := range sets {
		if len(set) > 0 {
			averages = append(averages, Average(set))
		}
	}
	if len(averages) < 2 {
		return nil
	}
	first, last := averages[0], averages[len(averages)-1]
	t := &Trend{
		SetAverages: averages,
		Improvement: last < first,
		TimeChange:  last - first,
	}
	if first != 0 {
		t.PercentageChange = round2(t.TimeChange / first * 100)
	}
	return t
}

func sum(durations []float64) float64 {
	var total float64
	for _, d := range durations {
		total += d
	}
	return total
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
