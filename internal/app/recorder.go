package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	workerpool "github.com/okian/swimstats/internal/adapters/mq/worker"
	"github.com/okian/swimstats/internal/adapters/repository"
	"github.com/okian/swimstats/internal/domain/besttime"
	"github.com/okian/swimstats/internal/domain/model"
	"github.com/okian/swimstats/internal/domain/splits"
	"github.com/okian/swimstats/pkg/metrics"
)

// resultRecorder attaches splits, stores the result, and refreshes the
// owner's ranked best. Submissions are recorded one at a time in Seq order
// when order is set, so the prior best of each result depends only on what
// was submitted before it.
type resultRecorder struct {
	mu      sync.Mutex
	log     *repository.ResultLog
	ranking repository.Ranking
	order   *sequencer
}

var _ workerpool.Recorder = (*resultRecorder)(nil)

func (r *resultRecorder) Record(ctx context.Context, s model.Submission) (workerpool.Outcome, error) {
	if r.order != nil {
		if err := r.order.wait(ctx, s.Seq); err != nil {
			return workerpool.Outcome{}, fmt.Errorf("result %s: %w", s.Result.ID, err)
		}
		defer r.order.done(s.Seq)
	}

	result, err := splits.Attach(s.Result, s.Splits)
	if err != nil {
		var kinded interface{ Kind() string }
		if errors.As(err, &kinded) {
			metrics.RecordSplitRejection(kinded.Kind())
		}
		metrics.RecordErrorByComponent("recorder", "splits")
		return workerpool.Outcome{}, fmt.Errorf("result %s: %w", s.Result.ID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	history := otherEvents(r.log.ForOwnerStyle(ctx, result.OwnerID, result.StyleID), result.EventID)
	var previous *float64
	if d, ok := besttime.Resolve(result.OwnerID, result.StyleID, history, result.ID); ok {
		previous = &d
	}

	replaced, err := r.log.Upsert(ctx, result)
	if err != nil {
		metrics.RecordErrorByComponent("recorder", "result_log")
		return workerpool.Outcome{}, fmt.Errorf("result %s: %w", result.ID, err)
	}

	best, ok := besttime.ResolveResult(result.OwnerID, result.StyleID, r.log.ForOwnerStyle(ctx, result.OwnerID, result.StyleID), "")
	if !ok {
		return workerpool.Outcome{}, fmt.Errorf("result %s: %w", result.ID, repository.ErrNotFound)
	}
	if err := r.ranking.Put(ctx, best); err != nil {
		metrics.RecordErrorByComponent("recorder", "ranking")
		r.revert(ctx, result, replaced)
		return workerpool.Outcome{}, fmt.Errorf("rank result %s: %w", result.ID, err)
	}

	improved := besttime.IsImprovement(result.Duration, previous)
	metrics.RecordResultRecorded(improved)

	current := best.Duration
	return workerpool.Outcome{
		ResultID:     result.ID,
		OwnerID:      result.OwnerID,
		StyleID:      result.StyleID,
		EventID:      result.EventID,
		Duration:     result.Duration,
		Improved:     improved,
		PreviousBest: previous,
		CurrentBest:  &current,
		Replaced:     replaced != nil,
	}, nil
}

// revert undoes an upsert whose ranking update failed, so the log and the
// ranking keep describing the same results.
func (r *resultRecorder) revert(ctx context.Context, result model.CompetitionResult, replaced *model.CompetitionResult) {
	if replaced != nil {
		if _, err := r.log.Upsert(ctx, *replaced); err == nil {
			return
		}
	}
	r.log.Remove(ctx, result.ID)
}

// otherEvents drops the result a resubmission for eventID would replace.
func otherEvents(history []model.CompetitionResult, eventID string) []model.CompetitionResult {
	out := history[:0]
	for _, h := range history {
		if h.EventID != eventID {
			out = append(out, h)
		}
	}
	return out
}
