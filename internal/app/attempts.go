package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/swimstats/internal/domain/dedupe"
	"github.com/okian/swimstats/internal/domain/model"
	"github.com/okian/swimstats/internal/domain/timecodec"
	"github.com/okian/swimstats/internal/ingest"
	"github.com/okian/swimstats/pkg/logger"
	"github.com/okian/swimstats/pkg/metrics"
)

// SessionHeader describes the session a sheet belongs to.
type SessionHeader struct {
	ID         string
	Circle     float64
	Sets       int
	RepsPerSet int
}

// IngestReport summarises one bulk ingestion. Errors holds one
// *ingest.RecordError per rejected cell.
type IngestReport struct {
	SessionID string  `json:"session_id"`
	Accepted  int     `json:"accepted"`
	Skipped   int     `json:"skipped"`
	Errors    []error `json:"-"`
}

// IngestAttempts parses every non-blank cell of bulk and builds the session.
// Rejected cells are reported and do not stop the others. Each
// (session, owner, set, rep) key is claimed first, so concurrent ingestions
// of the same session commit each key at most once.
func (s *Service) IngestAttempts(ctx context.Context, h SessionHeader, bulk ingest.Bulk) (*model.TrainingSession, IngestReport, error) {
	report := IngestReport{SessionID: h.ID}
	sess, err := model.NewTrainingSession(h.ID, h.Circle, h.Sets, h.RepsPerSet)
	if err != nil {
		return nil, report, err
	}

	entries, skipped := bulk.Entries()
	report.Skipped = skipped
	for range skipped {
		metrics.RecordAttemptSkipped()
	}

	for _, e := range entries {
		if err := s.ingestOne(ctx, sess, e); err != nil {
			metrics.RecordAttemptRejected(rejectReason(err))
			report.Errors = append(report.Errors, &ingest.RecordError{Ref: e.Ref(), Err: err})
			continue
		}
		metrics.RecordAttemptParsed()
		report.Accepted++
	}

	s.logger.Info(ctx, "attempts ingested",
		logger.String("session", h.ID),
		logger.Int("accepted", report.Accepted),
		logger.Int("skipped", report.Skipped),
		logger.Int("rejected", len(report.Errors)),
	)
	return sess, report, nil
}

func (s *Service) ingestOne(ctx context.Context, sess *model.TrainingSession, e ingest.Entry) error {
	d, err := s.codec.Parse(e.Text)
	if err != nil {
		return err
	}
	a := model.TimedAttempt{OwnerID: e.OwnerID, SetNumber: e.SetNumber, RepNumber: e.RepNumber, Duration: d}
	if err := a.Validate(); err != nil {
		return err
	}
	if !dedupe.Claim(ctx, s.deduper, sess.ID, a.Key()) {
		return fmt.Errorf("%w: %s", model.ErrDuplicateAttempt, a.Key())
	}
	if err := sess.Add(a); err != nil {
		s.deduper.Unrecord(ctx, dedupe.AttemptID(sess.ID, a.Key()))
		return err
	}
	return nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, timecodec.ErrFormat):
		return "format"
	case errors.Is(err, model.ErrDuplicateAttempt):
		return "duplicate"
	case errors.Is(err, model.ErrOutsideCadence):
		return "cadence"
	default:
		return "invalid"
	}
}

// ParseCircle reads a session circle cell; blank means no target.
func (s *Service) ParseCircle(cell ingest.Cell) (float64, error) {
	if cell.Blank() {
		return 0, nil
	}
	d, err := s.codec.Parse(string(cell))
	if err != nil {
		return 0, fmt.Errorf("circle: %w", err)
	}
	return d, nil
}
