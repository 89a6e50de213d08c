// Package service wires the time codec, statistics engine and result
// pipeline into the operations exposed to callers.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	resultqueue "github.com/okian/swimstats/internal/adapters/mq/queue"
	workerpool "github.com/okian/swimstats/internal/adapters/mq/worker"
	"github.com/okian/swimstats/internal/adapters/repository"
	"github.com/okian/swimstats/internal/domain/besttime"
	"github.com/okian/swimstats/internal/domain/dedupe"
	"github.com/okian/swimstats/internal/domain/model"
	"github.com/okian/swimstats/internal/domain/stats"
	"github.com/okian/swimstats/internal/domain/timecodec"
	"github.com/okian/swimstats/pkg/logger"
	"github.com/okian/swimstats/pkg/metrics"
)

// Service owns the analytics components. Attempt ingestion, analysis and
// leaderboard reads work without Start; result submission needs the worker
// pool started.
type Service struct {
	mu sync.RWMutex

	codec    *timecodec.Codec
	engine   *stats.Engine
	deduper  dedupe.Deduper
	results  *repository.ResultLog
	ranking  repository.Ranking
	recorder *resultRecorder

	queue      *resultqueue.InMemoryQueue
	workerPool *workerpool.Pool

	// submitMu keeps Seq order equal to queue order.
	submitMu sync.Mutex
	nextSeq  uint64

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	tolerance     float64
	strictSeconds bool
	maxTopN       int
	onOutcome     workerpool.OutcomeHandler

	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of result workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the result queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the attempt claim registry; 0 disables eviction.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.dedupeSize = size
		}
	}
}

// WithOnTargetTolerance sets the pace window in seconds.
func WithOnTargetTolerance(seconds float64) Option {
	return func(s *Service) {
		if seconds > 0 {
			s.tolerance = seconds
		}
	}
}

// WithStrictSeconds makes attempt parsing reject 60 or more seconds within a minute.
func WithStrictSeconds(strict bool) Option {
	return func(s *Service) {
		s.strictSeconds = strict
	}
}

// WithMaxTopN caps leaderboard queries.
func WithMaxTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxTopN = n
		}
	}
}

// WithOutcomeHandler receives the outcome of every submitted result.
func WithOutcomeHandler(fn workerpool.OutcomeHandler) Option {
	return func(s *Service) {
		s.onOutcome = fn
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. The logger must be initialised unless WithLogger
// is given.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   1024,
		dedupeSize:  50_000,
		tolerance:   stats.DefaultOnTargetTolerance,
		maxTopN:     100,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	var codecOpts []timecodec.Option
	if s.strictSeconds {
		codecOpts = append(codecOpts, timecodec.WithStrictSeconds())
	}
	s.codec = timecodec.New(codecOpts...)
	s.engine = stats.New(stats.WithOnTargetTolerance(s.tolerance))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.results = repository.NewResultLog()
	s.ranking = repository.NewTreapIndex()
	return s
}

// Codec returns the time codec configured for this service.
func (s *Service) Codec() *timecodec.Codec {
	return s.codec
}

// Start creates the result queue and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting result pipeline")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.queue = resultqueue.NewInMemoryQueue(resultqueue.WithCapacity(s.queueSize))
	s.nextSeq = 0
	s.recorder = &resultRecorder{log: s.results, ranking: s.ranking, order: newSequencer()}

	poolOpts := []workerpool.Option{workerpool.WithOutcomeHandler(s.handleOutcome)}
	s.workerPool = workerpool.NewPool(s.workerCount, s.queue, s.recorder, poolOpts...)
	s.workerPool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "result pipeline started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
	)
	return nil
}

func (s *Service) handleOutcome(ctx context.Context, o workerpool.Outcome) {
	if o.Err != nil {
		metrics.RecordErrorByComponent("service", "result_rejected")
	}
	if s.onOutcome != nil {
		s.onOutcome(ctx, o)
	}
}

// Stop halts the workers without waiting for queued results.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping result pipeline")

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.workerPool.Stop(stopCtx); err != nil {
		s.logger.Warn(ctx, "worker stop timed out", logger.Error(err))
	}
	_ = s.queue.Close()
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "result pipeline stopped")
}

// Drain closes the queue, waits for every queued result to be recorded and
// stops the pipeline. It returns early with an error when ctx expires.
func (s *Service) Drain(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	err := s.workerPool.Shutdown(ctx)
	s.cancel()
	s.started = false
	if err != nil {
		return fmt.Errorf("drain: %w", err)
	}
	s.logger.Info(ctx, "result pipeline drained")
	return nil
}

// AnalyzeSession builds the statistics report for a complete session.
func (s *Service) AnalyzeSession(ctx context.Context, sess *model.TrainingSession) stats.SessionReport {
	start := time.Now()
	report := s.engine.AnalyzeSession(sess)
	metrics.RecordSessionAnalyzed(metrics.SinceMs(start))
	s.logger.Debug(ctx, "session analysed",
		logger.String("session", sess.ID),
		logger.Int("owners", len(report.Owners)),
		logger.Int("attempts", sess.Len()),
	)
	return report
}

// SubmitResult queues a competition result with its split markers and
// returns the result id, assigning a time-ordered id when none is given.
// Results are recorded in the order SubmitResult accepted them, whatever the
// worker count, so improvements are judged against earlier submissions only.
func (s *Service) SubmitResult(ctx context.Context, sub model.Submission) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return "", ErrNotStarted
	}
	if sub.Result.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("assign result id: %w", err)
		}
		sub.Result.ID = id.String()
	}

	s.submitMu.Lock()
	sub.Seq = s.nextSeq
	err := s.queue.Enqueue(ctx, sub)
	if err == nil {
		s.nextSeq++
	}
	s.submitMu.Unlock()
	if err != nil {
		if errors.Is(err, resultqueue.ErrFull) {
			s.logger.Warn(ctx, "result queue full", logger.String("result_id", sub.Result.ID))
		}
		return "", fmt.Errorf("submit result %s: %w", sub.Result.ID, err)
	}
	metrics.RecordResultSubmitted()
	return sub.Result.ID, nil
}

// BestTime returns the owner's best recorded time in style.
func (s *Service) BestTime(ctx context.Context, ownerID, styleID string) (float64, bool) {
	return besttime.Resolve(ownerID, styleID, s.results.ForOwnerStyle(ctx, ownerID, styleID), "")
}

// Result returns a recorded result by id.
func (s *Service) Result(ctx context.Context, id string) (model.CompetitionResult, error) {
	return s.results.Get(ctx, id)
}

// TopN returns up to n leaderboard rows for style, capped at the configured maximum.
func (s *Service) TopN(ctx context.Context, styleID string, n int) ([]repository.Entry, error) {
	if n < 1 {
		return nil, ErrInvalidN
	}
	return s.ranking.TopN(ctx, styleID, min(n, s.maxTopN))
}

// Rank returns the owner's leaderboard row for style.
func (s *Service) Rank(ctx context.Context, styleID, ownerID string) (repository.Entry, error) {
	return s.ranking.Rank(ctx, styleID, ownerID)
}

// Styles lists the styles with ranked swimmers.
func (s *Service) Styles(ctx context.Context) []string {
	return s.ranking.Styles(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	out := map[string]any{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"dedupeSize":    s.dedupeSize,
		"claims":        s.deduper.Size(),
		"results":       s.results.Len(),
		"styles":        len(s.ranking.Styles(ctx)),
		"strictSeconds": s.strictSeconds,
	}
	if s.started {
		out["queueLength"] = s.queue.Len(ctx)
	}
	return out
}
