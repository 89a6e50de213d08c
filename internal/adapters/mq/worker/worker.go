// Package worker runs the result pipeline: workers take submissions off the
// queue, hand them to a Recorder and report each Outcome.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/swimstats/internal/domain/model"
	"github.com/okian/swimstats/pkg/logger"
	"github.com/okian/swimstats/pkg/metrics"
)

// Submission is what workers read off the queue.
type Submission = model.Submission

// Outcome reports what happened to one submission. Err is set when the
// submission was rejected; the other fields are then best effort.
type Outcome struct {
	ResultID     string   `json:"result_id"`
	OwnerID      string   `json:"owner_id"`
	StyleID      string   `json:"style_id"`
	EventID      string   `json:"event_id"`
	Duration     float64  `json:"duration"`
	Improved     bool     `json:"improved"`
	PreviousBest *float64 `json:"previous_best,omitempty"`
	CurrentBest  *float64 `json:"current_best,omitempty"`
	Replaced     bool     `json:"replaced,omitempty"`
	Err          error    `json:"-"`
}

// OutcomeHandler receives every outcome. It is called from worker
// goroutines and must be safe for concurrent use.
type OutcomeHandler func(ctx context.Context, o Outcome)

// Recorder validates and stores one submission.
type Recorder interface {
	Record(ctx context.Context, s Submission) (Outcome, error)
}

// Queue defines how workers receive submissions.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Submission
}

// Worker processes submissions until its queue closes.
type Worker interface {
	// Run starts the worker loop. It returns when ctx is canceled, the worker
	// is shut down or the queue is closed and drained.
	Run(ctx context.Context)

	// Shutdown stops the worker without waiting for the queue to drain.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	recorder Recorder
	onResult OutcomeHandler
	name     string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker with configuration options.
func NewInMemoryWorker(q Queue, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		recorder: recorder,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	items := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case s, ok := <-items:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			w.process(ctx, s)
		}
	}
}

// Shutdown stops the worker and waits for the current submission.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

func (w *InMemoryWorker) process(ctx context.Context, s Submission) { //nolint:gocritic // hugeParam: passed by value for channel semantics
	start := time.Now()
	defer func() { metrics.RecordWorkerProcessingLatency(metrics.SinceMs(start)) }()

	outcome, err := w.recorder.Record(ctx, s)
	if err != nil {
		metrics.RecordWorkerError()
		w.logger.Warn(ctx, "result rejected",
			logger.String("result_id", s.Result.ID),
			logger.String("owner_id", s.Result.OwnerID),
			logger.Error(err),
		)
		outcome = Outcome{
			ResultID: s.Result.ID,
			OwnerID:  s.Result.OwnerID,
			StyleID:  s.Result.StyleID,
			EventID:  s.Result.EventID,
			Duration: s.Result.Duration,
			Err:      err,
		}
	} else {
		w.logger.Debug(ctx, "result recorded",
			logger.String("result_id", outcome.ResultID),
			logger.Seconds("duration", outcome.Duration),
			logger.Bool("improved", outcome.Improved),
		)
	}

	if w.onResult != nil {
		w.onResult(ctx, outcome)
	}
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates workerCount workers reading q. A count below one uses one
// worker per CPU.
func NewPool(workerCount int, q Queue, recorder Recorder, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(q, recorder, workerOpts...)
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start runs every worker in its own goroutine.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerActiveCount(len(p.workers))
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Stop stops every worker without draining the queue.
func (p *Pool) Stop(ctx context.Context) error {
	var firstErr error
	for _, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	metrics.UpdateWorkerActiveCount(0)
	return firstErr
}

// Shutdown closes the queue and waits until the workers have processed every
// waiting submission or ctx expires.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	for i, w := range p.workers {
		select {
		case <-w.Done():
		case <-ctx.Done():
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			return fmt.Errorf("drain timed out: %w", ctx.Err())
		}
	}
	metrics.UpdateWorkerActiveCount(0)
	return nil
}
