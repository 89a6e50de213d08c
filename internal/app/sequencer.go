package service

import (
	"context"
	"sync"
)

// sequencer admits submissions one at a time in Seq order, whichever worker
// dequeued them. Every admitted Seq must be released with done.
type sequencer struct {
	mu      sync.Mutex
	next    uint64
	waiters map[uint64]chan struct{}
}

func newSequencer() *sequencer {
	return &sequencer{waiters: make(map[uint64]chan struct{})}
}

// wait blocks until every earlier Seq is done.
func (q *sequencer) wait(ctx context.Context, seq uint64) error {
	q.mu.Lock()
	if seq == q.next {
		q.mu.Unlock()
		return nil
	}
	turn := make(chan struct{})
	q.waiters[seq] = turn
	q.mu.Unlock()

	select {
	case <-turn:
		return nil
	case <-ctx.Done():
		q.mu.Lock()
		defer q.mu.Unlock()
		if _, waiting := q.waiters[seq]; !waiting {
			// done already handed over the turn.
			return nil
		}
		delete(q.waiters, seq)
		return ctx.Err()
	}
}

// done hands the turn to seq+1.
func (q *sequencer) done(seq uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.next = seq + 1
	if turn, ok := q.waiters[q.next]; ok {
		delete(q.waiters, q.next)
		close(turn)
	}
}
