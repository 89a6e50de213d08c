// Package dedupe serialises claims on attempt keys so that concurrent writers
// commit at most one attempt per (session, owner, set, rep).
package dedupe

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"github.com/okian/swimstats/internal/domain/model"
)

const defaultMaxSize = 50000

// Deduper records claimed keys.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was claimed and claims it if
	// not. It returns true when id was already claimed.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord releases id so it can be claimed again, used when the claimed
	// write failed.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// AttemptID is the claim id of an attempt within a session.
func AttemptID(sessionID string, key model.AttemptKey) string {
	return fmt.Sprintf("%s|%s|%d|%d", sessionID, key.OwnerID, key.SetNumber, key.RepNumber)
}

// Claim claims the attempt key in d. It reports false when the key is
// already held.
func Claim(ctx context.Context, d Deduper, sessionID string, key model.AttemptKey) bool {
	return !d.SeenAndRecord(ctx, AttemptID(sessionID, key))
}

// inMemoryDeduper keeps claims in a map. In bounded mode the oldest claim is
// evicted once maxSize is reached.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List
	maxSize int
}

// NewInMemoryDeduper creates an in-memory deduper. It holds 50000 claims
// unless WithMaxSize says otherwise.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		if oldest := d.order.Front(); oldest != nil {
			delete(d.seen, oldest.Value.(string))
			d.order.Remove(oldest)
		}
	}
	d.seen[id] = d.order.PushBack(id)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[id]; ok {
		d.order.Remove(el)
		delete(d.seen, id)
	}
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
