package repository

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/okian/swimstats/internal/domain/model"
	"github.com/okian/swimstats/pkg/metrics"
)

// Treap-based, in-memory Ranking implementation, one treap per style.
//
// Ordering: duration ASC, then ownerID ASC. In-order traversal yields the
// leaderboard from fastest to slowest; subtree sizes give ranks in O(log n).

// microScale converts seconds to fixed-point microseconds so equal entered
// times compare equal.
const microScale = 1_000_000

func toMicros(seconds float64) int64 {
	return int64(math.Round(seconds * microScale))
}

type node struct {
	owner  string
	micros int64
	prio   uint64
	left   *node
	right  *node
	size   int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less reports whether (aMicros, aOwner) ranks before (bMicros, bOwner).
func less(aMicros int64, aOwner string, bMicros int64, bOwner string) bool {
	if aMicros != bMicros {
		return aMicros < bMicros
	}
	return aOwner < bOwner
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, owner string, micros int64, prio uint64) *node {
	if n == nil {
		return &node{owner: owner, micros: micros, prio: prio, size: 1}
	}
	if less(micros, owner, n.micros, n.owner) {
		n.left = insert(n.left, owner, micros, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, owner, micros, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, owner string, micros int64) *node {
	if n == nil {
		return nil
	}
	switch {
	case micros == n.micros && owner == n.owner:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, owner, micros)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, owner, micros)
		}
	case less(micros, owner, n.micros, n.owner):
		n.left = deleteNode(n.left, owner, micros)
	default:
		n.right = deleteNode(n.right, owner, micros)
	}
	fix(n)
	return n
}

// countFaster returns the number of nodes strictly faster than micros.
func countFaster(n *node, micros int64) int {
	count := 0
	for n != nil {
		if n.micros < micros {
			count += nsize(n.left) + 1
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

// collectTopN appends up to limit owners in rank order.
func collectTopN(n *node, limit int, out *[]string) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n.owner)
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

type record struct {
	micros int64
	result model.CompetitionResult
}

type styleTree struct {
	root    *node
	byOwner map[string]record
}

// TreapIndex is a Ranking backed by one treap per style.
type TreapIndex struct {
	mu     sync.RWMutex
	styles map[string]*styleTree
	rng    *rand.Rand
}

var _ Ranking = (*TreapIndex)(nil)

// NewTreapIndex constructs an empty index.
func NewTreapIndex(opts ...Option) *TreapIndex {
	t := &TreapIndex{
		styles: make(map[string]*styleTree),
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func validateRanked(r model.CompetitionResult) error {
	switch {
	case r.OwnerID == "":
		return fmt.Errorf("%w: owner id is required", ErrInvalidResult)
	case r.StyleID == "":
		return fmt.Errorf("%w: style id is required", ErrInvalidResult)
	case math.IsNaN(r.Duration) || math.IsInf(r.Duration, 0) || r.Duration < 0:
		return fmt.Errorf("%w: duration %v", ErrInvalidResult, r.Duration)
	}
	return nil
}

// Put implements Ranking.Put in O(log n) expected time.
func (t *TreapIndex) Put(_ context.Context, best model.CompetitionResult) error {
	start := time.Now()
	defer func() { metrics.RecordRankingUpdateLatency(metrics.SinceMs(start)) }()

	if err := validateRanked(best); err != nil {
		metrics.RecordErrorByComponent("repository", "invalid_result")
		return err
	}
	micros := toMicros(best.Duration)

	t.mu.Lock()
	st, ok := t.styles[best.StyleID]
	if !ok {
		st = &styleTree{byOwner: make(map[string]record)}
		t.styles[best.StyleID] = st
	}
	if old, ok := st.byOwner[best.OwnerID]; ok {
		st.root = deleteNode(st.root, best.OwnerID, old.micros)
	}
	st.byOwner[best.OwnerID] = record{micros: micros, result: best}
	st.root = insert(st.root, best.OwnerID, micros, t.rng.Uint64())
	count := len(st.byOwner)
	t.mu.Unlock()

	metrics.UpdateRankingEntries(best.StyleID, count)
	return nil
}

// Remove implements Ranking.Remove.
func (t *TreapIndex) Remove(_ context.Context, styleID, ownerID string) {
	t.mu.Lock()
	st, ok := t.styles[styleID]
	if !ok {
		t.mu.Unlock()
		return
	}
	old, ok := st.byOwner[ownerID]
	if !ok {
		t.mu.Unlock()
		return
	}
	st.root = deleteNode(st.root, ownerID, old.micros)
	delete(st.byOwner, ownerID)
	count := len(st.byOwner)
	if count == 0 {
		delete(t.styles, styleID)
	}
	t.mu.Unlock()

	metrics.UpdateRankingEntries(styleID, count)
}

// Rank returns the owner's row in O(log n).
func (t *TreapIndex) Rank(_ context.Context, styleID, ownerID string) (Entry, error) {
	start := time.Now()
	defer func() { metrics.RecordRankingQueryLatency(metrics.SinceMs(start)) }()

	t.mu.RLock()
	defer t.mu.RUnlock()

	st, ok := t.styles[styleID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, fmt.Errorf("%w: style %q", ErrNotFound, styleID)
	}
	rec, ok := st.byOwner[ownerID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, fmt.Errorf("%w: %s in %s", ErrNotFound, ownerID, styleID)
	}
	return toEntry(1+countFaster(st.root, rec.micros), rec), nil
}

// TopN returns the fastest n rows of the style. An unknown style yields an
// empty list.
func (t *TreapIndex) TopN(_ context.Context, styleID string, n int) ([]Entry, error) {
	start := time.Now()
	defer func() { metrics.RecordRankingQueryLatency(metrics.SinceMs(start)) }()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	st, ok := t.styles[styleID]
	if !ok {
		return []Entry{}, nil
	}
	owners := make([]string, 0, min(n, len(st.byOwner)))
	collectTopN(st.root, n, &owners)

	out := make([]Entry, len(owners))
	for i, owner := range owners {
		rec := st.byOwner[owner]
		rank := i + 1
		if i > 0 && toMicros(out[i-1].Duration) == rec.micros {
			rank = out[i-1].Rank
		}
		out[i] = toEntry(rank, rec)
	}
	return out, nil
}

// Count returns the number of ranked swimmers in the style.
func (t *TreapIndex) Count(_ context.Context, styleID string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if st, ok := t.styles[styleID]; ok {
		return len(st.byOwner)
	}
	return 0
}

// Styles lists ranked styles in ascending order.
func (t *TreapIndex) Styles(_ context.Context) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.styles))
	for style := range t.styles {
		out = append(out, style)
	}
	sort.Strings(out)
	return out
}

func toEntry(rank int, rec record) Entry {
	return Entry{
		Rank:     rank,
		OwnerID:  rec.result.OwnerID,
		StyleID:  rec.result.StyleID,
		Duration: rec.result.Duration,
		ResultID: rec.result.ID,
		EventID:  rec.result.EventID,
	}
}
