package repository

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/okian/swimstats/internal/domain/besttime"
	"github.com/okian/swimstats/internal/domain/model"
)

type ownerStyle struct {
	owner string
	style string
}

// ResultLog stores competition results, at most one per (owner, style, event).
// It is safe for concurrent use.
type ResultLog struct {
	mu      sync.RWMutex
	byID    map[string]model.CompetitionResult
	byKey   map[model.ResultKey]string
	byGroup map[ownerStyle]map[string]struct{}
}

// NewResultLog returns an empty log.
func NewResultLog() *ResultLog {
	return &ResultLog{
		byID:    make(map[string]model.CompetitionResult),
		byKey:   make(map[model.ResultKey]string),
		byGroup: make(map[ownerStyle]map[string]struct{}),
	}
}

// Upsert stores r, replacing the result already held for the same owner,
// style and event. The replaced result is returned when there was one. An id
// already used by a different event fails with ErrConflict.
func (l *ResultLog) Upsert(_ context.Context, r model.CompetitionResult) (*model.CompetitionResult, error) {
	if err := validateLogged(r); err != nil {
		return nil, err
	}
	key := r.Key()

	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.byID[r.ID]; ok && existing.Key() != key {
		return nil, fmt.Errorf("%w: %s", ErrConflict, r.ID)
	}

	var replaced *model.CompetitionResult
	if oldID, ok := l.byKey[key]; ok {
		old := l.byID[oldID]
		replaced = &old
		l.drop(old)
	}

	l.byID[r.ID] = r
	l.byKey[key] = r.ID
	g := ownerStyle{owner: r.OwnerID, style: r.StyleID}
	if l.byGroup[g] == nil {
		l.byGroup[g] = make(map[string]struct{})
	}
	l.byGroup[g][r.ID] = struct{}{}
	return replaced, nil
}

// Remove deletes the result with id and reports whether it was stored.
func (l *ResultLog) Remove(_ context.Context, id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.byID[id]
	if ok {
		l.drop(r)
	}
	return ok
}

// drop removes r from every index. Callers hold the write lock.
func (l *ResultLog) drop(r model.CompetitionResult) {
	delete(l.byID, r.ID)
	delete(l.byKey, r.Key())
	g := ownerStyle{owner: r.OwnerID, style: r.StyleID}
	delete(l.byGroup[g], r.ID)
	if len(l.byGroup[g]) == 0 {
		delete(l.byGroup, g)
	}
}

// Get returns the result with id.
func (l *ResultLog) Get(_ context.Context, id string) (model.CompetitionResult, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	r, ok := l.byID[id]
	if !ok {
		return model.CompetitionResult{}, fmt.Errorf("%w: result %s", ErrNotFound, id)
	}
	return r, nil
}

// ForOwnerStyle returns the owner's results in style ordered by id.
func (l *ResultLog) ForOwnerStyle(_ context.Context, ownerID, styleID string) []model.CompetitionResult {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := l.byGroup[ownerStyle{owner: ownerID, style: styleID}]
	out := make([]model.CompetitionResult, 0, len(ids))
	for id := range ids {
		out = append(out, l.byID[id])
	}
	sort.Slice(out, func(i, j int) bool { return besttime.LessID(out[i].ID, out[j].ID) })
	return out
}

// Len returns the number of stored results.
func (l *ResultLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.byID)
}

func validateLogged(r model.CompetitionResult) error {
	switch {
	case r.ID == "":
		return fmt.Errorf("%w: id is required", ErrInvalidResult)
	case r.OwnerID == "":
		return fmt.Errorf("%w: owner id is required", ErrInvalidResult)
	case r.StyleID == "":
		return fmt.Errorf("%w: style id is required", ErrInvalidResult)
	case r.Distance < 0:
		return fmt.Errorf("%w: distance %d", ErrInvalidResult, r.Distance)
	case math.IsNaN(r.Duration) || math.IsInf(r.Duration, 0) || r.Duration < 0:
		return fmt.Errorf("%w: duration %v", ErrInvalidResult, r.Duration)
	}
	return nil
}
