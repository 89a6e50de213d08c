// Package ingest decodes bulk attempt sheets and competition result documents.
// YAML and JSON inputs are both accepted.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/okian/swimstats/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// Bulk is the owner -> set -> rep -> time shape of a training sheet.
type Bulk map[string]map[int]map[int]Cell

// Entry is one non-blank cell of a Bulk.
type Entry struct {
	OwnerID   string
	SetNumber int
	RepNumber int
	Text      string
}

// Ref names the entry for error reports.
func (e Entry) Ref() string {
	return fmt.Sprintf("%s/%d/%d", e.OwnerID, e.SetNumber, e.RepNumber)
}

// Entries flattens b in owner, set, rep order. Blank cells are skipped and
// counted, never read as zero.
func (b Bulk) Entries() (entries []Entry, skipped int) {
	for _, owner := range sortedNames(b) {
		sets := b[owner]
		for _, set := range sortedKeys(sets) {
			reps := sets[set]
			for _, rep := range sortedKeys(reps) {
				cell := reps[rep]
				if cell.Blank() {
					skipped++
					continue
				}
				entries = append(entries, Entry{OwnerID: owner, SetNumber: set, RepNumber: rep, Text: string(cell)})
			}
		}
	}
	return entries, skipped
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// AttemptDocument is a training sheet with its session header.
type AttemptDocument struct {
	SessionID string `yaml:"session"`
	Circle    Cell   `yaml:"circle"`
	Sets      int    `yaml:"sets"`
	Reps      int    `yaml:"reps"`

	Attempts map[string]map[string]map[string]Cell `yaml:"attempts"`
}

// DecodeAttempts reads one attempt document.
func DecodeAttempts(r io.Reader) (*AttemptDocument, error) {
	var doc AttemptDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrDocument)
		}
		if errors.Is(err, ErrDocument) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrDocument, err)
	}
	return &doc, nil
}

// Bulk converts the document's string keys into set and rep numbers. Two
// keys naming the same number ("1" and "01") fail with
// model.ErrDuplicateAttempt; the document is rejected whole rather than one
// of them being dropped.
func (d *AttemptDocument) Bulk() (Bulk, error) {
	out := make(Bulk, len(d.Attempts))
	for _, owner := range sortedNames(d.Attempts) {
		if owner == "" {
			return nil, fmt.Errorf("%w: empty owner id", ErrDocument)
		}
		sets := d.Attempts[owner]
		out[owner] = make(map[int]map[int]Cell, len(sets))
		setKeys := make(map[int]string, len(sets))
		for _, setKey := range sortedNames(sets) {
			set, err := strconv.Atoi(setKey)
			if err != nil {
				return nil, fmt.Errorf("%w: owner %s: set %q is not a number", ErrDocument, owner, setKey)
			}
			if first, ok := setKeys[set]; ok {
				return nil, fmt.Errorf("%w: %w: owner %s: sets %q and %q are both set %d",
					ErrDocument, model.ErrDuplicateAttempt, owner, first, setKey, set)
			}
			setKeys[set] = setKey

			reps := sets[setKey]
			out[owner][set] = make(map[int]Cell, len(reps))
			repKeys := make(map[int]string, len(reps))
			for _, repKey := range sortedNames(reps) {
				rep, err := strconv.Atoi(repKey)
				if err != nil {
					return nil, fmt.Errorf("%w: owner %s set %d: rep %q is not a number", ErrDocument, owner, set, repKey)
				}
				if first, ok := repKeys[rep]; ok {
					return nil, fmt.Errorf("%w: %w: owner %s set %d: reps %q and %q are both rep %d",
						ErrDocument, model.ErrDuplicateAttempt, owner, set, first, repKey, rep)
				}
				repKeys[rep] = repKey
				out[owner][set][rep] = reps[repKey]
			}
		}
	}
	return out, nil
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
