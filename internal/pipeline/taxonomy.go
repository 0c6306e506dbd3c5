package pipeline

import (
	"sort"
	"sync"
)

// Taxonomy is the set of category labels observed so far in the current run.
// It only grows, and exact string identity is the only dedup key: "Grocery"
// and "Groceries" are two labels. The set is injected into every
// categorization prompt to bias the model toward reusing earlier labels, which
// is the only dedup mechanism the pipeline has. Not persisted across runs.
type Taxonomy struct {
	mu     sync.Mutex
	labels map[string]struct{}
}

// NewTaxonomy returns an empty taxonomy, optionally pre-seeded.
func NewTaxonomy(seed ...string) *Taxonomy {
	t := &Taxonomy{labels: make(map[string]struct{})}
	for _, s := range seed {
		t.Add(s)
	}
	return t
}

// Add proposes a label. Adding an existing label is a no-op; the return value
// reports whether the label was new. Empty labels are ignored.
func (t *Taxonomy) Add(label string) bool {
	if label == "" {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.labels[label]; ok {
		return false
	}
	t.labels[label] = struct{}{}
	return true
}

// Contains reports whether the exact label is present.
func (t *Taxonomy) Contains(label string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.labels[label]
	return ok
}

// Labels returns the labels sorted, so prompt construction is deterministic
// for a given taxonomy state.
func (t *Taxonomy) Labels() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.labels))
	for l := range t.labels {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of distinct labels.
func (t *Taxonomy) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.labels)
}
