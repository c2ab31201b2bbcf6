// Package table holds the corpus table: one metric record per document
// identifier, with its semicolon-delimited file form.
package table

import (
	"sort"
	"sync"

	"github.com/hyperifyio/sentlen/internal/corpus"
)

// Table maps document identifiers to metric records. It is safe for
// concurrent use.
type Table struct {
	mu      sync.RWMutex
	records map[string]corpus.MetricRecord
}

// New returns an empty table.
func New() *Table {
	return &Table{records: make(map[string]corpus.MetricRecord)}
}

// FromRecords builds a table from recs; later duplicates win.
func FromRecords(recs []corpus.MetricRecord) *Table {
	t := New()
	for _, r := range recs {
		t.Insert(r)
	}
	return t
}

// Insert stores r under its identifier, replacing any previous record.
func (t *Table) Insert(r corpus.MetricRecord) {
	t.mu.Lock()
	t.records[r.ID] = r
	t.mu.Unlock()
}

// Get returns the record stored under id.
func (t *Table) Get(id string) (corpus.MetricRecord, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.records[id]
	return r, ok
}

// Len returns the number of records.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}

// Records returns a snapshot of all records ordered by identifier.
func (t *Table) Records() []corpus.MetricRecord {
	t.mu.RLock()
	out := make([]corpus.MetricRecord, 0, len(t.records))
	for _, r := range t.records {
		out = append(out, r)
	}
	t.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Merge inserts every record of other into t. Records of other win on
// identifier collisions.
func (t *Table) Merge(other *Table) {
	if other == nil || other == t {
		return
	}
	for _, r := range other.Records() {
		t.Insert(r)
	}
}
