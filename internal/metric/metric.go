// Package metric turns extractor counts and metadata into metric records.
package metric

import (
	"fmt"
	"strings"

	"github.com/hyperifyio/sentlen/internal/corpus"
	"github.com/hyperifyio/sentlen/internal/metadata"
)

// Lookup resolves a metadata key. *metadata.Table implements it.
type Lookup interface {
	Lookup(key string) (metadata.Entry, error)
}

// KeyFunc derives the metadata key from a document identifier.
type KeyFunc func(id string) string

// IdentityKey uses the identifier unchanged.
func IdentityKey(id string) string { return id }

// PrefixKey uses the part of the identifier before the first underscore,
// so "FRA00101_Zola" is looked up as "FRA00101".
func PrefixKey(id string) string {
	if i := strings.IndexByte(id, '_'); i > 0 {
		return id[:i]
	}
	return id
}

// ParseKeyFunc maps "identity" (or "") and "prefix" to a KeyFunc.
func ParseKeyFunc(s string) (KeyFunc, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "identity", "id":
		return IdentityKey, nil
	case "prefix":
		return PrefixKey, nil
	}
	return nil, fmt.Errorf("unknown metadata key mode %q", s)
}

// Builder joins extractor counts with metadata.
type Builder struct {
	Lookup Lookup
	// Key derives the metadata key. Nil means IdentityKey.
	Key KeyFunc
}

// Build returns the metric record for doc. Zero sentence counts are
// rejected before metadata is consulted.
func (b Builder) Build(doc corpus.Document, c corpus.Counts) (corpus.MetricRecord, error) {
	if c.Sentences == 0 {
		return corpus.MetricRecord{}, fmt.Errorf("%w: %s", corpus.ErrZeroSentenceCount, doc.ID)
	}
	key := b.key(doc.ID)
	if b.Lookup == nil {
		return corpus.MetricRecord{}, fmt.Errorf("%w: no metadata table for %q", corpus.ErrMetadataMissing, key)
	}
	e, err := b.Lookup.Lookup(key)
	if err != nil {
		return corpus.MetricRecord{}, fmt.Errorf("%s: %w", doc.ID, err)
	}
	return corpus.NewMetricRecord(doc.ID, e.Author, e.Title, e.Year, c)
}

func (b Builder) key(id string) string {
	if b.Key == nil {
		return IdentityKey(id)
	}
	return b.Key(id)
}
