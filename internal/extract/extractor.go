// Package extract derives token and sentence counts from documents encoded
// in one of the supported corpus formats. Each format has its own Extractor;
// a Registry picks the right one by the document's variant tag.
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperifyio/sentlen/internal/corpus"
	"github.com/hyperifyio/sentlen/internal/segment"
)

// Extractor counts tokens and sentences in one document.
// Implementations must be safe for concurrent use and free of side effects.
type Extractor interface {
	// Extract returns the counts for doc. A zero sentence count is never
	// returned; it is reported as corpus.ErrZeroSentenceCount instead.
	Extract(ctx context.Context, doc corpus.Document) (corpus.Counts, error)
}

// Options configures the built-in extractors.
type Options struct {
	// Segmenter tokenizes untagged text. Nil selects segment.UAX29.
	Segmenter segment.Segmenter
	// MaxLength bounds every text handed to the segmenter, in characters.
	MaxLength int
	// SentenceMarker is the value of the n attribute that marks a
	// sentence-final <w> element. Empty selects "SENT".
	SentenceMarker string
	// Encoding names the character encoding of plain-text files; see Decode.
	Encoding string
	// StripGutenberg removes Project Gutenberg license headers and footers
	// from plain-text files.
	StripGutenberg bool
}

func (o Options) withDefaults() Options {
	if o.MaxLength <= 0 {
		o.MaxLength = segment.DefaultMaxLength
	}
	if o.Segmenter == nil {
		o.Segmenter = segment.UAX29{MaxLength: o.MaxLength}
	}
	if strings.TrimSpace(o.SentenceMarker) == "" {
		o.SentenceMarker = DefaultSentenceMarker
	}
	return o
}

// Fingerprint summarizes the options that influence extraction results.
// It is part of the cache key so that changed settings invalidate entries.
func (o Options) Fingerprint() string {
	o = o.withDefaults()
	return fmt.Sprintf("max=%d;marker=%s;enc=%s;gutenberg=%t",
		o.MaxLength, o.SentenceMarker, strings.ToLower(o.Encoding), o.StripGutenberg)
}

// Registry maps variants to extractors.
type Registry struct {
	extractors map[corpus.Variant]Extractor
	opts       Options
}

// NewRegistry returns a registry holding all built-in extractors.
func NewRegistry(opts Options) *Registry {
	opts = opts.withDefaults()
	r := &Registry{extractors: make(map[corpus.Variant]Extractor), opts: opts}
	r.Register(corpus.VariantParagraphs, Paragraphs{Segmenter: opts.Segmenter})
	r.Register(corpus.VariantTokenElements, TokenElements{})
	r.Register(corpus.VariantSentenceAttribute, SentenceAttribute{Marker: opts.SentenceMarker})
	r.Register(corpus.VariantPlainText, PlainText{
		Segmenter:      opts.Segmenter,
		MaxLength:      opts.MaxLength,
		Encoding:       opts.Encoding,
		StripGutenberg: opts.StripGutenberg,
	})
	r.Register(corpus.VariantHTML, HTML{Segmenter: opts.Segmenter})
	return r
}

// Register adds or replaces the extractor for v.
func (r *Registry) Register(v corpus.Variant, e Extractor) {
	r.extractors[v] = e
}

// For returns the extractor registered for v.
func (r *Registry) For(v corpus.Variant) (Extractor, error) {
	e, ok := r.extractors[v]
	if !ok {
		return nil, fmt.Errorf("%w: %q", corpus.ErrUnsupportedVariant, v)
	}
	return e, nil
}

// Fingerprint returns the fingerprint of the options the registry was built with.
func (r *Registry) Fingerprint() string { return r.opts.Fingerprint() }

// Extract dispatches doc to the extractor for its variant.
func (r *Registry) Extract(ctx context.Context, doc corpus.Document) (corpus.Counts, error) {
	e, err := r.For(doc.Variant)
	if err != nil {
		return corpus.Counts{}, err
	}
	return e.Extract(ctx, doc)
}

// finish converts a zero sentence count into corpus.ErrZeroSentenceCount.
func finish(doc corpus.Document, c corpus.Counts) (corpus.Counts, error) {
	if c.Sentences == 0 {
		return corpus.Counts{}, fmt.Errorf("%w: %s (%d tokens)", corpus.ErrZeroSentenceCount, doc.ID, c.Tokens)
	}
	return c, nil
}
