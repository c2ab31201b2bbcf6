// Package corpus holds the data model shared by the extraction and
// comparison stages: documents, their encoding variants, per-document metric
// records and the time windows used to bucket them.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Variant names the structural convention a document is encoded in.
type Variant string

const (
	// VariantParagraphs is TEI markup with untagged paragraph text that
	// must be tokenized externally.
	VariantParagraphs Variant = "tei-paragraphs"
	// VariantTokenElements is TEI markup with one <w> per token and one
	// <s> per sentence.
	VariantTokenElements Variant = "tei-tokens"
	// VariantSentenceAttribute is TEI markup with one <w> per token where
	// sentence-final tokens carry n="SENT".
	VariantSentenceAttribute Variant = "tei-sentence-attr"
	// VariantPlainText is unstructured text.
	VariantPlainText Variant = "plaintext"
	// VariantHTML is an HTML document whose <p> elements hold the text.
	VariantHTML Variant = "html"
)

// Variants lists every supported variant in a stable order.
func Variants() []Variant {
	return []Variant{VariantParagraphs, VariantTokenElements, VariantSentenceAttribute, VariantPlainText, VariantHTML}
}

// ParseVariant maps a configuration string to a Variant.
func ParseVariant(s string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Variants() {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedVariant, s)
}

// Document is one text of a corpus together with its encoding variant.
type Document struct {
	ID      string
	Variant Variant
	Path    string
	Content []byte
}

// Counts is what an extractor derives from one document.
type Counts struct {
	Tokens    int `json:"tokens"`
	Sentences int `json:"sentences"`
}

// Add returns the element-wise sum of c and o.
func (c Counts) Add(o Counts) Counts {
	return Counts{Tokens: c.Tokens + o.Tokens, Sentences: c.Sentences + o.Sentences}
}

// DocumentID derives the identifier of a corpus file: its basename up to the
// first dot, so "PG1234_text.txt" becomes "PG1234_text".
func DocumentID(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}

// ReadDocument loads the file at path as a document of the given variant.
func ReadDocument(path string, variant Variant) (Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read document: %w", err)
	}
	return Document{ID: DocumentID(path), Variant: variant, Path: path, Content: b}, nil
}

// Discover expands a glob pattern into a sorted list of regular files.
func Discover(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	out := matches[:0]
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}
