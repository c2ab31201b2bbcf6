// Package segment counts tokens and sentence boundaries in running text. It
// is the tokenizer/sentence splitter used by the extraction variants that do
// not carry their own token markup.
package segment

import (
	"context"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/sentences"
	"github.com/clipperhouse/uax29/v2/words"
	"golang.org/x/text/unicode/norm"

	"github.com/hyperifyio/sentlen/internal/corpus"
)

// DefaultMaxLength is the largest text, in characters, accepted by a single
// Segment call unless configured otherwise.
const DefaultMaxLength = 15_000_000

// Segmenter splits text into tokens and sentences and reports how many of
// each it found.
type Segmenter interface {
	Segment(ctx context.Context, text string) (corpus.Counts, error)
}

// Func adapts a plain function to the Segmenter interface.
type Func func(ctx context.Context, text string) (corpus.Counts, error)

func (f Func) Segment(ctx context.Context, text string) (corpus.Counts, error) { return f(ctx, text) }

// UAX29 segments text by the Unicode word and sentence boundary rules.
// Every non-blank word segment (words, numbers and punctuation marks) counts
// as a token; every non-blank sentence segment counts as one sentence.
type UAX29 struct {
	// MaxLength bounds the input length in characters. Zero selects
	// DefaultMaxLength.
	MaxLength int
}

var _ Segmenter = UAX29{}

// Limit returns the effective maximum length.
func (u UAX29) Limit() int {
	if u.MaxLength <= 0 {
		return DefaultMaxLength
	}
	return u.MaxLength
}

// CheckLength fails with corpus.ErrSizeLimitExceeded when text is longer
// than limit characters.
func CheckLength(text string, limit int) error {
	// A string never has more runes than bytes.
	if len(text) <= limit {
		return nil
	}
	if n := utf8.RuneCountInString(text); n > limit {
		return fmt.Errorf("%w: %d characters, limit %d", corpus.ErrSizeLimitExceeded, n, limit)
	}
	return nil
}

// checkEvery is how many segments are consumed between context checks.
const checkEvery = 4096

func (u UAX29) Segment(ctx context.Context, text string) (corpus.Counts, error) {
	if err := CheckLength(text, u.Limit()); err != nil {
		return corpus.Counts{}, err
	}
	text = norm.NFC.String(text)

	var c corpus.Counts
	seen := 0
	tokens := words.FromString(text)
	for tokens.Next() {
		if !isBlank(tokens.Value()) {
			c.Tokens++
		}
		if seen++; seen%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return corpus.Counts{}, err
			}
		}
	}
	sents := sentences.FromString(text)
	for sents.Next() {
		if !isBlank(sents.Value()) {
			c.Sentences++
		}
	}
	return c, ctx.Err()
}

func isBlank(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
