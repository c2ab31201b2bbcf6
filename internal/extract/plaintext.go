package extract

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/hyperifyio/sentlen/internal/corpus"
	"github.com/hyperifyio/sentlen/internal/segment"
)

// PlainText handles untagged running text such as Project Gutenberg files.
// The whole document is segmented as one unit.
type PlainText struct {
	Segmenter segment.Segmenter
	// MaxLength bounds the decoded text in characters. Zero selects
	// segment.DefaultMaxLength.
	MaxLength      int
	Encoding       string
	StripGutenberg bool
}

var _ Extractor = PlainText{}

func (p PlainText) Extract(ctx context.Context, doc corpus.Document) (corpus.Counts, error) {
	limit := p.MaxLength
	if limit <= 0 {
		limit = segment.DefaultMaxLength
	}
	seg := p.Segmenter
	if seg == nil {
		seg = segment.UAX29{MaxLength: limit}
	}
	text, err := Decode(doc.Content, p.Encoding)
	if err != nil {
		return corpus.Counts{}, fmt.Errorf("%s: %w", doc.ID, err)
	}
	if p.StripGutenberg {
		text = StripGutenberg(text)
	}
	if err := segment.CheckLength(text, limit); err != nil {
		return corpus.Counts{}, fmt.Errorf("%s: %w", doc.ID, err)
	}
	c, err := seg.Segment(ctx, text)
	if err != nil {
		return corpus.Counts{}, fmt.Errorf("%s: %w", doc.ID, err)
	}
	return finish(doc, c)
}

// Decode converts b to a UTF-8 string. name is an encoding label as
// understood by browsers ("utf-8", "latin1", "windows-1252", "utf-16le",
// ...). The empty name means UTF-8; "auto" means UTF-8 when b is valid
// UTF-8 and Windows-1252 otherwise. A leading byte order mark always wins.
func Decode(b []byte, name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	var enc encoding.Encoding
	switch name {
	case "", "utf-8", "utf8":
		enc = unicode.UTF8
	case "auto":
		enc = unicode.UTF8
		if !utf8.Valid(b) && !hasBOM(b) {
			enc = charmap.Windows1252
		}
	default:
		e, err := htmlindex.Get(name)
		if err != nil {
			return "", fmt.Errorf("%w: unknown encoding %q", corpus.ErrMalformedDocument, name)
		}
		enc = e
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(enc.NewDecoder()), b)
	if err != nil {
		return "", fmt.Errorf("%w: decode %s: %v", corpus.ErrMalformedDocument, name, err)
	}
	return string(out), nil
}

func hasBOM(b []byte) bool {
	switch {
	case len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF:
		return true
	case len(b) >= 2 && ((b[0] == 0xFE && b[1] == 0xFF) || (b[0] == 0xFF && b[1] == 0xFE)):
		return true
	}
	return false
}

var (
	gutenbergStart = []string{
		"*** START OF THE PROJECT GUTENBERG",
		"*** START OF THIS PROJECT GUTENBERG",
		"***START OF THE PROJECT GUTENBERG",
	}
	gutenbergEnd = []string{
		"*** END OF THE PROJECT GUTENBERG",
		"*** END OF THIS PROJECT GUTENBERG",
		"***END OF THE PROJECT GUTENBERG",
		"End of the Project Gutenberg",
		"End of Project Gutenberg",
	}
)

// StripGutenberg returns the text between the Project Gutenberg start and
// end marker lines. Missing markers leave the corresponding end untouched.
func StripGutenberg(text string) string {
	if i := indexLine(text, gutenbergStart); i >= 0 {
		if nl := strings.IndexByte(text[i:], '\n'); nl >= 0 {
			text = text[i+nl+1:]
		} else {
			text = ""
		}
	}
	if i := indexLine(text, gutenbergEnd); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

// indexLine returns the offset of the first line starting with one of the
// markers, ignoring case and leading whitespace, or -1.
func indexLine(text string, markers []string) int {
	off := 0
	for off < len(text) {
		end := strings.IndexByte(text[off:], '\n')
		line := text[off:]
		if end >= 0 {
			line = text[off : off+end]
		}
		trimmed := strings.TrimLeft(line, " \t\ufeff")
		for _, m := range markers {
			if len(trimmed) >= len(m) && strings.EqualFold(trimmed[:len(m)], m) {
				return off
			}
		}
		if end < 0 {
			break
		}
		off += end + 1
	}
	return -1
}
