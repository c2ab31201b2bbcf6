package extract

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/hyperifyio/sentlen/internal/corpus"
	"github.com/hyperifyio/sentlen/internal/segment"
)

// TEINamespace is the namespace of TEI P5 documents.
const TEINamespace = "http://www.tei-c.org/ns/1.0"

// DefaultSentenceMarker is the n attribute value of sentence-final tokens.
const DefaultSentenceMarker = "SENT"

// isTEI reports whether name is the TEI element local. Documents that omit
// the namespace declaration are accepted as well.
func isTEI(name xml.Name, local string) bool {
	return name.Local == local && (name.Space == TEINamespace || name.Space == "")
}

// tokensPerCheck is how many XML tokens are decoded between context checks.
const tokensPerCheck = 8192

// walkBody streams the XML in content and passes every token nested inside a
// <body> element to fn. The <body> start and end tags themselves are not
// passed. CharData handed to fn is only valid for the duration of the call.
func walkBody(ctx context.Context, content []byte, fn func(xml.Token) error) error {
	d := xml.NewDecoder(bytes.NewReader(content))
	d.Entity = xml.HTMLEntity
	d.CharsetReader = charset.NewReaderLabel

	depth := 0
	sawBody := false
	for n := 1; ; n++ {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %v", corpus.ErrMalformedDocument, err)
		}
		if n%tokensPerCheck == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				if isTEI(t.Name, "body") {
					depth = 1
					sawBody = true
				}
				continue
			}
			depth++
		case xml.EndElement:
			if depth == 0 {
				continue
			}
			if depth--; depth == 0 {
				continue
			}
		default:
			if depth == 0 {
				continue
			}
		}
		if err := fn(tok); err != nil {
			return err
		}
	}
	if !sawBody {
		return fmt.Errorf("%w: no body element", corpus.ErrMalformedDocument)
	}
	return nil
}

// TokenElements handles markup with one <w> element per token and one <s>
// element per sentence.
type TokenElements struct{}

var _ Extractor = TokenElements{}

func (TokenElements) Extract(ctx context.Context, doc corpus.Document) (corpus.Counts, error) {
	var c corpus.Counts
	err := walkBody(ctx, doc.Content, func(tok xml.Token) error {
		if t, ok := tok.(xml.StartElement); ok {
			switch {
			case isTEI(t.Name, "w"):
				c.Tokens++
			case isTEI(t.Name, "s"):
				c.Sentences++
			}
		}
		return nil
	})
	if err != nil {
		return corpus.Counts{}, fmt.Errorf("%s: %w", doc.ID, err)
	}
	return finish(doc, c)
}

// SentenceAttribute handles markup with one <w> element per token where the
// last token of each sentence carries n="<Marker>".
type SentenceAttribute struct {
	Marker string
}

var _ Extractor = SentenceAttribute{}

func (s SentenceAttribute) Extract(ctx context.Context, doc corpus.Document) (corpus.Counts, error) {
	marker := s.Marker
	if marker == "" {
		marker = DefaultSentenceMarker
	}
	var c corpus.Counts
	err := walkBody(ctx, doc.Content, func(tok xml.Token) error {
		t, ok := tok.(xml.StartElement)
		if !ok || !isTEI(t.Name, "w") {
			return nil
		}
		c.Tokens++
		for _, a := range t.Attr {
			if a.Name.Local == "n" && a.Value == marker {
				c.Sentences++
				break
			}
		}
		return nil
	})
	if err != nil {
		return corpus.Counts{}, fmt.Errorf("%s: %w", doc.ID, err)
	}
	return finish(doc, c)
}

// Paragraphs handles markup whose paragraphs hold untokenized running text.
// The text of every outermost <p> under <body>, including the text of its
// descendants, is normalized and segmented separately; the counts add up.
type Paragraphs struct {
	Segmenter segment.Segmenter
}

var _ Extractor = Paragraphs{}

func (p Paragraphs) Extract(ctx context.Context, doc corpus.Document) (corpus.Counts, error) {
	seg := p.Segmenter
	if seg == nil {
		seg = segment.UAX29{}
	}
	var (
		total corpus.Counts
		buf   strings.Builder
		depth int
	)
	err := walkBody(ctx, doc.Content, func(tok xml.Token) error {
		switch t := tok.(type) {
		case xml.StartElement:
			if isTEI(t.Name, "p") {
				depth++
			}
		case xml.EndElement:
			if !isTEI(t.Name, "p") || depth == 0 {
				return nil
			}
			if depth--; depth > 0 {
				return nil
			}
			c, err := segmentParagraph(ctx, seg, buf.String())
			buf.Reset()
			if err != nil {
				return err
			}
			total = total.Add(c)
		case xml.CharData:
			if depth > 0 {
				buf.Write(t)
			}
		}
		return nil
	})
	if err != nil {
		return corpus.Counts{}, fmt.Errorf("%s: %w", doc.ID, err)
	}
	return finish(doc, total)
}

// segmentParagraph normalizes whitespace and segments one paragraph.
// Paragraphs without any text contribute nothing.
func segmentParagraph(ctx context.Context, seg segment.Segmenter, text string) (corpus.Counts, error) {
	text = segment.CollapseWhitespace(text)
	if text == "" {
		return corpus.Counts{}, nil
	}
	return seg.Segment(ctx, text)
}
