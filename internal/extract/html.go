package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/hyperifyio/sentlen/internal/corpus"
	"github.com/hyperifyio/sentlen/internal/segment"
)

// HTML handles HTML renditions of literary texts. Every outermost <p> inside
// <body> is segmented like a TEI paragraph, skipping script and navigation
// containers.
type HTML struct {
	Segmenter segment.Segmenter
}

var _ Extractor = HTML{}

func (h HTML) Extract(ctx context.Context, doc corpus.Document) (corpus.Counts, error) {
	seg := h.Segmenter
	if seg == nil {
		seg = segment.UAX29{}
	}
	r, err := charset.NewReader(bytes.NewReader(doc.Content), "")
	if err != nil {
		return corpus.Counts{}, fmt.Errorf("%s: %w: %v", doc.ID, corpus.ErrMalformedDocument, err)
	}
	root, err := html.Parse(r)
	if err != nil {
		return corpus.Counts{}, fmt.Errorf("%s: %w: %v", doc.ID, corpus.ErrMalformedDocument, err)
	}
	body := findFirst(root, "body")
	if body == nil {
		return corpus.Counts{}, fmt.Errorf("%s: %w: no body element", doc.ID, corpus.ErrMalformedDocument)
	}

	var total corpus.Counts
	for _, p := range outermost(body, "p") {
		if err := ctx.Err(); err != nil {
			return corpus.Counts{}, err
		}
		var b strings.Builder
		collectText(&b, p)
		c, err := segmentParagraph(ctx, seg, b.String())
		if err != nil {
			return corpus.Counts{}, fmt.Errorf("%s: %w", doc.ID, err)
		}
		total = total.Add(c)
	}
	return finish(doc, total)
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if res := findFirst(c, tag); res != nil {
			return res
		}
	}
	return nil
}

// outermost returns the tag elements under n that have no tag ancestor
// below n, in document order.
func outermost(n *html.Node, tag string) []*html.Node {
	var res []*html.Node
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if skipElement(c) {
				continue
			}
			if strings.EqualFold(c.Data, tag) {
				res = append(res, c)
				continue
			}
			dfs(c)
		}
	}
	dfs(n)
	return res
}

func skipElement(n *html.Node) bool {
	switch strings.ToLower(n.Data) {
	case "script", "style", "noscript", "nav", "footer", "iframe", "template":
		return true
	}
	return false
}

func collectText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if skipElement(n) {
			return
		}
		if strings.EqualFold(n.Data, "br") {
			b.WriteByte(' ')
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}
}
