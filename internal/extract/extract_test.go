package extract

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/sentlen/internal/corpus"
	"github.com/hyperifyio/sentlen/internal/segment"
)

// fieldSegmenter counts whitespace-separated words and full stops, and
// remembers every text it was given.
type fieldSegmenter struct {
	mu    sync.Mutex
	texts []string
}

func (f *fieldSegmenter) Segment(_ context.Context, text string) (corpus.Counts, error) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	return corpus.Counts{Tokens: len(strings.Fields(text)), Sentences: strings.Count(text, ".")}, nil
}

func doc(v corpus.Variant, content string) corpus.Document {
	return corpus.Document{ID: "doc1", Variant: v, Content: []byte(content)}
}

const teiHeader = `<teiHeader><fileDesc><p>Header text. Not counted.</p><w n="SENT">x</w><s/></fileDesc></teiHeader>`

func TestTokenElements(t *testing.T) {
	src := `<?xml version="1.0" encoding="UTF-8"?>
<TEI xmlns="http://www.tei-c.org/ns/1.0">` + teiHeader + `
<text><body><p>
  <s><w>Le</w> <w>chat</w> <w>dort</w><w>.</w></s>
  <s><w>Fin</w></s>
</p></body></text></TEI>`
	c, err := TokenElements{}.Extract(context.Background(), doc(corpus.VariantTokenElements, src))
	require.NoError(t, err)
	assert.Equal(t, corpus.Counts{Tokens: 5, Sentences: 2}, c)
}

func TestTokenElements_ZeroSentences(t *testing.T) {
	src := `<TEI><text><body><p><w>un</w><w>deux</w></p></body></text></TEI>`
	_, err := TokenElements{}.Extract(context.Background(), doc(corpus.VariantTokenElements, src))
	require.ErrorIs(t, err, corpus.ErrZeroSentenceCount)
}

func TestSentenceAttribute(t *testing.T) {
	src := `<TEI xmlns="http://www.tei-c.org/ns/1.0">` + teiHeader + `<text><body>
<w n="NOM">Il</w><w n="VER">pleut</w><w n="SENT">.</w>
<w n="ADV">Encore</w><w n="SENT">!</w>
</body></text></TEI>`
	c, err := SentenceAttribute{}.Extract(context.Background(), doc(corpus.VariantSentenceAttribute, src))
	require.NoError(t, err)
	assert.Equal(t, corpus.Counts{Tokens: 5, Sentences: 2}, c)

	c, err = SentenceAttribute{Marker: "ADV"}.Extract(context.Background(), doc(corpus.VariantSentenceAttribute, src))
	require.NoError(t, err)
	assert.Equal(t, corpus.Counts{Tokens: 5, Sentences: 1}, c)
}

func TestParagraphs(t *testing.T) {
	src := `<?xml version="1.0"?>
<TEI xmlns="http://www.tei-c.org/ns/1.0">` + teiHeader + `<text><front><p>Front matter.</p></front><body>
<div>
  <p>Hello <hi>big</hi>
     world.</p>
  <p>   </p>
  <p>Outer one. <p>Inner two.</p> after&nbsp;it.</p>
</div>
</body></text></TEI>`
	seg := &fieldSegmenter{}
	c, err := Paragraphs{Segmenter: seg}.Extract(context.Background(), doc(corpus.VariantParagraphs, src))
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello big world.", "Outer one. Inner two. after\u00a0it."}, seg.texts)
	assert.Equal(t, corpus.Counts{Tokens: 9, Sentences: 4}, c)
}

func TestParagraphs_OrderDoesNotMatter(t *testing.T) {
	p1 := `<p>One two three.</p>`
	p2 := `<p>Four. Five.</p>`
	p3 := `<p>Six seven eight nine.</p>`
	wrap := func(ps ...string) string {
		return `<TEI><text><body>` + strings.Join(ps, "") + `</body></text></TEI>`
	}
	ex := Paragraphs{Segmenter: &fieldSegmenter{}}
	a, err := ex.Extract(context.Background(), doc(corpus.VariantParagraphs, wrap(p1, p2, p3)))
	require.NoError(t, err)
	b, err := ex.Extract(context.Background(), doc(corpus.VariantParagraphs, wrap(p3, p1, p2)))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBoundaryVariants_OrderDoesNotMatter(t *testing.T) {
	cases := []struct {
		name  string
		ex    Extractor
		v     corpus.Variant
		parts []string
		want  corpus.Counts
	}{
		{
			name: "token elements",
			ex:   TokenElements{},
			v:    corpus.VariantTokenElements,
			parts: []string{
				`<s><w>a</w><w>b</w></s>`, `<w>c</w>`, `<s/>`, `<p><w>d</w><s><w>e</w></s></p>`, `<w>f</w>`,
			},
			want: corpus.Counts{Tokens: 6, Sentences: 3},
		},
		{
			name: "sentence attribute",
			ex:   SentenceAttribute{},
			v:    corpus.VariantSentenceAttribute,
			parts: []string{
				`<w n="NOM">a</w>`, `<w n="SENT">.</w>`, `<w>b</w>`, `<p><w n="VER">c</w><w n="SENT">!</w></p>`, `<w n="SENT">?</w>`,
			},
			want: corpus.Counts{Tokens: 6, Sentences: 3},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rng := rand.New(rand.NewPCG(1, 2))
			parts := append([]string(nil), tc.parts...)
			for i := 0; i < 20; i++ {
				rng.Shuffle(len(parts), func(a, b int) { parts[a], parts[b] = parts[b], parts[a] })
				src := `<TEI xmlns="http://www.tei-c.org/ns/1.0"><text><body>` + strings.Join(parts, "\n") + `</body></text></TEI>`
				c, err := tc.ex.Extract(context.Background(), doc(tc.v, src))
				require.NoError(t, err, src)
				require.Equal(t, tc.want, c, src)

				r, err := corpus.NewMetricRecord("doc1", "", "", 1850, c)
				require.NoError(t, err)
				assert.Equal(t, float64(c.Tokens)/float64(c.Sentences), r.AvgSentenceLength())
			}
		})
	}
}

func TestParagraphs_UAX29(t *testing.T) {
	src := `<TEI><text><body><p>Hello world. How are you?</p></body></text></TEI>`
	c, err := Paragraphs{Segmenter: segment.UAX29{}}.Extract(context.Background(), doc(corpus.VariantParagraphs, src))
	require.NoError(t, err)
	assert.Equal(t, corpus.Counts{Tokens: 7, Sentences: 2}, c)
}

func TestTEI_MalformedDocuments(t *testing.T) {
	cases := map[string]string{
		"no body":    `<TEI><text><front><p>x.</p></front></text></TEI>`,
		"unbalanced": `<TEI><text><body><p>x.</body></text></TEI>`,
		"not xml":    `plain words, no markup at all`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := TokenElements{}.Extract(context.Background(), doc(corpus.VariantTokenElements, src))
			require.ErrorIs(t, err, corpus.ErrMalformedDocument)
			assert.Equal(t, corpus.KindMalformedDocument, corpus.KindOf(err))
		})
	}
}

func TestTEI_Latin1Declaration(t *testing.T) {
	src := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><TEI><text><body><p>Caf\xe9 cr\xe8me.</p></body></text></TEI>")
	seg := &fieldSegmenter{}
	_, err := Paragraphs{Segmenter: seg}.Extract(context.Background(), corpus.Document{ID: "l1", Content: src})
	require.NoError(t, err)
	assert.Equal(t, []string{"Café crème."}, seg.texts)
}

func TestPlainText_Gutenberg(t *testing.T) {
	src := `The Project Gutenberg eBook of Something. License blah.

*** START OF THE PROJECT GUTENBERG EBOOK SOMETHING ***

It was a dark night. The end.

*** END OF THE PROJECT GUTENBERG EBOOK SOMETHING ***
More license. Lots of it.`
	seg := &fieldSegmenter{}
	c, err := PlainText{Segmenter: seg, StripGutenberg: true}.Extract(context.Background(), doc(corpus.VariantPlainText, src))
	require.NoError(t, err)
	assert.Equal(t, []string{"It was a dark night. The end."}, seg.texts)
	assert.Equal(t, corpus.Counts{Tokens: 7, Sentences: 2}, c)

	c, err = PlainText{Segmenter: seg}.Extract(context.Background(), doc(corpus.VariantPlainText, src))
	require.NoError(t, err)
	assert.Greater(t, c.Sentences, 2)
}

func TestStripGutenberg_NoMarkers(t *testing.T) {
	assert.Equal(t, "Just text.", StripGutenberg("  Just text.\n"))
}

func TestPlainText_SizeLimit(t *testing.T) {
	seg := &fieldSegmenter{}
	_, err := PlainText{Segmenter: seg, MaxLength: 10}.Extract(context.Background(), doc(corpus.VariantPlainText, "This text is too long."))
	require.ErrorIs(t, err, corpus.ErrSizeLimitExceeded)
	assert.Empty(t, seg.texts, "segmenter must not run on oversized input")
}

func TestPlainText_ZeroSentences(t *testing.T) {
	_, err := PlainText{Segmenter: &fieldSegmenter{}}.Extract(context.Background(), doc(corpus.VariantPlainText, "no full stop here"))
	require.ErrorIs(t, err, corpus.ErrZeroSentenceCount)
}

func TestDecode(t *testing.T) {
	latin := []byte{'c', 'a', 'f', 0xE9}
	s, err := Decode(latin, "latin1")
	require.NoError(t, err)
	assert.Equal(t, "café", s)

	s, err = Decode(latin, "auto")
	require.NoError(t, err)
	assert.Equal(t, "café", s)

	s, err = Decode([]byte("\xEF\xBB\xBFcafé"), "")
	require.NoError(t, err)
	assert.Equal(t, "café", s)

	s, err = Decode([]byte{0xFF, 0xFE, 'h', 0, 'i', 0}, "utf-8")
	require.NoError(t, err)
	assert.Equal(t, "hi", s)

	_, err = Decode(latin, "klingon-8")
	require.ErrorIs(t, err, corpus.ErrMalformedDocument)
}

func TestHTML(t *testing.T) {
	src := `<!doctype html>
<html><head><title>T</title><script>var x = "No. No.";</script></head>
<body>
  <nav><p>Menu. Links.</p></nav>
  <p>Il était une fois.</p>
  <div><p>Deux phrases<br>ici. Voilà.</p></div>
</body></html>`
	seg := &fieldSegmenter{}
	c, err := HTML{Segmenter: seg}.Extract(context.Background(), doc(corpus.VariantHTML, src))
	require.NoError(t, err)
	assert.Equal(t, []string{"Il était une fois.", "Deux phrases ici. Voilà."}, seg.texts)
	assert.Equal(t, corpus.Counts{Tokens: 8, Sentences: 3}, c)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(Options{Segmenter: &fieldSegmenter{}})
	for _, v := range corpus.Variants() {
		e, err := r.For(v)
		require.NoError(t, err, v)
		assert.NotNil(t, e)
	}
	_, err := r.For("docx")
	require.ErrorIs(t, err, corpus.ErrUnsupportedVariant)

	c, err := r.Extract(context.Background(), doc(corpus.VariantSentenceAttribute,
		`<TEI><text><body><w n="SENT">Oui</w></body></text></TEI>`))
	require.NoError(t, err)
	assert.Equal(t, corpus.Counts{Tokens: 1, Sentences: 1}, c)
}

func TestOptionsFingerprint(t *testing.T) {
	a := Options{}.Fingerprint()
	assert.Equal(t, a, Options{SentenceMarker: "SENT"}.Fingerprint())
	assert.NotEqual(t, a, Options{StripGutenberg: true}.Fingerprint())
	assert.NotEqual(t, a, Options{MaxLength: 10}.Fingerprint())
}

func TestExtract_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := `<html><body><p>Un.</p></body></html>`
	_, err := HTML{Segmenter: &fieldSegmenter{}}.Extract(ctx, doc(corpus.VariantHTML, src))
	require.ErrorIs(t, err, context.Canceled)
}
