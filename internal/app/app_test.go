package app

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/sentlen/internal/corpus"
	"github.com/hyperifyio/sentlen/internal/table"
)

// buildCorpus writes n token-tagged documents per year range into dir and
// returns the metadata path. Documents from the early range have short
// sentences, later ones long sentences.
func buildCorpus(t *testing.T, dir string) string {
	t.Helper()
	texts := filepath.Join(dir, "texts")
	require.NoError(t, os.MkdirAll(texts, 0o755))
	var meta strings.Builder
	meta.WriteString("idno;author;title;year\n")
	write := func(id string, year, wordsPerSentence int) {
		var b strings.Builder
		b.WriteString(`<TEI xmlns="http://www.tei-c.org/ns/1.0"><text><body>`)
		for s := 0; s < 3; s++ {
			b.WriteString("<s>")
			for w := 0; w < wordsPerSentence; w++ {
				b.WriteString("<w>mot</w>")
			}
			b.WriteString("</s>")
		}
		b.WriteString(`</body></text></TEI>`)
		require.NoError(t, os.WriteFile(filepath.Join(texts, id+".xml"), []byte(b.String()), 0o644))
		fmt.Fprintf(&meta, "%s;Author %s;Title %s;%d\n", id, id, id, year)
	}
	for i := 0; i < 8; i++ {
		write(fmt.Sprintf("E%02d", i), 1840+i, 5+i)
		write(fmt.Sprintf("L%02d", i), 1900+i, 30+i)
	}
	// One document without sentences, skipped during extraction.
	require.NoError(t, os.WriteFile(filepath.Join(texts, "Z00.xml"),
		[]byte(`<TEI><text><body><w>seul</w></body></text></TEI>`), 0o644))
	meta.WriteString("Z00;Nobody;Nothing;1845\n")

	p := filepath.Join(dir, "meta.csv")
	require.NoError(t, os.WriteFile(p, []byte(meta.String()), 0o644))
	return p
}

func testConfig(t *testing.T) Config {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Dataset = "test"
	cfg.Variant = string(corpus.VariantTokenElements)
	cfg.MetadataPath = buildCorpus(t, dir)
	cfg.InputGlob = filepath.Join(dir, "texts", "*.xml")
	cfg.ResultsDir = filepath.Join(dir, "results")
	cfg.CacheDir = filepath.Join(dir, "cache")
	cfg.Workers = 3
	cfg.SampleSize = 6
	cfg.Seed, cfg.SeedSet = 11, true
	cfg.WindowA = corpus.TimeWindow{Start: 1840, End: 1859}
	cfg.WindowB = corpus.TimeWindow{Start: 1900, End: 1919}
	cfg.EnablePDF = true
	return cfg
}

func TestExtractSampleCompare(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	a := New(cfg)

	ex, err := a.Extract(ctx)
	require.NoError(t, err)
	assert.Equal(t, 16, ex.Records)
	assert.Equal(t, 16, ex.Summary.Processed)
	assert.Equal(t, map[corpus.Kind]int{corpus.KindZeroSentenceCount: 1}, ex.Summary.Skipped)
	assert.FileExists(t, ex.TablePath)
	assert.FileExists(t, ex.SummaryPath)

	tbl, err := table.ReadFile(ex.TablePath)
	require.NoError(t, err)
	r, ok := tbl.Get("E00")
	require.True(t, ok)
	assert.InDelta(t, 5.0, r.AvgSentenceLength(), 1e-12)

	cmp, err := a.Compare(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, cmp.Result.A.Len())
	assert.Equal(t, 6, cmp.Result.B.Len())
	assert.InDelta(t, 0, cmp.Result.U, 1e-9)
	assert.Less(t, cmp.Result.P, 0.01)
	assert.Equal(t, uint64(11), cmp.Info.Seed)
	for _, p := range []string{cmp.Paths.Markdown, cmp.Paths.JSON, cmp.Paths.Values, cmp.Paths.PDF} {
		assert.FileExists(t, p)
	}
	assert.Contains(t, cmp.Paths.Markdown, "comparison_1840-1859-vs-1900-1919")

	again, err := New(cfg).Compare(ctx)
	require.NoError(t, err)
	assert.Equal(t, cmp.Result.A.IDs, again.Result.A.IDs, "same seed, same sample")

	scfg := cfg
	scfg.SampleWindow = corpus.TimeWindow{Start: 1900, End: 1909}
	scfg.SamplingMode = "stratified"
	scfg.SampleSize = 4
	smp, err := New(scfg).Sample(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, smp.Sample.Len())
	sub, err := table.ReadFile(smp.Path)
	require.NoError(t, err)
	assert.Equal(t, 4, sub.Len())
}

func TestExtract_SQLiteAndCache(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.TablePath = filepath.Join(cfg.ResultsDir, "metrics.db")

	first, err := New(cfg).Extract(ctx)
	require.NoError(t, err)
	assert.Zero(t, first.Summary.CacheHits)

	second, err := New(cfg).Extract(ctx)
	require.NoError(t, err)
	assert.Equal(t, 16, second.Summary.CacheHits)

	tbl, err := LoadTable(ctx, cfg.TablePath)
	require.NoError(t, err)
	assert.Equal(t, 16, tbl.Len())

	early, err := LoadWindows(ctx, cfg.TablePath, corpus.TimeWindow{Start: 1840, End: 1843})
	require.NoError(t, err)
	assert.Equal(t, 4, early.Len())

	cmp, err := New(cfg).Compare(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, cmp.Result.A.Len())
	assert.Less(t, cmp.Result.P, 0.01)

	csvCfg := testConfig(t)
	_, err = New(csvCfg).Extract(ctx)
	require.NoError(t, err)
	fromCSV, err := New(csvCfg).Compare(ctx)
	require.NoError(t, err)
	assert.Equal(t, fromCSV.Result.A.IDs, cmp.Result.A.IDs, "same draw from CSV and SQLite tables")
}

func TestLoadTable_MissingSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "missing.db")

	_, err := LoadTable(ctx, path)
	require.ErrorIs(t, err, fs.ErrNotExist)
	_, err = LoadWindows(ctx, path, corpus.TimeWindow{Start: 1800, End: 1899})
	require.ErrorIs(t, err, fs.ErrNotExist)
	assert.NoFileExists(t, path)
}

func TestExtract_MergeIntoNewSQLite(t *testing.T) {
	cfg := testConfig(t)
	cfg.TablePath = filepath.Join(cfg.ResultsDir, "fresh.db")
	cfg.MergeExisting = true
	res, err := New(cfg).Extract(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 16, res.Records)
}

func TestExtract_Merge(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	prev := table.FromRecords([]corpus.MetricRecord{{ID: "OLD", Year: 1700, Tokens: 9, Sentences: 3}})
	require.NoError(t, SaveTable(ctx, TablePath(cfg), prev))

	cfg.MergeExisting = true
	res, err := New(cfg).Extract(ctx)
	require.NoError(t, err)
	assert.Equal(t, 17, res.Records)
}

func TestExtract_NoDocuments(t *testing.T) {
	cfg := testConfig(t)
	cfg.InputGlob = filepath.Join(t.TempDir(), "*.xml")
	_, err := New(cfg).Extract(context.Background())
	require.ErrorIs(t, err, ErrNoDocuments)
}

func TestCompare_InsufficientPopulation(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	_, err := New(cfg).Extract(ctx)
	require.NoError(t, err)
	cfg.SampleSize = 9
	_, err = New(cfg).Compare(ctx)
	require.ErrorIs(t, err, corpus.ErrInsufficientPopulation)
}
