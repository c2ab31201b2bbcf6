package metadata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/sentlen/internal/corpus"
)

func TestRead_DefaultColumns(t *testing.T) {
	src := "idno;author;title;year\n" +
		"FRA001;Balzac;Le Père Goriot;1835\n" +
		"FRA002;Sand;Indiana;1832.0\n" +
		"FRA003;Anon;Untitled;NA\n"
	tbl, err := Read(strings.NewReader(src), Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())

	e, err := tbl.Lookup("FRA001")
	require.NoError(t, err)
	assert.Equal(t, Entry{Key: "FRA001", Author: "Balzac", Title: "Le Père Goriot", Year: 1835, HasYear: true}, e)

	e, err = tbl.Lookup("FRA002")
	require.NoError(t, err)
	assert.Equal(t, 1832, e.Year)

	_, err = tbl.Lookup("FRA003")
	require.ErrorIs(t, err, corpus.ErrMetadataMissing)
	raw, ok := tbl.Entry("FRA003")
	require.True(t, ok)
	assert.False(t, raw.HasYear)

	_, err = tbl.Lookup("FRA999")
	require.ErrorIs(t, err, corpus.ErrMetadataMissing)
}

func TestRead_ELTeCColumns(t *testing.T) {
	src := "xmlid\tau-name\ttitle\tfirsted-yr\n" +
		"FRA00101\tZola, Émile\tNana\t1880\n"
	tbl, err := Read(strings.NewReader(src), Options{
		Delimiter:    '\t',
		YearColumn:   "firsted-yr",
		AuthorColumn: "au-name",
	})
	require.NoError(t, err)
	e, err := tbl.Lookup("FRA00101")
	require.NoError(t, err)
	assert.Equal(t, "Zola, Émile", e.Author)
	assert.Equal(t, 1880, e.Year)
}

func TestRead_IDColumnAndMissingOptionalColumns(t *testing.T) {
	src := "year-ref;idno\n1901;PG100\n"
	tbl, err := Read(strings.NewReader(src), Options{IDColumn: "idno", YearColumn: "year-ref"})
	require.NoError(t, err)
	e, err := tbl.Lookup("PG100")
	require.NoError(t, err)
	assert.Equal(t, 1901, e.Year)
	assert.Empty(t, e.Author)
}

func TestRead_Errors(t *testing.T) {
	_, err := Read(strings.NewReader(""), Options{})
	require.Error(t, err)

	_, err = Read(strings.NewReader("idno;author\nx;y\n"), Options{})
	require.ErrorContains(t, err, `"year"`)

	_, err = Read(strings.NewReader("a;year\n"), Options{IDColumn: "idno"})
	require.ErrorContains(t, err, `"idno"`)
}

func TestParseYear(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"1850", 1850, true},
		{" 1850.0 ", 1850, true},
		{"1850.5", 0, false},
		{"", 0, false},
		{"NA", 0, false},
		{"nan", 0, false},
		{"circa 1850", 0, false},
	}
	for _, c := range cases {
		y, ok := ParseYear(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		assert.Equal(t, c.want, y, c.in)
	}
}

func TestParseDelimiter(t *testing.T) {
	for in, want := range map[string]rune{"": 0, "tab": '\t', `\t`: '\t', ";": ';', "comma": ',', "|": '|'} {
		got, err := ParseDelimiter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDelimiter(";;")
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffidno;year\nA;1900\n"), 0o644))
	tbl, err := Load(path, Options{})
	require.NoError(t, err)
	_, err = tbl.Lookup("A")
	require.NoError(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"), Options{})
	require.Error(t, err)
	assert.Equal(t, corpus.KindIO, corpus.KindOf(err))
}

func TestRead_CarriageReturnInTitle(t *testing.T) {
	src := "idno;author;title;year\nX1;A;\"first\rsecond\";1850\n"
	tbl, err := Read(strings.NewReader(src), Options{})
	require.NoError(t, err)
	e, err := tbl.Lookup("X1")
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", e.Title)
}
