// Package metadata loads bibliographic metadata tables keyed by document
// identifier.
package metadata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/hyperifyio/sentlen/internal/corpus"
)

// Options maps dataset-specific column names onto metadata fields.
type Options struct {
	// Delimiter separates fields. Zero selects ';'.
	Delimiter rune
	// IDColumn names the key column. Empty selects the first column.
	IDColumn     string
	YearColumn   string
	AuthorColumn string
	TitleColumn  string
}

func (o Options) withDefaults() Options {
	if o.Delimiter == 0 {
		o.Delimiter = ';'
	}
	if o.YearColumn == "" {
		o.YearColumn = "year"
	}
	if o.AuthorColumn == "" {
		o.AuthorColumn = "author"
	}
	if o.TitleColumn == "" {
		o.TitleColumn = "title"
	}
	return o
}

// ParseDelimiter accepts a single character or one of the names "tab",
// "semicolon", "comma".
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case "tab", `\t`, "\t":
		return '\t', nil
	case "semicolon":
		return ';', nil
	case "comma":
		return ',', nil
	}
	r := []rune(s)
	if len(r) != 1 || r[0] == '\r' || r[0] == '\n' || r[0] == '"' {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r[0], nil
}

// Entry is the metadata of one document.
type Entry struct {
	Key    string
	Author string
	Title  string
	Year   int
	// HasYear is false when the year cell was empty or not a number.
	HasYear bool
}

// Table holds metadata entries by key. It is read-only after loading.
type Table struct {
	entries map[string]Entry
}

// Load reads a metadata table from path.
func Load(path string, opts Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open metadata: %w", err)
	}
	defer f.Close()
	t, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Read parses a delimited metadata table with a header row. Later rows
// replace earlier rows with the same key.
func Read(r io.Reader, opts Options) (*Table, error) {
	opts = opts.withDefaults()
	cr := csv.NewReader(r)
	cr.Comma = opts.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("metadata: empty table")
	}
	if err != nil {
		return nil, fmt.Errorf("metadata header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	idCol := 0
	if opts.IDColumn != "" {
		if idCol = column(header, opts.IDColumn); idCol < 0 {
			return nil, fmt.Errorf("metadata: no %q column", opts.IDColumn)
		}
	}
	yearCol := column(header, opts.YearColumn)
	if yearCol < 0 {
		return nil, fmt.Errorf("metadata: no %q column", opts.YearColumn)
	}
	authorCol := column(header, opts.AuthorColumn)
	titleCol := column(header, opts.TitleColumn)

	t := &Table{entries: make(map[string]Entry)}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("metadata row: %w", err)
		}
		key := strings.TrimSpace(cell(rec, idCol))
		if key == "" {
			continue
		}
		e := Entry{
			Key:    key,
			Author: text(cell(rec, authorCol)),
			Title:  text(cell(rec, titleCol)),
		}
		e.Year, e.HasYear = ParseYear(cell(rec, yearCol))
		t.entries[key] = e
	}
	return t, nil
}

// text trims a free-text cell and turns stray carriage returns into
// newlines so the value can be stored in the metric table.
func text(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\r", "\n")
}

// column finds name in header, ignoring case and surrounding space.
func column(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

// ParseYear parses integer years and integral decimals such as "1850.0".
// Empty cells and NA markers yield ok == false.
func ParseYear(s string) (year int, ok bool) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "na", "nan", "n/a", "none", "null":
		return 0, false
	}
	if y, err := strconv.Atoi(s); err == nil {
		return y, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Entry returns the entry stored under key.
func (t *Table) Entry(key string) (Entry, bool) {
	e, ok := t.entries[key]
	return e, ok
}

// Lookup returns the entry for key. A missing entry or an entry without a
// usable year is corpus.ErrMetadataMissing.
func (t *Table) Lookup(key string) (Entry, error) {
	e, ok := t.entries[key]
	if !ok {
		return Entry{}, fmt.Errorf("%w: no entry for %q", corpus.ErrMetadataMissing, key)
	}
	if !e.HasYear {
		return Entry{}, fmt.Errorf("%w: no year for %q", corpus.ErrMetadataMissing, key)
	}
	return e, nil
}
