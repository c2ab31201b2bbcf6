package table

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hyperifyio/sentlen/internal/corpus"
)

// Header is the column layout of the metric table file.
var Header = []string{"idno", "author", "title", "year", "avgsentlen", "tokens", "sentences"}

const (
	colID = iota
	colAuthor
	colTitle
	colYear
	colAvg
	colTokens
	colSentences
)

// avgTolerance bounds the difference between the stored average and the
// one recomputed from the counts.
const avgTolerance = 1e-6

// ErrCarriageReturn is returned by Write for text fields holding a carriage
// return, which the CSV reader would fold into a plain newline.
var ErrCarriageReturn = errors.New("carriage return in text field")

// Write serializes t as a semicolon-delimited table in identifier order.
// Text fields are written verbatim and read back byte for byte.
func Write(w io.Writer, t *Table) error {
	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)
	cw.Comma = ';'
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range t.Records() {
		for _, f := range []string{r.ID, r.Author, r.Title} {
			if strings.ContainsRune(f, '\r') {
				return fmt.Errorf("%w: %s", ErrCarriageReturn, r.ID)
			}
		}
		row := []string{
			r.ID,
			r.Author,
			r.Title,
			strconv.Itoa(r.Year),
			strconv.FormatFloat(r.AvgSentenceLength(), 'g', -1, 64),
			strconv.Itoa(r.Tokens),
			strconv.Itoa(r.Sentences),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return bw.Flush()
}

// Read parses a table written by Write. Columns are matched by header name,
// so their order may differ.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty metric table", corpus.ErrMalformedDocument)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", corpus.ErrMalformedDocument, err)
	}
	idx, err := columns(head)
	if err != nil {
		return nil, err
	}

	t := New()
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", corpus.ErrMalformedDocument, line, err)
		}
		r, err := parseRow(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		t.Insert(r)
	}
	return t, nil
}

func columns(head []string) ([]int, error) {
	idx := make([]int, len(Header))
	for i := range idx {
		idx[i] = -1
	}
	for i, h := range head {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		for j, want := range Header {
			if strings.EqualFold(h, want) {
				idx[j] = i
			}
		}
	}
	for j, i := range idx {
		if i >= 0 {
			continue
		}
		if (j == colTokens || j == colSentences) && idx[colAvg] >= 0 {
			return nil, fmt.Errorf("%w: missing column %q: avgsentlen alone cannot be verified, re-run extract to write token and sentence counts",
				corpus.ErrMalformedDocument, Header[j])
		}
		return nil, fmt.Errorf("%w: missing column %q", corpus.ErrMalformedDocument, Header[j])
	}
	return idx, nil
}

func parseRow(rec []string, idx []int) (corpus.MetricRecord, error) {
	get := func(col int) string {
		if i := idx[col]; i < len(rec) {
			return rec[i]
		}
		return ""
	}
	num := func(col int) string { return strings.TrimSpace(get(col)) }
	id := get(colID)
	if strings.TrimSpace(id) == "" {
		return corpus.MetricRecord{}, fmt.Errorf("%w: empty identifier", corpus.ErrMalformedDocument)
	}
	year, err := strconv.Atoi(num(colYear))
	if err != nil {
		return corpus.MetricRecord{}, fmt.Errorf("%w: %s: year: %v", corpus.ErrMalformedDocument, id, err)
	}
	tokens, err := strconv.Atoi(num(colTokens))
	if err != nil {
		return corpus.MetricRecord{}, fmt.Errorf("%w: %s: tokens: %v", corpus.ErrMalformedDocument, id, err)
	}
	sents, err := strconv.Atoi(num(colSentences))
	if err != nil {
		return corpus.MetricRecord{}, fmt.Errorf("%w: %s: sentences: %v", corpus.ErrMalformedDocument, id, err)
	}
	r, err := corpus.NewMetricRecord(id, get(colAuthor), get(colTitle), year, corpus.Counts{Tokens: tokens, Sentences: sents})
	if err != nil {
		return corpus.MetricRecord{}, err
	}
	avg, err := strconv.ParseFloat(num(colAvg), 64)
	if err != nil {
		return corpus.MetricRecord{}, fmt.Errorf("%w: %s: avgsentlen: %v", corpus.ErrMalformedDocument, id, err)
	}
	if math.Abs(avg-r.AvgSentenceLength()) > avgTolerance {
		return corpus.MetricRecord{}, fmt.Errorf("%w: %s: avgsentlen %v does not match %d/%d",
			corpus.ErrMalformedDocument, id, avg, tokens, sents)
	}
	return r, nil
}

// WriteFile writes t to path, creating parent directories. The file is
// replaced atomically.
func WriteFile(path string, t *Table) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".table-*.csv")
	if err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	if err := Write(tmp, t); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write table: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write table: %w", err)
	}
	return nil
}

// ReadFile reads the table stored at path.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	defer f.Close()
	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
