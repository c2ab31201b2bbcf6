package corpus

import "fmt"

// MetricRecord is the per-document result of an extraction run joined with
// its bibliographic metadata. The average sentence length is derived from the
// counts on demand so that the two can never drift apart.
type MetricRecord struct {
	ID        string
	Author    string
	Title     string
	Year      int
	Tokens    int
	Sentences int
}

// NewMetricRecord validates counts and assembles a record.
func NewMetricRecord(id, author, title string, year int, c Counts) (MetricRecord, error) {
	if c.Tokens < 0 || c.Sentences < 0 {
		return MetricRecord{}, fmt.Errorf("%w: %s: negative counts %d/%d", ErrMalformedDocument, id, c.Tokens, c.Sentences)
	}
	if c.Sentences == 0 {
		return MetricRecord{}, fmt.Errorf("%w: %s", ErrZeroSentenceCount, id)
	}
	return MetricRecord{
		ID:        id,
		Author:    author,
		Title:     title,
		Year:      year,
		Tokens:    c.Tokens,
		Sentences: c.Sentences,
	}, nil
}

// AvgSentenceLength is Tokens / Sentences.
func (r MetricRecord) AvgSentenceLength() float64 {
	return float64(r.Tokens) / float64(r.Sentences)
}

// Counts returns the raw counts behind the record.
func (r MetricRecord) Counts() Counts {
	return Counts{Tokens: r.Tokens, Sentences: r.Sentences}
}
