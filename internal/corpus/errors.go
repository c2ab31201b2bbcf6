package corpus

import (
	"context"
	"errors"
	"io/fs"
)

// Error kinds of the extraction and comparison stages.
var (
	// ErrZeroSentenceCount indicates a document without any detectable
	// sentence boundary; its average sentence length is undefined.
	ErrZeroSentenceCount = errors.New("zero sentence count")

	// ErrMetadataMissing indicates that no bibliographic record (or no
	// usable first-publication year) exists for a document.
	ErrMetadataMissing = errors.New("metadata missing")

	// ErrSizeLimitExceeded indicates a text longer than the segmenter's
	// configured maximum length.
	ErrSizeLimitExceeded = errors.New("size limit exceeded")

	// ErrInsufficientPopulation indicates that a time window holds fewer
	// eligible records than the requested sample size.
	ErrInsufficientPopulation = errors.New("insufficient population")

	// ErrMalformedDocument indicates content that does not match the
	// structure expected for its variant.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrUnsupportedVariant indicates an unknown encoding variant.
	ErrUnsupportedVariant = errors.New("unsupported variant")
)

// Kind is a short, stable label for an error used in logs and run summaries.
type Kind string

const (
	KindZeroSentenceCount      Kind = "zero_sentence_count"
	KindMetadataMissing        Kind = "metadata_missing"
	KindSizeLimitExceeded      Kind = "size_limit_exceeded"
	KindInsufficientPopulation Kind = "insufficient_population"
	KindMalformedDocument      Kind = "malformed_document"
	KindUnsupportedVariant     Kind = "unsupported_variant"
	KindCanceled               Kind = "canceled"
	KindIO                     Kind = "io"
	KindUnknown                Kind = "unknown"
)

// KindOf classifies err by the sentinel it wraps.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrZeroSentenceCount):
		return KindZeroSentenceCount
	case errors.Is(err, ErrMetadataMissing):
		return KindMetadataMissing
	case errors.Is(err, ErrSizeLimitExceeded):
		return KindSizeLimitExceeded
	case errors.Is(err, ErrInsufficientPopulation):
		return KindInsufficientPopulation
	case errors.Is(err, ErrMalformedDocument):
		return KindMalformedDocument
	case errors.Is(err, ErrUnsupportedVariant):
		return KindUnsupportedVariant
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	}
	var perr *fs.PathError
	if errors.As(err, &perr) {
		return KindIO
	}
	return KindUnknown
}
