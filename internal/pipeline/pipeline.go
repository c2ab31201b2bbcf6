// Package pipeline runs batch extraction: read every document, extract its
// counts, join them with metadata and insert the result into a table.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/sentlen/internal/cache"
	"github.com/hyperifyio/sentlen/internal/corpus"
	"github.com/hyperifyio/sentlen/internal/extract"
	"github.com/hyperifyio/sentlen/internal/metric"
	"github.com/hyperifyio/sentlen/internal/table"
)

// Options configures a batch run.
type Options struct {
	Variant   corpus.Variant
	Extractor extract.Extractor
	// Fingerprint identifies the extraction settings in cache keys.
	Fingerprint string
	Builder     metric.Builder
	// Cache is optional.
	Cache *cache.CountsCache
	// Workers bounds concurrent extractions. Zero selects runtime.NumCPU().
	Workers int
}

// Failure describes one skipped document.
type Failure struct {
	ID   string      `json:"id"`
	Path string      `json:"path"`
	Kind corpus.Kind `json:"kind"`
	Err  string      `json:"error"`
}

// Summary reports the outcome of a batch run.
type Summary struct {
	RunID     uuid.UUID           `json:"run_id"`
	Started   time.Time           `json:"started"`
	Duration  time.Duration       `json:"duration"`
	Processed int                 `json:"processed"`
	CacheHits int                 `json:"cache_hits"`
	Skipped   map[corpus.Kind]int `json:"skipped"`
	Failures  []Failure           `json:"failures,omitempty"`
}

// SkippedTotal returns the number of skipped documents.
func (s Summary) SkippedTotal() int {
	n := 0
	for _, c := range s.Skipped {
		n += c
	}
	return n
}

// Run processes paths and inserts one record per successful document into
// t. Per-document failures are logged and recorded in the summary; they do
// not stop the run. Only cancellation of ctx aborts it, in which case the
// partial summary is returned together with the context error.
func Run(ctx context.Context, paths []string, opt Options, t *table.Table) (Summary, error) {
	if opt.Extractor == nil {
		return Summary{}, errors.New("pipeline: no extractor configured")
	}
	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	sum := Summary{
		RunID:   uuid.New(),
		Started: time.Now().UTC(),
		Skipped: make(map[corpus.Kind]int),
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			id, hit, err := processOne(gctx, path, opt, t)
			if err != nil && gctx.Err() != nil && errors.Is(err, gctx.Err()) {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				kind := corpus.KindOf(err)
				sum.Skipped[kind]++
				sum.Failures = append(sum.Failures, Failure{ID: id, Path: path, Kind: kind, Err: err.Error()})
				log.Warn().Err(err).Str("id", id).Str("kind", string(kind)).Msg("skipping document")
				return nil
			}
			sum.Processed++
			if hit {
				sum.CacheHits++
			}
			return nil
		})
	}
	err := g.Wait()
	sort.Slice(sum.Failures, func(i, j int) bool { return sum.Failures[i].Path < sum.Failures[j].Path })
	sum.Duration = time.Since(sum.Started)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return sum, fmt.Errorf("extraction run %s: %w", sum.RunID, err)
	}
	log.Info().
		Str("run", sum.RunID.String()).
		Int("processed", sum.Processed).
		Int("skipped", sum.SkippedTotal()).
		Int("cache_hits", sum.CacheHits).
		Dur("took", sum.Duration).
		Msg("extraction finished")
	return sum, nil
}

// processOne returns the document ID and whether the counts came from the cache.
func processOne(ctx context.Context, path string, opt Options, t *table.Table) (string, bool, error) {
	doc, err := corpus.ReadDocument(path, opt.Variant)
	if err != nil {
		return corpus.DocumentID(path), false, err
	}
	counts, hit, err := countsFor(ctx, doc, opt)
	if err != nil {
		return doc.ID, false, err
	}
	rec, err := opt.Builder.Build(doc, counts)
	if err != nil {
		return doc.ID, hit, err
	}
	t.Insert(rec)
	log.Debug().Str("id", doc.ID).Int("tokens", counts.Tokens).Int("sentences", counts.Sentences).Bool("cached", hit).Msg("document processed")
	return doc.ID, hit, nil
}

func countsFor(ctx context.Context, doc corpus.Document, opt Options) (corpus.Counts, bool, error) {
	var key string
	if opt.Cache != nil {
		key = cache.KeyFrom(string(doc.Variant)+";"+opt.Fingerprint, doc.Content)
		e, ok, err := opt.Cache.Get(ctx, key)
		if err != nil {
			log.Warn().Err(err).Msg("cache read failed; continuing without cache")
		} else if ok {
			return e.Counts, true, nil
		}
	}
	counts, err := opt.Extractor.Extract(ctx, doc)
	if err != nil {
		return corpus.Counts{}, false, err
	}
	if opt.Cache != nil {
		e := cache.Entry{ID: doc.ID, Variant: string(doc.Variant), Counts: counts}
		if err := opt.Cache.Save(ctx, key, e); err != nil {
			log.Warn().Err(err).Str("id", doc.ID).Msg("cache write failed")
		}
	}
	return counts, false, nil
}
