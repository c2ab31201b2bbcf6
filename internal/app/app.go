// Package app wires configuration, extraction, sampling and comparison into
// the operations exposed by the command line.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/sentlen/internal/cache"
	"github.com/hyperifyio/sentlen/internal/compare"
	"github.com/hyperifyio/sentlen/internal/corpus"
	"github.com/hyperifyio/sentlen/internal/extract"
	"github.com/hyperifyio/sentlen/internal/metadata"
	"github.com/hyperifyio/sentlen/internal/metric"
	"github.com/hyperifyio/sentlen/internal/pipeline"
	"github.com/hyperifyio/sentlen/internal/report"
	"github.com/hyperifyio/sentlen/internal/sample"
	"github.com/hyperifyio/sentlen/internal/table"
)

// ErrNoDocuments is returned when the input glob matches no files.
var ErrNoDocuments = errors.New("no input documents")

type App struct {
	cfg Config
}

func New(cfg Config) *App {
	return &App{cfg: cfg}
}

// Config returns the configuration the app was built with.
func (a *App) Config() Config { return a.cfg }

// ExtractResult reports where the extraction run wrote its outputs.
type ExtractResult struct {
	Summary     pipeline.Summary `json:"summary"`
	TablePath   string           `json:"table"`
	SummaryPath string           `json:"summary_path"`
	Records     int              `json:"records"`
}

// Extract runs batch extraction over the configured input and writes the
// metric table.
func (a *App) Extract(ctx context.Context) (ExtractResult, error) {
	cfg := a.cfg
	if err := ValidateExtract(cfg); err != nil {
		return ExtractResult{}, err
	}
	variant, _ := corpus.ParseVariant(cfg.Variant)
	delim, _ := metadata.ParseDelimiter(cfg.MetadataDelimiter)
	keyFn, _ := metric.ParseKeyFunc(cfg.KeyMode)

	meta, err := metadata.Load(cfg.MetadataPath, metadata.Options{
		Delimiter:    delim,
		IDColumn:     cfg.IDColumn,
		YearColumn:   cfg.YearColumn,
		AuthorColumn: cfg.AuthorColumn,
		TitleColumn:  cfg.TitleColumn,
	})
	if err != nil {
		return ExtractResult{}, err
	}
	log.Debug().Int("entries", meta.Len()).Str("path", cfg.MetadataPath).Msg("metadata loaded")

	paths, err := corpus.Discover(cfg.InputGlob)
	if err != nil {
		return ExtractResult{}, err
	}
	if len(paths) == 0 {
		return ExtractResult{}, fmt.Errorf("%w: %s", ErrNoDocuments, cfg.InputGlob)
	}

	reg := extract.NewRegistry(extract.Options{
		MaxLength:      cfg.MaxLength,
		SentenceMarker: cfg.SentenceMarker,
		Encoding:       cfg.Encoding,
		StripGutenberg: cfg.StripGutenberg,
	})
	opt := pipeline.Options{
		Variant:     variant,
		Extractor:   reg,
		Fingerprint: reg.Fingerprint(),
		Builder:     metric.Builder{Lookup: meta, Key: keyFn},
		Cache:       a.countsCache(),
		Workers:     cfg.Workers,
	}

	out := TablePath(cfg)
	t := table.New()
	if cfg.MergeExisting {
		prev, err := LoadTable(ctx, out)
		switch {
		case err == nil:
			t.Merge(prev)
			log.Info().Int("records", prev.Len()).Str("table", out).Msg("merging into existing table")
		case errors.Is(err, fs.ErrNotExist):
		default:
			return ExtractResult{}, err
		}
	}

	log.Info().Int("documents", len(paths)).Str("variant", string(variant)).Msg("extracting")
	sum, err := pipeline.Run(ctx, paths, opt, t)
	if err != nil {
		return ExtractResult{Summary: sum}, err
	}
	if err := SaveTable(ctx, out, t); err != nil {
		return ExtractResult{Summary: sum}, err
	}
	res := ExtractResult{Summary: sum, TablePath: out, SummaryPath: summaryPath(out), Records: t.Len()}
	if err := writeJSON(res.SummaryPath, sum); err != nil {
		log.Warn().Err(err).Str("path", res.SummaryPath).Msg("could not write run summary")
	}
	log.Info().Str("table", out).Int("records", t.Len()).Msg("wrote metric table")
	return res, nil
}

func (a *App) countsCache() *cache.CountsCache {
	cfg := a.cfg
	if cfg.CacheDir == "" {
		return nil
	}
	if cfg.CacheClear {
		if err := cache.ClearDir(cfg.CacheDir); err != nil {
			log.Warn().Err(err).Msg("cache clear failed")
		}
	}
	if cfg.CacheMaxAge > 0 {
		if n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge); err != nil {
			log.Warn().Err(err).Msg("cache purge failed")
		} else if n > 0 {
			log.Debug().Int("removed", n).Msg("purged expired cache entries")
		}
	}
	if cfg.CacheMaxEntries > 0 {
		if _, err := cache.EnforceLimits(cfg.CacheDir, cfg.CacheMaxEntries); err != nil {
			log.Warn().Err(err).Msg("cache limit enforcement failed")
		}
	}
	return &cache.CountsCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
}

// seed returns the configured seed, or a fresh one that is logged so the
// run can be repeated.
func (a *App) seed() uint64 {
	if a.cfg.SeedSet {
		return a.cfg.Seed
	}
	s := sample.NewSeed()
	log.Info().Uint64("seed", s).Msg("no seed configured; using a random one")
	return s
}

// SampleResult is the outcome of the sample command.
type SampleResult struct {
	Sample sample.Sample `json:"sample"`
	Seed   uint64        `json:"seed"`
	Path   string        `json:"path"`
}

// Sample draws one sample from the configured window and writes the drawn
// records as a metric table.
func (a *App) Sample(ctx context.Context) (SampleResult, error) {
	cfg := a.cfg
	if err := ValidateSample(cfg); err != nil {
		return SampleResult{}, err
	}
	mode, _ := sample.ParseMode(cfg.SamplingMode)
	t, err := LoadWindows(ctx, TablePath(cfg), cfg.SampleWindow)
	if err != nil {
		return SampleResult{}, err
	}
	seed := a.seed()
	smp, err := sample.New(seed).Take(mode, t.Records(), cfg.SampleWindow, cfg.SampleSize)
	if err != nil {
		return SampleResult{}, err
	}
	out := SamplePath(cfg)
	if err := SaveTable(ctx, out, table.FromRecords(smp.Records(t))); err != nil {
		return SampleResult{}, err
	}
	log.Info().Str("label", smp.Label()).Int("n", smp.Len()).Str("out", out).Msg("wrote sample")
	return SampleResult{Sample: smp, Seed: seed, Path: out}, nil
}

// CompareResult is the outcome of the compare command.
type CompareResult struct {
	Result compare.Result `json:"result"`
	Info   report.Info    `json:"info"`
	Paths  report.Paths   `json:"paths"`
}

// Compare draws equal-size samples from both configured windows, tests
// their difference and writes the report artifacts.
func (a *App) Compare(ctx context.Context) (CompareResult, error) {
	cfg := a.cfg
	if err := ValidateCompare(cfg); err != nil {
		return CompareResult{}, err
	}
	mode, _ := sample.ParseMode(cfg.SamplingMode)
	t, err := LoadWindows(ctx, TablePath(cfg), cfg.WindowA, cfg.WindowB)
	if err != nil {
		return CompareResult{}, err
	}
	seed := a.seed()
	s := sample.New(seed)
	recs := t.Records()
	smpA, err := s.Take(mode, recs, cfg.WindowA, cfg.SampleSize)
	if err != nil {
		return CompareResult{}, err
	}
	smpB, err := s.Take(mode, recs, cfg.WindowB, cfg.SampleSize)
	if err != nil {
		return CompareResult{}, err
	}
	res, err := compare.Compare(smpA, smpB)
	if err != nil {
		return CompareResult{}, err
	}
	info := report.Info{
		RunID:     uuid.New(),
		Dataset:   cfg.Dataset,
		Mode:      mode,
		Size:      cfg.SampleSize,
		Seed:      seed,
		Generated: time.Now().UTC(),
	}
	paths, err := report.WriteAll(datasetDir(cfg), res, info, cfg.EnablePDF)
	if err != nil {
		return CompareResult{}, err
	}
	log.Info().
		Str("a", smpA.Label()).
		Str("b", smpB.Label()).
		Float64("u", res.U).
		Float64("p", res.P).
		Str("report", paths.Markdown).
		Msg("comparison finished")
	return CompareResult{Result: res, Info: info, Paths: paths}, nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
