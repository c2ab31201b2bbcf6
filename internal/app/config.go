package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hyperifyio/sentlen/internal/corpus"
	"github.com/hyperifyio/sentlen/internal/metadata"
	"github.com/hyperifyio/sentlen/internal/metric"
	"github.com/hyperifyio/sentlen/internal/sample"
	"github.com/hyperifyio/sentlen/internal/segment"
)

// Config holds runtime configuration for the application.
type Config struct {
	Dataset string

	// Extraction
	Variant        string
	InputGlob      string
	SentenceMarker string
	Encoding       string
	StripGutenberg bool
	MaxLength      int
	Workers        int
	MergeExisting  bool

	// Metadata
	MetadataPath      string
	MetadataDelimiter string
	IDColumn          string
	YearColumn        string
	AuthorColumn      string
	TitleColumn       string
	KeyMode           string

	// Outputs
	ResultsDir string
	TablePath  string
	SamplePath string
	EnablePDF  bool

	// Sampling and comparison
	WindowA      corpus.TimeWindow
	WindowB      corpus.TimeWindow
	SampleWindow corpus.TimeWindow
	SampleSize   int
	SamplingMode string
	Seed         uint64
	SeedSet      bool

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheMaxEntries  int
	CacheClear       bool
	CacheStrictPerms bool

	Verbose bool
}

// DefaultConfig returns the configuration used when nothing else is set.
func DefaultConfig() Config {
	return Config{
		MaxLength:         segment.DefaultMaxLength,
		MetadataDelimiter: ";",
		KeyMode:           "identity",
		ResultsDir:        "results",
		WindowA:           corpus.TimeWindow{Start: 1840, End: 1859},
		WindowB:           corpus.TimeWindow{Start: 1900, End: 1919},
		SampleSize:        250,
		SamplingMode:      string(sample.ModeUniform),
	}
}

// ValidateExtract checks the settings needed by the extract command.
func ValidateExtract(cfg Config) error {
	if _, err := corpus.ParseVariant(cfg.Variant); err != nil {
		return fmt.Errorf("config: variant: %w", err)
	}
	if strings.TrimSpace(cfg.InputGlob) == "" {
		return errors.New("config: input glob is required")
	}
	if strings.TrimSpace(cfg.MetadataPath) == "" {
		return errors.New("config: metadata path is required")
	}
	if _, err := metadata.ParseDelimiter(cfg.MetadataDelimiter); err != nil {
		return fmt.Errorf("config: metadata delimiter: %w", err)
	}
	if _, err := metric.ParseKeyFunc(cfg.KeyMode); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cfg.MaxLength < 0 || cfg.Workers < 0 || cfg.CacheMaxEntries < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	return nil
}

// ValidateSample checks the settings needed by the sample command.
func ValidateSample(cfg Config) error {
	if err := validateSampling(cfg); err != nil {
		return err
	}
	if cfg.SampleWindow.IsZero() {
		return errors.New("config: sample window is required")
	}
	return cfg.SampleWindow.Validate()
}

// ValidateCompare checks the settings needed by the compare command.
func ValidateCompare(cfg Config) error {
	if err := validateSampling(cfg); err != nil {
		return err
	}
	if err := cfg.WindowA.Validate(); err != nil {
		return fmt.Errorf("config: window a: %w", err)
	}
	if err := cfg.WindowB.Validate(); err != nil {
		return fmt.Errorf("config: window b: %w", err)
	}
	return nil
}

func validateSampling(cfg Config) error {
	if cfg.SampleSize <= 0 {
		return fmt.Errorf("config: sample size must be positive, got %d", cfg.SampleSize)
	}
	if _, err := sample.ParseMode(cfg.SamplingMode); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
