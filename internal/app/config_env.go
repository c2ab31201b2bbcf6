package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/sentlen/internal/corpus"
)

// EnvPrefix prefixes every environment variable read by ApplyEnvToConfig.
const EnvPrefix = "SENTLEN_"

// ApplyEnvToConfig overrides cfg fields with SENTLEN_* environment variables
// that are set. Unparsable values are logged and ignored.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	env := func(key string) (string, bool) {
		v, ok := os.LookupEnv(EnvPrefix + key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}
	setString := func(dst *string, key string) {
		if v, ok := env(key); ok {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) {
		if v, ok := env(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				log.Warn().Err(err).Str("var", EnvPrefix+key).Msg("ignoring invalid integer")
				return
			}
			*dst = n
		}
	}
	setBool := func(dst *bool, key string) {
		if v, ok := env(key); ok {
			switch strings.ToLower(v) {
			case "1", "true", "yes", "on":
				*dst = true
			case "0", "false", "no", "off":
				*dst = false
			default:
				log.Warn().Str("var", EnvPrefix+key).Str("value", v).Msg("ignoring invalid boolean")
			}
		}
	}
	setWindow := func(dst *corpus.TimeWindow, key string) {
		if v, ok := env(key); ok {
			w, err := corpus.ParseTimeWindow(v)
			if err != nil {
				log.Warn().Err(err).Str("var", EnvPrefix+key).Msg("ignoring invalid window")
				return
			}
			*dst = w
		}
	}

	setString(&cfg.Dataset, "DATASET")
	setString(&cfg.Variant, "VARIANT")
	setString(&cfg.InputGlob, "INPUT")
	setString(&cfg.SentenceMarker, "SENTENCE_MARKER")
	setString(&cfg.Encoding, "ENCODING")
	setBool(&cfg.StripGutenberg, "STRIP_GUTENBERG")
	setInt(&cfg.MaxLength, "MAX_LENGTH")
	setInt(&cfg.Workers, "WORKERS")

	setString(&cfg.MetadataPath, "METADATA")
	setString(&cfg.MetadataDelimiter, "METADATA_DELIMITER")
	setString(&cfg.YearColumn, "YEAR_COLUMN")
	setString(&cfg.KeyMode, "KEY_MODE")

	setString(&cfg.ResultsDir, "RESULTS_DIR")
	setString(&cfg.TablePath, "TABLE")
	setBool(&cfg.EnablePDF, "PDF")

	setInt(&cfg.SampleSize, "SAMPLE_SIZE")
	setString(&cfg.SamplingMode, "SAMPLING_MODE")
	if v, ok := env("SEED"); ok {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			log.Warn().Err(err).Str("var", EnvPrefix+"SEED").Msg("ignoring invalid seed")
		} else {
			cfg.Seed, cfg.SeedSet = seed, true
		}
	}
	setWindow(&cfg.WindowA, "WINDOW_A")
	setWindow(&cfg.WindowB, "WINDOW_B")
	setWindow(&cfg.SampleWindow, "SAMPLE_WINDOW")

	setString(&cfg.CacheDir, "CACHE_DIR")
	if v, ok := env("CACHE_MAX_AGE"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CacheMaxAge = d
		} else {
			log.Warn().Err(err).Str("var", EnvPrefix+"CACHE_MAX_AGE").Msg("ignoring invalid duration")
		}
	}
	setBool(&cfg.CacheClear, "CACHE_CLEAR")
	setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
	setBool(&cfg.Verbose, "VERBOSE")
}
