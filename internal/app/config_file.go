package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/sentlen/internal/corpus"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	Dataset string `yaml:"dataset" json:"dataset" toml:"dataset"`

	Extract struct {
		Variant        string `yaml:"variant" json:"variant" toml:"variant"`
		Input          string `yaml:"input" json:"input" toml:"input"`
		SentenceMarker string `yaml:"sentenceMarker" json:"sentenceMarker" toml:"sentenceMarker"`
		Encoding       string `yaml:"encoding" json:"encoding" toml:"encoding"`
		StripGutenberg bool   `yaml:"stripGutenberg" json:"stripGutenberg" toml:"stripGutenberg"`
		MaxLength      int    `yaml:"maxLength" json:"maxLength" toml:"maxLength"`
		Workers        int    `yaml:"workers" json:"workers" toml:"workers"`
		Merge          bool   `yaml:"merge" json:"merge" toml:"merge"`
	} `yaml:"extract" json:"extract" toml:"extract"`

	Metadata struct {
		Path         string `yaml:"path" json:"path" toml:"path"`
		Delimiter    string `yaml:"delimiter" json:"delimiter" toml:"delimiter"`
		IDColumn     string `yaml:"idColumn" json:"idColumn" toml:"idColumn"`
		YearColumn   string `yaml:"yearColumn" json:"yearColumn" toml:"yearColumn"`
		AuthorColumn string `yaml:"authorColumn" json:"authorColumn" toml:"authorColumn"`
		TitleColumn  string `yaml:"titleColumn" json:"titleColumn" toml:"titleColumn"`
		Key          string `yaml:"key" json:"key" toml:"key"`
	} `yaml:"metadata" json:"metadata" toml:"metadata"`

	Output struct {
		ResultsDir string `yaml:"resultsDir" json:"resultsDir" toml:"resultsDir"`
		Table      string `yaml:"table" json:"table" toml:"table"`
		Sample     string `yaml:"sample" json:"sample" toml:"sample"`
		PDF        bool   `yaml:"pdf" json:"pdf" toml:"pdf"`
	} `yaml:"output" json:"output" toml:"output"`

	Sampling struct {
		Size   int               `yaml:"size" json:"size" toml:"size"`
		Mode   string            `yaml:"mode" json:"mode" toml:"mode"`
		Seed   *uint64           `yaml:"seed" json:"seed" toml:"seed"`
		Window corpus.TimeWindow `yaml:"window" json:"window" toml:"window"`
	} `yaml:"sampling" json:"sampling" toml:"sampling"`

	Compare struct {
		A corpus.TimeWindow `yaml:"a" json:"a" toml:"a"`
		B corpus.TimeWindow `yaml:"b" json:"b" toml:"b"`
	} `yaml:"compare" json:"compare" toml:"compare"`

	Cache struct {
		Dir         string   `yaml:"dir" json:"dir" toml:"dir"`
		MaxAge      Duration `yaml:"maxAge" json:"maxAge" toml:"maxAge"`
		MaxEntries  int      `yaml:"maxEntries" json:"maxEntries" toml:"maxEntries"`
		Clear       bool     `yaml:"clear" json:"clear" toml:"clear"`
		StrictPerms bool     `yaml:"strictPerms" json:"strictPerms" toml:"strictPerms"`
	} `yaml:"cache" json:"cache" toml:"cache"`

	Verbose bool `yaml:"verbose" json:"verbose" toml:"verbose"`
}

// Duration accepts Go duration strings such as "72h" in every file format.
type Duration time.Duration

func (d *Duration) set(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error { return d.set(string(b)) }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) { return []byte(time.Duration(d).String()), nil }

// LoadConfigFile reads YAML, JSON or TOML into FileConfig, chosen by the
// file extension.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse toml: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig copies every value set in fc into cfg. File values take
// precedence over defaults; flags are applied afterwards by the caller.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	setString := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, v int) {
		if v > 0 {
			*dst = v
		}
	}
	setBool := func(dst *bool, v bool) {
		if v {
			*dst = true
		}
	}
	setWindow := func(dst *corpus.TimeWindow, v corpus.TimeWindow) {
		if !v.IsZero() {
			*dst = v
		}
	}

	setString(&cfg.Dataset, fc.Dataset)

	setString(&cfg.Variant, fc.Extract.Variant)
	setString(&cfg.InputGlob, fc.Extract.Input)
	setString(&cfg.SentenceMarker, fc.Extract.SentenceMarker)
	setString(&cfg.Encoding, fc.Extract.Encoding)
	setBool(&cfg.StripGutenberg, fc.Extract.StripGutenberg)
	setInt(&cfg.MaxLength, fc.Extract.MaxLength)
	setInt(&cfg.Workers, fc.Extract.Workers)
	setBool(&cfg.MergeExisting, fc.Extract.Merge)

	setString(&cfg.MetadataPath, fc.Metadata.Path)
	setString(&cfg.MetadataDelimiter, fc.Metadata.Delimiter)
	setString(&cfg.IDColumn, fc.Metadata.IDColumn)
	setString(&cfg.YearColumn, fc.Metadata.YearColumn)
	setString(&cfg.AuthorColumn, fc.Metadata.AuthorColumn)
	setString(&cfg.TitleColumn, fc.Metadata.TitleColumn)
	setString(&cfg.KeyMode, fc.Metadata.Key)

	setString(&cfg.ResultsDir, fc.Output.ResultsDir)
	setString(&cfg.TablePath, fc.Output.Table)
	setString(&cfg.SamplePath, fc.Output.Sample)
	setBool(&cfg.EnablePDF, fc.Output.PDF)

	setInt(&cfg.SampleSize, fc.Sampling.Size)
	setString(&cfg.SamplingMode, fc.Sampling.Mode)
	if fc.Sampling.Seed != nil {
		cfg.Seed = *fc.Sampling.Seed
		cfg.SeedSet = true
	}
	setWindow(&cfg.SampleWindow, fc.Sampling.Window)
	setWindow(&cfg.WindowA, fc.Compare.A)
	setWindow(&cfg.WindowB, fc.Compare.B)

	setString(&cfg.CacheDir, fc.Cache.Dir)
	if fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = time.Duration(fc.Cache.MaxAge)
	}
	setInt(&cfg.CacheMaxEntries, fc.Cache.MaxEntries)
	setBool(&cfg.CacheClear, fc.Cache.Clear)
	setBool(&cfg.CacheStrictPerms, fc.Cache.StrictPerms)

	setBool(&cfg.Verbose, fc.Verbose)
}
