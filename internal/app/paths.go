package app

import (
	"path/filepath"
	"regexp"
	"strings"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlug.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "dataset"
	}
	return s
}

// datasetDir is the results directory of the configured dataset.
func datasetDir(cfg Config) string {
	root := strings.TrimSpace(cfg.ResultsDir)
	if root == "" {
		root = "results"
	}
	if strings.TrimSpace(cfg.Dataset) == "" {
		return root
	}
	return filepath.Join(root, slugify(cfg.Dataset))
}

// TablePath returns the metric table location: the configured path, or
// avgsentlens.csv in the dataset's results directory.
func TablePath(cfg Config) string {
	if p := strings.TrimSpace(cfg.TablePath); p != "" {
		return p
	}
	return filepath.Join(datasetDir(cfg), "avgsentlens.csv")
}

// SamplePath returns where the sample command writes its subset table.
func SamplePath(cfg Config) string {
	if p := strings.TrimSpace(cfg.SamplePath); p != "" {
		return p
	}
	name := "sample_" + cfg.SampleWindow.Slug() + "_" + slugify(cfg.SamplingMode) + ".csv"
	return filepath.Join(datasetDir(cfg), name)
}

// summaryPath places the extraction summary next to the table.
func summaryPath(tablePath string) string {
	ext := filepath.Ext(tablePath)
	return strings.TrimSuffix(tablePath, ext) + ".summary.json"
}

func isSQLitePath(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}
