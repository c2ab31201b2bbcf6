package main

import (
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/sentlen/internal/app"
	"github.com/hyperifyio/sentlen/internal/corpus"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Count tokens and sentences for every input document",
	Long: `Extract reads every document matching --input, counts its tokens and
sentences with the configured variant, joins the counts with the metadata
table and writes the metric table.

Documents that cannot be used are skipped and reported in the run summary.`,
	Example: `  sentlen extract --dataset eltec-eng --variant tei-tokens \
    --input 'corpus/*.xml' --metadata metadata.csv`,
	Args: cobra.NoArgs,
}

var extractFlags = newFlagSet(extractCmd)

func init() {
	f := extractFlags
	commonFlags(f)
	f.str("variant", "Extraction variant: tei-tokens, tei-sentence-attr, tei-paragraphs, plaintext or html", func(c *app.Config) *string { return &c.Variant })
	f.str("input", "Glob matching the input documents", func(c *app.Config) *string { return &c.InputGlob })
	f.str("sentence-marker", "Attribute value marking sentence boundaries in TEI", func(c *app.Config) *string { return &c.SentenceMarker })
	f.str("encoding", "Plaintext encoding name, or auto", func(c *app.Config) *string { return &c.Encoding })
	f.boolean("strip-gutenberg", "Remove Project Gutenberg header and footer from plaintext", func(c *app.Config) *bool { return &c.StripGutenberg })
	f.integer("max-length", "Maximum plaintext length in characters", func(c *app.Config) *int { return &c.MaxLength })
	f.integer("workers", "Concurrent extraction workers (0 uses one per CPU)", func(c *app.Config) *int { return &c.Workers })
	f.boolean("merge", "Merge into an existing metric table instead of replacing it", func(c *app.Config) *bool { return &c.MergeExisting })

	f.str("metadata", "Metadata table path", func(c *app.Config) *string { return &c.MetadataPath })
	f.str("metadata-delimiter", "Metadata column delimiter", func(c *app.Config) *string { return &c.MetadataDelimiter })
	f.str("id-column", "Metadata column holding the document key", func(c *app.Config) *string { return &c.IDColumn })
	f.str("year-column", "Metadata column holding the publication year", func(c *app.Config) *string { return &c.YearColumn })
	f.str("author-column", "Metadata column holding the author", func(c *app.Config) *string { return &c.AuthorColumn })
	f.str("title-column", "Metadata column holding the title", func(c *app.Config) *string { return &c.TitleColumn })
	f.str("key-mode", "How document ids map to metadata keys: identity or prefix", func(c *app.Config) *string { return &c.KeyMode })

	f.str("cache-dir", "Directory for cached per-document counts (empty disables caching)", func(c *app.Config) *string { return &c.CacheDir })
	f.duration("cache-max-age", "Purge cached counts older than this", func(c *app.Config) *time.Duration { return &c.CacheMaxAge })
	f.integer("cache-max-entries", "Keep at most this many cached entries", func(c *app.Config) *int { return &c.CacheMaxEntries })
	f.boolean("cache-clear", "Clear the counts cache before running", func(c *app.Config) *bool { return &c.CacheClear })
	f.boolean("cache-strict-perms", "Create cache files readable by the owner only", func(c *app.Config) *bool { return &c.CacheStrictPerms })

	extractCmd.RunE = runExtract
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd, extractFlags)
	if err != nil {
		return err
	}
	res, err := app.New(cfg).Extract(cmd.Context())
	if err != nil {
		return err
	}
	sum := res.Summary
	cmd.Printf("Run %s\n", sum.RunID)
	cmd.Printf("  processed:  %d\n", sum.Processed)
	cmd.Printf("  cache hits: %d\n", sum.CacheHits)
	cmd.Printf("  skipped:    %d\n", sum.SkippedTotal())
	kinds := make([]string, 0, len(sum.Skipped))
	for k := range sum.Skipped {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		cmd.Printf("    %-20s %d\n", k, sum.Skipped[corpus.Kind(k)])
	}
	cmd.Printf("  records:    %d\n", res.Records)
	cmd.Printf("  table:      %s\n", res.TablePath)
	return nil
}
