package main

import (
	"github.com/spf13/cobra"

	"github.com/hyperifyio/sentlen/internal/app"
	"github.com/hyperifyio/sentlen/internal/corpus"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare sentence lengths of two time windows",
	Long: `Compare draws equal-size samples from --window-a and --window-b, runs a
two-sided Mann-Whitney U test on their average sentence lengths and writes
Markdown, JSON and CSV reports (and optionally a PDF) under the dataset's
results directory.`,
	Example: `  sentlen compare --dataset eltec-eng --window-a 1840-1859 --window-b 1900-1919 --size 250`,
	Args:    cobra.NoArgs,
}

var compareFlags = newFlagSet(compareCmd)

func init() {
	f := compareFlags
	commonFlags(f)
	samplingFlags(f)
	f.window("window-a", "First time window", func(c *app.Config) *corpus.TimeWindow { return &c.WindowA })
	f.window("window-b", "Second time window", func(c *app.Config) *corpus.TimeWindow { return &c.WindowB })
	f.boolean("pdf", "Also render the report as PDF", func(c *app.Config) *bool { return &c.EnablePDF })
	compareCmd.RunE = runCompare
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd, compareFlags)
	if err != nil {
		return err
	}
	res, err := app.New(cfg).Compare(cmd.Context())
	if err != nil {
		return err
	}
	r := res.Result
	cmd.Printf("%s\n%s\n", r.A.Label(), r.B.Label())
	cmd.Printf("U = %g, p = %.4g\n", r.U, r.P)
	if r.Significant(0.05) {
		cmd.Println("difference is significant at alpha = 0.05")
	}
	cmd.Printf("report: %s\n", res.Paths.Markdown)
	return nil
}
