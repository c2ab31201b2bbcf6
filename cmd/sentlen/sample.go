package main

import (
	"github.com/spf13/cobra"

	"github.com/hyperifyio/sentlen/internal/app"
	"github.com/hyperifyio/sentlen/internal/corpus"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Draw a random sample of documents from one time window",
	Long: `Sample loads the metric table, draws --size documents published inside
--window and writes them as a smaller metric table. Stratified mode draws
an equal share from every full decade of the window.`,
	Example: `  sentlen sample --dataset eltec-eng --window 1840-1859 --size 100 --seed 7`,
	Args:    cobra.NoArgs,
}

var sampleFlags = newFlagSet(sampleCmd)

func init() {
	f := sampleFlags
	commonFlags(f)
	samplingFlags(f)
	f.window("window", "Time window to sample, e.g. 1840-1859", func(c *app.Config) *corpus.TimeWindow { return &c.SampleWindow })
	f.str("out", "Output path for the sampled table", func(c *app.Config) *string { return &c.SamplePath })
	sampleCmd.RunE = runSample
	rootCmd.AddCommand(sampleCmd)
}

func runSample(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd, sampleFlags)
	if err != nil {
		return err
	}
	res, err := app.New(cfg).Sample(cmd.Context())
	if err != nil {
		return err
	}
	cmd.Printf("%s: %d documents (seed %d)\n", res.Sample.Label(), res.Sample.Len(), res.Seed)
	cmd.Printf("wrote %s\n", res.Path)
	return nil
}
