package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/sentlen/internal/app"
	"github.com/hyperifyio/sentlen/internal/corpus"
)

type overlay struct {
	name string
	set  func(cfg *app.Config) error
}

// flagSet records, per command, how each flag maps onto app.Config. Only
// flags the user actually set are applied, so file and environment values
// survive when a flag is left at its default.
type flagSet struct {
	cmd      *cobra.Command
	overlays []overlay
}

func newFlagSet(cmd *cobra.Command) *flagSet {
	return &flagSet{cmd: cmd}
}

func (f *flagSet) add(name string, set func(cfg *app.Config) error) {
	f.overlays = append(f.overlays, overlay{name: name, set: set})
}

func (f *flagSet) str(name, usage string, dst func(cfg *app.Config) *string) {
	v := f.cmd.Flags().String(name, "", usage)
	f.add(name, func(cfg *app.Config) error { *dst(cfg) = *v; return nil })
}

func (f *flagSet) integer(name, usage string, dst func(cfg *app.Config) *int) {
	v := f.cmd.Flags().Int(name, 0, usage)
	f.add(name, func(cfg *app.Config) error { *dst(cfg) = *v; return nil })
}

func (f *flagSet) boolean(name, usage string, dst func(cfg *app.Config) *bool) {
	v := f.cmd.Flags().Bool(name, false, usage)
	f.add(name, func(cfg *app.Config) error { *dst(cfg) = *v; return nil })
}

func (f *flagSet) duration(name, usage string, dst func(cfg *app.Config) *time.Duration) {
	v := f.cmd.Flags().Duration(name, 0, usage)
	f.add(name, func(cfg *app.Config) error { *dst(cfg) = *v; return nil })
}

func (f *flagSet) window(name, usage string, dst func(cfg *app.Config) *corpus.TimeWindow) {
	v := f.cmd.Flags().String(name, "", usage)
	f.add(name, func(cfg *app.Config) error {
		w, err := corpus.ParseTimeWindow(*v)
		if err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
		*dst(cfg) = w
		return nil
	})
}

func (f *flagSet) seed() {
	v := f.cmd.Flags().Uint64("seed", 0, "Random seed; a fresh seed is drawn and logged when unset")
	f.add("seed", func(cfg *app.Config) error {
		cfg.Seed = *v
		cfg.SeedSet = true
		return nil
	})
}

func (f *flagSet) apply(cmd *cobra.Command, cfg *app.Config) error {
	for _, o := range f.overlays {
		if !cmd.Flags().Changed(o.name) {
			continue
		}
		if err := o.set(cfg); err != nil {
			return err
		}
	}
	return nil
}

// commonFlags are shared by every command that reads or writes the metric
// table.
func commonFlags(f *flagSet) {
	f.str("dataset", "Dataset name used for the results directory", func(c *app.Config) *string { return &c.Dataset })
	f.str("results-dir", "Root directory for all outputs", func(c *app.Config) *string { return &c.ResultsDir })
	f.str("table", "Metric table path (.csv, or .db/.sqlite for SQLite)", func(c *app.Config) *string { return &c.TablePath })
}

func samplingFlags(f *flagSet) {
	f.integer("size", "Sample size per time window", func(c *app.Config) *int { return &c.SampleSize })
	f.str("mode", "Sampling mode: uniform or stratified", func(c *app.Config) *string { return &c.SamplingMode })
	f.seed()
}
