package main

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hyperifyio/sentlen/internal/app"
)

var (
	configPath string
	envFiles   []string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "sentlen",
	Short: "Sentence length statistics for historical text corpora",
	Long: `sentlen extracts token and sentence counts from corpus documents,
joins them with publication metadata and compares the average sentence
length of two time windows with a Mann-Whitney U test.

Configuration is read from defaults, then an optional config file
(YAML, JSON or TOML), then SENTLEN_* environment variables, then flags.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to a YAML, JSON or TOML config file")
	pf.StringSliceVar(&envFiles, "env-file", []string{".env"}, "Dotenv files loaded before reading SENTLEN_* variables")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// setup configures logging once the command line has been parsed.
func setup(cmd *cobra.Command, _ []string) error {
	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	setLevel(verbose)
	return nil
}

func setLevel(debug bool) {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// resolveConfig layers defaults, the config file, the environment and the
// flags the user set on cmd, in that order.
func resolveConfig(cmd *cobra.Command, fl *flagSet) (app.Config, error) {
	if err := app.LoadEnvFiles(envFiles...); err != nil {
		return app.Config{}, err
	}
	cfg := app.DefaultConfig()
	if strings.TrimSpace(configPath) != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return app.Config{}, err
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvToConfig(&cfg)
	if err := fl.apply(cmd, &cfg); err != nil {
		return app.Config{}, err
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = verbose
	}
	setLevel(cfg.Verbose)
	log.Debug().
		Str("dataset", cfg.Dataset).
		Str("table", app.TablePath(cfg)).
		Str("config", configPath).
		Msg("configuration resolved")
	return cfg, nil
}
