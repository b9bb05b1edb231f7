// Package cli wires the docgrep commands.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgallion1/docgrep/internal/config"
	"github.com/dgallion1/docgrep/internal/discover"
	"github.com/dgallion1/docgrep/internal/logging"
	"github.com/dgallion1/docgrep/internal/match"
	"github.com/dgallion1/docgrep/internal/pipeline"
	"github.com/dgallion1/docgrep/internal/report"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

type searchFlags struct {
	regex      string
	glob       string
	quiet      bool
	context    int
	workers    int
	exts       []string
	noColor    bool
	noArchives bool
}

// NewRootCmd creates the docgrep command. Running it without a subcommand
// performs a search.
func NewRootCmd() *cobra.Command {
	var f searchFlags
	var configPath, logLevel string

	cmd := &cobra.Command{
		Use:   "docgrep -r REGEX [PATH...]",
		Short: "Search .docx documents and zip archives with a regular expression",
		Long: `docgrep searches the text of documents for a regular expression and prints
each match with surrounding context. Directories are searched recursively
and zip archives are searched member by member.`,
		Version:      Version,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, configPath, logLevel)
			if err != nil {
				return err
			}
			applySearchFlags(cmd, &cfg, f)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			log := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			return runSearch(cmd, cfg, log, f, args)
		},
	}

	cmd.SetVersionTemplate("docgrep version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.Flags().StringVarP(&f.regex, "regex", "r", "", "Regular expression to search for, e.g. 'Hi|[Hh]ello'")
	cmd.Flags().StringVarP(&f.glob, "glob", "g", "", "Glob pattern for documents, e.g. 'reports/**/*.docx'")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "Only print the number of matching runs per document")
	cmd.Flags().IntVarP(&f.context, "context", "c", 40, "Characters of context around each match (negative for unlimited)")
	cmd.Flags().IntVarP(&f.workers, "workers", "j", 0, "Number of documents searched in parallel (default: number of CPUs)")
	cmd.Flags().StringSliceVar(&f.exts, "ext", nil, "Document suffixes to search (default .docx)")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&f.noArchives, "no-archives", false, "Do not search inside zip archives")
	_ = cmd.MarkFlagRequired("regex")

	cmd.AddCommand(newServeCmd(&configPath, &logLevel))
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func loadConfig(cmd *cobra.Command, path, logLevel string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

func applySearchFlags(cmd *cobra.Command, cfg *config.Config, f searchFlags) {
	flags := cmd.Flags()
	if flags.Changed("context") {
		cfg.ContextLength = f.context
	}
	if flags.Changed("workers") {
		cfg.Workers = f.workers
	}
	if flags.Changed("ext") {
		cfg.Suffixes = f.exts
	}
	if f.noArchives {
		cfg.IncludeArchives = false
	}
}

func runSearch(cmd *cobra.Command, cfg config.Config, log *slog.Logger, f searchFlags, args []string) error {
	// A bad pattern stops the run before any file is touched.
	re, err := match.Compile(f.regex)
	if err != nil {
		return err
	}

	plan, err := discover.Build(args, f.glob, pipeline.DiscoverOptions(cfg))
	if err != nil {
		return err
	}
	log.Debug("discovered sources",
		"files", plan.Files,
		"archives", plan.Archives,
		"sources", len(plan.Sources),
	)

	out := cmd.OutOrStdout()
	console := report.NewConsole(out, cmd.ErrOrStderr(), f.quiet, useColor(out, f.noColor))
	stats := pipeline.NewSourceStats(cfg.StatsWindow)
	coord := pipeline.NewCoordinator(match.NewExtractor(re), console, log, pipeline.Options{
		Workers:       cfg.Workers,
		ContextLength: cfg.ContextLength,
		Quiet:         f.quiet,
	}).WithStats(stats)

	for _, fail := range plan.Failures {
		coord.Emit(pipeline.Result{Source: fail.Label, Err: fail.Err})
	}
	sum := coord.Run(plan.Sources)

	console.Summary(plan.Files, plan.Archives, f.regex, args, f.glob)
	log.Debug("search stats", "matched", sum.Matched, "failed", sum.Failed+len(plan.Failures), "window", stats.Snapshot())
	return nil
}

func useColor(w io.Writer, noColor bool) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return report.ColorEnabled(file, noColor)
}
