// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"piimerge/internal/config"
	"piimerge/internal/merge"
	"piimerge/internal/metrics"
	"piimerge/internal/observability"
	"piimerge/internal/version"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// rootOptions holds the global flags
type rootOptions struct {
	configFile   string
	profile      string
	format       string
	confidence   string
	language     string
	patternsFile string
	workers      int
	showText     bool
	verbose      bool
	debug        bool
	noColor      bool
	metricsFile  string
}

// app carries what PersistentPreRunE builds for the subcommands
type app struct {
	opts     *rootOptions
	cfg      *config.Config
	observer *observability.StandardObserver
	metrics  *metrics.Prometheus
	engine   *merge.Engine
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	a := &app{opts: opts}

	cmd := &cobra.Command{
		Use:   "piimerge",
		Short: "Reconstruct whole PII entities from fragment-level model predictions",
		Long: "piimerge joins token-level NER predictions into whole PII entities using a\n" +
			"catalogue of regular-expression patterns, and scores each entity by blending\n" +
			"model and pattern confidence.",
		Version: version.Info(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("{{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "Path to configuration file (YAML)")
	pf.StringVar(&opts.profile, "profile", "", "Profile name to use from config file")
	pf.StringVar(&opts.format, "format", "", "Output format: csv, json, text, yaml (default: text)")
	pf.StringVar(&opts.confidence, "confidence", "", "Confidence levels to display: high, medium, low, all, or combinations like 'high,medium'")
	pf.StringVar(&opts.language, "language", "", "Pattern catalogue language: en, de, es, fr, it")
	pf.StringVar(&opts.patternsFile, "patterns-file", "", "Path to a YAML pattern file")
	pf.IntVar(&opts.workers, "workers", 0, "Number of parallel workers (default: number of CPUs, at most 8)")
	pf.BoolVar(&opts.showText, "show-text", false, "Display the entity text in human-oriented formats")
	pf.BoolVar(&opts.verbose, "verbose", false, "Display detailed information for each entity")
	pf.BoolVar(&opts.debug, "debug", false, "Enable debug logging of every merge step")
	pf.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	pf.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after processing")

	cmd.AddCommand(
		newMergeCommand(a),
		newScanCommand(a),
		newPatternsCommand(a),
		newProfilesCommand(a),
		newServeCommand(a),
		newMCPCommand(a),
		newVersionCommand(),
	)
	return cmd
}

// setup resolves configuration from file, profile and flags, in that order
// of precedence, and builds the engine.
func (a *app) setup(cmd *cobra.Command) error {
	configPath := a.opts.configFile
	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	if a.opts.profile != "" {
		if err := cfg.ApplyProfile(a.opts.profile); err != nil {
			return err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Defaults.Format = a.opts.format
	}
	if flags.Changed("confidence") {
		cfg.Defaults.ConfidenceLevels = a.opts.confidence
	}
	if flags.Changed("language") {
		cfg.Defaults.Language = a.opts.language
	}
	if flags.Changed("patterns-file") {
		cfg.Patterns.File = a.opts.patternsFile
	}
	if flags.Changed("workers") {
		cfg.Defaults.Workers = a.opts.workers
	}
	if flags.Changed("verbose") {
		cfg.Defaults.Verbose = a.opts.verbose
	}
	if flags.Changed("debug") {
		cfg.Defaults.Debug = a.opts.debug
	}
	if flags.Changed("no-color") {
		cfg.Defaults.NoColor = a.opts.noColor
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := observability.ParseLevel(strings.ToLower(cfg.Logging.Level))
	if cfg.Defaults.Debug {
		level = observability.ObservabilityDebug
	}
	a.observer = observability.NewStandardObserver(level, cmd.ErrOrStderr())
	if level == observability.ObservabilityDebug {
		observability.WrapDebug(a.observer)
	}

	a.metrics, err = metrics.NewPrometheus(nil)
	if err != nil {
		return err
	}

	mergeCfg, err := cfg.MergeConfig(a.observer, a.metrics)
	if err != nil {
		return err
	}
	if a.engine, err = merge.New(mergeCfg); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// noColor reports whether colored output should be disabled for w
func (a *app) noColor(w io.Writer) bool {
	if a.cfg.Defaults.NoColor {
		return true
	}
	f, ok := w.(*os.File)
	return !ok || !term.IsTerminal(int(f.Fd()))
}

// finish flushes logs and writes the metrics textfile when requested
func (a *app) finish() error {
	_ = a.observer.Sync()
	if a.opts.metricsFile == "" {
		return nil
	}
	return a.metrics.WriteTextfile(a.opts.metricsFile)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// Skip configuration loading
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Info())
			return err
		},
	}
}
