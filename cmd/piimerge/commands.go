// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"piimerge/internal/detector"
	"piimerge/internal/formatters"
	"piimerge/internal/mcpserver"
	"piimerge/internal/parallel"
	"piimerge/internal/source"
	"piimerge/internal/web"

	// Import formatters to register them
	_ "piimerge/internal/formatters/csv"
	_ "piimerge/internal/formatters/json"
	_ "piimerge/internal/formatters/text"
	_ "piimerge/internal/formatters/yaml"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// batchOptions are the flags shared by merge and scan
type batchOptions struct {
	inputFormat string
	outputFile  string
	progress    bool
}

func (b *batchOptions) register(cmd *cobra.Command, defaultFormat string) {
	cmd.Flags().StringVar(&b.inputFormat, "input-format", defaultFormat,
		"Format of standard input: json, jsonl, yaml, text")
	cmd.Flags().StringVarP(&b.outputFile, "output", "o", "", "Path to output file (if not specified, output to stdout)")
	cmd.Flags().BoolVar(&b.progress, "progress", false, "Report progress on stderr")
}

func newMergeCommand(a *app) *cobra.Command {
	b := &batchOptions{}
	cmd := &cobra.Command{
		Use:   "merge [file or directory ...]",
		Short: "Merge model predictions with pattern matches",
		Long: "Reads documents with their model predictions and prints the merged entities.\n" +
			"Without arguments, or with '-', documents are read from standard input.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBatch(cmd, args, b, false)
		},
	}
	b.register(cmd, source.FormatJSON)
	return cmd
}

func newScanCommand(a *app) *cobra.Command {
	b := &batchOptions{}
	cmd := &cobra.Command{
		Use:   "scan [file or directory ...]",
		Short: "Find PII with the pattern catalogue alone",
		Long: "Scans text, PDF and image metadata with the pattern catalogue. Any model\n" +
			"predictions present in the input are ignored.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBatch(cmd, args, b, true)
		},
	}
	b.register(cmd, source.FormatText)
	return cmd
}

// runBatch loads documents, merges them in parallel and writes the report
func (a *app) runBatch(cmd *cobra.Command, args []string, b *batchOptions, patternsOnly bool) error {
	docs, err := loadDocuments(cmd.InOrStdin(), args, b.inputFormat)
	if err != nil {
		return err
	}
	if patternsOnly {
		for i := range docs {
			docs[i].Predictions = nil
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var progress parallel.ProgressCallback
	if b.progress {
		stderr := cmd.ErrOrStderr()
		progress = func(completed, total int, documentID string) {
			fmt.Fprintf(stderr, "\r[%d/%d] %s", completed, total, documentID)
			if completed == total {
				fmt.Fprintln(stderr)
			}
		}
	}

	processor := parallel.NewParallelProcessor(a.engine, a.cfg.Defaults.Workers, a.observer)
	results, stats, procErr := processor.ProcessWithProgress(ctx, docs, progress)

	out := make([]formatters.Document, len(results))
	for i, r := range results {
		out[i] = formatters.Document{ID: r.ID, Entities: r.Entities, Warnings: detector.Warnings(r.Err)}
	}

	w := cmd.OutOrStdout()
	var file *os.File
	if b.outputFile != "" {
		if file, err = os.OpenFile(b.outputFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err != nil {
			return fmt.Errorf("error creating output file: %w", err)
		}
		defer file.Close()
		w = file
	}

	report, err := formatters.Export(a.cfg.Defaults.Format, out, formatters.FormatterOptions{
		ConfidenceLevel: formatters.ParseConfidenceLevels(a.cfg.Defaults.ConfidenceLevels),
		Verbose:         a.cfg.Defaults.Verbose,
		NoColor:         a.noColor(w),
		ShowText:        a.opts.showText,
	})
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, report); err != nil {
		return fmt.Errorf("error writing output: %w", err)
	}

	a.observer.Logger().Debug("batch complete",
		zap.Int("documents", stats.TotalDocuments),
		zap.Int("processed", stats.ProcessedDocuments),
		zap.Int("entities", stats.TotalEntities),
		zap.Int("invalid_spans", stats.InvalidSpans),
		zap.Duration("duration", stats.TotalDuration))

	if err := a.finish(); err != nil {
		return err
	}
	if procErr != nil {
		return fmt.Errorf("processing interrupted after %d of %d documents: %w",
			stats.ProcessedDocuments, stats.TotalDocuments, procErr)
	}
	return nil
}

// loadDocuments reads stdin for no arguments or "-", and files otherwise
func loadDocuments(stdin io.Reader, args []string, inputFormat string) ([]detector.Input, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		docs, err := source.Read(stdin, inputFormat)
		if err != nil {
			return nil, fmt.Errorf("error reading standard input: %w", err)
		}
		for i := range docs {
			if docs[i].ID == "" {
				docs[i].ID = fmt.Sprintf("stdin#%d", i)
			}
		}
		return docs, nil
	}
	return source.LoadAll(args)
}

// patternRow is the machine-readable form of a catalogue entry
type patternRow struct {
	Name         string   `json:"name" yaml:"name"`
	EntityType   string   `json:"entity_type" yaml:"entity_type"`
	Priority     int      `json:"priority" yaml:"priority"`
	BaseScore    float64  `json:"base_score" yaml:"base_score"`
	ContextWords []string `json:"context_words,omitempty" yaml:"context_words,omitempty"`
	Validated    bool     `json:"validated" yaml:"validated"`
}

func newPatternsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "List the active pattern catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalogue := a.engine.Catalogue()
			rows := make([]patternRow, 0, catalogue.Len())
			for _, p := range catalogue.Patterns() {
				rows = append(rows, patternRow{
					Name:         p.Name,
					EntityType:   p.EntityType,
					Priority:     p.Priority,
					BaseScore:    p.BaseScore,
					ContextWords: p.ContextWords,
					Validated:    p.Validator != nil,
				})
			}

			w := cmd.OutOrStdout()
			switch a.cfg.Defaults.Format {
			case "json":
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			case "yaml":
				return yaml.NewEncoder(w).Encode(rows)
			}

			header := color.New(color.Bold)
			if a.noColor(w) {
				header.DisableColor()
			}
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			header.Fprintln(tw, "NAME\tENTITY TYPE\tPRIORITY\tSCORE\tVALIDATED\tCONTEXT")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\t%t\t%s\n",
					r.Name, r.EntityType, r.Priority, r.BaseScore, r.Validated, strings.Join(r.ContextWords, ","))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "\n%d patterns (language: %s)\n", catalogue.Len(), catalogue.Language())
			return err
		},
	}
}

func newProfilesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the profiles defined in the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			names := a.cfg.ListProfiles()
			if len(names) == 0 {
				_, err := fmt.Fprintln(w, "No profiles defined.")
				return err
			}
			fmt.Fprintln(w, "Available profiles:")
			for _, name := range names {
				p := a.cfg.GetProfile(name)
				fmt.Fprintf(w, "  %-16s %s\n", name, p.Description)
			}
			return nil
		},
	}
}

func newServeCommand(a *app) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the merge API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server := web.NewWebServer(a.engine, web.Options{
				Port:     port,
				Workers:  a.cfg.Defaults.Workers,
				Gatherer: a.metrics.Registry(),
				Formatter: formatters.FormatterOptions{
					ConfidenceLevel: formatters.ParseConfidenceLevels(a.cfg.Defaults.ConfidenceLevels),
					Verbose:         a.cfg.Defaults.Verbose,
					ShowText:        a.opts.showText,
				},
				Observer: a.observer,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				_ = server.Stop()
			}()

			fmt.Fprintf(cmd.ErrOrStderr(), "piimerge API listening on port %d (or the next free port)\n", port)
			err := server.Start()
			if finishErr := a.finish(); err == nil {
				err = finishErr
			}
			return err
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "Port for the HTTP server")
	return cmd
}

func newMCPCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve merge tools over the Model Context Protocol on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := mcpserver.New(a.engine, a.observer).ServeStdio()
			if finishErr := a.finish(); err == nil {
				err = finishErr
			}
			return err
		},
	}
}
