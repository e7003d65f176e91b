package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/dgallion1/docoutline/internal/chunker"
	"github.com/dgallion1/docoutline/internal/headers"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/store"
)

// addOutlineFlags registers the flags shared by process and batch.
func addOutlineFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("match", "exact", "header match policy for given headers: exact or substring")
	f.String("discovered-match", "substring", "header match policy for discovered headers")
	f.String("rollover", "extend", "what follows subsection z: extend (aa, ab, ...) or body")
	f.Bool("include-section-terms", false, "also extract bold phrases from section header lines")
	f.Bool("merge-emphasis", false, "merge adjacent bold runs into one term")
	f.Bool("discover", false, "discover section headers with the llm provider")
	f.Bool("pdftotext", true, "fall back to pdftotext for PDFs without extractable text")
}

// jobOptions reads the outline flags. Headers are left to the caller.
func jobOptions(cmd *cobra.Command) (pipeline.JobOptions, error) {
	var opts pipeline.JobOptions
	m, err := outline.ParseMatchPolicy(getString(cmd, "match"))
	if err != nil {
		return opts, err
	}
	r, err := outline.ParseRolloverPolicy(getString(cmd, "rollover"))
	if err != nil {
		return opts, err
	}
	opts.Match = m
	opts.Rollover = r
	opts.IncludeSectionTerms = getBool(cmd, "include-section-terms")
	opts.MergeEmphasis = getBool(cmd, "merge-emphasis")
	return opts, nil
}

// newDiscoverer builds a discoverer for the configured provider. It
// returns an error when no provider is configured.
func newDiscoverer(ctx context.Context, cmd *cobra.Command, log *slog.Logger) (*headers.Discoverer, error) {
	name := getString(cmd, "provider")
	if name == "" {
		switch {
		case viper.GetString("anthropic_api_key") != "":
			name = "anthropic"
		case viper.GetString("gemini_api_key") != "":
			name = "gemini"
		}
	}
	model := getString(cmd, "model")
	p, err := headers.NewProvider(ctx, headers.ProviderConfig{
		Name:            name,
		AnthropicAPIKey: viper.GetString("anthropic_api_key"),
		AnthropicModel:  model,
		GeminiAPIKey:    viper.GetString("gemini_api_key"),
		GeminiModel:     model,
	})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.New("header discovery needs an llm provider: set --provider and ANTHROPIC_API_KEY or GEMINI_API_KEY")
	}

	cfg := chunker.DefaultConfig()
	if n := viper.GetInt("discovery_chunk_tokens"); n > 0 {
		cfg.ChunkSize = n
	}
	return headers.NewDiscoverer(pipeline.WithRetry(p, log), headers.Config{Chunk: cfg}, log), nil
}

// newWorker builds a local worker. Discovery is wired only when asked for.
func newWorker(ctx context.Context, cmd *cobra.Command, log *slog.Logger, discover bool) (*pipeline.Worker, error) {
	dm, err := outline.ParseMatchPolicy(getString(cmd, "discovered-match"))
	if err != nil {
		return nil, err
	}
	var d *headers.Discoverer
	if discover {
		if d, err = newDiscoverer(ctx, cmd, log); err != nil {
			return nil, err
		}
	}
	return pipeline.NewWorker(d, nil, log, pipeline.WorkerConfig{
		Parser:          parser.Options{PDFFallbackPdftotext: getBool(cmd, "pdftotext")},
		DiscoveredMatch: dm,
	}), nil
}

// outlineFile runs one file through the worker and returns the finished job.
func outlineFile(ctx context.Context, w *pipeline.Worker, path string, opts pipeline.JobOptions) (*pipeline.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	job := pipeline.NewJob("local", "", filepath.Base(path), "", opts)
	job.SetFileData(data)
	w.Process(ctx, job)

	snap := job.Snapshot()
	if snap.Status == pipeline.StatusFailed || job.Result() == nil {
		return job, fmt.Errorf("%s: %s", path, strings.Join(snap.Progress.Errors, "; "))
	}
	return job, nil
}

// writeTerms renders terms in the given format.
func writeTerms(w io.Writer, terms []outline.Term, format string) error {
	if terms == nil {
		terms = []outline.Term{}
	}
	switch format {
	case "", "text":
		_, err := io.WriteString(w, outline.FormatTerms(terms))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(terms)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(terms); err != nil {
			return err
		}
		return enc.Close()
	case "report":
		_, err := io.WriteString(w, outline.FormatReport(outline.GroupTerms(terms)))
		return err
	case "grouped":
		_, err := io.WriteString(w, outline.FormatGrouped(outline.GroupTerms(terms)))
		return err
	default:
		return fmt.Errorf("unknown format %q (want text, json, yaml, report or grouped)", format)
	}
}

// writeResult writes the outline and terms files.
func writeResult(res *store.Result, outlinePath, termsPath, format string) error {
	if err := os.WriteFile(outlinePath, []byte(res.Outline+"\n"), 0o644); err != nil {
		return fmt.Errorf("write outline: %w", err)
	}
	f, err := os.Create(termsPath)
	if err != nil {
		return fmt.Errorf("write terms: %w", err)
	}
	if err := writeTerms(f, res.Terms, format); err != nil {
		f.Close()
		return fmt.Errorf("write terms: %w", err)
	}
	return f.Close()
}
