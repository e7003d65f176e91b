package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var batchCmd = &cobra.Command{
	Use:   "batch <file...>",
	Short: "Outline several documents concurrently",
	Long: `Outline several documents with the same headers (--header, repeatable) or
with discovered headers (--discover). For each input <name>.<ext> the files
<name>.outline.txt and <name>.terms.txt are written to --out-dir.

A failing document is reported and does not stop the others.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	addOutlineFlags(batchCmd)
	f := batchCmd.Flags()
	f.StringSlice("header", nil, "section header (repeatable)")
	f.Int("jobs", 4, "documents processed at once")
	f.String("out-dir", ".", "output directory")
	f.String("format", "text", "terms format: text, json, yaml, report or grouped")
	rootCmd.AddCommand(batchCmd)
}

type batchResult struct {
	path     string
	sections int
	terms    int
	err      error
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := newLogger(cmd)

	hdrs, _ := cmd.Flags().GetStringSlice("header")
	discover := getBool(cmd, "discover")
	if len(hdrs) == 0 && !discover {
		return fmt.Errorf("no headers given: pass --header or --discover")
	}
	opts, err := jobOptions(cmd)
	if err != nil {
		return err
	}
	opts.Headers = hdrs

	outDir := getString(cmd, "out-dir")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", outDir, err)
	}
	format := getString(cmd, "format")

	w, err := newWorker(ctx, cmd, log, discover && len(hdrs) == 0)
	if err != nil {
		return err
	}

	jobs, _ := cmd.Flags().GetInt("jobs")
	if jobs < 1 {
		jobs = 1
	}

	results := make([]batchResult, len(args))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range args {
		g.Go(func() error {
			r := batchResult{path: path}
			job, err := outlineFile(gctx, w, path, opts)
			if err == nil {
				base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				err = writeResult(job.Result(),
					filepath.Join(outDir, base+".outline.txt"),
					filepath.Join(outDir, base+".terms.txt"),
					format)
				snap := job.Snapshot()
				r.sections, r.terms = snap.Progress.Sections, snap.Progress.Terms
			}
			r.err = err

			mu.Lock()
			results[i] = r
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	out := cmd.OutOrStdout()
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(out, "%s %s: %v\n", color.RedString("FAIL"), r.path, r.err)
			continue
		}
		fmt.Fprintf(out, "%s   %s (%d sections, %d terms)\n", color.GreenString("OK"), r.path, r.sections, r.terms)
	}
	fmt.Fprintf(out, "\n%d documents, %d failed\n", len(results), failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(results))
	}
	return nil
}
