package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process <file> [header...]",
	Short: "Outline one document and extract its bold terms",
	Long: `Outline one document. Every paragraph matching one of the given headers
starts a new numbered section; the paragraphs after it become lettered
subsections. Bold phrases are written with their position, e.g. "2b: Term".

Without headers, pass --discover to have the llm provider find them.`,
	Example: `  docoutline process contract.docx "Definitions" "Payment Terms" "Termination"
  docoutline process notes.md --discover --format report`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	addOutlineFlags(processCmd)
	f := processCmd.Flags()
	f.String("outline-out", "zfinal.txt", "outline output file")
	f.String("terms-out", "zbold.txt", "terms output file")
	f.String("format", "text", "terms format: text, json, yaml, report or grouped")
	f.Bool("stdout", false, "print the outline and terms instead of writing files")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := newLogger(cmd)

	path, hdrs := args[0], args[1:]
	discover := getBool(cmd, "discover")
	if len(hdrs) == 0 && !discover {
		return errors.New("no headers given: list them after the file or pass --discover")
	}

	opts, err := jobOptions(cmd)
	if err != nil {
		return err
	}
	opts.Headers = hdrs

	w, err := newWorker(ctx, cmd, log, discover && len(hdrs) == 0)
	if err != nil {
		return err
	}
	job, err := outlineFile(ctx, w, path, opts)
	if err != nil {
		return err
	}
	res := job.Result()
	format := getString(cmd, "format")

	if getBool(cmd, "stdout") {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, res.Outline)
		fmt.Fprintln(out)
		return writeTerms(out, res.Terms, format)
	}

	outlinePath := getString(cmd, "outline-out")
	termsPath := getString(cmd, "terms-out")
	if err := writeResult(res, outlinePath, termsPath, format); err != nil {
		return err
	}

	snap := job.Snapshot()
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("outlined"), bold(path))
	fmt.Fprintf(cmd.OutOrStdout(), "  headers:  %d (%s)\n", len(snap.Progress.Headers), snap.Progress.HeaderSource)
	fmt.Fprintf(cmd.OutOrStdout(), "  lines:    %d\n", snap.Progress.Lines)
	fmt.Fprintf(cmd.OutOrStdout(), "  sections: %d\n", snap.Progress.Sections)
	fmt.Fprintf(cmd.OutOrStdout(), "  terms:    %d\n", snap.Progress.Terms)
	fmt.Fprintf(cmd.OutOrStdout(), "  wrote %s, %s\n", outlinePath, termsPath)
	if snap.Progress.Sections == 0 {
		fmt.Fprintln(os.Stderr, color.YellowString("warning:"), "no paragraph matched a header")
	}
	return nil
}
