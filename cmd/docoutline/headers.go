package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/parser"
)

var headersCmd = &cobra.Command{
	Use:   "headers <file>",
	Short: "Discover the section headers of a document",
	Long: `Ask the llm provider for the section headers of a document and print them
one per line. The output can be passed back to "process" as header arguments.`,
	Args: cobra.ExactArgs(1),
	RunE: runHeaders,
}

func init() {
	headersCmd.Flags().Bool("pdftotext", true, "fall back to pdftotext for PDFs without extractable text")
	rootCmd.AddCommand(headersCmd)
}

func runHeaders(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := newLogger(cmd)
	path := args[0]

	d, err := newDiscoverer(ctx, cmd, log)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	p, err := parser.ForFile(path, parser.Options{PDFFallbackPdftotext: getBool(cmd, "pdftotext")})
	if err != nil {
		return err
	}
	doc, err := p.Parse(bytes.NewReader(data), filepath.Base(path))
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if getBool(cmd, "verbose") {
		raw := doc.RawText()
		if len(raw) > 500 {
			raw = raw[:500] + "..."
		}
		fmt.Fprintf(os.Stderr, "%s %s (%d paragraphs)\n%s\n\n", color.CyanString("parsed"), path, doc.NonBlank(), raw)
	}

	found, err := d.Discover(ctx, doc)
	if err != nil {
		return fmt.Errorf("discover headers: %w", err)
	}
	for _, h := range found {
		fmt.Fprintln(cmd.OutOrStdout(), h)
	}
	return nil
}
