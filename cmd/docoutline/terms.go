package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/outline"
)

var termsCmd = &cobra.Command{
	Use:   "terms <outline.txt>",
	Short: "Extract bold terms from an existing outline file",
	Long: `Read an outline previously written by "process" (use - for stdin) and list
its bold terms with their positions. Hand edits to the outline are picked up.`,
	Args: cobra.ExactArgs(1),
	RunE: runTerms,
}

func init() {
	f := termsCmd.Flags()
	f.String("format", "text", "terms format: text, json, yaml, report or grouped")
	f.Bool("include-section-terms", false, "also extract bold phrases from section header lines")
	f.String("out", "", "output file (default stdout)")
	rootCmd.AddCommand(termsCmd)
}

func runTerms(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var rendered []string
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		rendered = append(rendered, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read outline: %w", err)
	}

	terms := outline.ExtractText(rendered, outline.ExtractOptions{
		IncludeSectionTerms: getBool(cmd, "include-section-terms"),
	})

	var out io.Writer = cmd.OutOrStdout()
	if path := getString(cmd, "out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return writeTerms(out, terms, getString(cmd, "format"))
}
