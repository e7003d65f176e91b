// Package main is the docoutline command line tool: it outlines documents
// locally and writes the outline and extracted terms to files.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "docoutline",
	Short: "Outline documents and extract their emphasized terms",
	Long: `docoutline turns a document (docx, pdf, markdown, html or text) into a
numbered outline of sections and lettered subsections, and lists every bold
phrase together with the outline position it appears in.

Section headers are given on the command line or discovered with a language
model (--discover).`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		switch getString(cmd, "color") {
		case "on":
			color.NoColor = false
		case "off":
			color.NoColor = true
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./docoutline.yaml or ~/.config/docoutline/docoutline.yaml)")
	pf.BoolP("verbose", "v", false, "debug logging on stderr")
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.String("provider", "", "llm provider for header discovery: anthropic, gemini or none")
	pf.String("model", "", "model name for the llm provider")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("docoutline")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "docoutline"))
		}
	}

	viper.SetEnvPrefix("DOCOUTLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	// Provider keys are also read from their usual unprefixed names.
	_ = viper.BindEnv("anthropic_api_key", "DOCOUTLINE_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = viper.BindEnv("gemini_api_key", "DOCOUTLINE_GEMINI_API_KEY", "GEMINI_API_KEY")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// getString returns the flag value when set on the command line, then the
// config/env value, then the flag default.
func getString(cmd *cobra.Command, name string) string {
	f := cmd.Flags().Lookup(name)
	if f != nil && f.Changed {
		return f.Value.String()
	}
	if viper.IsSet(name) {
		return viper.GetString(name)
	}
	if f != nil {
		return f.Value.String()
	}
	return ""
}

func getBool(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	if f != nil && f.Changed {
		b, _ := cmd.Flags().GetBool(name)
		return b
	}
	if viper.IsSet(name) {
		return viper.GetBool(name)
	}
	b, _ := cmd.Flags().GetBool(name)
	return b
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if getBool(cmd, "verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}
