// Package main provides the applyforge CLI: browser-assisted autofill for
// job-application forms. It fills, it never submits.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "applyforge",
	Short: "Autofill assistant for job-application forms",
	Long: "applyforge opens a job posting, finds the application form, and fills it " +
		"from your profile and previously learned answers. It always stops before " +
		"submission; submitting is yours to do in the browser.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "applyforge.yaml", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
