package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/entrhq/applyforge/pkg/answerbank"
	"github.com/entrhq/applyforge/pkg/browser"
	"github.com/entrhq/applyforge/pkg/config"
	"github.com/entrhq/applyforge/pkg/detect"
	"github.com/entrhq/applyforge/pkg/llm"
	"github.com/entrhq/applyforge/pkg/profile"
	"github.com/entrhq/applyforge/pkg/resolve"
	"github.com/entrhq/applyforge/pkg/session"
)

var (
	applyCompany        string
	applyProfilePath    string
	applyHeadless       bool
	applyNonInteractive bool
)

var applyCmd = &cobra.Command{
	Use:   "apply <job-url>",
	Short: "Open a job posting and fill its application form",
	Long: `Navigates to the job URL, reaches the application form, detects its
fields, and fills them from your profile and answer bank. Unknown questions
are asked interactively and remembered for future applications.

The form is never submitted. The session pauses after filling so you can
review and submit manually in the browser window.`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVar(&applyCompany, "company", "", "Company identifier for company-scoped answers")
	applyCmd.Flags().StringVar(&applyProfilePath, "profile", "", "Path to profile JSON (default: <storage-dir>/profile.json)")
	applyCmd.Flags().BoolVar(&applyHeadless, "headless", false, "Run the browser headless")
	applyCmd.Flags().BoolVar(&applyNonInteractive, "non-interactive", false, "Never prompt; leave unknown fields unfilled")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg.Headless = resolveHeadless(cmd.Flags(), applyHeadless, cfg.Headless)

	profilePath := applyProfilePath
	if profilePath == "" {
		profilePath = filepath.Join(cfg.StorageDir, "profile.json")
	}
	prof, err := profile.Load(profilePath)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	bank, err := answerbank.Open(filepath.Join(cfg.StorageDir, "answers.json"), cfg.FuzzyMatchFloor)
	if err != nil {
		return err
	}

	var client llm.Client
	if c, err := llm.New(""); err == nil {
		client = c
	} else {
		log.Warn("LLM unavailable, resolution ends at the answer bank", "reason", err)
	}

	manager := browser.NewManager()
	if err := manager.Initialize(); err != nil {
		return err
	}
	defer manager.Shutdown()

	var prompter session.Prompter
	if !applyNonInteractive {
		prompter = newConsolePrompter()
	}

	controller := session.NewController(cfg, manager, bank,
		resolve.New(prof, bank, client, log),
		detect.New(log), prompter, log)
	defer controller.Close()

	analysis, err := controller.Start(cmd.Context(), args[0], applyCompany)
	if err != nil {
		return err
	}
	printAnalysis(analysis)

	if analysis.Error == "" && !applyNonInteractive {
		fmt.Println("\nPAUSED BEFORE SUBMIT")
		fmt.Println("Review the form in the browser. Nothing has been submitted.")
		fmt.Println("Submit manually if you are happy with it, then press Enter to close.")
		waitForEnter()
	}
	return nil
}

func printAnalysis(a *detect.FormAnalysis) {
	if a.Error != "" {
		fmt.Printf("\n%s\n", a.Error)
		return
	}

	fmt.Printf("\nDetected %d fields on %s\n", len(a.Fields), a.URL)
	for i, f := range a.Fields {
		status := "unfilled"
		switch {
		case f.Filled:
			status = "filled"
		case f.Error != "":
			status = "failed: " + f.Error
		}
		fmt.Printf("  %d/%d  %-40s %-10s %s\n", i+1, len(a.Fields), f.Label, f.Type, status)
	}
	fmt.Printf("\nFilled %d/%d (%.0f%%)\n", a.FieldsFilled, len(a.Fields), a.SuccessRate*100)
	if a.ScreenshotPath != "" {
		fmt.Printf("Screenshot: %s\n", a.ScreenshotPath)
	}
	if a.CapturePath != "" {
		fmt.Printf("Page capture: %s\n", a.CapturePath)
	}
}

// resolveHeadless keeps the config file's headless setting unless the flag
// was passed explicitly on the command line.
func resolveHeadless(flags *pflag.FlagSet, flagValue, configValue bool) bool {
	if flags.Changed("headless") {
		return flagValue
	}
	return configValue
}

func waitForEnter() {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Scan()
}
