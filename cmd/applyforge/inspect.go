package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/entrhq/applyforge/pkg/browser"
	"github.com/entrhq/applyforge/pkg/config"
	"github.com/entrhq/applyforge/pkg/detect"
	"github.com/entrhq/applyforge/pkg/platform"
)

var inspectFile string

var inspectCmd = &cobra.Command{
	Use:   "inspect [job-url]",
	Short: "Detect and list form fields without filling anything",
	Long: `Runs field detection only and prints what was found: labels, types,
selectors, and frame origins. Useful for checking how a board's form will be
seen before running apply. With --file, detection runs over a saved HTML file
instead of a live page.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectFile, "file", "", "Detect fields in a local HTML file instead of a live page")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	log := newLogger()

	if inspectFile != "" {
		raw, err := os.ReadFile(inspectFile)
		if err != nil {
			return err
		}
		fields, err := detect.DetectFromHTML(string(raw), "")
		if err != nil {
			return err
		}
		printFields(fields)
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("a job URL or --file is required")
	}
	url := args[0]

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	manager := browser.NewManager()
	if err := manager.Initialize(); err != nil {
		return err
	}
	defer manager.Shutdown()

	sess, err := manager.Lease(browser.SessionOptions{
		Headless:  true,
		TimeoutMs: cfg.NavigationTimeoutMs,
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	plat := platform.Detect(url)
	if err := sess.Navigate(url, browser.NavigateOptions{
		WaitUntil: "domcontentloaded",
		TimeoutMs: plat.NavigationTimeoutMs(cfg.NavigationTimeoutMs),
	}); err != nil {
		return err
	}
	sess.WaitSettle(plat.SettleDelayMs())

	fields, err := detect.New(log).Detect(sess)
	if err != nil {
		return err
	}
	fmt.Printf("Platform: %s\n", plat)
	printFields(fields)
	return nil
}

func printFields(fields []*detect.FormField) {
	if len(fields) == 0 {
		fmt.Println("No form fields detected.")
		return
	}
	fmt.Printf("%d fields detected:\n", len(fields))
	for i, f := range fields {
		frame := ""
		if f.FrameURL != "" {
			frame = "  [frame: " + f.FrameURL + "]"
		}
		required := ""
		if f.Required {
			required = "  (required)"
		}
		fmt.Printf("  %2d. %-10s %-40s %s%s%s\n", i+1, f.Type, f.Label, f.Selector, required, frame)
	}
}
