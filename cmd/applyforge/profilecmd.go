package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/entrhq/applyforge/pkg/config"
	"github.com/entrhq/applyforge/pkg/llm"
	"github.com/entrhq/applyforge/pkg/profile"
)

var profileInitOut string

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the applicant profile",
}

var profileInitCmd = &cobra.Command{
	Use:   "init <resume-path>",
	Short: "Bootstrap a profile from a resume",
	Long: `Extracts text from the resume file and asks the configured language model
to pull out name, contact details, education, and profile links. The result
is written as a profile JSON you can review and complete by hand.`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileInit,
}

func init() {
	profileInitCmd.Flags().StringVar(&profileInitOut, "out", "", "Output path (default: <storage-dir>/profile.json)")
	profileCmd.AddCommand(profileInitCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileInit(cmd *cobra.Command, args []string) error {
	resumePath := args[0]

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	outPath := profileInitOut
	if outPath == "" {
		outPath = filepath.Join(cfg.StorageDir, "profile.json")
	}

	text, err := profile.ExtractText(resumePath)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("no text could be extracted from %s", resumePath)
	}

	client, err := llm.New("")
	if err != nil {
		return err
	}

	parsed, err := client.ParseResume(cmd.Context(), text)
	if err != nil {
		return err
	}

	p := &profile.Profile{
		FirstName:       parsed.FirstName,
		LastName:        parsed.LastName,
		FullName:        parsed.FullName,
		Email:           parsed.Email,
		Phone:           parsed.Phone,
		Location:        parsed.Location,
		LinkedIn:        parsed.LinkedIn,
		GitHub:          parsed.GitHub,
		Website:         parsed.Website,
		School:          parsed.School,
		Degree:          parsed.Degree,
		Major:           parsed.Major,
		GraduationYear:  parsed.GraduationYear,
		GraduationMonth: parsed.GraduationMonth,
		ResumePath:      resumePath,
	}
	if p.FullName == "" && p.FirstName != "" {
		p.FullName = strings.TrimSpace(p.FirstName + " " + p.LastName)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	if err := p.Save(outPath); err != nil {
		return err
	}

	fmt.Printf("Profile written to %s\n", outPath)
	fmt.Println("Review it and fill in work authorization, sponsorship, and cover letter by hand.")
	return nil
}
