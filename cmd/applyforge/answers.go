package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/entrhq/applyforge/pkg/answerbank"
	"github.com/entrhq/applyforge/pkg/config"
)

var answersCompany string

var answersCmd = &cobra.Command{
	Use:   "answers",
	Short: "Review and edit the learned answer bank",
}

var answersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every stored answer",
	RunE: func(cmd *cobra.Command, args []string) error {
		bank, err := openBank()
		if err != nil {
			return err
		}
		snapshot := bank.Snapshot()
		if len(snapshot) == 0 {
			fmt.Println("The answer bank is empty.")
			return nil
		}
		for _, qa := range snapshot {
			fmt.Printf("  %s -> %s\n", qa.Question, qa.Answer)
		}
		return nil
	},
}

var answersAddCmd = &cobra.Command{
	Use:   "add <question> <answer>",
	Short: "Store an answer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		bank, err := openBank()
		if err != nil {
			return err
		}
		if err := bank.Store(args[0], args[1], answersCompany); err != nil {
			return err
		}
		fmt.Println("Stored.")
		return nil
	},
}

var answersDeleteCmd = &cobra.Command{
	Use:   "delete <question>",
	Short: "Delete a stored answer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bank, err := openBank()
		if err != nil {
			return err
		}
		if err := bank.Delete(args[0]); err != nil {
			return err
		}
		fmt.Println("Deleted.")
		return nil
	},
}

func init() {
	answersAddCmd.Flags().StringVar(&answersCompany, "company", "", "Scope the answer to one company")
	answersCmd.AddCommand(answersListCmd, answersAddCmd, answersDeleteCmd)
	rootCmd.AddCommand(answersCmd)
}

func openBank() (*answerbank.Bank, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return answerbank.Open(filepath.Join(cfg.StorageDir, "answers.json"), cfg.FuzzyMatchFloor)
}
