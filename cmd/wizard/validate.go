package main

import (
	"fmt"
	"os"

	"github.com/aibee/wizard/internal/compiler"
	"github.com/aibee/wizard/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [table]",
	Short: "Check the transition table for consistency",
	Long: `Parses the transition table, reports rows that cannot be read, then crawls
the steps from the entry step and reports missing or unreachable steps.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := cfg.Table
		if len(args) > 0 {
			path = args[0]
		}
		if err := runValidate(path, cfg.EntryStep); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Transition table is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(path, entryStep string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	table, rowErrs, err := compiler.NewParser().Parse(data, compiler.FormatFromPath(path))
	if err != nil {
		return err
	}
	for _, re := range rowErrs {
		fmt.Printf("warning: %v\n", re)
	}

	return validator.ValidateTable(table, entryStep)
}
