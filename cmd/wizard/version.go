package main

import (
	"fmt"
	"strings"

	"github.com/aibee/wizard"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of wizard",
	// Skips config loading so version works anywhere.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wizard version %s\n", strings.TrimSpace(wizard.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
