package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aibee/wizard/internal/cli"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored sessions",
	Long:  `List, inspect, and remove sessions kept in the configured store (file or redis).`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all stored sessions",
	Run: func(cmd *cobra.Command, args []string) {
		stores := getStores()
		defer stores.Close()

		sessions, err := stores.Store.List(cmd.Context())
		exitOnError("Error listing sessions", err)

		if len(sessions) == 0 {
			fmt.Println("No sessions found.")
			return
		}

		fmt.Println("Sessions:")
		for _, s := range sessions {
			fmt.Println("- " + s)
		}
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Inspect the state of a session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sessionID := args[0]
		stores := getStores()
		defer stores.Close()

		sess, err := stores.Store.Load(cmd.Context(), sessionID)
		exitOnError(fmt.Sprintf("Error loading session '%s'", sessionID), err)

		data, err := json.MarshalIndent(sess, "", "  ")
		exitOnError("Error marshaling session", err)
		fmt.Println(string(data))
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args: func(cmd *cobra.Command, args []string) error {
		if all, _ := cmd.Flags().GetBool("all"); all {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	Run: func(cmd *cobra.Command, args []string) {
		stores := getStores()
		defer stores.Close()

		if all, _ := cmd.Flags().GetBool("all"); all {
			ids, err := stores.Store.List(cmd.Context())
			exitOnError("Error listing sessions", err)
			args = ids
		}

		hasError := false
		for _, sessionID := range args {
			if err := stores.Store.Delete(cmd.Context(), sessionID); err != nil {
				fmt.Printf("Error removing '%s': %v\n", sessionID, err)
				hasError = true
			} else {
				fmt.Printf("Removed session '%s'\n", sessionID)
			}
		}

		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)

	sessionRmCmd.Flags().Bool("all", false, "Remove every stored session")
}

func getStores() *cli.Stores {
	stores, err := cli.NewStores(cfg.Store)
	exitOnError("Error opening session store", err)
	return stores
}
