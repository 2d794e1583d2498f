package main

import (
	"fmt"

	"github.com/aibee/wizard/internal/cli"
	"github.com/aibee/wizard/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the question flow as a Mermaid diagram",
	Long: `Inspects the transition table and prints a Mermaid flowchart of its
steps. With --session, the steps that session visited are highlighted.`,
	Run: func(cmd *cobra.Command, args []string) {
		sessionID, _ := cmd.Flags().GetString("session")

		engine, stores := openEngine(cli.EngineOptions{})
		defer stores.Close()

		table, err := engine.Inspect()
		exitOnError("Error inspecting table", err)

		var overlay *graph.GraphOverlay
		if sessionID != "" {
			sess, err := engine.Sessions().Load(cmd.Context(), sessionID)
			exitOnError(fmt.Sprintf("Error loading session '%s'", sessionID), err)
			overlay = graph.OverlayFor(sess)
		}

		fmt.Print(graph.GenerateMermaid(table, engine.EntryStep(), overlay))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("session", "s", "", "Highlight the path of this session")
}
