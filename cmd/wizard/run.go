package main

import (
	"fmt"
	"os"

	"github.com/aibee/wizard/internal/cli"
	"github.com/aibee/wizard/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Answer the proposal questions interactively",
	Long: `Asks the questions of each step on the terminal, runs the step's prompts
and writes the finished proposal to the configured output file.

Progress is kept in the session store, so a session can be resumed with
--session when a persistent store (file or redis) is configured.`,
	Run: func(cmd *cobra.Command, args []string) {
		sessionID, _ := cmd.Flags().GetString("session")
		noDocument, _ := cmd.Flags().GetBool("no-document")
		jsonMode, _ := cmd.Flags().GetBool("json")

		interactive := !jsonMode && term.IsTerminal(int(os.Stdin.Fd()))
		styles := cli.PlainStyles()
		if interactive {
			tui.PrintBanner(os.Stdout)
			styles = cli.DefaultStyles()
		}

		eo := cli.EngineOptions{}
		if interactive && cfg.LLM.Concurrency <= 1 {
			// Echo the completion as it streams in.
			eo.OnDelta = func(delta string) { fmt.Fprint(os.Stderr, delta) }
		}
		engine, stores := openEngine(eo)
		defer stores.Close()

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		if cfg.Watch {
			exitOnError("Error watching table", engine.AutoReload(sigCtx))
		}

		var err error
		if jsonMode {
			err = cli.RunJSON(sigCtx, engine, sessionID, os.Stdin, os.Stdout)
		} else {
			err = cli.NewSession(engine, sessionID,
				cli.WithStyles(styles),
				cli.WithSessionLogger(logger),
			).Run(sigCtx)
		}
		if jsonMode && cli.IsInterrupted(err) {
			return
		}
		if cli.IsInterrupted(err) {
			fmt.Println()
			fmt.Printf(">>> Session '%s' saved. Resume it with --session %s\n", sessionID, sessionID)
			return
		}
		exitOnError("Error", err)

		if noDocument || jsonMode {
			return
		}
		answers, err := engine.Export(sigCtx, sessionID)
		exitOnError("Error exporting answers", err)
		exitOnError("Error writing document", writeDocument(engine, cfg.Output.Path, cfg.Output.Format, answers))
		fmt.Printf(">>> Proposal written to %s\n", cfg.Output.Path)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("session", "s", "cli", "Session identifier")
	runCmd.Flags().Bool("no-document", false, "Do not write the document when the session completes")
	runCmd.Flags().Bool("json", false, "Run headless over JSON Lines (one answers object per input line)")

	// 'run' is the default when no command is provided.
	rootCmd.Run = runCmd.Run
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
