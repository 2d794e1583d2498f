package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aibee/wizard"
	"github.com/aibee/wizard/internal/cli"
	"github.com/aibee/wizard/internal/presentation/tui"
	"github.com/aibee/wizard/pkg/domain"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var renderCmd = &cobra.Command{
	Use:   "render [answers.json]",
	Short: "Render the proposal document",
	Long: `Renders the proposal from an exported answers file, or from a stored
session when no file is given. Use --output - to write to stdout and
--preview to read the markdown rendition in the terminal.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sessionID, _ := cmd.Flags().GetString("session")
		preview, _ := cmd.Flags().GetBool("preview")
		output, _ := cmd.Flags().GetString("output")
		format, _ := cmd.Flags().GetString("format")
		if output == "" {
			output = cfg.Output.Path
		}
		if format == "" {
			format = cfg.Output.Format
		}

		engine, stores := openEngine(cli.EngineOptions{})
		defer stores.Close()

		var answers domain.Answers
		if len(args) > 0 {
			data, err := os.ReadFile(args[0])
			exitOnError("Error reading answers", err)
			exitOnError("Error decoding answers", json.Unmarshal(data, &answers))
		} else {
			var err error
			answers, err = engine.Export(cmd.Context(), sessionID)
			exitOnError("Error exporting answers", err)
		}

		if preview {
			exitOnError("Error rendering preview", previewDocument(engine, answers))
			return
		}
		exitOnError("Error writing document", writeDocument(engine, output, format, answers))
		if output != "-" {
			fmt.Printf(">>> Proposal written to %s\n", output)
		}
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringP("session", "s", "cli", "Session to render when no answers file is given")
	renderCmd.Flags().StringP("output", "o", "", "Output file, - for stdout (default from config)")
	renderCmd.Flags().StringP("format", "f", "", "Document format: docx or markdown (default from config)")
	renderCmd.Flags().Bool("preview", false, "Print the document to the terminal instead of writing it")
}

// writeDocument renders answers in format to path, or stdout for "-".
func writeDocument(engine *wizard.Engine, path, format string, answers domain.Answers) error {
	var out io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	diags, err := engine.Write(out, format, answers)
	if err != nil {
		return err
	}
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "warning: %s\n", d)
	}
	return nil
}

// previewDocument prints the markdown rendition styled for the terminal.
func previewDocument(engine *wizard.Engine, answers domain.Answers) error {
	var buf bytes.Buffer
	if _, err := engine.Write(&buf, wizard.FormatMarkdown, answers); err != nil {
		return err
	}

	width := 0
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
	}
	render, err := tui.NewRenderer(width)
	if err != nil {
		return err
	}
	styled, err := render(buf.String())
	if err != nil {
		return err
	}
	fmt.Print(styled)
	return nil
}
