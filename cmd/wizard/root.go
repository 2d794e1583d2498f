package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aibee/wizard/internal/config"
	"github.com/aibee/wizard/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	envFile string

	// cfg and logger are populated before any subcommand runs.
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Wizard guides you through a PC-1 project proposal",
	Long: `Wizard asks the questions of a PC-1 proposal step by step, drafts the
narrative sections with an LLM and renders the finished proposal as a
Word document.

The question flow is read from a transition table (steps.txt by default).`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Assigned here rather than in the literal to avoid an initialization
	// cycle (loadConfig refers to rootCmd).
	rootCmd.PersistentPreRunE = loadConfig

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default ./wizard.yaml when present)")
	flags.StringVar(&envFile, "env-file", ".env", "Dotenv file read before the config; empty disables it")
	flags.String("table", "", "Transition table (line format or .yaml)")
	flags.String("defaults", "", "Default-value side table used by @name markers")
	flags.String("store", "", "Session store: memory, file or redis")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.Bool("watch", false, "Reload the transition table when it changes")
}

// flagBindings maps config keys to root persistent flags.
var flagBindings = map[string]string{
	"table":      "table",
	"defaults":   "defaults",
	"store.kind": "store",
	"log.level":  "log-level",
	"watch":      "watch",
}

func loadConfig(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader().WithEnvFile(envFile)
	v := loader.Viper()
	for key, name := range flagBindings {
		if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	var err error
	if cfgFile != "" {
		cfg, err = loader.LoadFromFile(cfgFile)
	} else {
		cfg, err = loader.Load()
	}
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger = logging.NewWithFormat(os.Stderr, level, cfg.Log.Format)
	slog.SetDefault(logger)
	return nil
}

// exitOnError prints err with context and exits the process.
func exitOnError(context string, err error) {
	if err == nil {
		return
	}
	fmt.Printf("%s: %v\n", context, err)
	os.Exit(1)
}
