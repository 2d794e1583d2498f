package main

import (
	"github.com/aibee/wizard"
	"github.com/aibee/wizard/internal/cli"
)

// openEngine builds the engine from the loaded config or exits.
func openEngine(eo cli.EngineOptions) (*wizard.Engine, *cli.Stores) {
	engine, stores, err := cli.NewEngine(cfg, logger, eo)
	exitOnError("Error initializing wizard", err)
	return engine, stores
}
