package main

import (
	"os"

	"github.com/vellum-engine/vellum/internal/cli/commands"
	"github.com/vellum-engine/vellum/internal/engine"
)

func main() {
	if err := commands.Execute(engine.Module{}); err != nil {
		os.Exit(1)
	}
}
