package main

import (
	"os"

	"github.com/rogerboy38/raven-ai-agent-sub002/cmd/allocctl/commands"
)

// allocctl: asignación de lotes sin servidor, sobre una foto YAML del inventario.
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
