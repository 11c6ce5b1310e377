// Graft CLI - generate images from prompts with OpenRouter models.
package main

import (
	"os"

	"github.com/erikhoward/graft/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
