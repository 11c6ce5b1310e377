// Package commands implements the graft command line.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/erikhoward/graft/internal/catalog"
)

// version is set at build time with -ldflags "-X".
var version = "dev"

// options holds the parsed flags of one invocation.
type options struct {
	prompt      string
	image       string
	output      string
	model       string
	temperature float64

	listModels        bool
	listModelsDetails bool
	format            string

	configPath string
	verbose    bool
}

// env holds what tests substitute: the clock and the catalog cache.
type env struct {
	now   func() time.Time
	cache func() *catalog.Cache
}

func defaultEnv() env {
	return env{now: time.Now, cache: catalog.DefaultCache}
}

func newRootCmd(e env) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "graft",
		Short: "Generate images using OpenRouter image generation models",
		Long: `Generate images using OpenRouter API with image generation models.

The prompt comes from -p or from standard input. Standard input may also
carry the image to edit; its format is detected automatically.

Examples:
  graft -p "A sunset over mountains"
  echo "A futuristic city" | graft
  graft -p "Abstract art" -m google/gemini-2.5-flash-image-preview -t 0.8
  graft -i bottle.png -p "make the bottle green"
  cat bottle.png | graft -p "make the bottle green"
  graft -p "street scene" -o street.png
  graft -p "vintage car" -o - | glimpse -p "what car model is this?"
  graft --list-models-with-details --format yaml`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.listModels || opts.listModelsDetails {
				return runListModels(cmd, opts, e)
			}
			return runGenerate(cmd, opts, e)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.prompt, "prompt", "p", "", "Prompt for image generation or editing")
	f.StringVarP(&opts.image, "image", "i", "", "Input image file for editing")
	f.StringVarP(&opts.output, "output", "o", "", `Output filename, "-" for stdout (default: auto-generated)`)
	f.StringVarP(&opts.model, "model", "m", "", "Override the model specified in config")
	f.Float64VarP(&opts.temperature, "temperature", "t", 0, "Override the temperature setting (0.0-1.0)")
	f.BoolVar(&opts.listModels, "list-models", false, "List all available OpenRouter image generation model names")
	f.BoolVar(&opts.listModelsDetails, "list-models-with-details", false, "List all available OpenRouter image generation models with detailed information")
	f.StringVar(&opts.format, "format", "text", "Model listing format: text, json, yaml")
	f.StringVar(&opts.configPath, "config", "", "Config file (default: ~/.graft_cfg)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Log diagnostics to stderr")

	return cmd
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx, newRootCmd(defaultEnv()))
}

func execute(ctx context.Context, cmd *cobra.Command) error {
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		printError(cmd.ErrOrStderr(), err)
	}
	return err
}

func printError(w io.Writer, err error) {
	errorStyle.Fprint(w, "Error:")
	fmt.Fprintf(w, " %v\n", err)
}
