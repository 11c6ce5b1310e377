package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erikhoward/graft/internal/catalog"
	"github.com/erikhoward/graft/internal/config"
	"github.com/erikhoward/graft/internal/logging"
)

func runListModels(cmd *cobra.Command, opts *options, e env) error {
	logger := logging.New(cmd.ErrOrStderr(), logging.Level(opts.verbose))

	format, err := catalog.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	// The catalog is public, so neither the file nor api_key is required.
	path, err := configPath(opts.configPath)
	if err != nil {
		return err
	}
	cfg, err := config.Read(path)
	switch {
	case errors.Is(err, config.ErrNotFound):
		logger.Debug("listing models with default settings", "reason", err)
		cfg = config.Default()
	case err != nil:
		return err
	}

	provider, err := cfg.NewProvider()
	if err != nil {
		return err
	}

	cat, err := catalog.Fetch(cmd.Context(), provider, e.cache())
	if err != nil {
		return fmt.Errorf("error fetching models data: %w", err)
	}
	logger.Debug("model catalog loaded", "models", len(cat.Models), "cached", cat.Cached)

	return catalog.Render(cmd.OutOrStdout(), catalog.ImageModels(cat), format, opts.listModelsDetails)
}
