package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/erikhoward/graft/core"
	"github.com/erikhoward/graft/internal/config"
	"github.com/erikhoward/graft/internal/input"
	"github.com/erikhoward/graft/internal/logging"
	"github.com/erikhoward/graft/internal/output"
)

var errGenerationFailed = errors.New("failed to generate image")

func runGenerate(cmd *cobra.Command, opts *options, e env) error {
	logger := logging.New(cmd.ErrOrStderr(), logging.Level(opts.verbose))

	var temperature *float64
	if cmd.Flags().Changed("temperature") {
		if err := config.ValidateTemperature(opts.temperature); err != nil {
			return err
		}
		temperature = &opts.temperature
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	cfg = cfg.WithOverrides(opts.model, temperature)
	logger.Debug("configuration loaded", "path", cfg.Path, "model", cfg.Model, "temperature", cfg.Temperature)

	req, err := input.Resolve(input.Options{
		Prompt:    opts.prompt,
		ImagePath: opts.image,
		Stdin:     cmd.InOrStdin(),
	})
	if err != nil {
		return err
	}
	if req.Image != nil {
		logger.Debug("input image", "mime", req.Image.MIMEType, "bytes", len(req.Image.Data))
	}

	target := output.ParseTarget(opts.output, req.Prompt, e.now())

	provider, err := cfg.NewProvider()
	if err != nil {
		return err
	}
	client := core.NewClient(provider, core.WithTelemetry(logging.Telemetry{Logger: logger}))

	// Status text must not mix with image bytes on stdout.
	status := cmd.OutOrStdout()
	if target.IsStdout() {
		status = cmd.ErrOrStderr()
	}
	infoStyle.Fprintf(status, "Generating with %s...\n", cfg.Model)

	resp, err := client.Generate(cmd.Context(), cfg.Generation(), req)
	if err != nil {
		return fmt.Errorf("error making API request: %w", err)
	}

	writer := output.NewWriter(cmd.OutOrStdout(), cmd.ErrOrStderr(),
		output.WithFetcher(provider),
		output.WithLogger(logger),
	)

	switch out := core.Interpret(resp).(type) {
	case core.StructuredImages:
		if out.Skipped > 0 {
			logger.Debug("images without a URL skipped", "count", out.Skipped)
		}
		sum, err := writer.Write(cmd.Context(), out.Images, target)
		if err != nil {
			return fmt.Errorf("%w: %w", errGenerationFailed, err)
		}
		if !sum.Stdout {
			fmt.Fprintf(status, "\nGenerated %d image(s)\n", sum.Requested)
		}
		return nil

	case core.ContentImage:
		sum, err := writer.Write(cmd.Context(), []core.ImageResult{core.RemoteImage(out.URL)}, target)
		if err != nil {
			return fmt.Errorf("image URL found but download failed: %s: %w", out.URL, err)
		}
		if !sum.Stdout {
			fmt.Fprintf(status, "\nImage saved as: %s\nImage URL: %s\n", sum.Files[0], out.URL)
		}
		return nil

	case core.TextOnly:
		printText(status, out.Text)
		return nil

	case core.Malformed:
		return out.Err()

	default:
		return fmt.Errorf("unhandled response outcome %T", out)
	}
}

func printText(w io.Writer, text string) {
	warningStyle.Fprintln(w, "No image URL found in response. Generated content:")
	fmt.Fprintln(w, text)
}

func loadConfig(flag string) (*config.Config, error) {
	path, err := configPath(flag)
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

func configPath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	return config.DefaultPath()
}
