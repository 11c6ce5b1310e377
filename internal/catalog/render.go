package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"
)

// DescriptionWidth is the display width descriptions are cut to.
const DescriptionWidth = 100

// Format selects how listings are printed.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q (use text, json or yaml)", s)
	}
}

var (
	headerStyle = color.New(color.FgCyan, color.Bold)
	labelStyle  = color.New(color.Bold)
	borderStyle = color.New(color.FgWhite, color.Faint)
)

// Render prints models. Without detailed, only IDs are shown.
func Render(w io.Writer, models []Model, format Format, detailed bool) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if detailed {
			return enc.Encode(nonNil(models))
		}
		return enc.Encode(ids(models))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		var v any = ids(models)
		if detailed {
			v = nonNil(models)
		}
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		return renderText(w, models, detailed)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func renderText(w io.Writer, models []Model, detailed bool) error {
	headerStyle.Fprintf(w, "Available OpenRouter Image Generation Models (%d total):", len(models))
	fmt.Fprintln(w)
	if !detailed {
		for _, m := range models {
			fmt.Fprintln(w, m.ID)
		}
		return nil
	}

	borderStyle.Fprintln(w, strings.Repeat("=", 70))
	for _, m := range models {
		field(w, "ID", orUnknown(m.ID))
		field(w, "Name", orUnknown(m.Name))
		field(w, "Context", contextLength(m.ContextLength))
		field(w, "Pricing", fmt.Sprintf("$%s/token prompt, $%s/token completion",
			orUnknown(string(m.Pricing.Prompt)), orUnknown(string(m.Pricing.Completion))))
		field(w, "Modalities", modalities(m.Architecture))
		field(w, "Description", Truncate(m.Description))
		borderStyle.Fprintln(w, strings.Repeat("-", 70))
	}
	return nil
}

func field(w io.Writer, label, value string) {
	labelStyle.Fprintf(w, "%s:", label)
	fmt.Fprintf(w, " %s\n", value)
}

// Truncate cuts a description to DescriptionWidth display columns.
func Truncate(desc string) string {
	desc = strings.Join(strings.Fields(desc), " ")
	if desc == "" {
		return "No description available"
	}
	return runewidth.Truncate(desc, DescriptionWidth, "...")
}

func contextLength(n int) string {
	if n <= 0 {
		return "Unknown"
	}
	return strconv.Itoa(n) + " tokens"
}

func modalities(a Architecture) string {
	if len(a.InputModalities) == 0 && len(a.OutputModalities) == 0 {
		return orUnknown(a.Modality)
	}
	return joinOrUnknown(a.InputModalities) + " -> " + joinOrUnknown(a.OutputModalities)
}

func joinOrUnknown(items []string) string {
	return orUnknown(strings.Join(items, ", "))
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func ids(models []Model) []string {
	out := make([]string, 0, len(models))
	for _, m := range models {
		out = append(out, m.ID)
	}
	return out
}

func nonNil(models []Model) []Model {
	if models == nil {
		return []Model{}
	}
	return models
}
