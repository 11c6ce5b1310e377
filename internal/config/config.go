// Package config loads Graft settings from the user's INI config file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/erikhoward/graft/core"
	"github.com/erikhoward/graft/providers/openrouter"
)

// FileName is the config file name in the user's home directory.
const FileName = ".graft_cfg"

// Section is the INI section holding all settings.
const Section = "openrouter"

// DefaultTemperature is used when the config file does not set one.
const DefaultTemperature = 0.7

var (
	ErrNotFound           = errors.New("configuration file not found")
	ErrMissingAPIKey      = errors.New("api_key is required")
	ErrInvalid            = errors.New("invalid configuration value")
	ErrInvalidTemperature = errors.New("temperature must be between 0.0 and 1.0")
)

// Config is the loaded configuration. It is not modified after Load;
// WithOverrides returns a copy.
type Config struct {
	Path string

	APIKey       string
	Model        core.ModelID
	Temperature  float64
	SystemPrompt string
	HTTPProxy    string

	BaseURL            string
	Timeout            time.Duration
	InsecureSkipVerify bool
	SiteURL            string
	SiteName           string
}

// Default returns the settings used for anything the file leaves out.
func Default() *Config {
	return &Config{
		Model:       openrouter.DefaultModel,
		Temperature: DefaultTemperature,
		BaseURL:     openrouter.DefaultBaseURL,
		Timeout:     openrouter.DefaultTimeout,
		SiteURL:     openrouter.DefaultSiteURL,
		SiteName:    openrouter.DefaultSiteName,
	}
}

// DefaultPath returns ~/.graft_cfg.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, FileName), nil
}

// ValidateTemperature accepts values in the closed range [0.0, 1.0].
func ValidateTemperature(t float64) error {
	if math.IsNaN(t) || t < 0.0 || t > 1.0 {
		return fmt.Errorf("%w (got %g)", ErrInvalidTemperature, t)
	}
	return nil
}

// Load reads and validates the config file at path. The api_key is required.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w in [%s] section of %s", ErrMissingAPIKey, Section, path)
	}
	return cfg, nil
}

// Read is Load without the api_key requirement, for calls that need no
// authentication. A file without the section yields the defaults.
func Read(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s: create it with an [%s] section containing api_key", ErrNotFound, path, Section)
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	// Parsed like Python's configparser: values are taken verbatim so prompts
	// may contain '#' and ';', key names are case-insensitive and indented
	// lines continue the previous value.
	file, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:        true,
		InsensitiveKeys:            true,
		AllowPythonMultilineValues: true,
	}, path)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg := Default()
	cfg.Path = path

	sec, err := file.GetSection(Section)
	if err != nil {
		return cfg, nil
	}

	cfg.APIKey = value(sec, "api_key")

	if v := value(sec, "model"); v != "" {
		cfg.Model = core.ModelID(v)
	}
	if sec.HasKey("temperature") {
		t, err := sec.Key("temperature").Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: temperature: %v", ErrInvalid, err)
		}
		if err := ValidateTemperature(t); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
		cfg.Temperature = t
	}
	cfg.SystemPrompt = value(sec, "system_prompt")

	if v := value(sec, "http_proxy"); v != "" {
		u, err := url.Parse(v)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("%w: http_proxy %q is not an absolute URL", ErrInvalid, v)
		}
		cfg.HTTPProxy = v
	}

	if v := value(sec, "base_url"); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}
	if sec.HasKey("timeout") {
		secs, err := sec.Key("timeout").Float64()
		if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) || secs < 0 {
			return nil, fmt.Errorf("%w: timeout must be a non-negative number of seconds", ErrInvalid)
		}
		cfg.Timeout = time.Duration(secs * float64(time.Second))
	}
	if sec.HasKey("insecure_skip_verify") {
		b, err := sec.Key("insecure_skip_verify").Bool()
		if err != nil {
			return nil, fmt.Errorf("%w: insecure_skip_verify: %v", ErrInvalid, err)
		}
		cfg.InsecureSkipVerify = b
	}
	if sec.HasKey("site_url") {
		cfg.SiteURL = value(sec, "site_url")
	}
	if sec.HasKey("site_name") {
		cfg.SiteName = value(sec, "site_name")
	}

	return cfg, nil
}

// value returns the trimmed value of key. Continuation lines keep their line
// breaks but lose their indentation.
func value(sec *ini.Section, key string) string {
	if !sec.HasKey(key) {
		return ""
	}
	lines := strings.Split(sec.Key(key).String(), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// WithOverrides returns a copy of c with the command-line model and
// temperature applied. Empty model and nil temperature keep the file values.
func (c *Config) WithOverrides(model string, temperature *float64) *Config {
	out := *c
	if model != "" {
		out.Model = core.ModelID(model)
	}
	if temperature != nil {
		out.Temperature = *temperature
	}
	return &out
}

// Generation returns the model settings for a generation request.
func (c *Config) Generation() core.GenerationConfig {
	return core.GenerationConfig{
		Model:        c.Model,
		Temperature:  c.Temperature,
		SystemPrompt: c.SystemPrompt,
	}
}

// HTTPOptions returns the transport settings for the provider's HTTP client.
func (c *Config) HTTPOptions() openrouter.HTTPOptions {
	return openrouter.HTTPOptions{
		Proxy:              c.HTTPProxy,
		Timeout:            c.Timeout,
		InsecureSkipVerify: c.InsecureSkipVerify,
	}
}

// NewProvider builds the OpenRouter provider described by c.
func (c *Config) NewProvider() (*openrouter.OpenRouter, error) {
	hc, err := openrouter.NewHTTPClient(c.HTTPOptions())
	if err != nil {
		return nil, err
	}
	return openrouter.New(c.APIKey,
		openrouter.WithBaseURL(c.BaseURL),
		openrouter.WithHTTPClient(hc),
		openrouter.WithSiteURL(c.SiteURL),
		openrouter.WithSiteName(c.SiteName),
	), nil
}
