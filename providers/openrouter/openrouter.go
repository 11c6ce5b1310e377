// Package openrouter provides an OpenRouter API provider implementation for Graft.
package openrouter

import (
	"net/http"

	"github.com/erikhoward/graft/core"
)

const (
	// DefaultBaseURL is the OpenRouter API root.
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	// DefaultSiteURL and DefaultSiteName identify Graft in OpenRouter's attribution headers.
	DefaultSiteURL  = "https://github.com/u1i/graft"
	DefaultSiteName = "Graft CLI Tool"
)

// DefaultModel is used when the config file does not name one.
const DefaultModel core.ModelID = "google/gemini-2.5-flash-image-preview"

// Config holds provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	SiteURL    string
	SiteName   string
}

// Option configures the provider.
type Option func(*Config)

// WithBaseURL overrides the API root, e.g. for a test server.
func WithBaseURL(u string) Option {
	return func(c *Config) {
		if u != "" {
			c.BaseURL = u
		}
	}
}

// WithHTTPClient sets the HTTP client used for every request, including
// image downloads.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Config) {
		if hc != nil {
			c.HTTPClient = hc
		}
	}
}

// WithSiteURL sets the HTTP-Referer attribution header.
func WithSiteURL(u string) Option {
	return func(c *Config) {
		c.SiteURL = u
	}
}

// WithSiteName sets the X-Title attribution header.
func WithSiteName(name string) Option {
	return func(c *Config) {
		c.SiteName = name
	}
}

// OpenRouter talks to the OpenRouter chat-completions and models endpoints.
type OpenRouter struct {
	config Config
}

var _ core.Provider = (*OpenRouter)(nil)

// New creates an OpenRouter provider. apiKey may be empty for calls that
// need no authentication, such as FetchModels.
func New(apiKey string, opts ...Option) *OpenRouter {
	cfg := Config{
		APIKey:     apiKey,
		BaseURL:    DefaultBaseURL,
		HTTPClient: http.DefaultClient,
		SiteURL:    DefaultSiteURL,
		SiteName:   DefaultSiteName,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &OpenRouter{config: cfg}
}

// ID returns the provider identifier.
func (p *OpenRouter) ID() string {
	return "openrouter"
}

// buildHeaders constructs the headers sent to the OpenRouter API.
func (p *OpenRouter) buildHeaders() http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	if p.config.APIKey != "" {
		h.Set("Authorization", "Bearer "+p.config.APIKey)
	}
	if p.config.SiteURL != "" {
		h.Set("HTTP-Referer", p.config.SiteURL)
	}
	if p.config.SiteName != "" {
		h.Set("X-Title", p.config.SiteName)
	}
	return h
}
