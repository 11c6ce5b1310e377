package core

import (
	"context"
	"strings"
	"time"
)

// Provider is the interface that completion providers must implement.
type Provider interface {
	// ID returns the provider identifier (e.g., "openrouter").
	ID() string

	// Chat sends a non-streaming chat request.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}

// Client is the main entry point for talking to a provider.
// A request is sent exactly once; failures are returned, never retried.
type Client struct {
	provider  Provider
	telemetry TelemetryHook
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new Client with the given provider and options.
func NewClient(p Provider, opts ...ClientOption) *Client {
	c := &Client{
		provider:  p,
		telemetry: NoopTelemetryHook{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTelemetry sets the telemetry hook for the client.
func WithTelemetry(h TelemetryHook) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.telemetry = h
		}
	}
}

// Provider returns the underlying provider.
func (c *Client) Provider() Provider {
	return c.provider
}

// Chat returns a ChatBuilder for constructing and executing a chat request.
func (c *Client) Chat(model ModelID) *ChatBuilder {
	return &ChatBuilder{
		client: c,
		req: ChatRequest{
			Model: model,
		},
	}
}

// Generate sends the generation request: an optional system message followed
// by a single user message carrying the prompt and the optional input image.
func (c *Client) Generate(ctx context.Context, cfg GenerationConfig, req *GenerationRequest) (*ChatResponse, error) {
	if req == nil || strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	b := c.Chat(cfg.Model).Temperature(cfg.Temperature)
	if cfg.SystemPrompt != "" {
		b.System(cfg.SystemPrompt)
	}
	if req.Image != nil {
		b.User(req.Prompt, *req.Image)
	} else {
		b.User(req.Prompt)
	}
	return b.GetResponse(ctx)
}

// ChatBuilder provides a fluent API for building chat requests.
// ChatBuilder is NOT thread-safe and should not be shared across goroutines.
type ChatBuilder struct {
	client *Client
	req    ChatRequest
}

// System appends a system message.
func (b *ChatBuilder) System(s string) *ChatBuilder {
	b.req.Messages = append(b.req.Messages, Message{Role: RoleSystem, Content: s})
	return b
}

// User appends a user message with optional images.
func (b *ChatBuilder) User(s string, images ...ImageInput) *ChatBuilder {
	b.req.Messages = append(b.req.Messages, Message{Role: RoleUser, Content: s, Images: images})
	return b
}

// Temperature sets the temperature parameter.
func (b *ChatBuilder) Temperature(v float64) *ChatBuilder {
	b.req.Temperature = &v
	return b
}

// Request returns a copy of the request built so far.
func (b *ChatBuilder) Request() ChatRequest {
	return b.req
}

// validate checks that the request is valid.
func (b *ChatBuilder) validate() error {
	if b.req.Model == "" {
		return ErrModelRequired
	}
	if len(b.req.Messages) == 0 {
		return ErrNoMessages
	}
	return nil
}

// GetResponse executes the chat request and returns the response.
// It applies validation and telemetry.
func (b *ChatBuilder) GetResponse(ctx context.Context) (*ChatResponse, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	providerID := b.client.provider.ID()

	b.client.telemetry.OnRequestStart(RequestStartEvent{
		Provider: providerID,
		Model:    b.req.Model,
		Start:    start,
	})

	resp, err := b.client.provider.Chat(ctx, &b.req)

	usage := TokenUsage{}
	if resp != nil {
		usage = resp.Usage
	}
	b.client.telemetry.OnRequestEnd(RequestEndEvent{
		Provider: providerID,
		Model:    b.req.Model,
		Start:    start,
		End:      time.Now(),
		Usage:    usage,
		Err:      err,
	})

	return resp, err
}
