// Package core provides the Graft client, request and response types, and the
// interpretation of multimodal completion responses.
package core

import (
	"encoding/base64"
	"fmt"
)

// ModelID is a string identifier for a model.
// Using string avoids coupling to provider-specific catalogs.
type ModelID string

// Role represents a message participant role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ImageInput is an image attached to a request.
type ImageInput struct {
	Data     []byte
	MIMEType string
}

// DataURL returns the image as a base64 data URL.
func (img ImageInput) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", img.MIMEType, base64.StdEncoding.EncodeToString(img.Data))
}

// Message represents a single message in a conversation.
// Images are only sent for user messages.
type Message struct {
	Role    Role         `json:"role"`
	Content string       `json:"content"`
	Images  []ImageInput `json:"-"`
}

// TokenUsage tracks token consumption for a request.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatRequest represents a request to a chat model.
type ChatRequest struct {
	Model       ModelID   `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
}

// ImageRef is an image enumerated by the provider in an assistant message.
// URL is either a base64 data URL or a remote URL.
type ImageRef struct {
	URL string `json:"url"`
}

// AssistantMessage is the message part of a completion choice.
type AssistantMessage struct {
	Content string     `json:"content"`
	Images  []ImageRef `json:"images,omitempty"`
}

// Choice is one completion alternative. Message is nil when the provider
// omitted it.
type Choice struct {
	Message      *AssistantMessage `json:"message,omitempty"`
	FinishReason string            `json:"finish_reason,omitempty"`
}

// ChatResponse represents a response from a chat model.
// Only the first choice is interpreted.
type ChatResponse struct {
	ID      string     `json:"id"`
	Model   ModelID    `json:"model"`
	Choices []Choice   `json:"choices"`
	Usage   TokenUsage `json:"usage"`
}

// GenerationRequest is the resolved user input for one invocation.
type GenerationRequest struct {
	Prompt string
	Image  *ImageInput
}

// GenerationConfig carries the model settings applied to a GenerationRequest.
type GenerationConfig struct {
	Model        ModelID
	Temperature  float64
	SystemPrompt string
}
