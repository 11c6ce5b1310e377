package openrouter

import "encoding/json"

// OpenRouter chat-completions wire types.

// chatRequest is the body of POST /chat/completions.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
}

// chatMessage carries either a plain string or a list of content parts.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// contentPart is one element of a multimodal message.
type contentPart struct {
	Type     string    `json:"type"` // "text" or "image_url"
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

// chatResponse is the body returned by /chat/completions. The shape of the
// message is not fixed across models, so content is kept raw.
type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage,omitempty"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Index        int              `json:"index"`
	FinishReason string           `json:"finish_reason,omitempty"`
	Message      *responseMessage `json:"message,omitempty"`
}

type responseMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content,omitempty"`
	Images  []responseImage `json:"images,omitempty"`
}

// responseImage is an entry of message.images.
type responseImage struct {
	Type     string    `json:"type,omitempty"` // "image_url"
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// apiError is the error object returned by OpenRouter. Code is a number for
// HTTP-style errors and a string for some upstream provider errors.
type apiError struct {
	Code     any             `json:"code,omitempty"`
	Message  string          `json:"message"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// errorResponse wraps apiError for non-2xx bodies.
type errorResponse struct {
	Error apiError `json:"error"`
}
