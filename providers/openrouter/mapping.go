package openrouter

import (
	"encoding/json"
	"strings"

	"github.com/erikhoward/graft/core"
)

// mapChatRequest converts a core request to OpenRouter format. User messages
// are always sent as a list of parts: the text first, then one image_url part
// per attached image.
func mapChatRequest(req *core.ChatRequest) *chatRequest {
	r := &chatRequest{
		Model:       string(req.Model),
		Messages:    make([]chatMessage, 0, len(req.Messages)),
		Temperature: req.Temperature,
	}

	for _, m := range req.Messages {
		if m.Role != core.RoleUser {
			r.Messages = append(r.Messages, chatMessage{Role: string(m.Role), Content: m.Content})
			continue
		}
		parts := make([]contentPart, 0, 1+len(m.Images))
		parts = append(parts, contentPart{Type: "text", Text: m.Content})
		for _, img := range m.Images {
			parts = append(parts, contentPart{
				Type:     "image_url",
				ImageURL: &imageURL{URL: img.DataURL()},
			})
		}
		r.Messages = append(r.Messages, chatMessage{Role: string(m.Role), Content: parts})
	}

	return r
}

// mapChatResponse converts an OpenRouter response to core format.
func mapChatResponse(resp *chatResponse) *core.ChatResponse {
	r := &core.ChatResponse{
		ID:      resp.ID,
		Model:   core.ModelID(resp.Model),
		Choices: make([]core.Choice, len(resp.Choices)),
	}

	if resp.Usage != nil {
		r.Usage = core.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	for i, c := range resp.Choices {
		r.Choices[i].FinishReason = c.FinishReason
		if c.Message == nil {
			continue
		}
		msg := &core.AssistantMessage{Content: flattenContent(c.Message.Content)}
		for _, img := range c.Message.Images {
			ref := core.ImageRef{}
			if img.ImageURL != nil {
				ref.URL = img.ImageURL.URL
			}
			msg.Images = append(msg.Images, ref)
		}
		r.Choices[i].Message = msg
	}

	return r
}

// flattenContent returns message content as text. Content may be null, a
// string, or a list of parts of which only the text parts are kept.
func flattenContent(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var parts []contentPart
	if err := json.Unmarshal(raw, &parts); err == nil {
		var b strings.Builder
		for _, p := range parts {
			if p.Type != "text" || p.Text == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(p.Text)
		}
		return b.String()
	}

	return string(raw)
}
