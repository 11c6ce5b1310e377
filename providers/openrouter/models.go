package openrouter

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// modelsPath is the API endpoint for the model catalog.
const modelsPath = "/models"

// FetchModels returns the raw JSON of the model catalog. The endpoint is
// public; the API key is sent only when configured.
func (p *OpenRouter) FetchModels(ctx context.Context) ([]byte, error) {
	url := p.config.BaseURL + modelsPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range p.buildHeaders() {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	httpReq.Header.Del("Content-Type")

	resp, err := p.config.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, newNetworkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newNetworkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, normalizeError(resp.StatusCode, body)
	}

	return body, nil
}
