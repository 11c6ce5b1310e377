package openrouter

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Download opens a streaming GET of a remote image. It uses the provider's
// HTTP client, so proxy, timeout and TLS settings apply, but never sends the
// API key. The caller must close the returned body.
func (p *OpenRouter) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if p.config.SiteURL != "" {
		req.Header.Set("HTTP-Referer", p.config.SiteURL)
	}

	resp, err := p.config.HTTPClient.Do(req)
	if err != nil {
		return nil, newNetworkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, normalizeError(resp.StatusCode, body)
	}

	return resp.Body, nil
}
