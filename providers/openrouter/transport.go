package openrouter

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout bounds every request when the config does not set one.
const DefaultTimeout = 120 * time.Second

// HTTPOptions configures the HTTP client shared by all provider calls.
type HTTPOptions struct {
	// Proxy is applied to both http and https requests when set.
	Proxy string
	// Timeout of zero disables the client timeout.
	Timeout time.Duration
	// InsecureSkipVerify turns off TLS certificate verification.
	InsecureSkipVerify bool
}

// NewHTTPClient builds an HTTP client from opts. Without a proxy it keeps the
// environment proxy settings of the default transport.
func NewHTTPClient(opts HTTPOptions) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", opts.Proxy, err)
		}
		if proxyURL.Scheme == "" || proxyURL.Host == "" {
			return nil, fmt.Errorf("invalid proxy URL %q: scheme and host are required", opts.Proxy)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	if opts.InsecureSkipVerify {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{}
		}
		transport.TLSClientConfig.InsecureSkipVerify = true
	}

	return &http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
	}, nil
}
