// Package gateway provides an HTTP client for the LLM gateway health API.
//
// The routing core never calls a text-generation endpoint; this client only
// answers availability questions about provider profiles (the injected
// health-query capability consulted during routing).
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/epicflowhq/epicflow/internal/resilience"
)

// ProviderStatus is one provider's health entry as reported by the gateway.
type ProviderStatus struct {
	Provider  string `json:"provider"`
	Healthy   bool   `json:"healthy"`
	RateLimit bool   `json:"rate_limited"`
}

// Client talks to the gateway health API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *resilience.Breaker
}

// NewClient creates a gateway health client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

// Health checks whether the gateway itself is reachable.
func (c *Client) Health(ctx context.Context) (bool, error) {
	_, err := c.doRequest(ctx, http.MethodGet, "/health")
	return err == nil, err
}

// ProviderHealth returns the health status of every configured provider.
func (c *Client) ProviderHealth(ctx context.Context) ([]ProviderStatus, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/health/providers")
	if err != nil {
		return nil, fmt.Errorf("provider health: %w", err)
	}

	var result struct {
		Providers []ProviderStatus `json:"providers"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("unmarshal provider health: %w", err)
	}
	return result.Providers, nil
}

// Available implements the health.Checker port. A provider is unavailable
// only when the gateway explicitly reports it unhealthy or rate limited;
// transport failures and unknown providers report available so routing never
// stalls on missing health data.
func (c *Client) Available(ctx context.Context, providerName string) bool {
	statuses, err := c.ProviderHealth(ctx)
	if err != nil {
		return true
	}
	for _, s := range statuses {
		if s.Provider == providerName {
			return s.Healthy && !s.RateLimit
		}
	}
	return true
}

func (c *Client) doRequest(ctx context.Context, method, path string) ([]byte, error) {
	var result []byte
	call := func() error {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode >= 400 {
			return fmt.Errorf("gateway API error %d: %s", resp.StatusCode, string(data))
		}

		result = data
		return nil
	}

	if c.breaker != nil {
		if err := c.breaker.Execute(call); err != nil {
			return nil, err
		}
		return result, nil
	}

	if err := call(); err != nil {
		return nil, err
	}
	return result, nil
}
