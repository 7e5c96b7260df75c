// Package client provides the outbound HTTP client for the remote endpoint.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"mcp-relay/internal/config"
	"mcp-relay/internal/model"
)

// EndpointClient sends the single outbound request to the remote endpoint.
type EndpointClient struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewEndpointClient creates an EndpointClient for one exchange.
// Keep-alives are disabled: the process issues exactly one request and
// exits, so there is no connection to reuse. A zero timeout means the
// client waits on the exchange indefinitely.
func NewEndpointClient(cfg *config.Config, logger *slog.Logger) *EndpointClient {
	transport := &http.Transport{
		DisableKeepAlives: true,
	}

	return &EndpointClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.Endpoint.TimeoutSeconds) * time.Second,
		},
		logger: logger.With("component", "endpoint_client"),
	}
}

// Do executes the outbound POST and returns the raw response.
// The caller is responsible for closing the response body. The provided
// context controls the lifetime of the request, including the time spent
// streaming the response body.
func (c *EndpointClient) Do(ctx context.Context, r *model.Request) (*model.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, r.Body)
	if err != nil {
		return nil, fmt.Errorf("build endpoint request: %w", err)
	}
	req.Header = r.Header

	c.logger.Debug("endpoint request",
		"method", req.Method,
		"host", req.URL.Host,
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req) //nolint:bodyclose // body ownership transfers to caller via model.Response
	if err != nil {
		return nil, fmt.Errorf("endpoint request: %w", err)
	}

	c.logger.Debug("endpoint responded",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &model.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
	}, nil
}
