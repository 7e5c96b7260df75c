// Package relay implements the core stdin-to-endpoint exchange.
package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"mcp-relay/internal/client"
	"mcp-relay/internal/config"
	"mcp-relay/internal/model"
)

// apiKeyHeader is the credential header understood by the remote endpoint.
const apiKeyHeader = "MCP-API-Key"

const contentTypeJSON = "application/json"

// Relay bridges the local caller to the remote endpoint for exactly one
// request/response cycle: it buffers all of the input stream, posts it to
// the endpoint, and streams the response body back to the output stream.
type Relay struct {
	client *client.EndpointClient
	cfg    *config.Config
	logger *slog.Logger
	in     io.Reader
	out    io.Writer
}

// New creates a Relay wired to the process standard streams.
func New(c *client.EndpointClient, cfg *config.Config, logger *slog.Logger) *Relay {
	return NewWithStreams(c, cfg, logger, os.Stdin, os.Stdout)
}

// NewWithStreams creates a Relay reading from in and writing to out.
// This is the constructor tests use to substitute in-memory streams.
func NewWithStreams(c *client.EndpointClient, cfg *config.Config, logger *slog.Logger, in io.Reader, out io.Writer) *Relay {
	return &Relay{
		client: c,
		cfg:    cfg,
		logger: logger.With("component", "relay"),
		in:     in,
		out:    out,
	}
}

// Run performs the exchange: read input to end-of-stream, issue the POST,
// and forward each response chunk to the output stream as it arrives.
//
// The HTTP status code is deliberately not inspected: a non-2xx response is
// forwarded and treated as a completed exchange. Only transport-level
// failures return an error. On a mid-stream failure the bytes already
// forwarded remain in place; completeness is signaled only by a nil return.
func (r *Relay) Run(ctx context.Context) error {
	payload, err := io.ReadAll(r.in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	r.logger.Debug("input buffered", "bytes", len(payload))

	header := make(http.Header)
	header.Set("Content-Type", contentTypeJSON)
	header.Set(apiKeyHeader, r.cfg.Endpoint.APIKey)

	resp, err := r.client.Do(ctx, &model.Request{
		URL:    r.cfg.Endpoint.URL,
		Header: header,
		Body:   bytes.NewReader(payload),
	})
	if err != nil {
		return fmt.Errorf("exchange: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	n, err := io.Copy(r.out, resp.Body)
	if err != nil {
		return fmt.Errorf("stream response after %d bytes: %w", n, err)
	}

	r.logger.Debug("exchange complete",
		"status", resp.StatusCode,
		"bytes_out", n,
	)
	return nil
}
