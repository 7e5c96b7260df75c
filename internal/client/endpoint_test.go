package client

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mcp-relay/internal/config"
	"mcp-relay/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEndpointClient_Do(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"op":"ping"}` {
			t.Errorf("request body = %q, want %q", string(body), `{"op":"ping"}`)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := NewEndpointClient(&config.Config{}, testLogger())

	resp, err := c.Do(context.Background(), &model.Request{
		URL:    srv.URL,
		Header: http.Header{},
		Body:   strings.NewReader(`{"op":"ping"}`),
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(body) != `{"status":"ok"}` {
		t.Errorf("body = %q, want %q", string(body), `{"status":"ok"}`)
	}
}

func TestEndpointClient_Do_HeadersForwarded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("MCP-API-Key"); got != "secret-token" {
			t.Errorf("MCP-API-Key = %q, want %q", got, "secret-token")
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want %q", got, "application/json")
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewEndpointClient(&config.Config{}, testLogger())

	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	header.Set("MCP-API-Key", "secret-token")

	resp, err := c.Do(context.Background(), &model.Request{
		URL:    srv.URL,
		Header: header,
		Body:   strings.NewReader("{}"),
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	_ = resp.Body.Close()
}

func TestEndpointClient_Do_Unreachable(t *testing.T) {
	c := NewEndpointClient(&config.Config{}, testLogger())

	_, err := c.Do(context.Background(), &model.Request{
		URL:    "http://127.0.0.1:1/nonexistent",
		Header: http.Header{},
		Body:   strings.NewReader("{}"),
	})
	if err == nil {
		t.Fatal("Do() expected error for unreachable endpoint, got nil")
	}
}

func TestEndpointClient_Do_ConfiguredTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := &config.Config{
		Endpoint: config.EndpointConfig{TimeoutSeconds: 1},
	}
	c := NewEndpointClient(cfg, testLogger())

	_, err := c.Do(context.Background(), &model.Request{
		URL:    srv.URL,
		Header: http.Header{},
		Body:   strings.NewReader("{}"),
	})
	if err == nil {
		t.Fatal("Do() expected timeout error for slow endpoint, got nil")
	}
}

func TestEndpointClient_Do_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Simulate a slow endpoint; the request should be canceled before this completes.
		time.Sleep(5 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewEndpointClient(&config.Config{}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	_, err := c.Do(ctx, &model.Request{
		URL:    srv.URL,
		Header: http.Header{},
		Body:   strings.NewReader("{}"),
	})
	if err == nil {
		t.Fatal("Do() expected error for canceled context, got nil")
	}
}

func TestEndpointClient_Do_BadURL(t *testing.T) {
	c := NewEndpointClient(&config.Config{}, testLogger())

	_, err := c.Do(context.Background(), &model.Request{
		URL:    "https://bad url with spaces",
		Header: http.Header{},
		Body:   strings.NewReader("{}"),
	})
	if err == nil {
		t.Fatal("Do() expected error for malformed URL, got nil")
	}
}
