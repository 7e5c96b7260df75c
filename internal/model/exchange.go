// Package model defines shared types for the relay exchange.
package model

import (
	"io"
	"net/http"
)

// Request represents the single outbound POST to the remote endpoint.
type Request struct {
	URL    string
	Header http.Header
	Body   io.Reader
}

// Response represents the endpoint response to be streamed back.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}
