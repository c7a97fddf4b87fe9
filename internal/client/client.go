// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package client posts Xiandan exports to a running forward-convert server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/forward-convert/internal/httputil"
	"github.com/pdiddy/forward-convert/pkg/types"
)

const convertPath = "/api/convert"

// RemoteError is a non-200 answer from the server. Message holds the
// server's "error" field when the body was a JSON envelope.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned HTTP %d", e.Status)
	}
	return e.Message
}

// Client converts documents through a remote /api/convert endpoint.
type Client struct {
	baseURL string
	http    *http.Client
	cfg     types.ClientConfig
}

// New creates a Client for the server at baseURL (e.g. "http://localhost:8080").
// A nil httpClient gets one with cfg.Timeout.
func New(baseURL string, cfg types.ClientConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		cfg:     cfg,
	}
}

// Convert implements convert.Converter. It is bounded only by the HTTP
// client's timeout; use ConvertContext to cancel earlier.
func (c *Client) Convert(raw []byte) (string, error) {
	return c.ConvertContext(context.Background(), raw)
}

// ConvertContext posts raw to the server and returns the NDJSON body. A 429
// is retried with backoff up to cfg.MaxRetries times.
func (c *Client) ConvertContext(ctx context.Context, raw []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+convertPath, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("posting to %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		rerr := &RemoteError{Status: resp.StatusCode}
		var envelope struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &envelope) == nil {
			rerr.Message = envelope.Error
		}
		return "", rerr
	}
	return string(body), nil
}
