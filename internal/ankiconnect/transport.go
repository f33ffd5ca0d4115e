// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ankiconnect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/ankisync/internal/httputil"
	"github.com/pdiddy/ankisync/pkg/types"
)

// Request is the AnkiConnect request envelope.
type Request struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Key     string `json:"key,omitempty"`
	Params  any    `json:"params,omitempty"`
}

// Response is the AnkiConnect response envelope. Error is nil on success.
type Response struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// Transport sends one request and returns the decoded response. Tests
// substitute an in-memory implementation.
type Transport interface {
	Invoke(ctx context.Context, req Request) (Response, error)
}

// retrySafe lists actions that may be resent after a throttled response.
// Resending addNote or createDeck could apply them twice, so they are sent
// once.
var retrySafe = map[string]bool{
	ActionVersion:        true,
	ActionStoreMediaFile: true,
}

// HTTPTransport posts JSON envelopes to an AnkiConnect endpoint.
type HTTPTransport struct {
	endpoint   string
	client     *http.Client
	maxRetries int
}

// NewHTTPTransport creates a transport for cfg.Endpoint. A nil client gets
// one with cfg.Timeout.
func NewHTTPTransport(cfg types.StoreConfig, client *http.Client) *HTTPTransport {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = types.DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPTransport{
		endpoint:   cfg.Endpoint,
		client:     client,
		maxRetries: cfg.MaxRetries,
	}
}

// Invoke implements Transport.
func (t *HTTPTransport) Invoke(ctx context.Context, req Request) (Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("encoding %s request: %w", req.Action, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("building %s request: %w", req.Action, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	retries := 0
	if retrySafe[req.Action] {
		retries = t.maxRetries
	}
	resp, err := httputil.DoWithRetry(ctx, t.client, httpReq, retries)
	if err != nil {
		return Response{}, fmt.Errorf("calling %s at %s: %w", req.Action, t.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Response{}, fmt.Errorf("%s: HTTP %d: %s", req.Action, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Response{}, fmt.Errorf("decoding %s response: %w", req.Action, err)
	}
	return out, nil
}
