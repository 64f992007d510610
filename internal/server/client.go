package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	nverrors "github.com/ya-spark/netview-backendlog/internal/errors"
	"github.com/ya-spark/netview-backendlog/internal/logging"
)

// DefaultClientTimeout bounds each request made by Client.
const DefaultClientTimeout = 5 * time.Second

// Client talks to a running Server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the server listening on addr
// ("host:port" or a full http:// URL).
func NewClient(addr string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultClientTimeout
	}
	base := strings.TrimRight(addr, "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{baseURL: base, http: &http.Client{Timeout: timeout}}
}

// IsRunning checks if the server answers its health check.
func (c *Client) IsRunning(ctx context.Context) bool {
	return c.do(ctx, http.MethodGet, "/health", nil, nil) == nil
}

// Write appends one record through the server.
func (c *Client) Write(ctx context.Context, level logging.Level, message, source string) error {
	return c.do(ctx, http.MethodPost, "/api/logs", writeRequest{
		Level:   strings.ToLower(level.String()),
		Message: message,
		Source:  source,
	}, nil)
}

// Rotate forces the server to start a new log file and returns its path.
func (c *Client) Rotate(ctx context.Context) (string, error) {
	var out struct {
		CurrentFile string `json:"current_file"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/logs/rotate", nil, &out); err != nil {
		return "", err
	}
	return out.CurrentFile, nil
}

// Stats returns the server's view of the log directory.
func (c *Client) Stats(ctx context.Context) (logging.Stats, error) {
	var stats logging.Stats
	err := c.do(ctx, http.MethodGet, "/api/logs/stats", nil, &stats)
	return stats, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nverrors.New(nverrors.ErrCodeServerUnreachable,
			"log server not reachable at "+c.baseURL, err).
			WithSuggestion("Start it with 'netview serve'")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeError rebuilds the structured error sent by respondError.
func decodeError(resp *http.Response) error {
	var body struct {
		Error struct {
			Code       string `json:"code"`
			Message    string `json:"message"`
			Suggestion string `json:"suggestion"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error.Code == "" {
		return nverrors.New(nverrors.ErrCodeInternal,
			fmt.Sprintf("log server returned %s", resp.Status), err)
	}
	ne := nverrors.New(body.Error.Code, body.Error.Message, nil)
	if body.Error.Suggestion != "" {
		ne = ne.WithSuggestion(body.Error.Suggestion)
	}
	return ne
}
