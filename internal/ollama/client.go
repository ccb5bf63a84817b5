// Package ollama implements the language-model capability against a local
// Ollama server's /api/generate endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rogerioferraz/aiquery/internal/circuitbreaker"
	"github.com/rogerioferraz/aiquery/internal/metrics"
)

// Config holds the connection settings fixed at construction time.
type Config struct {
	Host    string        // e.g. http://localhost:11434
	Model   string        // e.g. llama3.2:1B
	Timeout time.Duration // per-request timeout; 0 means 120s
}

// Client talks to one Ollama server with one model. Safe for concurrent use.
type Client struct {
	host    string
	model   string
	httpc   *http.Client
	logger  *zap.Logger
	breaker *circuitbreaker.Breaker
}

// NewClient creates a client for the configured host and model.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	host := strings.TrimSuffix(cfg.Host, "/")
	if host != "" && !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		host:    host,
		model:   cfg.Model,
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
		breaker: circuitbreaker.New("ollama", circuitbreaker.DefaultSettings(), logger),
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.model }

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate returns the full completion for prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	var out string
	err := c.breaker.Do(ctx, func() error {
		resp, err := c.post(ctx, generateRequest{Model: c.model, Prompt: prompt, Stream: false})
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		var chunk generateChunk
		if err := json.NewDecoder(resp.Body).Decode(&chunk); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		out = chunk.Response
		return nil
	})
	c.observe("generate", start, err)
	if err != nil {
		return "", err
	}
	return out, nil
}

// GenerateStream produces the completion incrementally, calling emit for each
// NDJSON fragment until the server reports done or ctx is cancelled.
func (c *Client) GenerateStream(ctx context.Context, prompt string, emit func(string)) error {
	start := time.Now()
	err := c.breaker.Do(ctx, func() error {
		resp, err := c.post(ctx, generateRequest{Model: c.model, Prompt: prompt, Stream: true})
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		dec := json.NewDecoder(resp.Body)
		for {
			var chunk generateChunk
			if err := dec.Decode(&chunk); err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("decode stream: %w", err)
			}
			if chunk.Response != "" && emit != nil {
				emit(chunk.Response)
			}
			if chunk.Done {
				return nil
			}
		}
	})
	c.observe("generate_stream", start, err)
	return err
}

// Ping reports whether the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama http %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, body generateRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("ollama http %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return resp, nil
}

func (c *Client) observe(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		c.logger.Warn("ollama call failed", zap.String("operation", operation), zap.Error(err))
	}
	metrics.LLMRequests.WithLabelValues(operation, status).Inc()
	metrics.LLMRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
