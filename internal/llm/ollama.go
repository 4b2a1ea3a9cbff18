// Package llm implements the generation gateway over a local Ollama server.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/core"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/logging"
)

// OllamaClient talks to the Ollama /api/chat endpoint.
type OllamaClient struct {
	client      *http.Client
	baseURL     string
	model       string
	temperature float64
	logger      *logging.Logger
}

// OllamaOption configures the client.
type OllamaOption func(*OllamaClient)

// WithHTTPClient overrides the HTTP client, used by tests.
func WithHTTPClient(c *http.Client) OllamaOption {
	return func(o *OllamaClient) { o.client = c }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) OllamaOption {
	return func(o *OllamaClient) { o.temperature = t }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) OllamaOption {
	return func(o *OllamaClient) { o.client.Timeout = d }
}

// NewOllamaClient creates a client for the given server and model.
func NewOllamaClient(baseURL, model string, logger *logging.Logger, opts ...OllamaOption) *OllamaClient {
	if logger == nil {
		logger = logging.NewNop()
	}
	c := &OllamaClient{
		client:      &http.Client{Timeout: 5 * time.Minute},
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		temperature: 0.7,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatRequest struct {
	Model    string         `json:"model"`
	Stream   bool           `json:"stream"`
	Messages []chatMessage  `json:"messages"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

// Generate implements core.Generator.
func (o *OllamaClient) Generate(ctx context.Context, messages []core.Message) (string, error) {
	resp, err := o.send(ctx, messages, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("ollama returned non-json payload: %w", err)
	}
	content := strings.TrimSpace(parsed.Message.Content)
	if content == "" {
		return "", errors.New("ollama returned empty response content")
	}
	return content, nil
}

// GenerateStream implements core.Generator. Ollama streams NDJSON, one chunk
// object per line; the returned channel closes when the stream ends or the
// context is cancelled.
func (o *OllamaClient) GenerateStream(ctx context.Context, messages []core.Message) (<-chan string, error) {
	resp, err := o.send(ctx, messages, true)
	if err != nil {
		return nil, err
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			var chunk chatResponse
			if err := json.Unmarshal(line, &chunk); err != nil {
				o.logger.Warn("dropping malformed stream chunk", "error", err)
				continue
			}
			if chunk.Message.Content != "" {
				select {
				case out <- chunk.Message.Content:
				case <-ctx.Done():
					return
				}
			}
			if chunk.Done {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			o.logger.Warn("stream terminated", "error", err)
		}
	}()
	return out, nil
}

func (o *OllamaClient) send(ctx context.Context, messages []core.Message, stream bool) (*http.Response, error) {
	msgs := make([]chatMessage, len(messages))
	for i, m := range messages {
		msgs[i] = chatMessage{Role: string(m.Role), Content: m.Content}
	}

	body, err := json.Marshal(chatRequest{
		Model:    o.model,
		Stream:   stream,
		Messages: msgs,
		Options:  map[string]any{"temperature": o.temperature},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed on /api/chat: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("ollama http %d: %s", resp.StatusCode, compactLine(string(payload), 240))
	}
	return resp, nil
}

// Model returns the configured model name.
func (o *OllamaClient) Model() string { return o.model }

// Ping checks server reachability by listing local models.
func (o *OllamaClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama not reachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	return nil
}

// HasModel reports whether the configured model is present on the server.
func (o *OllamaClient) HasModel(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return false, err
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	var parsed struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return false, err
	}
	for _, m := range parsed.Models {
		if m.Name == o.model || strings.HasPrefix(m.Name, o.model+":") {
			return true, nil
		}
	}
	return false, nil
}

func compactLine(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
