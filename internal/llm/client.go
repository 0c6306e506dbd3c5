package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/dvloznov/statement-analyser/internal/config"
)

// maxRetries is the number of retries (beyond the first attempt) for a
// transient completion failure before it surfaces as a ServiceError.
const maxRetries = 2

// Completer is the contract the pipeline and the chat loop depend on.
// The concrete implementation talks to an Ollama server; tests substitute
// a scripted stub.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client is a reusable handle to one Ollama server and one model.
// It is safe for concurrent use.
type Client struct {
	baseURL     string
	model       string
	temperature float64
	timeout     time.Duration
	httpClient  *http.Client
}

// NewClient builds a client from resolved configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.OllamaBaseURL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.RequestTimeout,
		httpClient:  &http.Client{},
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

// Complete sends one prompt to /api/generate and returns the raw model text.
// Transient failures are retried with capped exponential backoff; a context
// cancellation or deadline stops the retry loop immediately. Any terminal
// failure is returned as a *ServiceError.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var text string
	operation := func() error {
		out, err := c.generateOnce(callCtx, prompt)
		if err != nil {
			return err
		}
		text = out
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries),
		callCtx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", &ServiceError{Op: "complete", Model: c.model, Err: err}
	}
	return text, nil
}

func (c *Client) generateOnce(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  false,
		Options: generateOptions{Temperature: c.temperature},
	})
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("generateOnce: marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("generateOnce: build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generateOnce: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("generateOnce: read response: %w", err)
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("generateOnce: decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("generateOnce: status %d: %s", resp.StatusCode, strings.TrimSpace(parsed.Error))
		// A missing model will not appear by retrying.
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest {
			return "", backoff.Permanent(err)
		}
		return "", err
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("generateOnce: server error: %s", parsed.Error)
	}
	return parsed.Response, nil
}

// Ping verifies the server is reachable and the configured model is present.
// A Ping failure at startup is fatal for the whole run.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return &ServiceError{Op: "ping", Model: c.model, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ServiceError{Op: "ping", Model: c.model, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ServiceError{Op: "ping", Model: c.model, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return &ServiceError{Op: "ping", Model: c.model, Err: fmt.Errorf("decode tags: %w", err)}
	}

	for _, m := range tags.Models {
		if m.Name == c.model {
			return nil
		}
	}
	return &ServiceError{Op: "ping", Model: c.model, Err: fmt.Errorf("model not found on server")}
}
