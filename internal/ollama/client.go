package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
)

// ErrMalformedResponse is returned when a 200 answer cannot be decoded.
var ErrMalformedResponse = errors.New("ollama: malformed response body")

// Client talks to the Ollama REST API. Timeouts are expected to come from
// the caller's context; HTTPClient is only used as a transport.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Model struct {
	Name  string `json:"name"`
	Model string `json:"model,omitempty"`
	Size  int64  `json:"size,omitempty"`
}

type tagsResponse struct {
	Models []Model `json:"models"`
}

type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// GenerateResponse keeps Response as a pointer so that an answer without
// the field can be told apart from an empty completion.
type GenerateResponse struct {
	Model    string  `json:"model"`
	Response *string `json:"response"`
	Done     bool    `json:"done"`
}

type pullRequest struct {
	Model  string `json:"model"`
	Stream bool   `json:"stream"`
}

type pullResponse struct {
	Status string `json:"status"`
}

// APIError is a non-2xx answer from Ollama.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ollama: status %d: %s", e.StatusCode, e.Message)
}

func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	slog.Info("Creating Ollama client", "url", baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("ollama URL cannot be empty")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("ollama: invalid URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("ollama: unsupported URL scheme %q", u.Scheme)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// BaseURL returns the server root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Tags lists the models available on the server (GET /api/tags).
func (c *Client) Tags(ctx context.Context) ([]Model, error) {
	var out tagsResponse
	if err := c.do(ctx, http.MethodGet, "/api/tags", nil, &out); err != nil {
		return nil, err
	}
	return out.Models, nil
}

// Generate runs a non-streaming completion (POST /api/generate).
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	var out GenerateResponse
	if err := c.do(ctx, http.MethodPost, "/api/generate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Pull downloads a model and blocks until Ollama reports completion.
func (c *Client) Pull(ctx context.Context, model string) error {
	var out pullResponse
	if err := c.do(ctx, http.MethodPost, "/api/pull", pullRequest{Model: model, Stream: false}, &out); err != nil {
		return err
	}
	if out.Status != "" && out.Status != "success" {
		return fmt.Errorf("ollama: pull %s: status %q", model, out.Status)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("ollama: marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("ollama: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, path, err)
	}
	return nil
}

func readErrorMessage(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error != "" {
		return errResp.Error
	}
	if msg := strings.TrimSpace(string(data)); msg != "" {
		return msg
	}
	return http.StatusText(resp.StatusCode)
}

// IsModelNotFound reports whether err says the requested model is not
// installed on the server.
func IsModelNotFound(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusNotFound ||
		strings.Contains(strings.ToLower(apiErr.Message), "not found")
}

// IsConnectionRefused reports whether err is a failure to reach the server
// at all, as opposed to a timeout or an error answer.
func IsConnectionRefused(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial" && !opErr.Timeout()
}

// HasModel reports whether name is among models. A name without a tag also
// matches its ":latest" variant.
func HasModel(models []Model, name string) bool {
	for _, m := range models {
		if m.Name == name || m.Name == name+":latest" {
			return true
		}
	}
	return false
}
