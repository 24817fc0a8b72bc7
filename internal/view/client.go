package view

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sozercan/ollama-sentiment/apimodels"
	"github.com/sozercan/ollama-sentiment/internal/metrics"
	"github.com/sozercan/ollama-sentiment/internal/ollama"
)

const (
	msgEmptyInput     = "Please enter some text to analyze"
	msgBackendRefused = "Failed to connect to the backend server. Is it running?"
)

// ModelLister lists the models installed on the model server.
type ModelLister interface {
	Tags(ctx context.Context) ([]ollama.Model, error)
}

// Client calls the request handler and checks liveness of both backends.
// It never returns errors: every failure becomes a Message.
type Client struct {
	backendURL    string
	httpClient    *http.Client
	ollama        ModelLister
	timeout       time.Duration
	statusTimeout time.Duration
	displayModel  string
}

type ClientOptions struct {
	BackendURL    string
	Timeout       time.Duration
	StatusTimeout time.Duration
	DisplayModel  string
}

func NewClient(opts ClientOptions, httpClient *http.Client, ollama ModelLister) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		backendURL:    strings.TrimRight(opts.BackendURL, "/"),
		httpClient:    httpClient,
		ollama:        ollama,
		timeout:       opts.Timeout,
		statusTimeout: opts.StatusTimeout,
		displayModel:  opts.DisplayModel,
	}
}

// DisplayModel is the model name shown in the title and setup instructions.
func (c *Client) DisplayModel() string {
	return c.displayModel
}

// Analyze validates text locally, then asks the request handler for a label.
func (c *Client) Analyze(ctx context.Context, text string) Message {
	if strings.TrimSpace(text) == "" {
		return Message{Style: StyleError, Text: msgEmptyInput}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	form := url.Values{apimodels.FormFieldText: {text}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.backendURL+"/analyze/", strings.NewReader(form.Encode()))
	if err != nil {
		return Message{Style: StyleError, Text: fmt.Sprintf("An error occurred: %v", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("Analyze request failed", "error", err)
		if ollama.IsConnectionRefused(err) {
			return Message{Style: StyleError, Text: msgBackendRefused}
		}
		return Message{Style: StyleError, Text: fmt.Sprintf("An error occurred: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Message{Style: StyleError, Text: fmt.Sprintf("Error: Received status code %d", resp.StatusCode)}
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Message{Style: StyleError, Text: fmt.Sprintf("An error occurred: %v", err)}
	}

	sentiment, ok := body["sentiment"].(string)
	if !ok {
		sentiment = "Error"
	}
	return RenderSentiment(sentiment)
}

// CheckBackend asks the request handler's root endpoint whether it is up
// and healthy. It backs the banner shown on every page load.
func (c *Client) CheckBackend(ctx context.Context) Message {
	status, err := c.getBackendRoot(ctx)
	if err != nil {
		return Message{Style: StyleError, Text: "❌ Backend server is offline. Start it with 'go run ./cmd/server'"}
	}
	if status != http.StatusOK {
		return Message{Style: StyleWarning, Text: fmt.Sprintf("⚠️ Backend server responded with status code: %d", status)}
	}
	return Message{Style: StyleSuccess, Text: "✅ Backend server is online"}
}

// PingBackend reports whether the request handler answers at all, whatever
// the status code. It backs the "Check Backend" action.
func (c *Client) PingBackend(ctx context.Context) Message {
	if _, err := c.getBackendRoot(ctx); err != nil {
		return Message{Style: StyleError, Text: "❌ Backend is not running"}
	}
	return Message{Style: StyleSuccess, Text: "✅ Backend is running"}
}

func (c *Client) getBackendRoot(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.statusTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.backendURL+"/", nil)
	if err != nil {
		metrics.BackendUp.WithLabelValues("backend").Set(0)
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("Backend status check failed", "error", err)
		metrics.BackendUp.WithLabelValues("backend").Set(0)
		return 0, err
	}
	resp.Body.Close()

	metrics.BackendUp.WithLabelValues("backend").Set(1)
	return resp.StatusCode, nil
}

// CheckOllama reports whether the model server answers and whether the
// display model is installed on it.
func (c *Client) CheckOllama(ctx context.Context) []Message {
	ctx, cancel := context.WithTimeout(ctx, c.statusTimeout)
	defer cancel()

	models, err := c.ollama.Tags(ctx)

	var apiErr *ollama.APIError
	answered := err == nil || errors.As(err, &apiErr) || errors.Is(err, ollama.ErrMalformedResponse)
	if !answered {
		slog.Warn("Ollama status check failed", "error", err)
		metrics.BackendUp.WithLabelValues("ollama").Set(0)
		return []Message{{Style: StyleError, Text: "❌ Ollama is not running"}}
	}
	metrics.BackendUp.WithLabelValues("ollama").Set(1)

	msgs := []Message{{Style: StyleSuccess, Text: "✅ Ollama is running"}}
	switch {
	case err != nil:
		msgs = append(msgs, Message{Style: StyleWarning, Text: "⚠️ Could not check for model availability"})
	case ollama.HasModel(models, c.displayModel):
		msgs = append(msgs, Message{Style: StyleSuccess, Text: fmt.Sprintf("✅ %s model is available", c.displayModel)})
	default:
		msgs = append(msgs, Message{Style: StyleWarning, Text: fmt.Sprintf("⚠️ %s model not found. Run 'ollama pull %s'", c.displayModel, c.displayModel)})
	}
	return msgs
}
