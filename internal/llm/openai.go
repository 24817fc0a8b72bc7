package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/sozercan/ollama-sentiment/internal/ollama"
)

// OpenAI generates through Ollama's OpenAI-compatible /v1 endpoint.
type OpenAI struct {
	client *openai.Client
}

func NewOpenAI(baseURL string, httpClient *http.Client) *OpenAI {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	client := openai.NewClient(
		option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/v1/"),
		// Ollama ignores the key but the SDK insists on sending one.
		option.WithAPIKey("ollama"),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	)

	return &OpenAI{client: client}
}

func (o *OpenAI) Name() string {
	return "openai"
}

func (o *OpenAI) Generate(ctx context.Context, model, prompt string) (string, error) {
	resp, err := o.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Model: openai.F(model),
			Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			}),
		},
	)
	if err != nil {
		// Both backends report API errors as *ollama.APIError.
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &ollama.APIError{StatusCode: apiErr.StatusCode, Message: apiErr.Message}
		}
		if isTransportError(err) {
			return "", fmt.Errorf("openai: request: %w", err)
		}
		// The server answered but the body could not be decoded.
		return "", fmt.Errorf("%w: %v", ErrMissingResponse, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.JSON.Content.IsNull() {
		return "", ErrMissingResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func isTransportError(err error) bool {
	var (
		urlErr *url.Error
		netErr net.Error
	)
	return errors.As(err, &urlErr) ||
		errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}
