package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sozercan/ollama-sentiment/internal/ollama"
)

// Ollama generates through the native /api/generate endpoint.
type Ollama struct {
	client *ollama.Client
}

func NewOllama(client *ollama.Client) *Ollama {
	return &Ollama{client: client}
}

func (o *Ollama) Name() string {
	return "ollama"
}

func (o *Ollama) Generate(ctx context.Context, model, prompt string) (string, error) {
	resp, err := o.client.Generate(ctx, ollama.GenerateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		if errors.Is(err, ollama.ErrMalformedResponse) {
			return "", fmt.Errorf("%w: %v", ErrMissingResponse, err)
		}
		return "", err
	}

	if resp.Response == nil {
		return "", ErrMissingResponse
	}
	return *resp.Response, nil
}
