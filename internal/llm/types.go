package llm

import (
	"context"
	"errors"
)

// ErrMissingResponse is returned when the model server answered but the
// reply carries no completion text.
var ErrMissingResponse = errors.New("llm: reply has no response text")

type Provider interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	// Generate sends a single non-streaming prompt to model and returns the
	// raw completion text.
	Generate(ctx context.Context, model, prompt string) (string, error)
}
