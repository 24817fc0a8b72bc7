package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sozercan/ollama-sentiment/internal/ollama"
)

func newOllamaProvider(t *testing.T, body string, status int) *Ollama {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client, err := ollama.NewClient(srv.URL, srv.Client())
	require.NoError(t, err)
	return NewOllama(client)
}

func TestOllamaGenerate(t *testing.T) {
	p := newOllamaProvider(t, `{"response":"Negative","done":true}`, http.StatusOK)

	got, err := p.Generate(context.Background(), "phi", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Negative", got)
	assert.Equal(t, "ollama", p.Name())
}

func TestOllamaGenerateMissingResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"field absent", `{"done":true}`},
		{"not json", `oops`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newOllamaProvider(t, tt.body, http.StatusOK)
			_, err := p.Generate(context.Background(), "phi", "prompt")
			assert.ErrorIs(t, err, ErrMissingResponse)
		})
	}
}

func TestOllamaGeneratePassesAPIErrors(t *testing.T) {
	p := newOllamaProvider(t, `{"error":"model \"phi\" not found"}`, http.StatusNotFound)

	_, err := p.Generate(context.Background(), "phi", "prompt")
	require.Error(t, err)
	assert.True(t, ollama.IsModelNotFound(err))
}
