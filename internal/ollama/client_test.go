package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/", srv.Client())
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	_, err := NewClient("", nil)
	assert.Error(t, err)

	_, err = NewClient("localhost:11434", nil)
	assert.Error(t, err, "scheme is required")

	c, err := NewClient("http://localhost:11434/", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434", c.BaseURL())
}

func TestTags(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"models":[{"name":"tinyllama:latest","size":637700138},{"name":"tinyllama"}]}`))
	})

	models, err := c.Tags(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "tinyllama:latest", models[0].Name)
	assert.Equal(t, int64(637700138), models[0].Size)
	assert.Equal(t, "tinyllama", models[1].Name)
}

func TestTagsMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	})

	_, err := c.Tags(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestGenerate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "phi", req.Model)
		assert.Equal(t, "Sentiment:", req.Prompt)
		assert.False(t, req.Stream)

		_, _ = w.Write([]byte(`{"model":"phi","response":" Positive.","done":true}`))
	})

	resp, err := c.Generate(context.Background(), GenerateRequest{Model: "phi", Prompt: "Sentiment:"})
	require.NoError(t, err)
	require.NotNil(t, resp.Response)
	assert.Equal(t, " Positive.", *resp.Response)
	assert.True(t, resp.Done)
}

func TestGenerateMissingResponseField(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"model":"phi","done":true}`))
	})

	resp, err := c.Generate(context.Background(), GenerateRequest{Model: "phi"})
	require.NoError(t, err)
	assert.Nil(t, resp.Response)
}

func TestGenerateModelNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model \"phi\" not found, try pulling it first"}`))
	})

	_, err := c.Generate(context.Background(), GenerateRequest{Model: "phi"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "try pulling it first")
	assert.True(t, IsModelNotFound(err))
	assert.False(t, IsConnectionRefused(err))
}

func TestGenerateServerErrorPlainText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "out of memory", http.StatusInternalServerError)
	})

	_, err := c.Generate(context.Background(), GenerateRequest{Model: "phi"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "out of memory", apiErr.Message)
	assert.False(t, IsModelNotFound(err))
}

func TestGenerateConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(url, &http.Client{Timeout: time.Second})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), GenerateRequest{Model: "phi"})
	require.Error(t, err)
	assert.True(t, IsConnectionRefused(err))
	assert.False(t, IsModelNotFound(err))
}

func TestGenerateTimeoutIsNotConnectionRefused(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Generate(ctx, GenerateRequest{Model: "phi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, IsConnectionRefused(err))
}

func TestPull(t *testing.T) {
	var got pullRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/pull", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})

	require.NoError(t, c.Pull(context.Background(), "tinyllama"))
	assert.Equal(t, "tinyllama", got.Model)
	assert.False(t, got.Stream)
}

func TestPullError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"pull model manifest: file does not exist"}`))
	})

	err := c.Pull(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file does not exist")
}

func TestHasModel(t *testing.T) {
	models := []Model{{Name: "tinyllama:latest"}, {Name: "gemma:2b"}}

	assert.True(t, HasModel(models, "tinyllama"))
	assert.True(t, HasModel(models, "tinyllama:latest"))
	assert.True(t, HasModel(models, "gemma:2b"))
	assert.False(t, HasModel(models, "gemma"))
	assert.False(t, HasModel(models, "phi"))
	assert.False(t, HasModel(nil, "phi"))
}
