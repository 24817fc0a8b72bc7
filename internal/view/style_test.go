package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderSentiment(t *testing.T) {
	tests := []struct {
		sentiment string
		wantStyle Style
		wantText  string
	}{
		{"Positive", StyleSuccess, "Sentiment: Positive 😀"},
		{"Negative", StyleError, "Sentiment: Negative 😞"},
		{"Neutral", StyleInfo, "Sentiment: Neutral 😐"},
		{"Error: x", StyleError, "Error: x"},
		{"Error: Ollama is not running. Start with 'ollama serve'", StyleError, "Error: Ollama is not running. Start with 'ollama serve'"},
		{"Positive Error", StyleError, "Positive Error"},
		{"Error connecting to Ollama API", StyleError, "Error connecting to Ollama API"},
		{"Model phi not found. Attempting to download it now. Please try again in a minute.", StyleWarning, "Sentiment: Model phi not found. Attempting to download it now. Please try again in a minute."},
		{"positive", StyleWarning, "Sentiment: positive"},
		{"error: lowercase", StyleWarning, "Sentiment: error: lowercase"},
	}

	for _, tt := range tests {
		t.Run(tt.sentiment, func(t *testing.T) {
			got := RenderSentiment(tt.sentiment)
			assert.Equal(t, tt.wantStyle, got.Style)
			assert.Equal(t, tt.wantText, got.Text)
		})
	}
}

func TestMessageString(t *testing.T) {
	assert.Equal(t, "[info] Sentiment: Neutral 😐", RenderSentiment("Neutral").String())
}
