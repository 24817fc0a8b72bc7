package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("I love it %s {}")

	assert.Equal(t, `Analyze the sentiment of the following text and respond with EXACTLY ONE WORD (Positive, Negative, or Neutral).
Text: I love it %s {}
Sentiment:`, got)
}

func TestExtractLabel(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		wantLabel string
		wantOK    bool
	}{
		{"exact", "Positive", Positive, true},
		{"lowercase", "negative", Negative, true},
		{"uppercase", "NEUTRAL", Neutral, true},
		{"embedded in sentence", "The sentiment is: neutral.", Neutral, true},
		{"embedded in word", "Completely-Neutralized!!", Neutral, true},
		{"punctuation", "**nEuTrAl**", Neutral, true},
		{"first occurrence wins", "Negative, not positive", Negative, true},
		{"surrounding whitespace", "\n  Positive \n", Positive, true},
		{"no keyword short", "I cannot tell.", "I cannot tell.", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, ok := ExtractLabel(tt.reply)
			assert.Equal(t, tt.wantLabel, label)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestExtractLabelFallbackTruncates(t *testing.T) {
	reply := strings.Repeat("abcdefghij", 8)

	label, ok := ExtractLabel(reply)
	assert.False(t, ok)
	assert.Equal(t, reply[:50], label)
}

func TestExtractLabelFallbackCountsCharacters(t *testing.T) {
	reply := strings.Repeat("é", 60)

	label, ok := ExtractLabel(reply)
	assert.False(t, ok)
	assert.Equal(t, strings.Repeat("é", 50), label)
}
