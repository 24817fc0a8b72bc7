package analyzer

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Sentiment labels the model is asked to answer with.
const (
	Positive = "Positive"
	Negative = "Negative"
	Neutral  = "Neutral"
)

// fallbackLen bounds the unparsed reply returned when no label is found.
const fallbackLen = 50

const promptTemplate = `Analyze the sentiment of the following text and respond with EXACTLY ONE WORD (Positive, Negative, or Neutral).
Text: %s
Sentiment:`

var labelPattern = regexp.MustCompile(`(?i)positive|negative|neutral`)

// BuildPrompt embeds text verbatim into the fixed instruction.
func BuildPrompt(text string) string {
	return strings.Replace(promptTemplate, "%s", text, 1)
}

// ExtractLabel finds the first label anywhere in reply, ignoring case, and
// returns it capitalized. Without a match it returns at most the first 50
// characters of the trimmed reply and ok=false.
func ExtractLabel(reply string) (label string, ok bool) {
	reply = strings.TrimSpace(reply)

	if m := labelPattern.FindString(reply); m != "" {
		return strings.ToUpper(m[:1]) + strings.ToLower(m[1:]), true
	}

	return truncateRunes(reply, fallbackLen), false
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
