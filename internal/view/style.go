package view

import (
	"fmt"
	"strings"
)

// Style is the visual treatment of a status message.
type Style string

const (
	StyleSuccess Style = "success"
	StyleError   Style = "error"
	StyleInfo    Style = "info"
	StyleWarning Style = "warning"
)

// Message is a single rendered status line.
type Message struct {
	Style Style
	Text  string
}

func (m Message) String() string {
	return fmt.Sprintf("[%s] %s", m.Style, m.Text)
}

// RenderSentiment maps an analyze answer onto a styled message. Exact labels
// take precedence; anything mentioning "Error" is an error; everything else
// is shown as a warning.
func RenderSentiment(sentiment string) Message {
	switch sentiment {
	case "Positive":
		return Message{Style: StyleSuccess, Text: "Sentiment: Positive 😀"}
	case "Negative":
		return Message{Style: StyleError, Text: "Sentiment: Negative 😞"}
	case "Neutral":
		return Message{Style: StyleInfo, Text: "Sentiment: Neutral 😐"}
	}

	if strings.Contains(sentiment, "Error") {
		return Message{Style: StyleError, Text: sentiment}
	}
	return Message{Style: StyleWarning, Text: "Sentiment: " + sentiment}
}
