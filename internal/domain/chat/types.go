// Package chat defines the conversation entities of the analytics engine.
package chat

import (
	"time"

	"github.com/AzurNet/azurnet-go/internal/domain/intent"
)

// Sender identifies who authored a chat message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Location is the geolocation snapshot attached to a chat session. Country
// carries the "local" sentinel for private or loopback addresses.
type Location struct {
	Country string `json:"country,omitempty"`
	City    string `json:"city,omitempty"`
	Region  string `json:"region,omitempty"`
}

// Message is one entry in a session's ordered message log. Append-only
// within its session; identity is its position in the log.
type Message struct {
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is one conversation between a visitor and the chat widget.
// MessageCount always equals len(Messages); Intent is a pure function of the
// user-authored messages and is recomputed after every appended user message.
type Session struct {
	ID           string          `json:"id"`
	Fingerprint  string          `json:"fingerprint"`
	Name         string          `json:"name,omitempty"`
	Phone        string          `json:"phone,omitempty"`
	DeviceType   string          `json:"deviceType,omitempty"`
	Browser      string          `json:"browser,omitempty"`
	Location     *Location       `json:"location,omitempty"`
	Messages     []Message       `json:"messages"`
	MessageCount int             `json:"messageCount"`
	StartedAt    time.Time       `json:"startedAt"`
	EndedAt      *time.Time      `json:"endedAt,omitempty"`
	Duration     int64           `json:"duration,omitempty"`
	Intent       intent.Category `json:"intent"`
}

// UserTexts returns the texts of the user-authored messages in log order.
// Assistant messages never participate in intent classification.
func (s *Session) UserTexts() []string {
	texts := make([]string, 0, len(s.Messages))
	for _, m := range s.Messages {
		if m.Sender == SenderUser {
			texts = append(texts, m.Text)
		}
	}
	return texts
}

// AssistantTexts returns the texts of the assistant-authored messages in log
// order. Used by the reporter's booking inference.
func (s *Session) AssistantTexts() []string {
	texts := make([]string, 0, len(s.Messages))
	for _, m := range s.Messages {
		if m.Sender == SenderAssistant {
			texts = append(texts, m.Text)
		}
	}
	return texts
}
