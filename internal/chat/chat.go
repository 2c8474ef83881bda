// Package chat defines the messaging boundary between the booking engine
// and whatever front end relays user conversations (Telegram, WhatsApp, a
// test harness). The engine never talks to a messenger API directly; it
// publishes outbound events and consumes inbound ones.
package chat

import (
	"context"
	"time"
	"zapis/pkg/model"
)

// InboundMessage is a single user utterance relayed from the messenger.
type InboundMessage struct {
	ChatID string `json:"chat_id"`
	UserID string `json:"user_id,omitempty"`
	Text   string `json:"text"`
}

// OutboundMessage is what the engine sends back. Choices, when present,
// are rendered by the relay as a reply keyboard or button list.
type OutboundMessage struct {
	ChatID  string    `json:"chat_id"`
	Text    string    `json:"text"`
	Choices []string  `json:"choices,omitempty"`
	Kind    string    `json:"kind"`
	SentAt  time.Time `json:"sent_at"`
}

// Outbound message kinds.
const (
	KindPrompt   = "prompt"
	KindMessage  = "message"
	KindReminder = "reminder"
	KindOperator = "operator"
)

// Channel delivers conversational replies to a single chat.
type Channel interface {
	// SendPrompt asks the user a question, optionally with a fixed set of
	// choices to pick from.
	SendPrompt(ctx context.Context, chatID, text string, choices []string) error

	// SendPlain sends a statement that expects no reply.
	SendPlain(ctx context.Context, chatID, text string) error
}

// Notifier carries booking events out of band: reminders to the client and
// summaries to the operator.
type Notifier interface {
	Remind(ctx context.Context, booking *model.Booking) error
	NotifyOperator(ctx context.Context, booking *model.Booking) error
}
