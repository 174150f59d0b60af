package types

import "time"

// Message senders. Messages written by anyone else are rejected at the
// database level.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Chat represents a conversation owned by a single user.
// A chat comes into existence lazily, on the first message sent to its ID;
// there is no separate create-chat operation.
type Chat struct {
	// ID is the client-supplied identifier correlating a conversation.
	ID string `json:"chat_id" db:"chat_id"`

	// UserID is the owning user, set once at creation.
	UserID string `json:"user_id" db:"user_id"`

	// Title is a short human-readable label derived from the first
	// user message. Set once, never updated.
	Title string `json:"chat_title" db:"chat_title"`

	// CreatedAt is the timestamp at which the chat row was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ChatMessage is a single append-only message within a chat.
type ChatMessage struct {
	// ID is unique across all messages. Generated at write time from
	// the chat ID, a timestamp, and a random component so that
	// concurrent writers never collide.
	ID string `json:"message_id" db:"message_id"`

	// ChatID references the owning chat.
	ChatID string `json:"chat_id" db:"chat_id"`

	// Sender is either SenderUser or SenderAssistant.
	Sender string `json:"sender" db:"sender"`

	// Message is the free-text content.
	Message string `json:"message" db:"message"`

	// Timestamp is assigned by the server at write time and is the
	// ordering key within a chat.
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// ChatSummary is a sidebar row: a chat together with its most recent
// message. Chats with no messages yet do not produce a summary.
type ChatSummary struct {
	ChatID    string    `json:"chat_id" db:"chat_id"`
	Title     string    `json:"chat_title" db:"chat_title"`
	MessageID string    `json:"message_id" db:"message_id"`
	Sender    string    `json:"sender" db:"sender"`
	Message   string    `json:"message" db:"message"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}
