package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/kushal-g/llm-chat-apiserver/config"
)

// Fallback title when the model returns nothing usable.
const defaultChatTitle = "New Chat"

const titleSystemPrompt = "Generate a short, concise title (max 5 words) for a chat conversation based on the user's first message. Only respond with the title, nothing else."

// Message is one turn of model input.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Backend defines the provider-agnostic completion operation.
type Backend interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Generator wraps a backend with the two operations the app needs:
// free-form completion over a conversation, and title summarization.
type Generator struct {
	backend Backend
}

// New constructs a Generator for the provided backend.
func New(backend Backend) *Generator {
	return &Generator{backend: backend}
}

// NewFromConfig selects and constructs a backend from configuration.
func NewFromConfig(cfg config.AIConfig) (*Generator, error) {
	switch cfg.Backend {
	case "workers":
		backend, err := NewWorkersAI(cfg)
		if err != nil {
			return nil, err
		}
		return New(backend), nil
	case "openai":
		backend, err := NewOpenAI(cfg)
		if err != nil {
			return nil, err
		}
		return New(backend), nil
	default:
		return nil, fmt.Errorf("unknown AI backend %q", cfg.Backend)
	}
}

// Complete generates assistant text for the given conversation.
func (g *Generator) Complete(ctx context.Context, messages []Message) (string, error) {
	return g.backend.Complete(ctx, messages)
}

// SummarizeTitle asks the model for a short chat title derived from the
// first user message. A failed or empty generation falls back to a
// static title rather than failing the request.
func (g *Generator) SummarizeTitle(ctx context.Context, firstMessage string) string {
	title, err := g.backend.Complete(ctx, []Message{
		{Role: "system", Content: titleSystemPrompt},
		{Role: "user", Content: firstMessage},
	})
	if err != nil {
		return defaultChatTitle
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return defaultChatTitle
	}
	return title
}
