package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kushal-g/llm-chat-apiserver/internal/ai"
	"github.com/kushal-g/llm-chat-apiserver/internal/store"
	"github.com/kushal-g/llm-chat-apiserver/types"
)

var (
	ErrMissingChatID = errors.New("chatId is required")
	ErrEmptyMessage  = errors.New("message text is required")
	ErrChatNotOwned  = errors.New("chat does not belong to the authenticated user")
)

// ChatRepository defines persistence operations for chats and messages.
type ChatRepository interface {
	CreateChat(ctx context.Context, chat types.Chat) error
	GetChat(ctx context.Context, chatID string) (types.Chat, error)
	ListMessages(ctx context.Context, chatID string) ([]types.ChatMessage, error)
	InsertMessage(ctx context.Context, msg types.ChatMessage) error
	LatestPerChat(ctx context.Context, userID string) ([]types.ChatSummary, error)
}

// TextGenerator is the generative-text capability the engine calls out to.
type TextGenerator interface {
	Complete(ctx context.Context, messages []ai.Message) (string, error)
	SummarizeTitle(ctx context.Context, firstMessage string) string
}

// ChatService orchestrates chat listing, message retrieval, and the
// send-message protocol, including lazy chat creation on first message.
type ChatService struct {
	repo      ChatRepository
	generator TextGenerator
}

func NewChatService(repo ChatRepository, generator TextGenerator) *ChatService {
	return &ChatService{repo: repo, generator: generator}
}

// LatestMessages returns the sidebar listing for the user: each owned chat's
// most recent message with its title, most recently active chats first.
func (s *ChatService) LatestMessages(ctx context.Context, userID string) ([]types.ChatSummary, error) {
	return s.repo.LatestPerChat(ctx, userID)
}

// Messages returns the full ordered history of a chat owned by userID.
// A chat ID with no chat row yet yields an empty history, because the
// client polls a freshly generated chat ID before its first message.
func (s *ChatService) Messages(ctx context.Context, chatID, userID string) ([]types.ChatMessage, error) {
	if chatID == "" {
		return nil, ErrMissingChatID
	}

	if err := s.checkOwnership(ctx, chatID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []types.ChatMessage{}, nil
		}
		return nil, err
	}

	return s.repo.ListMessages(ctx, chatID)
}

// SendMessage appends a user message and a generated assistant reply to the
// chat, creating the chat row first when this is its first message. The two
// writes happen sequentially within this call; the assistant reply is always
// generated from a history that includes the new user message.
func (s *ChatService) SendMessage(ctx context.Context, chatID, userID, userText string) (string, error) {
	if chatID == "" {
		return "", ErrMissingChatID
	}
	if userText == "" {
		return "", ErrEmptyMessage
	}

	history, err := s.repo.ListMessages(ctx, chatID)
	if err != nil {
		return "", fmt.Errorf("loading history: %w", err)
	}

	if len(history) == 0 {
		// First message: the chat row is created here, titled from the
		// message. The insert is conflict-tolerant, so two concurrent
		// first messages cannot produce duplicate rows.
		title := s.generator.SummarizeTitle(ctx, userText)
		if err := s.repo.CreateChat(ctx, types.Chat{
			ID:     chatID,
			UserID: userID,
			Title:  title,
		}); err != nil {
			return "", fmt.Errorf("creating chat: %w", err)
		}
		// The conflict-tolerant insert may have lost to a row created
		// by someone else; re-read to confirm ownership.
		if err := s.checkOwnership(ctx, chatID, userID); err != nil {
			return "", err
		}
	} else if err := s.checkOwnership(ctx, chatID, userID); err != nil {
		return "", err
	}

	userMsg := types.ChatMessage{
		ID:        newMessageID(chatID),
		ChatID:    chatID,
		Sender:    types.SenderUser,
		Message:   userText,
		Timestamp: time.Now(),
	}
	if err := s.repo.InsertMessage(ctx, userMsg); err != nil {
		return "", fmt.Errorf("saving user message: %w", err)
	}

	input := make([]ai.Message, 0, len(history)+1)
	for _, msg := range history {
		input = append(input, ai.Message{Role: msg.Sender, Content: msg.Message})
	}
	input = append(input, ai.Message{Role: types.SenderUser, Content: userText})

	assistantText, err := s.generator.Complete(ctx, input)
	if err != nil {
		return "", fmt.Errorf("generating reply: %w", err)
	}

	assistantMsg := types.ChatMessage{
		ID:        newMessageID(chatID),
		ChatID:    chatID,
		Sender:    types.SenderAssistant,
		Message:   assistantText,
		Timestamp: time.Now(),
	}
	if err := s.repo.InsertMessage(ctx, assistantMsg); err != nil {
		return "", fmt.Errorf("saving assistant message: %w", err)
	}

	return assistantText, nil
}

func (s *ChatService) checkOwnership(ctx context.Context, chatID, userID string) error {
	chat, err := s.repo.GetChat(ctx, chatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		return fmt.Errorf("loading chat: %w", err)
	}
	if chat.UserID != userID {
		return ErrChatNotOwned
	}
	return nil
}

func newMessageID(chatID string) string {
	return fmt.Sprintf("%s_%d_%s", chatID, time.Now().UnixMilli(), uuid.NewString())
}
