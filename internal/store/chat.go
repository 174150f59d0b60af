package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/kushal-g/llm-chat-apiserver/types"
)

// ChatRepository handles persistence for chats and their messages.
type ChatRepository struct {
	db *sql.DB
}

func NewChatRepository(db *sql.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// CreateChat inserts the chat row if it does not exist yet. Two concurrent
// first messages for the same chat ID both reach this insert; the conflict
// clause lets the loser proceed against the winner's row.
func (r *ChatRepository) CreateChat(ctx context.Context, chat types.Chat) error {
	chat.CreatedAt = time.Now()

	const query = `
		INSERT INTO chats (chat_id, user_id, chat_title, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (chat_id) DO NOTHING`
	_, err := r.db.ExecContext(
		ctx,
		query,
		chat.ID,
		chat.UserID,
		chat.Title,
		chat.CreatedAt,
	)
	return err
}

func (r *ChatRepository) GetChat(ctx context.Context, chatID string) (types.Chat, error) {
	const query = `
		SELECT chat_id, user_id, chat_title, created_at
		FROM chats
		WHERE chat_id = $1`
	var chat types.Chat
	err := r.db.QueryRowContext(ctx, query, chatID).Scan(
		&chat.ID,
		&chat.UserID,
		&chat.Title,
		&chat.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Chat{}, ErrNotFound
		}
		return types.Chat{}, err
	}
	return chat, nil
}

// ListMessages returns every message in the chat ordered by write time.
// Ties on timestamp fall back to message_id so the order is deterministic.
func (r *ChatRepository) ListMessages(ctx context.Context, chatID string) ([]types.ChatMessage, error) {
	const query = `
		SELECT message_id, chat_id, sender, message, timestamp
		FROM chat_messages
		WHERE chat_id = $1
		ORDER BY timestamp ASC, message_id ASC`
	rows, err := r.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]types.ChatMessage, 0)
	for rows.Next() {
		var msg types.ChatMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.ChatID,
			&msg.Sender,
			&msg.Message,
			&msg.Timestamp,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *ChatRepository) InsertMessage(ctx context.Context, msg types.ChatMessage) error {
	const query = `
		INSERT INTO chat_messages (message_id, chat_id, sender, message, timestamp)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		msg.ID,
		msg.ChatID,
		msg.Sender,
		msg.Message,
		msg.Timestamp,
	)
	return err
}

// LatestPerChat returns, for every chat owned by userID that has at least
// one message, the chat's most recent message joined with its title,
// ordered most-recent-first by each chat's own maximum timestamp.
func (r *ChatRepository) LatestPerChat(ctx context.Context, userID string) ([]types.ChatSummary, error) {
	const query = `
		SELECT cm1.chat_id, c.chat_title, cm1.message_id, cm1.sender, cm1.message, cm1.timestamp
		FROM chat_messages cm1
		INNER JOIN (
			SELECT chat_id, MAX(timestamp) AS max_timestamp
			FROM chat_messages
			GROUP BY chat_id
		) cm2 ON cm1.chat_id = cm2.chat_id AND cm1.timestamp = cm2.max_timestamp
		INNER JOIN chats c ON cm1.chat_id = c.chat_id
		WHERE c.user_id = $1
		ORDER BY cm1.timestamp DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]types.ChatSummary, 0)
	for rows.Next() {
		var s types.ChatSummary
		if err := rows.Scan(
			&s.ChatID,
			&s.Title,
			&s.MessageID,
			&s.Sender,
			&s.Message,
			&s.Timestamp,
		); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}
