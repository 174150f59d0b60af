package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kushal-g/llm-chat-apiserver/internal/services"
)

const maxChatBodyBytes = 1 << 20

// ChatHandler provides the conversation endpoints.
type ChatHandler struct {
	chatService *services.ChatService
}

// NewChatHandler constructs a ChatHandler with the provided dependencies.
func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ChatRouter registers the conversation routes on the given router.
// Every route requires a verified identity.
func ChatRouter(r chi.Router, chatService *services.ChatService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewChatHandler(chatService)

	r.Use(authMiddleware)
	r.Get("/", handler.GetMessages)
	r.Post("/", handler.SendMessage)
	r.Get("/latest-messages", handler.LatestMessages)
}

type SendMessageRequest struct {
	UserResponse string `json:"userResponse"`
}

type SendMessageResponse struct {
	AssistantResponse string `json:"assistantResponse"`
}

// GetMessages returns the ordered history of a chat: GET /?chatId=ID.
func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	chatID := r.URL.Query().Get("chatId")
	messages, err := h.chatService.Messages(r.Context(), chatID, identity.UserID)
	if err != nil {
		writeChatError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

// SendMessage appends a user message and returns the generated assistant
// reply: POST /?chatId=ID.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	chatID := r.URL.Query().Get("chatId")
	assistantText, err := h.chatService.SendMessage(r.Context(), chatID, identity.UserID, req.UserResponse)
	if err != nil {
		writeChatError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SendMessageResponse{AssistantResponse: assistantText})
}

// LatestMessages returns each owned chat's most recent message:
// GET /latest-messages.
func (h *ChatHandler) LatestMessages(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	summaries, err := h.chatService.LatestMessages(r.Context(), identity.UserID)
	if err != nil {
		writeChatError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}

func writeChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrMissingChatID),
		errors.Is(err, services.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrChatNotOwned):
		// Reported as not-found so the chat's existence leaks nothing.
		writeError(w, http.StatusNotFound, "Chat not found")
	default:
		slog.Error("chat request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An error occurred")
	}
}
