package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

type contextKey string

const contextIdentityKey contextKey = "identity"

// Identity is the verified token subject injected into the request context
// by the auth middleware.
type Identity struct {
	UserID   string
	Username string
}

func identityFromContext(ctx context.Context) (Identity, error) {
	identity, ok := ctx.Value(contextIdentityKey).(Identity)
	if !ok || identity.UserID == "" {
		return Identity{}, errors.New("missing identity")
	}
	return identity, nil
}

// ErrorResponse is the uniform failure body: success is always false and
// error carries a user-facing message.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`

	// UserExists is set only by the unified auth endpoint, on a wrong
	// password for an existing account.
	UserExists bool `json:"userExists,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
