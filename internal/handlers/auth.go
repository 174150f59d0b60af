package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kushal-g/llm-chat-apiserver/internal/auth"
	"github.com/kushal-g/llm-chat-apiserver/internal/services"
)

const maxAuthBodyBytes = 1 << 20

// AuthHandler provides the credential and token endpoints.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// AuthRouter registers the credential and token routes on the given router.
func AuthRouter(r chi.Router, authService *services.AuthService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewAuthHandler(authService)

	r.Post("/auth", handler.Auth)
	r.Post("/signup", handler.Signup)
	r.Post("/login", handler.Login)
	r.With(authMiddleware).Post("/refresh-token", handler.RefreshToken)
}

// RequireAuth enforces bearer-token authentication and injects the verified
// identity into the request context. Every chat route runs behind it.
func RequireAuth(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			claims, err := tokens.Verify(tokenString)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			identity := Identity{UserID: claims.UserID, Username: claims.Username}
			ctx := context.WithValue(r.Context(), contextIdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type IdentityResponse struct {
	Success  bool   `json:"success"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type AuthResponse struct {
	Success     bool   `json:"success"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
	Action      string `json:"action"`
}

type RefreshResponse struct {
	Success     bool   `json:"success"`
	AccessToken string `json:"access_token"`
}

// Auth is the unified signup-or-login endpoint: POST /auth.
func (h *AuthHandler) Auth(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	result, err := h.authService.Auth(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrIncorrectPassword) {
			// The client needs to know the account exists so it can
			// re-prompt for the password instead of offering signup.
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{
				Error:      err.Error(),
				UserExists: true,
			})
			return
		}
		writeAuthError(w, err, "An error occurred during authentication")
		return
	}

	status := http.StatusOK
	if result.Action == services.ActionSignup {
		status = http.StatusCreated
	}
	writeJSON(w, status, AuthResponse{
		Success:     true,
		UserID:      result.User.ID,
		Username:    result.User.Username,
		AccessToken: result.AccessToken,
		Action:      result.Action,
	})
}

// Signup creates an account: POST /signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	user, err := h.authService.Signup(r.Context(), req.Username, req.Password)
	if err != nil {
		writeAuthError(w, err, "An error occurred during signup")
		return
	}

	writeJSON(w, http.StatusCreated, IdentityResponse{
		Success:  true,
		UserID:   user.ID,
		Username: user.Username,
	})
}

// Login verifies credentials: POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	user, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeAuthError(w, err, "An error occurred during login")
		return
	}

	writeJSON(w, http.StatusOK, IdentityResponse{
		Success:  true,
		UserID:   user.ID,
		Username: user.Username,
	})
}

// RefreshToken exchanges the presented (still valid) token for a fresh one:
// POST /refresh-token. The auth middleware has already verified the token;
// re-verification inside Refresh is what rejects it if it expired in between.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	tokenString, err := bearerToken(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	newToken, err := h.authService.Refresh(tokenString)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	writeJSON(w, http.StatusOK, RefreshResponse{
		Success:     true,
		AccessToken: newToken,
	})
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (CredentialsRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAuthBodyBytes)

	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return CredentialsRequest{}, false
	}
	req.Username = strings.TrimSpace(req.Username)
	return req, true
}

// writeAuthError maps service errors to statuses. Validation problems carry
// their own message; anything unexpected is logged and reported generically.
func writeAuthError(w http.ResponseWriter, err error, genericMessage string) {
	switch {
	case errors.Is(err, services.ErrMissingFields),
		errors.Is(err, services.ErrInvalidUsername),
		errors.Is(err, services.ErrShortPassword):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrUsernameTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		slog.Error("auth request failed", "error", err)
		writeError(w, http.StatusInternalServerError, genericMessage)
	}
}

func bearerToken(r *http.Request) (string, error) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if authHeader == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
