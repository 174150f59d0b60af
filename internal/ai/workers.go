package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kushal-g/llm-chat-apiserver/config"
)

const defaultWorkersBaseURL = "https://api.cloudflare.com/client/v4"

// WorkersAI calls the Cloudflare Workers AI REST API.
type WorkersAI struct {
	httpClient *http.Client
	baseURL    string
	accountID  string
	model      string
	token      string
}

// NewWorkersAI constructs a Workers AI backend from configuration.
func NewWorkersAI(cfg config.AIConfig) (*WorkersAI, error) {
	if cfg.AccountID == "" {
		return nil, errors.New("workers AI backend requires AI_ACCOUNT_ID")
	}
	if cfg.APIToken == "" {
		return nil, errors.New("workers AI backend requires AI_API_TOKEN")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultWorkersBaseURL
	}

	return &WorkersAI{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountID:  cfg.AccountID,
		model:      cfg.Model,
		token:      cfg.APIToken,
	}, nil
}

type workersRequest struct {
	Messages []Message `json:"messages"`
}

type workersResponse struct {
	Result struct {
		Response string `json:"response"`
	} `json:"result"`
	Success bool `json:"success"`
	Errors  []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Complete runs the configured model over the conversation.
func (w *WorkersAI) Complete(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(workersRequest{Messages: messages})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/accounts/%s/ai/run/%s", w.baseURL, w.accountID, w.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+w.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("workers AI request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("workers AI returned status %d", resp.StatusCode)
	}

	var parsed workersResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decoding workers AI response: %w", err)
	}
	if !parsed.Success {
		if len(parsed.Errors) > 0 {
			return "", fmt.Errorf("workers AI error: %s", parsed.Errors[0].Message)
		}
		return "", errors.New("workers AI request unsuccessful")
	}

	return parsed.Result.Response, nil
}
