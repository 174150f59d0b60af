package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kushal-g/llm-chat-apiserver/config"
)

type stubBackend struct {
	response string
	err      error
	lastIn   []Message
}

func (s *stubBackend) Complete(_ context.Context, messages []Message) (string, error) {
	s.lastIn = messages
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestSummarizeTitleTrimsModelOutput(t *testing.T) {
	backend := &stubBackend{response: "  Cooking Tips \n"}
	gen := New(backend)

	title := gen.SummarizeTitle(context.Background(), "how do I cook rice?")
	if title != "Cooking Tips" {
		t.Errorf("SummarizeTitle() = %q, want %q", title, "Cooking Tips")
	}

	if len(backend.lastIn) != 2 || backend.lastIn[0].Role != "system" {
		t.Errorf("SummarizeTitle() input = %+v, want system prompt followed by user message", backend.lastIn)
	}
	if backend.lastIn[1].Content != "how do I cook rice?" {
		t.Errorf("SummarizeTitle() user content = %q", backend.lastIn[1].Content)
	}
}

func TestSummarizeTitleFallsBack(t *testing.T) {
	t.Run("backend error", func(t *testing.T) {
		gen := New(&stubBackend{err: errors.New("unavailable")})
		if title := gen.SummarizeTitle(context.Background(), "hello"); title != "New Chat" {
			t.Errorf("SummarizeTitle() = %q, want %q", title, "New Chat")
		}
	})

	t.Run("blank output", func(t *testing.T) {
		gen := New(&stubBackend{response: "   \n"})
		if title := gen.SummarizeTitle(context.Background(), "hello"); title != "New Chat" {
			t.Errorf("SummarizeTitle() = %q, want %q", title, "New Chat")
		}
	})
}

func TestNewFromConfigUnknownBackend(t *testing.T) {
	if _, err := NewFromConfig(config.AIConfig{Backend: "carrier-pigeon"}); err == nil {
		t.Error("NewFromConfig() expected error for unknown backend")
	}
}

func TestWorkersAIComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounts/acc-1/ai/run/@cf/meta/llama-3.1-8b-instruct-fp8" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			t.Errorf("unexpected authorization %q", r.Header.Get("Authorization"))
		}

		var req workersRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 1 || req.Messages[0].Content != "hello" {
			t.Errorf("unexpected messages %+v", req.Messages)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"result":  map[string]string{"response": "hi from workers"},
		})
	}))
	defer srv.Close()

	backend, err := NewWorkersAI(config.AIConfig{
		BaseURL:   srv.URL,
		AccountID: "acc-1",
		APIToken:  "tok-1",
		Model:     "@cf/meta/llama-3.1-8b-instruct-fp8",
	})
	if err != nil {
		t.Fatalf("NewWorkersAI() unexpected error: %v", err)
	}

	reply, err := backend.Complete(context.Background(), []Message{{Role: "user", Content: "hello"}})
	if err != nil {
		t.Fatalf("Complete() unexpected error: %v", err)
	}
	if reply != "hi from workers" {
		t.Errorf("Complete() = %q, want %q", reply, "hi from workers")
	}
}

func TestWorkersAICompleteUnsuccessful(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"errors":  []map[string]string{{"message": "model overloaded"}},
		})
	}))
	defer srv.Close()

	backend, err := NewWorkersAI(config.AIConfig{
		BaseURL:   srv.URL,
		AccountID: "acc-1",
		APIToken:  "tok-1",
		Model:     "m",
	})
	if err != nil {
		t.Fatalf("NewWorkersAI() unexpected error: %v", err)
	}

	if _, err := backend.Complete(context.Background(), nil); err == nil {
		t.Error("Complete() expected error for unsuccessful response")
	}
}

func TestWorkersAIRequiresCredentials(t *testing.T) {
	if _, err := NewWorkersAI(config.AIConfig{APIToken: "tok"}); err == nil {
		t.Error("NewWorkersAI() expected error without account ID")
	}
	if _, err := NewWorkersAI(config.AIConfig{AccountID: "acc"}); err == nil {
		t.Error("NewWorkersAI() expected error without API token")
	}
}

func TestOpenAIComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		var req openAIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q, want %q", req.Model, "test-model")
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "hi from openai"}},
			},
		})
	}))
	defer srv.Close()

	backend, err := NewOpenAI(config.AIConfig{BaseURL: srv.URL, Model: "test-model"})
	if err != nil {
		t.Fatalf("NewOpenAI() unexpected error: %v", err)
	}

	reply, err := backend.Complete(context.Background(), []Message{{Role: "user", Content: "hello"}})
	if err != nil {
		t.Fatalf("Complete() unexpected error: %v", err)
	}
	if reply != "hi from openai" {
		t.Errorf("Complete() = %q, want %q", reply, "hi from openai")
	}
}

func TestOpenAICompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	backend, err := NewOpenAI(config.AIConfig{BaseURL: srv.URL, Model: "m"})
	if err != nil {
		t.Fatalf("NewOpenAI() unexpected error: %v", err)
	}

	if _, err := backend.Complete(context.Background(), nil); err == nil {
		t.Error("Complete() expected error for empty choices")
	}
}
