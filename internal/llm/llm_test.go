package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newFakeServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{
		BaseURL:     srv.URL + "/v1",
		APIKey:      "test-key",
		Model:       "test-model",
		Temperature: 0.7,
		MaxTokens:   800,
	})
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":     "cmpl-1",
		"object": "chat.completion",
		"model":  "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	})
}

func TestComplete(t *testing.T) {
	var got chatRequest
	var auth string
	c := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		writeCompletion(w, `[{"question":"q"}]`)
	})

	text, err := c.Complete(context.Background(), "make a quiz")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != `[{"question":"q"}]` {
		t.Errorf("Complete() = %q", text)
	}
	if auth != "Bearer test-key" {
		t.Errorf("Authorization = %q, want bearer token", auth)
	}
	if got.Model != "test-model" {
		t.Errorf("model = %q, want test-model", got.Model)
	}
	if got.MaxTokens != 800 {
		t.Errorf("max_tokens = %d, want 800", got.MaxTokens)
	}
	if got.Temperature < 0.69 || got.Temperature > 0.71 {
		t.Errorf("temperature = %v, want 0.7", got.Temperature)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" || got.Messages[0].Content != "make a quiz" {
		t.Errorf("unexpected messages: %+v", got.Messages)
	}
}

func TestCompleteServiceError(t *testing.T) {
	c := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	})

	_, err := c.Complete(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "LLM API call") {
		t.Errorf("error should be wrapped, got %v", err)
	}
}

func TestCompleteNoChoices(t *testing.T) {
	c := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	})

	if _, err := c.Complete(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error when no choices are returned")
	}
}

func TestNewDefaultsModel(t *testing.T) {
	c := New(Config{APIKey: "k"})
	if c.Model() != DefaultModel {
		t.Errorf("Model() = %q, want %q", c.Model(), DefaultModel)
	}
}
