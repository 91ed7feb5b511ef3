package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pdfagent/internal/domain"
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

func newTestGenerator(url string) *Generator {
	return NewGenerator(&GeneratorConfig{
		Config: Config{
			APIKey:   "test-key",
			BaseURL:  url,
			Model:    "chat-model",
			Provider: "test",
			Logger:   zap.NewNop(),
		},
		Temperature: 0.7,
		MaxTokens:   8192,
	})
}

func TestGenerator_Generate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "c1", "object": "chat.completion", "model": "chat-model",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "The answer is 42."}}],
			"usage": {"prompt_tokens": 120, "completion_tokens": 7, "total_tokens": 127}
		}`))
	}))
	defer srv.Close()

	res, err := newTestGenerator(srv.URL).Generate(context.Background(), domain.Prompt{
		System: "be brief",
		User:   "what is the answer?",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Text != "The answer is 42." {
		t.Errorf("text = %q", res.Text)
	}
	if res.PromptTokens != 120 || res.CompletionTokens != 7 {
		t.Errorf("usage = %d/%d", res.PromptTokens, res.CompletionTokens)
	}

	if got.Model != "chat-model" || got.MaxTokens != 8192 {
		t.Errorf("request = %+v", got)
	}
	if got.Temperature < 0.69 || got.Temperature > 0.71 {
		t.Errorf("temperature = %f", got.Temperature)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "what is the answer?" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestGenerator_NoSystemMessage(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	if _, err := newTestGenerator(srv.URL).Generate(context.Background(), domain.Prompt{User: "hi"}); err != nil {
		t.Fatal(err)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestGenerator_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newTestGenerator(srv.URL).Generate(context.Background(), domain.Prompt{User: "hi"})
	if !errors.Is(err, domain.ErrGeneration) {
		t.Errorf("expected ErrGeneration, got %v", err)
	}
}

func TestGenerator_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream down","type":"server_error"}}`))
	}))
	defer srv.Close()

	_, err := newTestGenerator(srv.URL).Generate(context.Background(), domain.Prompt{User: "hi"})
	if !errors.Is(err, domain.ErrGeneration) {
		t.Errorf("expected ErrGeneration, got %v", err)
	}
	if errors.Is(err, domain.ErrEmbeddingService) {
		t.Error("generation errors must not map to the embedding sentinel")
	}
}

func TestGenerator_HealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/chat-model" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"message":"no such model"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chat-model","object":"model"}`))
	}))
	defer srv.Close()

	if err := newTestGenerator(srv.URL).HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck: %v", err)
	}

	g := newTestGenerator(srv.URL)
	g.model = "other"
	if err := g.HealthCheck(context.Background()); err == nil {
		t.Error("expected error for unknown model")
	}
}
