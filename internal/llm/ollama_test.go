package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaProvider_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected path /api/generate, got %s", r.URL.Path)
		}

		var apiReq ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&apiReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if apiReq.Stream {
			t.Error("streaming must be disabled")
		}
		if apiReq.System != "Return only JSON." {
			t.Errorf("unexpected system prompt %q", apiReq.System)
		}

		_ = json.NewEncoder(w).Encode(ollamaResponse{
			Model:           apiReq.Model,
			Response:        `[{"notation": "25F"}]`,
			Done:            true,
			DoneReason:      "stop",
			PromptEvalCount: 40,
			EvalCount:       20,
		})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.2", Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Complete(context.Background(), CompletionRequest{
		System: "Return only JSON.",
		Prompt: "Classify this record.",
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if resp.Content != `[{"notation": "25F"}]` {
		t.Errorf("Unexpected content: %s", resp.Content)
	}
	if resp.TokensUsed != 60 {
		t.Errorf("Unexpected token count: %d", resp.TokensUsed)
	}
	if resp.FinishReason != "stop" {
		t.Errorf("Unexpected finish reason: %s", resp.FinishReason)
	}
}

func TestOllamaProvider_Complete_AttachesImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var apiReq ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&apiReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(apiReq.Images) != 1 || apiReq.Images[0] == "" {
			t.Error("request missing the base64 image")
		}

		_ = json.NewEncoder(w).Encode(ollamaResponse{Response: "ok", Done: true})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if _, err := provider.Complete(context.Background(), CompletionRequest{
		Prompt:    "Beschreibe das Bild.",
		ImageJPEG: []byte{0xff, 0xd8},
	}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
}

func TestOllamaProvider_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "model 'missing' not found"}`))
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"models": []}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be true")
	}
}
