package rewrite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const chatCompletionReply = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1714580000,
  "model": "test-model",
  "choices": [
    {"index": 0, "message": {"role": "assistant", "content": "{\"headline\": \"H\", \"body\": \"B\"}"}, "finish_reason": "stop"}
  ],
  "usage": {"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2}
}`

func chatServer(t *testing.T, status int, body string, gotAuth *string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotAuth != nil {
			*gotAuth = r.Header.Get("Authorization")
		}
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

const rateLimitBody = `{"error": {"message": "Rate limit exceeded", "type": "rate_limit_error", "code": "rate_limit"}}`

func TestOpenRouterClientComplete(t *testing.T) {
	var gotAuth string
	server := chatServer(t, http.StatusOK, chatCompletionReply, &gotAuth)

	client := NewOpenRouterClient(server.URL+"/api/v1", "", server.Client())

	raw, err := client.Complete(context.Background(), "sk-or-1", "prompt")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if raw != `{"headline": "H", "body": "B"}` {
		t.Errorf("Unexpected content: %s", raw)
	}
	if gotAuth != "Bearer sk-or-1" {
		t.Errorf("Expected bearer credential, got '%s'", gotAuth)
	}
}

func TestOpenRouterClientQuota(t *testing.T) {
	for _, code := range []int{http.StatusTooManyRequests, http.StatusPaymentRequired} {
		server := chatServer(t, code, rateLimitBody, nil)
		client := NewOpenRouterClient(server.URL, "", server.Client())

		_, err := client.Complete(context.Background(), "sk-or-1", "prompt")
		if !IsQuota(err) {
			t.Errorf("Expected quota error for status %d, got %v", code, err)
		}
	}
}

func TestOpenRouterClientOtherError(t *testing.T) {
	server := chatServer(t, http.StatusBadRequest, `{"error": {"message": "bad model", "type": "invalid_request_error"}}`, nil)
	client := NewOpenRouterClient(server.URL, "", server.Client())

	_, err := client.Complete(context.Background(), "sk-or-1", "prompt")
	if err == nil || IsQuota(err) {
		t.Errorf("Expected non-quota error, got %v", err)
	}
}

func TestOpenAIClientComplete(t *testing.T) {
	server := chatServer(t, http.StatusOK, chatCompletionReply, nil)
	client := NewOpenAIClient(server.URL+"/v1/", "", server.Client())

	raw, err := client.Complete(context.Background(), "sk-1", "prompt")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(raw, `"headline"`) {
		t.Errorf("Unexpected content: %s", raw)
	}
}

func TestOpenAIClientSendsTemperature(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatCompletionReply))
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL+"/v1/", "gpt-test", server.Client())

	if _, err := client.Complete(context.Background(), "sk-1", "prompt"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if payload["temperature"] != 0.8 {
		t.Errorf("Expected temperature 0.8, got %v", payload["temperature"])
	}
	if payload["model"] != "gpt-test" {
		t.Errorf("Expected model 'gpt-test', got %v", payload["model"])
	}
}

func TestOpenAIClientQuota(t *testing.T) {
	server := chatServer(t, http.StatusTooManyRequests, rateLimitBody, nil)
	client := NewOpenAIClient(server.URL+"/v1/", "", server.Client())

	_, err := client.Complete(context.Background(), "sk-1", "prompt")
	if !IsQuota(err) {
		t.Errorf("Expected quota error, got %v", err)
	}
}

func TestClassifyGeminiError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		quota bool
	}{
		{"http 429", &googleapi.Error{Code: http.StatusTooManyRequests, Message: "quota"}, true},
		{"wrapped http 429", fmt.Errorf("call: %w", &googleapi.Error{Code: http.StatusTooManyRequests}), true},
		{"grpc exhausted", status.Error(codes.ResourceExhausted, "quota"), true},
		{"http 400", &googleapi.Error{Code: http.StatusBadRequest}, false},
		{"grpc invalid", status.Error(codes.InvalidArgument, "bad"), false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsQuota(classifyGeminiError(tt.err)); got != tt.quota {
				t.Errorf("Expected quota=%v, got %v", tt.quota, got)
			}
		})
	}
}

func TestNewClient(t *testing.T) {
	for _, backend := range []string{BackendOpenRouter, BackendGemini, BackendOpenAI} {
		client, err := NewClient(backend, "", "", nil)
		if err != nil {
			t.Fatalf("Expected no error for %s, got %v", backend, err)
		}
		if client.Name() != backend {
			t.Errorf("Expected client name '%s', got '%s'", backend, client.Name())
		}
	}

	if _, err := NewClient("bard", "", "", nil); err == nil {
		t.Error("Expected error for unknown backend")
	}
}
