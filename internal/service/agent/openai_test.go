package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIProviderComplete(t *testing.T) {
	var gotAuth string
	var gotBody chatCompletionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatal(err)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"model": "gpt-4o-mini",
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "the answer"}},
			},
		})
	}))
	defer server.Close()

	p := NewOpenAIProvider("test-key", server.URL, testLogger())
	resp, err := p.Complete(context.Background(), &CompletionRequest{
		Model:       "gpt-4o-mini",
		Message:     "hello",
		Temperature: 0.7,
		MaxTokens:   100,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if resp.Output != "the answer" {
		t.Errorf("output = %q", resp.Output)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotBody.Model != "gpt-4o-mini" || len(gotBody.Messages) != 1 || gotBody.Messages[0].Role != "user" {
		t.Errorf("request body = %+v", gotBody)
	}
}

func TestOpenAIProviderErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "rate limited", "type": "rate_limit"},
		})
	}))
	defer server.Close()

	p := NewOpenAIProvider("test-key", server.URL, testLogger())
	_, err := p.Complete(context.Background(), &CompletionRequest{Model: "gpt-4o-mini", Message: "hello"})
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("got %v, want rate limit error surfaced", err)
	}
}

func TestOpenAIProviderRequiresAPIKey(t *testing.T) {
	p := NewOpenAIProvider("", "", testLogger())
	if _, err := p.Complete(context.Background(), &CompletionRequest{Model: "gpt-4o-mini", Message: "x"}); err == nil {
		t.Fatal("expected missing-key error")
	}
}
