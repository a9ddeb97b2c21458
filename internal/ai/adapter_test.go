package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testAdapter(geminiBaseURL string) *httpAdapter {
	return &httpAdapter{
		client:        &http.Client{Timeout: 5 * time.Second},
		geminiBaseURL: geminiBaseURL,
	}
}

func TestSendNotConfigured(t *testing.T) {
	a := testAdapter("")
	_, err := a.Send(context.Background(), ProviderConfig{Provider: ProviderGemini}, nil)
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestSendOpenAIStyleViaCustomProvider(t *testing.T) {
	var got chatCompletionRequest
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "Try gentle stretching."}},
			},
		})
	}))
	defer srv.Close()

	a := testAdapter("")
	cfg := ProviderConfig{
		Provider:         ProviderCustom,
		CustomAPIKey:     "ck-test",
		CustomAPIBaseURL: srv.URL + "/", // trailing slash must be tolerated
		CustomAPIModel:   "test-model",
	}
	history := []Message{
		{Sender: SenderUser, Text: "My knee hurts"},
		{Sender: SenderPhysio, Text: "For how long?"},
		{Sender: SenderUser, Text: "Two weeks"},
	}

	reply, err := a.Send(context.Background(), cfg, history)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if reply != "Try gentle stretching." {
		t.Errorf("unexpected reply %q", reply)
	}
	if gotAuth != "Bearer ck-test" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
	if got.Model != "test-model" {
		t.Errorf("unexpected model %q", got.Model)
	}
	// System prompt leads, then the history with mapped roles.
	if len(got.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(got.Messages))
	}
	if got.Messages[0].Role != "system" {
		t.Errorf("first message role = %q, want system", got.Messages[0].Role)
	}
	wantRoles := []string{"user", "assistant", "user"}
	for i, want := range wantRoles {
		if got.Messages[i+1].Role != want {
			t.Errorf("message %d role = %q, want %q", i+1, got.Messages[i+1].Role, want)
		}
	}
}

func TestSendOpenAIStyleErrorPropagatesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "Rate limit reached"},
		})
	}))
	defer srv.Close()

	a := testAdapter("")
	cfg := ProviderConfig{Provider: ProviderCustom, CustomAPIKey: "k", CustomAPIBaseURL: srv.URL}

	_, err := a.Send(context.Background(), cfg, []Message{{Sender: SenderUser, Text: "hi"}})
	if err == nil || !strings.Contains(err.Error(), "Rate limit reached") {
		t.Fatalf("expected provider error message passed through, got %v", err)
	}
}

func TestSendOpenAIStyleEmptyReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	a := testAdapter("")
	cfg := ProviderConfig{Provider: ProviderCustom, CustomAPIKey: "k", CustomAPIBaseURL: srv.URL}

	_, err := a.Send(context.Background(), cfg, []Message{{Sender: SenderUser, Text: "hi"}})
	if !errors.Is(err, ErrEmptyReply) {
		t.Fatalf("expected ErrEmptyReply, got %v", err)
	}
}

func TestSendGemini(t *testing.T) {
	var got geminiRequest
	var gotKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{
					"role":  "model",
					"parts": []map[string]string{{"text": "Ice it for 15 minutes."}},
				}},
			},
		})
	}))
	defer srv.Close()

	a := testAdapter(srv.URL)
	cfg := ProviderConfig{Provider: ProviderGemini, GeminiAPIKey: "gm-test"}
	history := []Message{
		{Sender: SenderUser, Text: "Swollen ankle"},
		{Sender: SenderPhysio, Text: "Any bruising?"},
	}

	reply, err := a.Send(context.Background(), cfg, history)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if reply != "Ice it for 15 minutes." {
		t.Errorf("unexpected reply %q", reply)
	}
	if gotKey != "gm-test" {
		t.Errorf("unexpected api key header %q", gotKey)
	}
	if got.SystemInstruction == nil || len(got.SystemInstruction.Parts) == 0 {
		t.Fatal("expected system_instruction in payload")
	}
	if len(got.Contents) != 2 {
		t.Fatalf("expected 2 contents, got %d", len(got.Contents))
	}
	if got.Contents[0].Role != "user" || got.Contents[1].Role != "model" {
		t.Errorf("unexpected roles: %q, %q", got.Contents[0].Role, got.Contents[1].Role)
	}
}

func TestSendUnknownProviderHasNoCredential(t *testing.T) {
	a := testAdapter("")
	cfg := ProviderConfig{Provider: Provider("llamafarm"), GeminiAPIKey: "x"}

	_, err := a.Send(context.Background(), cfg, nil)
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured for unknown provider, got %v", err)
	}
}
