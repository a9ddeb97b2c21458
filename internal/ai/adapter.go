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
)

// --- Error Definitions ---
var (
	ErrNotConfigured = errors.New("AI provider is not configured: missing API key")
	ErrEmptyReply    = errors.New("AI provider returned an empty reply")
)

// systemPrompt frames every consultation. Kept short: the model is a triage
// assistant, not a diagnostician.
const systemPrompt = "You are a friendly AI physiotherapy assistant for the PhysioConnect app. " +
	"Give practical, cautious guidance on exercise, posture and recovery, and advise seeing " +
	"a licensed physiotherapist for anything that sounds serious. Keep answers short."

// Adapter is the opaque call-out to a remote completion API. Send is the
// whole surface; transport and quota errors are returned verbatim for the
// caller to surface.
type Adapter interface {
	Send(ctx context.Context, cfg ProviderConfig, history []Message) (string, error)
}

type httpAdapter struct {
	client *http.Client
	// geminiBaseURL and openAI-style base URLs are overridable for tests.
	geminiBaseURL string
}

func NewAdapter() Adapter {
	return &httpAdapter{
		client:        &http.Client{Timeout: 60 * time.Second},
		geminiBaseURL: geminiEndpoint,
	}
}

func (a *httpAdapter) Send(ctx context.Context, cfg ProviderConfig, history []Message) (string, error) {
	if cfg.ActiveKey() == "" {
		return "", ErrNotConfigured
	}

	switch cfg.Provider {
	case ProviderGemini:
		return a.sendGemini(ctx, cfg, history)
	case ProviderOpenAI:
		return a.sendOpenAIStyle(ctx, openAIBaseURL, cfg.OpenAIAPIKey, openAIModel, history)
	case ProviderGroq:
		return a.sendOpenAIStyle(ctx, groqBaseURL, cfg.GroqAPIKey, groqModel, history)
	case ProviderCustom:
		model := cfg.CustomAPIModel
		if model == "" {
			model = openAIModel
		}
		return a.sendOpenAIStyle(ctx, strings.TrimSuffix(cfg.CustomAPIBaseURL, "/"), cfg.CustomAPIKey, model, history)
	}
	return "", fmt.Errorf("unknown AI provider %q", cfg.Provider)
}

// --- OpenAI-style chat completions (openai, groq, custom) ---

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (a *httpAdapter) sendOpenAIStyle(ctx context.Context, baseURL, apiKey, model string, history []Message) (string, error) {
	payload := chatCompletionRequest{Model: model}
	payload.Messages = append(payload.Messages, chatMessage{Role: "system", Content: systemPrompt})
	for _, m := range history {
		role := "assistant"
		if m.Sender == SenderUser {
			role = "user"
		}
		payload.Messages = append(payload.Messages, chatMessage{Role: role, Content: m.Text})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("chat completion failed, status %d: %s", resp.StatusCode, string(respBody))
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return "", fmt.Errorf("chat completion failed: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("chat completion failed, status %d: %s", resp.StatusCode, string(respBody))
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", ErrEmptyReply
	}
	return parsed.Choices[0].Message.Content, nil
}

// --- Gemini generateContent ---

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (a *httpAdapter) sendGemini(ctx context.Context, cfg ProviderConfig, history []Message) (string, error) {
	payload := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}},
	}
	for _, m := range history {
		role := "model"
		if m.Sender == SenderUser {
			role = "user"
		}
		payload.Contents = append(payload.Contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: m.Text}},
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s:generateContent", a.geminiBaseURL, geminiModel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", cfg.GeminiAPIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("gemini call failed, status %d: %s", resp.StatusCode, string(respBody))
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return "", fmt.Errorf("gemini call failed: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("gemini call failed, status %d: %s", resp.StatusCode, string(respBody))
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyReply
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
