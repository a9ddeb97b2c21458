package ai

// Provider identifies a chat completion backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
	ProviderGroq   Provider = "groq"
	ProviderCustom Provider = "custom"
)

// Default endpoints and models per provider.
const (
	geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"
	geminiModel    = "gemini-2.0-flash"

	openAIBaseURL = "https://api.openai.com/v1"
	openAIModel   = "gpt-4o-mini"

	groqBaseURL = "https://api.groq.com/openai/v1"
	groqModel   = "llama-3.1-8b-instant"
)

// ProviderConfig is the credential/endpoint set for every provider plus the
// current selection. One credential field per provider, mirroring the
// persisted marker keys.
type ProviderConfig struct {
	Provider         Provider `json:"provider"`
	GeminiAPIKey     string   `json:"geminiApiKey,omitempty"`
	OpenAIAPIKey     string   `json:"openAiApiKey,omitempty"`
	GroqAPIKey       string   `json:"groqApiKey,omitempty"`
	CustomAPIKey     string   `json:"customApiKey,omitempty"`
	CustomAPIBaseURL string   `json:"customApiBaseUrl,omitempty"`
	CustomAPIModel   string   `json:"customApiModel,omitempty"`
}

// ActiveKey returns the credential of the selected provider, empty when the
// selection carries none.
func (c ProviderConfig) ActiveKey() string {
	switch c.Provider {
	case ProviderGemini:
		return c.GeminiAPIKey
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderGroq:
		return c.GroqAPIKey
	case ProviderCustom:
		return c.CustomAPIKey
	}
	return ""
}

// Sender identifies who wrote a chat message.
type Sender string

const (
	SenderUser   Sender = "user"
	SenderPhysio Sender = "physio"
)

// Message is one turn of the consultation conversation.
type Message struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}
