package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/BILBIL17/physioconnect/internal/ai"
	"github.com/BILBIL17/physioconnect/internal/service"

	"github.com/gin-gonic/gin"
)

// SessionHandler exposes the navigation state machine and AI settings.
type SessionHandler struct {
	sessions service.SessionService
}

func NewSessionHandler(sessions service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type NavigateRequest struct {
	View string `json:"view" binding:"required,oneof=welcome login dashboard admin"`
}

type AISettingsRequest struct {
	Provider         string `json:"provider" binding:"required,oneof=gemini openai groq custom"`
	GeminiAPIKey     string `json:"geminiApiKey"`
	OpenAIAPIKey     string `json:"openAiApiKey"`
	GroqAPIKey       string `json:"groqApiKey"`
	CustomAPIKey     string `json:"customApiKey"`
	CustomAPIBaseURL string `json:"customApiBaseUrl"`
	CustomAPIModel   string `json:"customApiModel"`
}

// GetState returns the current session state (credentials redacted).
func (h *SessionHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, redactState(h.sessions.State()))
}

// Navigate applies one transition of the view state machine.
func (h *SessionHandler) Navigate(c *gin.Context) {
	var req NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	state, err := h.sessions.Navigate(c.Request.Context(), service.View(req.View))
	if err != nil {
		if errors.Is(err, service.ErrInvalidTransition) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to navigate")
		}
		return
	}
	c.JSON(http.StatusOK, redactState(state))
}

// SaveAISettings persists the provider selection and credential set.
func (h *SessionHandler) SaveAISettings(c *gin.Context) {
	var req AISettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	h.sessions.SaveAISettings(c.Request.Context(), ai.ProviderConfig{
		Provider:         ai.Provider(req.Provider),
		GeminiAPIKey:     req.GeminiAPIKey,
		OpenAIAPIKey:     req.OpenAIAPIKey,
		GroqAPIKey:       req.GroqAPIKey,
		CustomAPIKey:     req.CustomAPIKey,
		CustomAPIBaseURL: req.CustomAPIBaseURL,
		CustomAPIModel:   req.CustomAPIModel,
	})
	c.JSON(http.StatusOK, redactState(h.sessions.State()))
}

// redactState strips credential material before it leaves the server; only
// the selection and which providers have keys are reported.
func redactState(s service.SessionState) gin.H {
	return gin.H{
		"view":          s.View,
		"userId":        s.UserID,
		"adminLoggedIn": s.AdminLoggedIn,
		"ai": gin.H{
			"provider":         s.AI.Provider,
			"geminiConfigured": s.AI.GeminiAPIKey != "",
			"openAiConfigured": s.AI.OpenAIAPIKey != "",
			"groqConfigured":   s.AI.GroqAPIKey != "",
			"customConfigured": s.AI.CustomAPIKey != "",
			"customApiBaseUrl": s.AI.CustomAPIBaseURL,
			"customApiModel":   s.AI.CustomAPIModel,
		},
	}
}
