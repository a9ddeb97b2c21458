package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/BILBIL17/physioconnect/internal/ai"
	"github.com/BILBIL17/physioconnect/internal/geo"
	"github.com/BILBIL17/physioconnect/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler proxies consultation messages to the configured AI provider.
type ChatHandler struct {
	adapter  ai.Adapter
	sessions service.SessionService
}

func NewChatHandler(adapter ai.Adapter, sessions service.SessionService) *ChatHandler {
	return &ChatHandler{adapter: adapter, sessions: sessions}
}

type ChatRequest struct {
	Messages []ai.Message `json:"messages" binding:"required,min=1"`
}

// Chat forwards the conversation history and returns the reply text.
// Transport and quota failures from the provider are surfaced verbatim.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	cfg := h.sessions.ActiveProvider(c.Request.Context())
	reply, err := h.adapter.Send(c.Request.Context(), cfg, req.Messages)
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			abortWithError(c, http.StatusPreconditionFailed, err.Error())
		} else {
			abortWithError(c, http.StatusBadGateway, err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

// ClinicsHandler serves the nearby-clinic list for the map view.
type ClinicsHandler struct{}

func NewClinicsHandler() *ClinicsHandler {
	return &ClinicsHandler{}
}

type ClinicsQuery struct {
	Latitude  *float64 `form:"lat"`
	Longitude *float64 `form:"lng"`
}

// ListClinics returns the point-of-interest records anchored to the caller's
// position, or to the default position when no fix is supplied.
func (h *ClinicsHandler) ListClinics(c *gin.Context) {
	var q ClinicsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	pos := geo.DefaultPosition
	if q.Latitude != nil && q.Longitude != nil {
		pos = geo.Position{Latitude: *q.Latitude, Longitude: *q.Longitude}
	}
	c.JSON(http.StatusOK, gin.H{
		"position": pos,
		"clinics":  geo.ClinicsNear(pos),
	})
}
