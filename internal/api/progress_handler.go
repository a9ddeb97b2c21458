package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/BILBIL17/physioconnect/internal/domain"
	"github.com/BILBIL17/physioconnect/internal/service"

	"github.com/gin-gonic/gin"
)

// ProgressHandler serves the exercise-plan lifecycle for the signed-in user.
type ProgressHandler struct {
	progressService service.ProgressService
}

func NewProgressHandler(progressService service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

type AcceptPlanRequest struct {
	PlanTitle     string          `json:"planTitle" binding:"required"`
	DurationWeeks int             `json:"durationWeeks" binding:"required,min=1"`
	Content       json.RawMessage `json:"content"`
}

// AcceptPlan installs a new active plan, archiving any current one as
// Replaced.
func (h *ProgressHandler) AcceptPlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req AcceptPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.progressService.AcceptPlan(c.Request.Context(), userID, domain.ExercisePlan{
		PlanTitle:     req.PlanTitle,
		DurationWeeks: req.DurationWeeks,
		Content:       req.Content,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, "User not found")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to accept plan")
		}
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// LogSession records one completed exercise session.
func (h *ProgressHandler) LogSession(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	user, err := h.progressService.LogSession(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrNoActivePlan):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrProgramComplete):
			// Already complete is a user-visible notice, not a failure state.
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to log session")
		}
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// GetHistory lists the caller's plan history, oldest first.
func (h *ProgressHandler) GetHistory(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	history, err := h.progressService.History(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}
