package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/BILBIL17/physioconnect/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the signed-in user's own record.
type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type UpdateProfileRequest struct {
	Name   string `json:"name" binding:"required"`
	Age    string `json:"age"`
	Weight string `json:"weight"`
	Height string `json:"height"`
}

// GetMe returns the caller's record, backfilled to the current schema.
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdateMe replaces the caller's profile fields. The whole record is written
// back, so plan state and messages ride along untouched.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusNotFound, "User not found")
		return
	}

	user.Name = req.Name
	if req.Age != "" {
		user.Age = req.Age
	}
	if req.Weight != "" {
		user.Weight = req.Weight
	}
	if req.Height != "" {
		user.Height = req.Height
	}

	if err := h.userService.UpdateUser(c.Request.Context(), *user); err != nil {
		// Absent-id updates are soft failures by design; anything else is a
		// storage problem.
		if !errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusInternalServerError, "Failed to update profile")
			return
		}
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// GetMessages lists the caller's admin messages.
func (h *UserHandler) GetMessages(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": user.MessagesFromAdmin})
}

// MarkMessageRead flips the read flag on one admin message.
func (h *UserHandler) MarkMessageRead(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	user, err := h.userService.MarkMessageRead(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, "User not found")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update message")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": user.MessagesFromAdmin})
}
