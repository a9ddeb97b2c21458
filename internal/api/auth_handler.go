package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/BILBIL17/physioconnect/internal/domain"
	"github.com/BILBIL17/physioconnect/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication and session dependencies.
type AuthHandler struct {
	authService service.AuthService
	sessions    service.SessionService
}

func NewAuthHandler(authService service.AuthService, sessions service.SessionService) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserResponse excludes the stored credential.
type UserResponse struct {
	ID                string                   `json:"id"`
	Name              string                   `json:"name"`
	Email             string                   `json:"email"`
	Age               string                   `json:"age"`
	Weight            string                   `json:"weight"`
	Height            string                   `json:"height"`
	IsPremium         bool                     `json:"isPremium"`
	ActivePlan        *domain.ExercisePlan     `json:"activePlan"`
	ProgressData      *domain.ProgramProgress  `json:"progressData"`
	PlanHistory       []domain.PlanHistoryItem `json:"planHistory"`
	MessagesFromAdmin []domain.AdminMessage    `json:"messagesFromAdmin"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// --- Handler Methods ---

// Register creates a new user account and signs it in immediately.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, user, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during registration")
		}
		return
	}

	h.sessions.LoginUser(c.Request.Context(), user.ID)
	c.JSON(http.StatusCreated, LoginResponse{Token: token, User: MapUserToResponse(user)})
}

// Login authenticates a user by email and returns a JWT token. Failures use
// one generic message regardless of cause.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, user, err := h.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAuthenticationFailed) {
			abortWithError(c, http.StatusUnauthorized, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during login")
		}
		return
	}

	h.sessions.LoginUser(c.Request.Context(), user.ID)
	c.JSON(http.StatusOK, LoginResponse{Token: token, User: MapUserToResponse(user)})
}

// GuestLogin signs in the fixed guest account without credentials.
func (h *AuthHandler) GuestLogin(c *gin.Context) {
	token, user, err := h.authService.LoginGuest(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Guest account is unavailable")
		return
	}

	h.sessions.LoginUser(c.Request.Context(), user.ID)
	c.JSON(http.StatusOK, LoginResponse{Token: token, User: MapUserToResponse(user)})
}

// AdminLogin checks the injected back-office credential.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, err := h.authService.LoginAdmin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, service.ErrAuthenticationFailed.Error())
		return
	}

	h.sessions.LoginAdmin(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Logout clears the session markers and returns to the welcome view.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"view": service.ViewWelcome})
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:                user.ID,
		Name:              user.Name,
		Email:             user.Email,
		Age:               user.Age,
		Weight:            user.Weight,
		Height:            user.Height,
		IsPremium:         user.IsPremium,
		ActivePlan:        user.ActivePlan,
		ProgressData:      user.ProgressData,
		PlanHistory:       user.PlanHistory,
		MessagesFromAdmin: user.MessagesFromAdmin,
	}
}
