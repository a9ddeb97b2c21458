package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/BILBIL17/physioconnect/internal/domain"
	"github.com/BILBIL17/physioconnect/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler is the back-office surface: user management plus content CRUD.
type AdminHandler struct {
	userService    service.UserService
	contentService service.ContentService
}

func NewAdminHandler(userService service.UserService, contentService service.ContentService) *AdminHandler {
	return &AdminHandler{userService: userService, contentService: contentService}
}

// --- Request Structs ---

type SetPremiumRequest struct {
	IsPremium *bool `json:"isPremium" binding:"required"`
}

type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

type AnnouncementRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type JournalRequest struct {
	Title     string `json:"title" binding:"required"`
	Publisher string `json:"publisher" binding:"required"`
	Year      int    `json:"year" binding:"required"`
	Link      string `json:"link" binding:"required,url"`
}

// --- User management ---

// ListUsers returns every user record for the back-office table.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users := h.userService.ListUsers(c.Request.Context())
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = MapUserToResponse(&users[i])
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

// SetPremium grants or revokes the premium flag.
func (h *AdminHandler) SetPremium(c *gin.Context) {
	var req SetPremiumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.userService.SetPremium(c.Request.Context(), c.Param("id"), *req.IsPremium)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, "User not found")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update user")
		}
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// SendMessage appends an unread admin message to a user.
func (h *AdminHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.userService.SendAdminMessage(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, "User not found")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to send message")
		}
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// --- Announcements ---

func (h *AdminHandler) CreateAnnouncement(c *gin.Context) {
	var req AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	ann, err := h.contentService.AddAnnouncement(c.Request.Context(), req.Title, req.Content)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to create announcement")
		return
	}
	c.JSON(http.StatusCreated, MapAnnouncementToResponse(*ann))
}

func (h *AdminHandler) UpdateAnnouncement(c *gin.Context) {
	var req AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	id := c.Param("id")
	existing := findAnnouncement(h.contentService.ListAnnouncements(c.Request.Context()), id)
	if existing == nil {
		abortWithError(c, http.StatusNotFound, "Announcement not found")
		return
	}

	updated := domain.Announcement{
		ID:        id,
		Title:     req.Title,
		Content:   req.Content,
		CreatedAt: existing.CreatedAt,
	}
	if err := h.contentService.UpdateAnnouncement(c.Request.Context(), updated); err != nil {
		if errors.Is(err, service.ErrAnnouncementNotFound) {
			abortWithError(c, http.StatusNotFound, "Announcement not found")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update announcement")
		}
		return
	}
	c.JSON(http.StatusOK, MapAnnouncementToResponse(updated))
}

func (h *AdminHandler) DeleteAnnouncement(c *gin.Context) {
	if err := h.contentService.DeleteAnnouncement(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to delete announcement")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Journals ---

func (h *AdminHandler) CreateJournal(c *gin.Context) {
	var req JournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	journal, err := h.contentService.AddJournal(c.Request.Context(), domain.Journal{
		Title:     req.Title,
		Publisher: req.Publisher,
		Year:      req.Year,
		Link:      req.Link,
	})
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to create journal")
		return
	}
	c.JSON(http.StatusCreated, journal)
}

func (h *AdminHandler) DeleteJournal(c *gin.Context) {
	if err := h.contentService.DeleteJournal(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to delete journal")
		return
	}
	c.Status(http.StatusNoContent)
}

func findAnnouncement(anns []domain.Announcement, id string) *domain.Announcement {
	for i := range anns {
		if anns[i].ID == id {
			return &anns[i]
		}
	}
	return nil
}
