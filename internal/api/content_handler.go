package api

import (
	"bytes"
	"log"
	"net/http"

	"github.com/BILBIL17/physioconnect/internal/domain"
	"github.com/BILBIL17/physioconnect/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// mdRenderer is a goldmark instance configured for safe HTML output. Raw
// HTML in announcement markdown is escaped, preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// ContentHandler serves the read side of announcements and journals.
type ContentHandler struct {
	contentService service.ContentService
}

func NewContentHandler(contentService service.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

// AnnouncementResponse carries both the markdown source and the rendered
// HTML so clients can show either.
type AnnouncementResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	BodyHTML  string `json:"bodyHtml"`
	CreatedAt string `json:"createdAt"`
}

// ListAnnouncements returns announcements newest-first.
func (h *ContentHandler) ListAnnouncements(c *gin.Context) {
	anns := h.contentService.ListAnnouncements(c.Request.Context())
	out := make([]AnnouncementResponse, len(anns))
	for i, a := range anns {
		out[i] = MapAnnouncementToResponse(a)
	}
	c.JSON(http.StatusOK, gin.H{"announcements": out})
}

// ListJournals returns journals alphabetically by title.
func (h *ContentHandler) ListJournals(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"journals": h.contentService.ListJournals(c.Request.Context())})
}

// MapAnnouncementToResponse renders the markdown body alongside the source.
func MapAnnouncementToResponse(a domain.Announcement) AnnouncementResponse {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(a.Content), &buf); err != nil {
		log.Printf("WARN: Failed to render announcement %s: %v", a.ID, err)
		buf.Reset()
	}
	return AnnouncementResponse{
		ID:        a.ID,
		Title:     a.Title,
		Content:   a.Content,
		BodyHTML:  buf.String(),
		CreatedAt: a.CreatedAt,
	}
}
