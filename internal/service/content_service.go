package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/BILBIL17/physioconnect/internal/domain"
	"github.com/BILBIL17/physioconnect/internal/store"

	"github.com/google/uuid"
)

// --- Error Definitions ---
// Journal misses are silent no-ops (delete-only collection); announcements
// surface a miss on update because the back-office edits them in place.
var ErrAnnouncementNotFound = errors.New("announcement not found")

// --- Service Interface ---
// ContentService is plain CRUD over the announcement and journal collections.
// It trusts its input; non-empty validation happens at the API boundary.
type ContentService interface {
	ListAnnouncements(ctx context.Context) []domain.Announcement
	AddAnnouncement(ctx context.Context, title, content string) (*domain.Announcement, error)
	UpdateAnnouncement(ctx context.Context, ann domain.Announcement) error
	DeleteAnnouncement(ctx context.Context, id string) error

	ListJournals(ctx context.Context) []domain.Journal
	AddJournal(ctx context.Context, j domain.Journal) (*domain.Journal, error)
	DeleteJournal(ctx context.Context, id string) error
}

type contentService struct {
	records *store.RecordStore
	now     func() time.Time
}

func NewContentService(records *store.RecordStore) ContentService {
	return &contentService{records: records, now: time.Now}
}

// ListAnnouncements returns announcements newest-first by creation timestamp.
func (s *contentService) ListAnnouncements(ctx context.Context) []domain.Announcement {
	doc := s.records.Load(ctx)
	anns := make([]domain.Announcement, len(doc.Announcements))
	copy(anns, doc.Announcements)
	sort.SliceStable(anns, func(i, j int) bool {
		return anns[i].CreatedAt > anns[j].CreatedAt
	})
	return anns
}

func (s *contentService) AddAnnouncement(ctx context.Context, title, content string) (*domain.Announcement, error) {
	ann := domain.Announcement{
		ID:        "ann_" + uuid.NewString(),
		Title:     title,
		Content:   content,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
	}
	err := s.records.Update(ctx, func(doc *domain.Document) error {
		doc.Announcements = append([]domain.Announcement{ann}, doc.Announcements...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ann, nil
}

// UpdateAnnouncement replaces the stored announcement matching ann.ID
// wholesale.
func (s *contentService) UpdateAnnouncement(ctx context.Context, ann domain.Announcement) error {
	return s.records.Update(ctx, func(doc *domain.Document) error {
		for i := range doc.Announcements {
			if doc.Announcements[i].ID == ann.ID {
				doc.Announcements[i] = ann
				return nil
			}
		}
		return ErrAnnouncementNotFound
	})
}

func (s *contentService) DeleteAnnouncement(ctx context.Context, id string) error {
	return s.records.Update(ctx, func(doc *domain.Document) error {
		kept := doc.Announcements[:0]
		for _, a := range doc.Announcements {
			if a.ID != id {
				kept = append(kept, a)
			}
		}
		doc.Announcements = kept
		return nil
	})
}

// ListJournals returns journals alphabetically by title.
func (s *contentService) ListJournals(ctx context.Context) []domain.Journal {
	doc := s.records.Load(ctx)
	journals := make([]domain.Journal, len(doc.Journals))
	copy(journals, doc.Journals)
	sort.SliceStable(journals, func(i, j int) bool {
		return journals[i].Title < journals[j].Title
	})
	return journals
}

func (s *contentService) AddJournal(ctx context.Context, j domain.Journal) (*domain.Journal, error) {
	j.ID = "journal_" + uuid.NewString()
	err := s.records.Update(ctx, func(doc *domain.Document) error {
		doc.Journals = append([]domain.Journal{j}, doc.Journals...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *contentService) DeleteJournal(ctx context.Context, id string) error {
	return s.records.Update(ctx, func(doc *domain.Document) error {
		kept := doc.Journals[:0]
		for _, j := range doc.Journals {
			if j.ID != id {
				kept = append(kept, j)
			}
		}
		doc.Journals = kept
		return nil
	})
}
