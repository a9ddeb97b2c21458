package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/BILBIL17/physioconnect/internal/domain"
	"github.com/BILBIL17/physioconnect/internal/store"

	"github.com/google/uuid"
)

// --- Error Definitions ---
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("an account with this email already exists")
)

// --- Service Interface ---
type UserService interface {
	ListUsers(ctx context.Context) []domain.User
	GetUser(ctx context.Context, id string) (*domain.User, error)
	RegisterUser(ctx context.Context, name, email, password string) (*domain.User, error)
	UpdateUser(ctx context.Context, user domain.User) error
	EnsureGuestUser(ctx context.Context) error
	SetPremium(ctx context.Context, id string, premium bool) (*domain.User, error)
	SendAdminMessage(ctx context.Context, id, text string) (*domain.User, error)
	MarkMessageRead(ctx context.Context, userID, messageID string) (*domain.User, error)
}

// userService is the directory over the users collection of the document.
type userService struct {
	records *store.RecordStore
}

func NewUserService(records *store.RecordStore) UserService {
	return &userService{records: records}
}

// ListUsers returns all user records. Order is whatever the document holds.
func (s *userService) ListUsers(ctx context.Context) []domain.User {
	doc := s.records.Load(ctx)
	users := make([]domain.User, len(doc.Users))
	for i, u := range doc.Users {
		users[i] = u.Backfill()
	}
	return users
}

// GetUser returns the record for id with any missing fields backfilled to
// the default template, or ErrUserNotFound.
func (s *userService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	doc := s.records.Load(ctx)
	u := doc.FindUser(id)
	if u == nil {
		return nil, ErrUserNotFound
	}
	filled := u.Backfill()
	return &filled, nil
}

// RegisterUser creates a new account. The email must not collide with an
// existing one under case-insensitive comparison; uniqueness is enforced
// here only, not on later updates.
func (s *userService) RegisterUser(ctx context.Context, name, email, password string) (*domain.User, error) {
	normalized := strings.ToLower(email)
	var created domain.User

	err := s.records.Update(ctx, func(doc *domain.Document) error {
		for _, u := range doc.Users {
			if strings.ToLower(u.Email) == normalized {
				return ErrEmailExists
			}
		}
		created = domain.NewDefaultUser("user_"+uuid.NewString(), name, email)
		created.Password = password // stored as given, demo-grade
		doc.Users = append(doc.Users, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateUser replaces the full record matching user.ID. An absent id is
// logged and reported as ErrUserNotFound; callers treat the failure as soft.
func (s *userService) UpdateUser(ctx context.Context, user domain.User) error {
	err := s.records.Update(ctx, func(doc *domain.Document) error {
		existing := doc.FindUser(user.ID)
		if existing == nil {
			return ErrUserNotFound
		}
		*existing = user
		return nil
	})
	if errors.Is(err, ErrUserNotFound) {
		log.Printf("ERROR: User not found for update: %s", user.ID)
	}
	return err
}

// EnsureGuestUser creates the fixed-id guest record on first run only.
// Idempotent.
func (s *userService) EnsureGuestUser(ctx context.Context) error {
	return s.records.Update(ctx, func(doc *domain.Document) error {
		if doc.FindUser(domain.GuestUserID) != nil {
			return nil
		}
		doc.Users = append(doc.Users, domain.NewDefaultUser(domain.GuestUserID, "Guest User", "guest@physcio.com"))
		return nil
	})
}

// SetPremium flips the premium flag on a user and returns the updated record.
func (s *userService) SetPremium(ctx context.Context, id string, premium bool) (*domain.User, error) {
	return s.mutateUser(ctx, id, func(u *domain.User) {
		u.IsPremium = premium
	})
}

// SendAdminMessage appends an unread back-office message to the user.
func (s *userService) SendAdminMessage(ctx context.Context, id, text string) (*domain.User, error) {
	return s.mutateUser(ctx, id, func(u *domain.User) {
		u.MessagesFromAdmin = append(u.MessagesFromAdmin, domain.AdminMessage{
			ID:        "msg_" + uuid.NewString(),
			Text:      text,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Read:      false,
		})
	})
}

// MarkMessageRead flips the read flag on one of the user's messages. Flipping
// an already-read or unknown message is a no-op.
func (s *userService) MarkMessageRead(ctx context.Context, userID, messageID string) (*domain.User, error) {
	return s.mutateUser(ctx, userID, func(u *domain.User) {
		for i := range u.MessagesFromAdmin {
			if u.MessagesFromAdmin[i].ID == messageID {
				u.MessagesFromAdmin[i].Read = true
				return
			}
		}
	})
}

// mutateUser applies fn to the backfilled record for id under the store's
// single-writer lock and returns the persisted result.
func (s *userService) mutateUser(ctx context.Context, id string, fn func(u *domain.User)) (*domain.User, error) {
	var result domain.User
	err := s.records.Update(ctx, func(doc *domain.Document) error {
		existing := doc.FindUser(id)
		if existing == nil {
			return ErrUserNotFound
		}
		filled := existing.Backfill()
		fn(&filled)
		*existing = filled
		result = filled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
