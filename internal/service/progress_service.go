package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/BILBIL17/physioconnect/internal/domain"
	"github.com/BILBIL17/physioconnect/internal/store"
)

// --- Error Definitions ---
var (
	ErrNoActivePlan    = errors.New("no active exercise plan")
	ErrProgramComplete = errors.New("this program is already complete")
)

// --- Service Interface ---
type ProgressService interface {
	// AcceptPlan installs plan as the user's active program. Any plan still
	// attached is archived first with status Replaced.
	AcceptPlan(ctx context.Context, userID string, plan domain.ExercisePlan) (*domain.User, error)
	// LogSession records one completed session. Completing the final session
	// archives the plan with status Completed and returns the user to the
	// no-plan state.
	LogSession(ctx context.Context, userID string) (*domain.User, error)
	// History returns the user's plan history, oldest first.
	History(ctx context.Context, userID string) ([]domain.PlanHistoryItem, error)
}

type progressService struct {
	records *store.RecordStore
	now     func() time.Time
}

func NewProgressService(records *store.RecordStore) ProgressService {
	return &progressService{records: records, now: time.Now}
}

func (s *progressService) AcceptPlan(ctx context.Context, userID string, plan domain.ExercisePlan) (*domain.User, error) {
	var result domain.User
	err := s.records.Update(ctx, func(doc *domain.Document) error {
		u := doc.FindUser(userID)
		if u == nil {
			return ErrUserNotFound
		}
		filled := u.Backfill()

		// Archive whatever is still attached, whether mid-flight or stale.
		if filled.ActivePlan != nil {
			filled.PlanHistory = append(filled.PlanHistory, domain.PlanHistoryItem{
				PlanTitle:     filled.ActivePlan.PlanTitle,
				DurationWeeks: filled.ActivePlan.DurationWeeks,
				CompletedDate: s.now().UTC().Format(time.RFC3339),
				Status:        domain.PlanReplaced,
			})
		}

		installed := plan
		filled.ActivePlan = &installed
		filled.ProgressData = domain.NewProgramProgress(plan.DurationWeeks)

		*u = filled
		result = filled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *progressService) LogSession(ctx context.Context, userID string) (*domain.User, error) {
	var result domain.User
	err := s.records.Update(ctx, func(doc *domain.Document) error {
		u := doc.FindUser(userID)
		if u == nil {
			return ErrUserNotFound
		}
		filled := u.Backfill()

		progress := filled.ProgressData
		if filled.ActivePlan == nil || progress == nil {
			return ErrNoActivePlan
		}

		total := progress.TotalSessions()
		if progress.CompletedSessions >= total {
			return ErrProgramComplete
		}

		before := progress.CompletedSessions
		done := before + 1

		// Completing the final session archives the plan and clears the
		// active slot; the user returns to the no-plan state.
		if done >= total {
			filled.PlanHistory = append(filled.PlanHistory, domain.PlanHistoryItem{
				PlanTitle:     filled.ActivePlan.PlanTitle,
				DurationWeeks: filled.ActivePlan.DurationWeeks,
				CompletedDate: s.now().UTC().Format(time.RFC3339),
				Status:        domain.PlanCompleted,
			})
			filled.ActivePlan = nil
			filled.ProgressData = nil

			*u = filled
			result = filled
			return nil
		}

		progress.CompletedSessions = done
		progress.ProgressPercent = int(math.Round(float64(done) / float64(total) * 100))

		// Guards below cover sessionsPerWeek=0 or malformed weeklyCompletions
		// from older data.
		if progress.SessionsPerWeek > 0 {
			progress.CurrentWeek = min(progress.TotalWeeks, done/progress.SessionsPerWeek+1)

			// The session just logged belongs to the week the user was in
			// before the increment.
			weekIndex := before / progress.SessionsPerWeek
			if weekIndex < len(progress.WeeklyCompletions) {
				progress.WeeklyCompletions[weekIndex] = before - weekIndex*progress.SessionsPerWeek + 1
			}
		}

		*u = filled
		result = filled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *progressService) History(ctx context.Context, userID string) ([]domain.PlanHistoryItem, error) {
	doc := s.records.Load(ctx)
	u := doc.FindUser(userID)
	if u == nil {
		return nil, ErrUserNotFound
	}
	filled := u.Backfill()
	return filled.PlanHistory, nil
}
