package domain

import "encoding/json"

// DefaultSessionsPerWeek is applied to every newly accepted plan.
const DefaultSessionsPerWeek = 3

// PlanStatus describes how a plan left the active slot.
type PlanStatus string

const (
	PlanCompleted PlanStatus = "Completed"
	PlanReplaced  PlanStatus = "Replaced"
)

// ExercisePlan is the one exercise program currently assigned to a user.
// Content is whatever the plan generator produced; the app treats it as
// opaque and passes it through to the client untouched.
type ExercisePlan struct {
	PlanTitle     string          `json:"planTitle"`
	DurationWeeks int             `json:"durationWeeks"`
	Content       json.RawMessage `json:"content,omitempty"`
}

// ProgramProgress is the mutable completion state paired 1:1 with an active
// plan. Invariants maintained by the progress service:
//
//	completedSessions <= totalWeeks * sessionsPerWeek
//	progressPercent == round(100 * completedSessions / (totalWeeks * sessionsPerWeek))
//	sum(weeklyCompletions) == completedSessions
type ProgramProgress struct {
	ProgressPercent   int   `json:"progressPercent"`
	CurrentWeek       int   `json:"currentWeek"` // 1-indexed
	CompletedSessions int   `json:"completedSessions"`
	TotalWeeks        int   `json:"totalWeeks"`
	SessionsPerWeek   int   `json:"sessionsPerWeek"`
	WeeklyCompletions []int `json:"weeklyCompletions"` // len == TotalWeeks
}

// TotalSessions is the session count at which the program completes.
func (p *ProgramProgress) TotalSessions() int {
	return p.TotalWeeks * p.SessionsPerWeek
}

// NewProgramProgress returns the fresh progress record installed alongside a
// newly accepted plan.
func NewProgramProgress(durationWeeks int) *ProgramProgress {
	return &ProgramProgress{
		ProgressPercent:   0,
		CurrentWeek:       1,
		CompletedSessions: 0,
		TotalWeeks:        durationWeeks,
		SessionsPerWeek:   DefaultSessionsPerWeek,
		WeeklyCompletions: make([]int, durationWeeks),
	}
}

// PlanHistoryItem is an immutable snapshot of a plan that ended, either by
// completion or by being superseded. Never mutated after creation.
type PlanHistoryItem struct {
	PlanTitle     string     `json:"planTitle"`
	DurationWeeks int        `json:"durationWeeks"`
	CompletedDate string     `json:"completedDate"` // RFC 3339
	Status        PlanStatus `json:"status"`
}
