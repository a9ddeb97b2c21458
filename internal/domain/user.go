package domain

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// GuestUserID is the fixed identifier of the first-run guest account.
const GuestUserID = "guest_user"

// User represents a registered (or guest) account in the app.
// The entire record is replaced wholesale on every update; there is no
// field-level merge and no delete operation.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"` // De-facto unique login key, compared case-insensitively

	// Demo-grade plaintext credential. Never exposed via JSON and never
	// actually verified on login (see DESIGN.md).
	Password string `json:"-"`

	// Biometric fields are numeric-as-string; records predating the server
	// carry them that way.
	Age    string `json:"age"`
	Weight string `json:"weight"`
	Height string `json:"height"`

	IsPremium bool `json:"isPremium"`

	// At most one active plan and one progress record per user.
	ActivePlan   *ExercisePlan    `json:"activePlan"`
	ProgressData *ProgramProgress `json:"progressData"`

	PlanHistory       []PlanHistoryItem `json:"planHistory"`
	MessagesFromAdmin []AdminMessage    `json:"messagesFromAdmin"`
}

// AdminMessage is a note sent by the back-office to a single user. Appended
// only by the admin service; the owning user may only flip the read flag.
type AdminMessage struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"` // RFC 3339
	Read      bool   `json:"read"`
}

// NewDefaultUser returns the default-user template keyed by id/name/email.
// It is used both to materialize new accounts and to backfill missing fields
// on records written by older versions of the app.
func NewDefaultUser(id, name, email string) User {
	return User{
		ID:                id,
		Name:              name,
		Email:             email,
		Age:               "30",
		Weight:            "70",
		Height:            "175",
		IsPremium:         false,
		ActivePlan:        nil,
		ProgressData:      nil,
		PlanHistory:       []PlanHistoryItem{},
		MessagesFromAdmin: []AdminMessage{},
	}
}

// Backfill merges u onto the default template so that records persisted by
// older schema versions gain the fields they are missing. Populated fields
// always win over the template; only absent ones are defaulted.
func (u User) Backfill() User {
	merged := NewDefaultUser(u.ID, u.Name, u.Email)
	merged.Password = u.Password
	if u.Age != "" {
		merged.Age = u.Age
	}
	if u.Weight != "" {
		merged.Weight = u.Weight
	}
	if u.Height != "" {
		merged.Height = u.Height
	}
	merged.IsPremium = u.IsPremium
	merged.ActivePlan = u.ActivePlan
	merged.ProgressData = u.ProgressData
	if u.PlanHistory != nil {
		merged.PlanHistory = u.PlanHistory
	}
	if u.MessagesFromAdmin != nil {
		merged.MessagesFromAdmin = u.MessagesFromAdmin
	}
	return merged
}

func (u *User) IsGuest() bool {
	return u.ID == GuestUserID
}
