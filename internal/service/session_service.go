package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/BILBIL17/physioconnect/internal/ai"
	"github.com/BILBIL17/physioconnect/internal/config"
	"github.com/BILBIL17/physioconnect/internal/kvstore"
	"github.com/BILBIL17/physioconnect/internal/store"
)

// View is the top-level navigation state of the app.
type View string

const (
	ViewWelcome   View = "welcome"
	ViewLogin     View = "login"
	ViewDashboard View = "dashboard"
	ViewAdmin     View = "admin"
)

var ErrInvalidTransition = errors.New("invalid navigation transition")

// navTransitions is the finite-state table: welcome -> login -> {dashboard|admin}.
// Logout is handled separately and always returns to welcome.
var navTransitions = map[View][]View{
	ViewWelcome:   {ViewLogin},
	ViewLogin:     {ViewDashboard, ViewAdmin, ViewWelcome},
	ViewDashboard: {ViewWelcome},
	ViewAdmin:     {ViewWelcome},
}

// SessionState is the whole navigation and settings state in one bag:
// current view, current user, admin flag and the AI provider configuration.
type SessionState struct {
	View          View              `json:"view"`
	UserID        string            `json:"userId,omitempty"`
	AdminLoggedIn bool              `json:"adminLoggedIn"`
	AI            ai.ProviderConfig `json:"ai"`
}

// SessionService owns the session state and persists a subset of it to the
// marker keys on every transition, so a restart resumes where the app was.
type SessionService interface {
	// Resume restores persisted session state on startup: ensure the guest
	// account, re-resolve a stored user id (logging out if it no longer
	// resolves), or restore an admin session from its flag.
	Resume(ctx context.Context) SessionState
	State() SessionState
	Navigate(ctx context.Context, to View) (SessionState, error)
	LoginUser(ctx context.Context, userID string)
	LoginAdmin(ctx context.Context)
	// Logout always returns to welcome and clears all session markers.
	Logout(ctx context.Context)
	// SaveAISettings persists the full provider credential set and selection.
	SaveAISettings(ctx context.Context, settings ai.ProviderConfig)
	// ActiveProvider resolves the provider configuration through the fallback
	// chain: selected provider credential, else the gemini credential (and
	// the fallback is persisted as the new selection), else empty.
	ActiveProvider(ctx context.Context) ai.ProviderConfig
}

type sessionService struct {
	mu      sync.Mutex
	markers kvstore.Store
	users   UserService
	state   SessionState
}

// NewSessionService seeds the AI credential set from configuration; values
// later saved through SaveAISettings override the seeds.
func NewSessionService(markers kvstore.Store, users UserService, seed config.AIConfig) SessionService {
	return &sessionService{
		markers: markers,
		users:   users,
		state: SessionState{
			View: ViewWelcome,
			AI: ai.ProviderConfig{
				Provider:         ai.Provider(seed.Provider),
				GeminiAPIKey:     seed.GeminiAPIKey,
				OpenAIAPIKey:     seed.OpenAIAPIKey,
				GroqAPIKey:       seed.GroqAPIKey,
				CustomAPIKey:     seed.CustomAPIKey,
				CustomAPIBaseURL: seed.CustomAPIBaseURL,
				CustomAPIModel:   seed.CustomAPIModel,
			},
		},
	}
}

func (s *sessionService) Resume(ctx context.Context) SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.users.EnsureGuestUser(ctx); err != nil {
		log.Printf("ERROR: Failed to ensure guest user: %v", err)
	}

	if v := s.marker(ctx, store.KeyCurrentView); v != "" {
		s.state.View = View(v)
	}
	s.loadAIMarkers(ctx)

	if userID := s.marker(ctx, store.KeyLoggedInUserID); userID != "" {
		if _, err := s.users.GetUser(ctx, userID); err == nil {
			s.state.UserID = userID
			if s.state.View == ViewWelcome || s.state.View == ViewLogin {
				s.setView(ctx, ViewDashboard)
			}
			return s.state
		}
		// The stored user no longer resolves; fall back to a clean logout.
		s.logout(ctx)
		return s.state
	}

	if s.marker(ctx, store.KeyAdminLoggedIn) == "true" {
		s.state.AdminLoggedIn = true
		if s.state.View != ViewAdmin {
			s.setView(ctx, ViewAdmin)
		}
	}
	return s.state
}

func (s *sessionService) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Navigate applies the transition table and persists the new view.
func (s *sessionService) Navigate(ctx context.Context, to View) (SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, allowed := range navTransitions[s.state.View] {
		if allowed == to {
			s.setView(ctx, to)
			return s.state, nil
		}
	}
	return s.state, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state.View, to)
}

func (s *sessionService) LoginUser(ctx context.Context, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.UserID = userID
	s.state.AdminLoggedIn = false
	s.setMarker(ctx, store.KeyLoggedInUserID, userID)
	s.setView(ctx, ViewDashboard)
}

func (s *sessionService) LoginAdmin(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.UserID = ""
	s.state.AdminLoggedIn = true
	s.setMarker(ctx, store.KeyAdminLoggedIn, "true")
	s.setView(ctx, ViewAdmin)
}

func (s *sessionService) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logout(ctx)
}

func (s *sessionService) logout(ctx context.Context) {
	s.state.UserID = ""
	s.state.AdminLoggedIn = false
	if err := s.markers.Delete(ctx, store.KeyLoggedInUserID); err != nil {
		log.Printf("ERROR: Failed to clear user marker: %v", err)
	}
	if err := s.markers.Delete(ctx, store.KeyAdminLoggedIn); err != nil {
		log.Printf("ERROR: Failed to clear admin marker: %v", err)
	}
	s.setView(ctx, ViewWelcome)
}

func (s *sessionService) SaveAISettings(ctx context.Context, settings ai.ProviderConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.AI = settings
	s.setMarker(ctx, store.KeyAIProvider, string(settings.Provider))
	s.setMarker(ctx, store.KeyGeminiAPIKey, settings.GeminiAPIKey)
	s.setMarker(ctx, store.KeyOpenAIAPIKey, settings.OpenAIAPIKey)
	s.setMarker(ctx, store.KeyGroqAPIKey, settings.GroqAPIKey)
	s.setMarker(ctx, store.KeyCustomAPIKey, settings.CustomAPIKey)
	s.setMarker(ctx, store.KeyCustomAPIBaseURL, settings.CustomAPIBaseURL)
	s.setMarker(ctx, store.KeyCustomAPIModel, settings.CustomAPIModel)
}

func (s *sessionService) ActiveProvider(ctx context.Context) ai.ProviderConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.state.AI
	if cfg.ActiveKey() != "" {
		return cfg
	}
	// Fall back to the default provider's credential when the selected one
	// has none, and persist that fallback as the new selection.
	if cfg.GeminiAPIKey != "" {
		if cfg.Provider != ai.ProviderGemini {
			cfg.Provider = ai.ProviderGemini
			s.state.AI.Provider = ai.ProviderGemini
			s.setMarker(ctx, store.KeyAIProvider, string(ai.ProviderGemini))
		}
		return cfg
	}
	// No credential anywhere: AI calls fail at the adapter boundary, not here.
	cfg.Provider = ai.ProviderGemini
	return cfg
}

// --- marker helpers ---

func (s *sessionService) marker(ctx context.Context, key string) string {
	value, err := s.markers.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, kvstore.ErrKeyNotFound) {
			log.Printf("ERROR: Failed to read session marker %s: %v", key, err)
		}
		return ""
	}
	return string(value)
}

func (s *sessionService) setMarker(ctx context.Context, key, value string) {
	if err := s.markers.Set(ctx, key, []byte(value)); err != nil {
		log.Printf("ERROR: Failed to persist session marker %s: %v", key, err)
	}
}

func (s *sessionService) setView(ctx context.Context, v View) {
	s.state.View = v
	s.setMarker(ctx, store.KeyCurrentView, string(v))
}

func (s *sessionService) loadAIMarkers(ctx context.Context) {
	if v := s.marker(ctx, store.KeyAIProvider); v != "" {
		s.state.AI.Provider = ai.Provider(v)
	}
	if v := s.marker(ctx, store.KeyGeminiAPIKey); v != "" {
		s.state.AI.GeminiAPIKey = v
	}
	if v := s.marker(ctx, store.KeyOpenAIAPIKey); v != "" {
		s.state.AI.OpenAIAPIKey = v
	}
	if v := s.marker(ctx, store.KeyGroqAPIKey); v != "" {
		s.state.AI.GroqAPIKey = v
	}
	if v := s.marker(ctx, store.KeyCustomAPIKey); v != "" {
		s.state.AI.CustomAPIKey = v
	}
	if v := s.marker(ctx, store.KeyCustomAPIBaseURL); v != "" {
		s.state.AI.CustomAPIBaseURL = v
	}
	if v := s.marker(ctx, store.KeyCustomAPIModel); v != "" {
		s.state.AI.CustomAPIModel = v
	}
}
