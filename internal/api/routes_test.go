package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BILBIL17/physioconnect/internal/ai"
	"github.com/BILBIL17/physioconnect/internal/config"
	"github.com/BILBIL17/physioconnect/internal/kvstore"
	"github.com/BILBIL17/physioconnect/internal/service"
	"github.com/BILBIL17/physioconnect/internal/store"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "routes-test-secret"

// stubAdapter returns a canned reply or error without any network call.
type stubAdapter struct {
	reply string
	err   error
}

func (s *stubAdapter) Send(ctx context.Context, cfg ai.ProviderConfig, history []ai.Message) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func newTestRouter(t *testing.T, adapter ai.Adapter) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	records := store.NewRecordStore(kvstore.NewMemoryStore())
	users := service.NewUserService(records)

	hash, err := bcrypt.GenerateFromPassword([]byte("admin-pw"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	admin := config.AdminConfig{Email: "admin@physcio.com", PasswordHash: string(hash)}

	auth := service.NewAuthService(records, users, admin, testSecret, time.Hour)
	content := service.NewContentService(records)
	progress := service.NewProgressService(records)
	sessions := service.NewSessionService(records.Markers(), users, config.AIConfig{GeminiAPIKey: "gm-test"})
	sessions.Resume(context.Background())

	if adapter == nil {
		adapter = &stubAdapter{reply: "ok"}
	}

	router := gin.New()
	SetupRoutes(router, testSecret, auth, users, content, progress, sessions, adapter)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func registerAndLogin(t *testing.T, router *gin.Engine) (string, UserResponse) {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": "Alice", "email": "alice@x.com", "password": "pw123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", w.Code, w.Body.String())
	}
	resp := decodeJSON[LoginResponse](t, w)
	return resp.Token, resp.User
}

func adminToken(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/admin/login", "", gin.H{
		"email": "admin@physcio.com", "password": "admin-pw",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("admin login status = %d: %s", w.Code, w.Body.String())
	}
	return decodeJSON[map[string]string](t, w)["token"]
}

func TestRegisterLoginAndGetMe(t *testing.T) {
	router := newTestRouter(t, nil)
	token, user := registerAndLogin(t, router)

	if user.Email != "alice@x.com" || user.Age != "30" {
		t.Errorf("unexpected registered user: %+v", user)
	}

	w := doJSON(t, router, http.MethodGet, "/api/v1/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /me status = %d: %s", w.Code, w.Body.String())
	}
	me := decodeJSON[UserResponse](t, w)
	if me.ID != user.ID {
		t.Errorf("GET /me returned %q, want %q", me.ID, user.ID)
	}

	// Login again with a different password: accepted, email is the key.
	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "alice@x.com", "password": "not-the-password",
	})
	if w.Code != http.StatusOK {
		t.Errorf("login status = %d: %s", w.Code, w.Body.String())
	}
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	router := newTestRouter(t, nil)
	registerAndLogin(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": "Other", "email": "ALICE@X.COM", "password": "pw",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", w.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t, nil)

	w := doJSON(t, router, http.MethodGet, "/api/v1/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("GET /me without token = %d, want 401", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/me", "not-a-jwt", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("GET /me with garbage token = %d, want 401", w.Code)
	}
}

func TestUserTokenCannotReachAdminRoutes(t *testing.T) {
	router := newTestRouter(t, nil)
	token, _ := registerAndLogin(t, router)

	w := doJSON(t, router, http.MethodGet, "/api/v1/admin/users", token, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("user token on admin route = %d, want 403", w.Code)
	}
}

func TestPlanLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t, nil)
	token, _ := registerAndLogin(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/v1/me/plan", token, gin.H{
		"planTitle": "Knee Rehab", "durationWeeks": 1,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("accept plan status = %d: %s", w.Code, w.Body.String())
	}

	// 1 week x 3 sessions; the third completes the plan.
	for i := 0; i < 3; i++ {
		w = doJSON(t, router, http.MethodPost, "/api/v1/me/plan/sessions", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("log session %d status = %d: %s", i+1, w.Code, w.Body.String())
		}
	}
	final := decodeJSON[UserResponse](t, w)
	if final.ActivePlan != nil {
		t.Error("expected no active plan after completion")
	}

	// A fourth session has no plan to log against.
	w = doJSON(t, router, http.MethodPost, "/api/v1/me/plan/sessions", token, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("post-completion log status = %d, want 409", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/me/plan/history", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history status = %d", w.Code)
	}
}

func TestAdminManagesUsersAndContent(t *testing.T) {
	router := newTestRouter(t, nil)
	userToken, user := registerAndLogin(t, router)
	token := adminToken(t, router)

	// Premium toggle.
	w := doJSON(t, router, http.MethodPut, "/api/v1/admin/users/"+user.ID+"/premium", token, gin.H{"isPremium": true})
	if w.Code != http.StatusOK {
		t.Fatalf("set premium status = %d: %s", w.Code, w.Body.String())
	}

	// Message to the user, visible on their side.
	w = doJSON(t, router, http.MethodPost, "/api/v1/admin/users/"+user.ID+"/messages", token, gin.H{"text": "Keep it up"})
	if w.Code != http.StatusOK {
		t.Fatalf("send message status = %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/me", userToken, nil)
	me := decodeJSON[UserResponse](t, w)
	if !me.IsPremium {
		t.Error("premium flag not visible to the user")
	}
	if len(me.MessagesFromAdmin) != 1 || me.MessagesFromAdmin[0].Text != "Keep it up" {
		t.Errorf("admin message not visible: %+v", me.MessagesFromAdmin)
	}

	// Announcement appears on the public list with rendered HTML.
	w = doJSON(t, router, http.MethodPost, "/api/v1/admin/announcements", token, gin.H{
		"title": "Clinic closed Friday", "content": "We are **closed** this Friday.",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create announcement status = %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/announcements", "", nil)
	listing := decodeJSON[map[string][]AnnouncementResponse](t, w)
	anns := listing["announcements"]
	if len(anns) != 1 || anns[0].Title != "Clinic closed Friday" {
		t.Fatalf("unexpected announcement list: %+v", anns)
	}
	if anns[0].BodyHTML == "" || anns[0].BodyHTML == anns[0].Content {
		t.Errorf("expected rendered markdown, got %q", anns[0].BodyHTML)
	}
}

func TestChatEndpoint(t *testing.T) {
	router := newTestRouter(t, &stubAdapter{reply: "Rest and ice."})
	token, _ := registerAndLogin(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/v1/chat", token, gin.H{
		"messages": []gin.H{{"sender": "user", "text": "My back aches"}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("chat status = %d: %s", w.Code, w.Body.String())
	}
	resp := decodeJSON[map[string]string](t, w)
	if resp["reply"] != "Rest and ice." {
		t.Errorf("unexpected reply %q", resp["reply"])
	}
}

func TestChatNotConfigured(t *testing.T) {
	router := newTestRouter(t, &stubAdapter{err: ai.ErrNotConfigured})
	token, _ := registerAndLogin(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/v1/chat", token, gin.H{
		"messages": []gin.H{{"sender": "user", "text": "hi"}},
	})
	if w.Code != http.StatusPreconditionFailed {
		t.Errorf("chat without credential status = %d, want 412", w.Code)
	}
}

func TestClinicsEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)
	token, _ := registerAndLogin(t, router)

	w := doJSON(t, router, http.MethodGet, "/api/v1/clinics?lat=40.0&lng=-75.0", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("clinics status = %d: %s", w.Code, w.Body.String())
	}
}

func TestSessionNavigation(t *testing.T) {
	router := newTestRouter(t, nil)
	token, _ := registerAndLogin(t, router)

	// Registration drove the session to the dashboard.
	w := doJSON(t, router, http.MethodGet, "/api/v1/session", token, nil)
	state := decodeJSON[map[string]any](t, w)
	if state["view"] != "dashboard" {
		t.Errorf("view after register = %v, want dashboard", state["view"])
	}

	// Dashboard to admin is not a legal transition.
	w = doJSON(t, router, http.MethodPost, "/api/v1/session/navigate", token, gin.H{"view": "admin"})
	if w.Code != http.StatusConflict {
		t.Errorf("illegal navigation status = %d, want 409", w.Code)
	}

	// Logout returns the app to welcome.
	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/logout", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout status = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/api/v1/session", token, nil)
	state = decodeJSON[map[string]any](t, w)
	if state["view"] != "welcome" {
		t.Errorf("view after logout = %v, want welcome", state["view"])
	}
}
