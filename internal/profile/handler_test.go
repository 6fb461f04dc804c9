package profile

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/zorlakov/devconnect/internal/middleware"
	"github.com/zorlakov/devconnect/internal/user"
	"github.com/zorlakov/devconnect/internal/validate"
)

type testEnv struct {
	e     *echo.Echo
	alice user.User
	bob   user.User
	users *user.InMemoryRepository
}

func newTestEnv(t *testing.T, github *GithubClient) *testEnv {
	t.Helper()

	alice := user.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com", Avatar: "a.png"}
	bob := user.User{ID: uuid.New(), Name: "Bob", Email: "bob@example.com", Avatar: "b.png"}
	users := user.NewInMemoryRepository([]user.User{alice, bob})

	repo := NewInMemoryRepository(func(id uuid.UUID) (string, string) {
		if id == alice.ID {
			return alice.Name, alice.Avatar
		}
		return bob.Name, bob.Avatar
	})

	h := NewHandler(repo, users, github)

	e := echo.New()
	e.Validator = validate.New()
	g := e.Group("", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if v := c.Request().Header.Get("X-User-ID"); v != "" {
				c.Set(middleware.UserIDKey, v)
			}
			return next(c)
		}
	})
	g.GET("/api/profile/me", h.Me)
	g.POST("/api/profile", h.Upsert)
	g.GET("/api/profile", h.List)
	g.GET("/api/profile/user/:user_id", h.GetByUserID)
	g.DELETE("/api/profile", h.DeleteAccount)
	g.PUT("/api/profile/experience", h.AddExperience)
	g.DELETE("/api/profile/experience/:exp_id", h.DeleteExperience)
	g.PUT("/api/profile/education", h.AddEducation)
	g.DELETE("/api/profile/education/:edu_id", h.DeleteEducation)
	g.GET("/api/profile/github/:username", h.Github)

	return &testEnv{e: e, alice: alice, bob: bob, users: users}
}

func (env *testEnv) do(method, path, body, userID string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func TestMeWithoutProfile(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodGet, "/api/profile/me", "", env.alice.ID.String())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "there is no profile for this user") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestUpsertSplitsSkills(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/api/profile",
		`{"status":"Developer","skills":"Go, SQL ,  HTML"}`, env.alice.ID.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert failed: %d %s", rec.Code, rec.Body.String())
	}

	var p Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(p.Skills) != 3 || p.Skills[0] != "Go" || p.Skills[1] != "SQL" || p.Skills[2] != "HTML" {
		t.Fatalf("unexpected skills: %+v", p.Skills)
	}
	if p.User.Name != "Alice" {
		t.Fatalf("expected owner summary, got %+v", p.User)
	}
}

func TestUpsertRequiresStatusAndSkills(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/api/profile", `{}`, env.alice.ID.String())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Status is required") || !strings.Contains(body, "Skills is required") {
		t.Fatalf("expected both rules enumerated: %s", body)
	}
}

func TestUpsertIsIdempotentPerUser(t *testing.T) {
	env := newTestEnv(t, nil)

	env.do(http.MethodPost, "/api/profile", `{"status":"Developer","skills":"Go"}`, env.alice.ID.String())
	env.do(http.MethodPost, "/api/profile", `{"status":"Senior Developer","skills":"Go,Rust"}`, env.alice.ID.String())

	rec := env.do(http.MethodGet, "/api/profile", "", "")
	var profiles []Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &profiles); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("expected one profile after two upserts, got %d", len(profiles))
	}
	if profiles[0].Status != "Senior Developer" {
		t.Fatalf("expected updated status, got %s", profiles[0].Status)
	}
}

func TestGetByUserIDMalformedAndMissing(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodGet, "/api/profile/user/not-a-uuid", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
	}
	rec = env.do(http.MethodGet, "/api/profile/user/"+uuid.NewString(), "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing profile, got %d", rec.Code)
	}
}

func TestExperienceLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(http.MethodPost, "/api/profile", `{"status":"Developer","skills":"Go"}`, env.alice.ID.String())

	rec := env.do(http.MethodPut, "/api/profile/experience",
		`{"title":"Engineer","company":"Acme","from":"2020-01-15"}`, env.alice.ID.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("add experience failed: %d %s", rec.Code, rec.Body.String())
	}

	var p Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(p.Experience) != 1 || p.Experience[0].Title != "Engineer" {
		t.Fatalf("unexpected experience: %+v", p.Experience)
	}
	expID := p.Experience[0].ID

	rec = env.do(http.MethodDelete, "/api/profile/experience/"+uuid.NewString(), "", env.alice.ID.String())
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown entry, got %d", rec.Code)
	}

	rec = env.do(http.MethodDelete, "/api/profile/experience/"+expID.String(), "", env.alice.ID.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("delete experience failed: %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(p.Experience) != 0 {
		t.Fatalf("expected no experience left, got %+v", p.Experience)
	}
}

func TestExperienceRejectsBadDate(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(http.MethodPost, "/api/profile", `{"status":"Developer","skills":"Go"}`, env.alice.ID.String())

	rec := env.do(http.MethodPut, "/api/profile/experience",
		`{"title":"Engineer","company":"Acme","from":"January 2020"}`, env.alice.ID.String())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", rec.Code)
	}
}

func TestEducationValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(http.MethodPost, "/api/profile", `{"status":"Developer","skills":"Go"}`, env.alice.ID.String())

	rec := env.do(http.MethodPut, "/api/profile/education", `{"school":"MIT"}`, env.alice.ID.String())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Degree is required") || !strings.Contains(body, "Fieldofstudy is required") {
		t.Fatalf("expected missing rules enumerated: %s", body)
	}
}

func TestDeleteAccountRemovesUser(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(http.MethodPost, "/api/profile", `{"status":"Developer","skills":"Go"}`, env.alice.ID.String())

	rec := env.do(http.MethodDelete, "/api/profile", "", env.alice.ID.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("delete account failed: %d", rec.Code)
	}

	rec = env.do(http.MethodDelete, "/api/profile", "", env.alice.ID.String())
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for already deleted user, got %d", rec.Code)
	}
}
