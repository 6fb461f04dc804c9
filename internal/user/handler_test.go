package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/zorlakov/devconnect/internal/alerts"
	"github.com/zorlakov/devconnect/internal/middleware"
	"github.com/zorlakov/devconnect/internal/validate"
)

// newTestApp wires the handler behind a fake auth middleware that trusts the
// X-User-ID header, so tests do not need to mint real tokens.
func newTestApp(repo Repository) *echo.Echo {
	e := echo.New()
	e.Validator = validate.New()

	h := NewHandler(repo, alerts.Nop{}, "testsecret")

	e.POST("/api/users", h.Register)
	e.POST("/api/auth", h.Login)

	g := e.Group("", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if v := c.Request().Header.Get("X-User-ID"); v != "" {
				c.Set(middleware.UserIDKey, v)
			}
			return next(c)
		}
	})
	g.GET("/api/auth", h.Me)
	g.POST("/api/users/:id/follow", h.Follow)
	g.DELETE("/api/users/:id/unfollow", h.Unfollow)
	g.GET("/api/users/:id/followers", h.Followers)
	g.GET("/api/users/:id/following", h.Following)
	return e
}

func seedUser(t *testing.T, name, email string) User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	return User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Password:  string(hashed),
		Avatar:    "https://www.gravatar.com/avatar/x?s=200&r=pg&d=mm",
		CreatedAt: time.Now().UTC(),
	}
}

func doJSON(e *echo.Echo, method, path, body, userID string) *httptest.ResponseRecorder {
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
	e.ServeHTTP(rec, req)
	return rec
}

func TestRegisterValidationEnumeratesAllRules(t *testing.T) {
	e := newTestApp(NewInMemoryRepository(nil))

	rec := doJSON(e, http.MethodPost, "/api/users", `{"email":"not-an-email","password":"abc"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var body struct {
		Errors []struct {
			Field string `json:"field"`
			Msg   string `json:"msg"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Errors) != 3 {
		t.Fatalf("expected 3 violations (name, email, password), got %d: %+v", len(body.Errors), body.Errors)
	}
	msgs := rec.Body.String()
	if !strings.Contains(msgs, "Name is required") {
		t.Errorf("missing name message: %s", msgs)
	}
	if !strings.Contains(msgs, "Please include a valid email") {
		t.Errorf("missing email message: %s", msgs)
	}
	if !strings.Contains(msgs, "Please enter a password with 6 or more characters") {
		t.Errorf("missing password message: %s", msgs)
	}
}

func TestRegisterDuplicateEmailCreatesNothing(t *testing.T) {
	repo := NewInMemoryRepository([]User{seedUser(t, "Jane", "jane@example.com")})
	e := newTestApp(repo)

	rec := doJSON(e, http.MethodPost, "/api/users",
		`{"name":"Jane Again","email":"jane@example.com","password":"secret1"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "user already exists") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected no second document, have %d", len(repo.users))
	}
}

func TestRegisterReturnsToken(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	e := newTestApp(repo)

	rec := doJSON(e, http.MethodPost, "/api/users",
		`{"name":"Jane","email":"jane@example.com","password":"secret1"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Token == "" {
		t.Fatal("expected a signed token")
	}

	created, err := repo.GetByEmail(context.Background(), "jane@example.com")
	if err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if created.Avatar == "" || !strings.Contains(created.Avatar, "gravatar.com") {
		t.Fatalf("expected derived avatar, got %q", created.Avatar)
	}
	if created.Password == "secret1" {
		t.Fatal("password stored in plain text")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	repo := NewInMemoryRepository([]User{seedUser(t, "Jane", "jane@example.com")})
	e := newTestApp(repo)

	rec := doJSON(e, http.MethodPost, "/api/auth",
		`{"email":"jane@example.com","password":"wrongpass"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = doJSON(e, http.MethodPost, "/api/auth",
		`{"email":"nobody@example.com","password":"password1"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown email, got %d", rec.Code)
	}
}

func TestLoginSuccess(t *testing.T) {
	repo := NewInMemoryRepository([]User{seedUser(t, "Jane", "jane@example.com")})
	e := newTestApp(repo)

	rec := doJSON(e, http.MethodPost, "/api/auth",
		`{"email":"jane@example.com","password":"password1"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "token") {
		t.Fatalf("expected token in body: %s", rec.Body.String())
	}
}

func TestFollowUnfollowRoundTrip(t *testing.T) {
	alice := seedUser(t, "Alice", "alice@example.com")
	bob := seedUser(t, "Bob", "bob@example.com")
	repo := NewInMemoryRepository([]User{alice, bob})
	e := newTestApp(repo)

	rec := doJSON(e, http.MethodPost, "/api/users/"+bob.ID.String()+"/follow", "", alice.ID.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("follow failed: %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Bob") {
		t.Fatalf("expected Bob in following list: %s", rec.Body.String())
	}

	followers, err := repo.Followers(context.Background(), bob.ID)
	if err != nil || len(followers) != 1 {
		t.Fatalf("expected one follower for bob, got %v (%v)", followers, err)
	}

	rec = doJSON(e, http.MethodDelete, "/api/users/"+bob.ID.String()+"/unfollow", "", alice.ID.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("unfollow failed: %d %s", rec.Code, rec.Body.String())
	}

	followers, _ = repo.Followers(context.Background(), bob.ID)
	following, _ := repo.Following(context.Background(), alice.ID)
	if len(followers) != 0 || len(following) != 0 {
		t.Fatalf("expected graph restored, followers=%v following=%v", followers, following)
	}
}

func TestFollowDuplicateRejected(t *testing.T) {
	alice := seedUser(t, "Alice", "alice@example.com")
	bob := seedUser(t, "Bob", "bob@example.com")
	repo := NewInMemoryRepository([]User{alice, bob})
	e := newTestApp(repo)

	if rec := doJSON(e, http.MethodPost, "/api/users/"+bob.ID.String()+"/follow", "", alice.ID.String()); rec.Code != http.StatusOK {
		t.Fatalf("first follow failed: %d", rec.Code)
	}
	rec := doJSON(e, http.MethodPost, "/api/users/"+bob.ID.String()+"/follow", "", alice.ID.String())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on duplicate follow, got %d", rec.Code)
	}
}

func TestFollowMissingTarget(t *testing.T) {
	alice := seedUser(t, "Alice", "alice@example.com")
	repo := NewInMemoryRepository([]User{alice})
	e := newTestApp(repo)

	rec := doJSON(e, http.MethodPost, "/api/users/"+uuid.NewString()+"/follow", "", alice.ID.String())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing target, got %d", rec.Code)
	}

	// Malformed ids are normalized, never a server fault.
	rec = doJSON(e, http.MethodPost, "/api/users/not-a-uuid/follow", "", alice.ID.String())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
	}
}

func TestUnfollowWithoutFollowRejected(t *testing.T) {
	alice := seedUser(t, "Alice", "alice@example.com")
	bob := seedUser(t, "Bob", "bob@example.com")
	repo := NewInMemoryRepository([]User{alice, bob})
	e := newTestApp(repo)

	rec := doJSON(e, http.MethodDelete, "/api/users/"+bob.ID.String()+"/unfollow", "", alice.ID.String())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSelfFollowRejected(t *testing.T) {
	alice := seedUser(t, "Alice", "alice@example.com")
	repo := NewInMemoryRepository([]User{alice})
	e := newTestApp(repo)

	rec := doJSON(e, http.MethodPost, "/api/users/"+alice.ID.String()+"/follow", "", alice.ID.String())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on self follow, got %d", rec.Code)
	}
}

func TestMeOmitsPassword(t *testing.T) {
	alice := seedUser(t, "Alice", "alice@example.com")
	repo := NewInMemoryRepository([]User{alice})
	e := newTestApp(repo)

	rec := doJSON(e, http.MethodGet, "/api/auth", "", alice.ID.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("password leaked: %s", rec.Body.String())
	}
}
