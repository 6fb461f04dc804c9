package user

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/zorlakov/devconnect/internal/alerts"
	"github.com/zorlakov/devconnect/internal/gravatar"
	"github.com/zorlakov/devconnect/internal/httperr"
	"github.com/zorlakov/devconnect/internal/middleware"
	"github.com/zorlakov/devconnect/internal/token"
	"github.com/zorlakov/devconnect/internal/validate"
)

type Handler struct {
	repo      Repository
	notifier  alerts.Notifier
	jwtSecret string
}

func NewHandler(repo Repository, notifier alerts.Notifier, jwtSecret string) *Handler {
	return &Handler{repo: repo, notifier: notifier, jwtSecret: jwtSecret}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// Register creates a new account and returns a signed credential.
// POST /api/users
func (h *Handler) Register(c echo.Context) error {
	req := new(RegisterRequest)
	if err := c.Bind(req); err != nil {
		return httperr.BadRequest(c, "invalid request")
	}
	if err := c.Validate(req); err != nil {
		var verrs *validate.Errors
		if errors.As(err, &verrs) {
			return httperr.Validation(c, verrs.Fields)
		}
		return httperr.Internal(c, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return httperr.Internal(c, err)
	}

	u := User{
		ID:        uuid.New(),
		Name:      req.Name,
		Email:     req.Email,
		Password:  string(hashed),
		Avatar:    gravatar.URL(req.Email),
		CreatedAt: time.Now().UTC(),
	}

	created, err := h.repo.Create(c.Request().Context(), u)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return httperr.BadRequest(c, "user already exists")
		}
		return httperr.Internal(c, err)
	}

	signed, err := token.Sign(created.ID.String(), h.jwtSecret)
	if err != nil {
		return httperr.Internal(c, err)
	}

	if err := h.notifier.Welcome(created.ID, created.Name, created.Email); err != nil {
		log.Printf("welcome notification for %s failed: %v", created.ID, err)
	}

	return c.JSON(http.StatusOK, TokenResponse{Token: signed})
}

// Login verifies credentials and returns a signed credential.
// POST /api/auth
func (h *Handler) Login(c echo.Context) error {
	req := new(LoginRequest)
	if err := c.Bind(req); err != nil {
		return httperr.BadRequest(c, "invalid request")
	}
	if err := c.Validate(req); err != nil {
		var verrs *validate.Errors
		if errors.As(err, &verrs) {
			return httperr.Validation(c, verrs.Fields)
		}
		return httperr.Internal(c, err)
	}

	u, err := h.repo.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.BadRequest(c, "invalid credentials")
		}
		return httperr.Internal(c, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)) != nil {
		return httperr.BadRequest(c, "invalid credentials")
	}

	signed, err := token.Sign(u.ID.String(), h.jwtSecret)
	if err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, TokenResponse{Token: signed})
}

// Me returns the authenticated user.
// GET /api/auth
func (h *Handler) Me(c echo.Context) error {
	actorID, err := uuid.Parse(middleware.UserID(c))
	if err != nil {
		return httperr.Unauthorized(c, "token is not valid")
	}

	u, err := h.repo.GetByID(c.Request().Context(), actorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.NotFound(c, "user not found")
		}
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Follow adds the authenticated user as a follower of :id.
// POST /api/users/:id/follow
func (h *Handler) Follow(c echo.Context) error {
	actorID, err := uuid.Parse(middleware.UserID(c))
	if err != nil {
		return httperr.Unauthorized(c, "token is not valid")
	}

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest(c, "user not found")
	}
	if targetID == actorID {
		return httperr.BadRequest(c, "you cannot follow yourself")
	}

	ctx := c.Request().Context()
	target, err := h.repo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.BadRequest(c, "user not found")
		}
		return httperr.Internal(c, err)
	}

	if err := h.repo.Follow(ctx, actorID, targetID); err != nil {
		switch {
		case errors.Is(err, ErrAlreadyFollowing):
			return httperr.BadRequest(c, "already following this user")
		case errors.Is(err, ErrNotFound):
			return httperr.BadRequest(c, "user not found")
		default:
			return httperr.Internal(c, err)
		}
	}

	if actor, aerr := h.repo.GetByID(ctx, actorID); aerr == nil {
		if err := h.notifier.NewFollower(target.ID, actor.ID, actor.Name); err != nil {
			log.Printf("follower notification for %s failed: %v", target.ID, err)
		}
	}

	following, err := h.repo.Following(ctx, actorID)
	if err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"following": following})
}

// Unfollow removes the authenticated user from :id's followers.
// DELETE /api/users/:id/unfollow
func (h *Handler) Unfollow(c echo.Context) error {
	actorID, err := uuid.Parse(middleware.UserID(c))
	if err != nil {
		return httperr.Unauthorized(c, "token is not valid")
	}

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest(c, "user not found")
	}

	ctx := c.Request().Context()
	if _, err := h.repo.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.BadRequest(c, "user not found")
		}
		return httperr.Internal(c, err)
	}

	if err := h.repo.Unfollow(ctx, actorID, targetID); err != nil {
		if errors.Is(err, ErrNotFollowing) {
			return httperr.BadRequest(c, "you are not following this user")
		}
		return httperr.Internal(c, err)
	}

	following, err := h.repo.Following(ctx, actorID)
	if err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"following": following})
}

// Followers lists the users following :id, newest first.
// GET /api/users/:id/followers
func (h *Handler) Followers(c echo.Context) error {
	return h.listEdges(c, h.repo.Followers, "followers")
}

// Following lists the users :id follows, newest first.
// GET /api/users/:id/following
func (h *Handler) Following(c echo.Context) error {
	return h.listEdges(c, h.repo.Following, "following")
}

func (h *Handler) listEdges(c echo.Context, list func(context.Context, uuid.UUID) ([]Summary, error), key string) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest(c, "user not found")
	}

	ctx := c.Request().Context()
	if _, err := h.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.BadRequest(c, "user not found")
		}
		return httperr.Internal(c, err)
	}

	summaries, err := list(ctx, id)
	if err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{key: summaries})
}
