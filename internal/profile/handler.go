package profile

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/zorlakov/devconnect/internal/httperr"
	"github.com/zorlakov/devconnect/internal/middleware"
	"github.com/zorlakov/devconnect/internal/user"
	"github.com/zorlakov/devconnect/internal/validate"
)

type Handler struct {
	repo   Repository
	users  user.Repository
	github *GithubClient
}

func NewHandler(repo Repository, users user.Repository, github *GithubClient) *Handler {
	return &Handler{repo: repo, users: users, github: github}
}

// Me returns the authenticated user's profile.
// GET /api/profile/me
func (h *Handler) Me(c echo.Context) error {
	actorID, err := uuid.Parse(middleware.UserID(c))
	if err != nil {
		return httperr.Unauthorized(c, "token is not valid")
	}

	p, err := h.repo.GetByUser(c.Request().Context(), actorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.BadRequest(c, "there is no profile for this user")
		}
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

type UpsertRequest struct {
	Status         string `json:"status" validate:"required"`
	Skills         string `json:"skills" validate:"required"`
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Bio            string `json:"bio"`
	GithubUsername string `json:"githubusername"`
	Youtube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Facebook       string `json:"facebook"`
	Linkedin       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
}

// Upsert creates or updates the authenticated user's profile. Skills come in
// as a comma separated list.
// POST /api/profile
func (h *Handler) Upsert(c echo.Context) error {
	actorID, err := uuid.Parse(middleware.UserID(c))
	if err != nil {
		return httperr.Unauthorized(c, "token is not valid")
	}

	req := new(UpsertRequest)
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

	skills := []string{}
	for _, s := range strings.Split(req.Skills, ",") {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			skills = append(skills, trimmed)
		}
	}

	p, err := h.repo.Upsert(c.Request().Context(), Profile{
		ID:             uuid.New(),
		UserID:         actorID,
		Company:        req.Company,
		Website:        req.Website,
		Location:       req.Location,
		Status:         req.Status,
		Bio:            req.Bio,
		GithubUsername: req.GithubUsername,
		Skills:         skills,
		Social: Social{
			Youtube:   req.Youtube,
			Twitter:   req.Twitter,
			Facebook:  req.Facebook,
			Linkedin:  req.Linkedin,
			Instagram: req.Instagram,
		},
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// List returns all profiles with their owner's name and avatar.
// GET /api/profile
func (h *Handler) List(c echo.Context) error {
	profiles, err := h.repo.List(c.Request().Context())
	if err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, profiles)
}

// GetByUserID returns the profile owned by :user_id. Malformed ids read the
// same as an absent profile.
// GET /api/profile/user/:user_id
func (h *Handler) GetByUserID(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		return httperr.BadRequest(c, "profile not found")
	}

	p, err := h.repo.GetByUser(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.BadRequest(c, "profile not found")
		}
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// DeleteAccount removes the authenticated user. Profile, posts, likes,
// comments and follow edges go with the user record.
// DELETE /api/profile
func (h *Handler) DeleteAccount(c echo.Context) error {
	actorID, err := uuid.Parse(middleware.UserID(c))
	if err != nil {
		return httperr.Unauthorized(c, "token is not valid")
	}

	if err := h.users.Delete(c.Request().Context(), actorID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return httperr.NotFound(c, "user not found")
		}
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "user deleted"})
}

type ExperienceRequest struct {
	Title       string `json:"title" validate:"required"`
	Company     string `json:"company" validate:"required"`
	Location    string `json:"location"`
	From        string `json:"from" validate:"required"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// AddExperience prepends a work history entry to the caller's profile.
// PUT /api/profile/experience
func (h *Handler) AddExperience(c echo.Context) error {
	actorID, err := uuid.Parse(middleware.UserID(c))
	if err != nil {
		return httperr.Unauthorized(c, "token is not valid")
	}

	req := new(ExperienceRequest)
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

	from, to, err := parseDates(req.From, req.To)
	if err != nil {
		return httperr.BadRequest(c, "dates must be formatted YYYY-MM-DD")
	}

	ctx := c.Request().Context()
	p, err := h.repo.GetByUser(ctx, actorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.BadRequest(c, "there is no profile for this user")
		}
		return httperr.Internal(c, err)
	}

	if _, err := h.repo.AddExperience(ctx, p.ID, Experience{
		ID:          uuid.New(),
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		From:        from,
		To:          to,
		Current:     req.Current,
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
	}); err != nil {
		return httperr.Internal(c, err)
	}

	updated, err := h.repo.GetByUser(ctx, actorID)
	if err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteExperience removes one work history entry by id.
// DELETE /api/profile/experience/:exp_id
func (h *Handler) DeleteExperience(c echo.Context) error {
	return h.deleteItem(c, "exp_id", func(profileID, itemID uuid.UUID) error {
		return h.repo.DeleteExperience(c.Request().Context(), profileID, itemID)
	})
}

type EducationRequest struct {
	School       string `json:"school" validate:"required"`
	Degree       string `json:"degree" validate:"required"`
	FieldOfStudy string `json:"fieldofstudy" validate:"required"`
	From         string `json:"from" validate:"required"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

// AddEducation prepends an education entry to the caller's profile.
// PUT /api/profile/education
func (h *Handler) AddEducation(c echo.Context) error {
	actorID, err := uuid.Parse(middleware.UserID(c))
	if err != nil {
		return httperr.Unauthorized(c, "token is not valid")
	}

	req := new(EducationRequest)
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

	from, to, err := parseDates(req.From, req.To)
	if err != nil {
		return httperr.BadRequest(c, "dates must be formatted YYYY-MM-DD")
	}

	ctx := c.Request().Context()
	p, err := h.repo.GetByUser(ctx, actorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.BadRequest(c, "there is no profile for this user")
		}
		return httperr.Internal(c, err)
	}

	if _, err := h.repo.AddEducation(ctx, p.ID, Education{
		ID:           uuid.New(),
		School:       req.School,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		From:         from,
		To:           to,
		Current:      req.Current,
		Description:  req.Description,
		CreatedAt:    time.Now().UTC(),
	}); err != nil {
		return httperr.Internal(c, err)
	}

	updated, err := h.repo.GetByUser(ctx, actorID)
	if err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteEducation removes one education entry by id.
// DELETE /api/profile/education/:edu_id
func (h *Handler) DeleteEducation(c echo.Context) error {
	return h.deleteItem(c, "edu_id", func(profileID, itemID uuid.UUID) error {
		return h.repo.DeleteEducation(c.Request().Context(), profileID, itemID)
	})
}

func (h *Handler) deleteItem(c echo.Context, param string, remove func(profileID, itemID uuid.UUID) error) error {
	actorID, err := uuid.Parse(middleware.UserID(c))
	if err != nil {
		return httperr.Unauthorized(c, "token is not valid")
	}
	itemID, err := uuid.Parse(c.Param(param))
	if err != nil {
		return httperr.NotFound(c, "entry not found")
	}

	ctx := c.Request().Context()
	p, err := h.repo.GetByUser(ctx, actorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.BadRequest(c, "there is no profile for this user")
		}
		return httperr.Internal(c, err)
	}

	if err := remove(p.ID, itemID); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return httperr.NotFound(c, "entry not found")
		}
		return httperr.Internal(c, err)
	}

	updated, err := h.repo.GetByUser(ctx, actorID)
	if err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// Github proxies the five most recent public repos for a Github username.
// GET /api/profile/github/:username
func (h *Handler) Github(c echo.Context) error {
	username := c.Param("username")
	if username == "" {
		return httperr.NotFound(c, "no Github profile found")
	}

	repos, err := h.github.Repos(c.Request().Context(), username)
	if err != nil {
		return httperr.NotFound(c, "no Github profile found")
	}
	return c.JSON(http.StatusOK, repos)
}

func parseDates(fromStr, toStr string) (time.Time, *time.Time, error) {
	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return time.Time{}, nil, err
	}
	if toStr == "" {
		return from, nil, nil
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return time.Time{}, nil, err
	}
	return from, &to, nil
}
