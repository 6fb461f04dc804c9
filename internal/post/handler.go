package post

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/zorlakov/devconnect/internal/alerts"
	"github.com/zorlakov/devconnect/internal/httperr"
	"github.com/zorlakov/devconnect/internal/middleware"
	"github.com/zorlakov/devconnect/internal/user"
	"github.com/zorlakov/devconnect/internal/validate"
)

// Broadcaster pushes newly created posts to live feed subscribers.
type Broadcaster interface {
	Broadcast(event string, data interface{})
}

type Handler struct {
	repo     Repository
	users    user.Repository
	notifier alerts.Notifier
	feed     Broadcaster
}

func NewHandler(repo Repository, users user.Repository, notifier alerts.Notifier, feed Broadcaster) *Handler {
	return &Handler{repo: repo, users: users, notifier: notifier, feed: feed}
}

type CreateRequest struct {
	Text string `json:"text" validate:"required"`
}

// Create stores a new post with the author's current name and avatar
// snapshotted in.
// POST /api/posts
func (h *Handler) Create(c echo.Context) error {
	actorID, err := uuid.Parse(middleware.UserID(c))
	if err != nil {
		return httperr.Unauthorized(c, "token is not valid")
	}

	req := new(CreateRequest)
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

	ctx := c.Request().Context()
	author, err := h.users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return httperr.Unauthorized(c, "token is not valid")
		}
		return httperr.Internal(c, err)
	}

	created, err := h.repo.Create(ctx, Post{
		ID:        uuid.New(),
		UserID:    author.ID,
		Text:      req.Text,
		Name:      author.Name,
		Avatar:    author.Avatar,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return httperr.Internal(c, err)
	}

	if h.feed != nil {
		h.feed.Broadcast("post", created)
	}
	return c.JSON(http.StatusOK, created)
}

// List returns every post, most recent first.
// GET /api/posts
func (h *Handler) List(c echo.Context) error {
	posts, err := h.repo.List(c.Request().Context())
	if err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, posts)
}

// Get returns one post. Malformed ids read as absent.
// GET /api/posts/:id
func (h *Handler) Get(c echo.Context) error {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.NotFound(c, "post not found")
	}

	p, err := h.repo.Get(c.Request().Context(), postID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.NotFound(c, "post not found")
		}
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Delete removes a post. Only the author may delete it.
// DELETE /api/posts/:id
func (h *Handler) Delete(c echo.Context) error {
	actorID, err := uuid.Parse(middleware.UserID(c))
	if err != nil {
		return httperr.Unauthorized(c, "token is not valid")
	}
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.NotFound(c, "post not found")
	}

	ctx := c.Request().Context()
	p, err := h.repo.Get(ctx, postID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.NotFound(c, "post not found")
		}
		return httperr.Internal(c, err)
	}
	if p.UserID != actorID {
		return httperr.Forbidden(c, "user not authorized")
	}

	if err := h.repo.Delete(ctx, postID); err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "post removed"})
}

// Like records a like. Liking the same post twice is rejected.
// PUT /api/posts/like/:id
func (h *Handler) Like(c echo.Context) error {
	actorID, err := uuid.Parse(middleware.UserID(c))
	if err != nil {
		return httperr.Unauthorized(c, "token is not valid")
	}
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.NotFound(c, "post not found")
	}

	ctx := c.Request().Context()
	if err := h.repo.Like(ctx, postID, actorID); err != nil {
		switch {
		case errors.Is(err, ErrAlreadyLiked):
			return httperr.BadRequest(c, "post already liked")
		case errors.Is(err, ErrNotFound):
			return httperr.NotFound(c, "post not found")
		default:
			return httperr.Internal(c, err)
		}
	}

	likes, err := h.repo.Likes(ctx, postID)
	if err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, likes)
}

// Unlike removes a like. Unliking a post that was never liked is rejected.
// PUT /api/posts/unlike/:id
func (h *Handler) Unlike(c echo.Context) error {
	actorID, err := uuid.Parse(middleware.UserID(c))
	if err != nil {
		return httperr.Unauthorized(c, "token is not valid")
	}
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.NotFound(c, "post not found")
	}

	ctx := c.Request().Context()
	if _, err := h.repo.Get(ctx, postID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.NotFound(c, "post not found")
		}
		return httperr.Internal(c, err)
	}

	if err := h.repo.Unlike(ctx, postID, actorID); err != nil {
		if errors.Is(err, ErrNotLiked) {
			return httperr.BadRequest(c, "post has not yet been liked")
		}
		return httperr.Internal(c, err)
	}

	likes, err := h.repo.Likes(ctx, postID)
	if err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, likes)
}

// CreateComment adds a comment with the commenter's snapshot and returns the
// post's comments, newest first.
// POST /api/posts/comment/:id
func (h *Handler) CreateComment(c echo.Context) error {
	actorID, err := uuid.Parse(middleware.UserID(c))
	if err != nil {
		return httperr.Unauthorized(c, "token is not valid")
	}
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.NotFound(c, "post not found")
	}

	req := new(CreateRequest)
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

	ctx := c.Request().Context()
	p, err := h.repo.Get(ctx, postID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.NotFound(c, "post not found")
		}
		return httperr.Internal(c, err)
	}

	commenter, err := h.users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return httperr.Unauthorized(c, "token is not valid")
		}
		return httperr.Internal(c, err)
	}

	if _, err := h.repo.AddComment(ctx, Comment{
		ID:        uuid.New(),
		PostID:    postID,
		UserID:    commenter.ID,
		Text:      req.Text,
		Name:      commenter.Name,
		Avatar:    commenter.Avatar,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return httperr.Internal(c, err)
	}

	if p.UserID != commenter.ID {
		if err := h.notifier.NewComment(p.UserID, commenter.Name, postID); err != nil {
			log.Printf("comment notification for %s failed: %v", p.UserID, err)
		}
	}

	comments, err := h.repo.Comments(ctx, postID)
	if err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, comments)
}

// DeleteComment removes the comment named by :comment_id. The comment is
// matched by its own id, and only its author may remove it.
// DELETE /api/posts/comment/:id/:comment_id
func (h *Handler) DeleteComment(c echo.Context) error {
	actorID, err := uuid.Parse(middleware.UserID(c))
	if err != nil {
		return httperr.Unauthorized(c, "token is not valid")
	}
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.NotFound(c, "post not found")
	}
	commentID, err := uuid.Parse(c.Param("comment_id"))
	if err != nil {
		return httperr.NotFound(c, "comment does not exist")
	}

	ctx := c.Request().Context()
	if _, err := h.repo.Get(ctx, postID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.NotFound(c, "post not found")
		}
		return httperr.Internal(c, err)
	}

	cm, err := h.repo.GetComment(ctx, postID, commentID)
	if err != nil {
		if errors.Is(err, ErrCommentNotFound) {
			return httperr.NotFound(c, "comment does not exist")
		}
		return httperr.Internal(c, err)
	}
	if cm.UserID != actorID {
		return httperr.Forbidden(c, "user not authorized")
	}

	if err := h.repo.DeleteComment(ctx, commentID); err != nil {
		return httperr.Internal(c, err)
	}

	comments, err := h.repo.Comments(ctx, postID)
	if err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, comments)
}
