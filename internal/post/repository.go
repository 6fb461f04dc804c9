package post

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound        = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrAlreadyLiked    = errors.New("already liked")
	ErrNotLiked        = errors.New("not liked")
)

type Repository interface {
	Create(ctx context.Context, p Post) (Post, error)
	// List returns every post, newest first, with likes and comments attached.
	List(ctx context.Context) ([]Post, error)
	Get(ctx context.Context, id uuid.UUID) (Post, error)
	Delete(ctx context.Context, id uuid.UUID) error

	Like(ctx context.Context, postID, userID uuid.UUID) error
	Unlike(ctx context.Context, postID, userID uuid.UUID) error
	Likes(ctx context.Context, postID uuid.UUID) ([]Like, error)

	AddComment(ctx context.Context, cm Comment) (Comment, error)
	GetComment(ctx context.Context, postID, commentID uuid.UUID) (Comment, error)
	DeleteComment(ctx context.Context, commentID uuid.UUID) error
	Comments(ctx context.Context, postID uuid.UUID) ([]Comment, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, p Post) (Post, error) {
	const q = `
		INSERT INTO posts (id, user_id, text, name, avatar, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.Exec(ctx, q, p.ID, p.UserID, p.Text, p.Name, p.Avatar, p.CreatedAt); err != nil {
		return Post{}, err
	}
	p.Likes = []Like{}
	p.Comments = []Comment{}
	return p, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]Post, error) {
	const q = `
		SELECT id, user_id, text, name, avatar, created_at
		FROM posts
		ORDER BY created_at DESC, id
	`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []Post{}
	index := map[uuid.UUID]int{}
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Text, &p.Name, &p.Avatar, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Likes = []Like{}
		p.Comments = []Comment{}
		index[p.ID] = len(posts)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachLikes(ctx, posts, index); err != nil {
		return nil, err
	}
	if err := r.attachComments(ctx, posts, index); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postgresRepository) attachLikes(ctx context.Context, posts []Post, index map[uuid.UUID]int) error {
	const q = `SELECT post_id, user_id, created_at FROM post_likes ORDER BY created_at DESC, user_id`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var postID uuid.UUID
		var l Like
		if err := rows.Scan(&postID, &l.UserID, &l.CreatedAt); err != nil {
			return err
		}
		if i, ok := index[postID]; ok {
			posts[i].Likes = append(posts[i].Likes, l)
		}
	}
	return rows.Err()
}

func (r *postgresRepository) attachComments(ctx context.Context, posts []Post, index map[uuid.UUID]int) error {
	const q = `
		SELECT id, post_id, user_id, text, name, avatar, created_at
		FROM comments
		ORDER BY created_at DESC, id
	`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cm Comment
		if err := rows.Scan(&cm.ID, &cm.PostID, &cm.UserID, &cm.Text, &cm.Name, &cm.Avatar, &cm.CreatedAt); err != nil {
			return err
		}
		if i, ok := index[cm.PostID]; ok {
			posts[i].Comments = append(posts[i].Comments, cm)
		}
	}
	return rows.Err()
}

func (r *postgresRepository) Get(ctx context.Context, id uuid.UUID) (Post, error) {
	const q = `SELECT id, user_id, text, name, avatar, created_at FROM posts WHERE id = $1`
	var p Post
	err := r.db.QueryRow(ctx, q, id).Scan(&p.ID, &p.UserID, &p.Text, &p.Name, &p.Avatar, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Post{}, ErrNotFound
		}
		return Post{}, err
	}

	if p.Likes, err = r.Likes(ctx, id); err != nil {
		return Post{}, err
	}
	if p.Comments, err = r.Comments(ctx, id); err != nil {
		return Post{}, err
	}
	return p, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepository) Like(ctx context.Context, postID, userID uuid.UUID) error {
	const q = `INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)`
	_, err := r.db.Exec(ctx, q, postID, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrAlreadyLiked
			case "23503":
				return ErrNotFound
			}
		}
		return err
	}
	return nil
}

func (r *postgresRepository) Unlike(ctx context.Context, postID, userID uuid.UUID) error {
	const q = `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`
	tag, err := r.db.Exec(ctx, q, postID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotLiked
	}
	return nil
}

func (r *postgresRepository) Likes(ctx context.Context, postID uuid.UUID) ([]Like, error) {
	const q = `
		SELECT user_id, created_at FROM post_likes
		WHERE post_id = $1
		ORDER BY created_at DESC, user_id
	`
	rows, err := r.db.Query(ctx, q, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	likes := []Like{}
	for rows.Next() {
		var l Like
		if err := rows.Scan(&l.UserID, &l.CreatedAt); err != nil {
			return nil, err
		}
		likes = append(likes, l)
	}
	return likes, rows.Err()
}

func (r *postgresRepository) AddComment(ctx context.Context, cm Comment) (Comment, error) {
	const q = `
		INSERT INTO comments (id, post_id, user_id, text, name, avatar, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, q, cm.ID, cm.PostID, cm.UserID, cm.Text, cm.Name, cm.Avatar, cm.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Comment{}, ErrNotFound
		}
		return Comment{}, err
	}
	return cm, nil
}

func (r *postgresRepository) GetComment(ctx context.Context, postID, commentID uuid.UUID) (Comment, error) {
	const q = `
		SELECT id, post_id, user_id, text, name, avatar, created_at
		FROM comments WHERE id = $1 AND post_id = $2
	`
	var cm Comment
	err := r.db.QueryRow(ctx, q, commentID, postID).Scan(
		&cm.ID, &cm.PostID, &cm.UserID, &cm.Text, &cm.Name, &cm.Avatar, &cm.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Comment{}, ErrCommentNotFound
		}
		return Comment{}, err
	}
	return cm, nil
}

func (r *postgresRepository) DeleteComment(ctx context.Context, commentID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, commentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func (r *postgresRepository) Comments(ctx context.Context, postID uuid.UUID) ([]Comment, error) {
	const q = `
		SELECT id, post_id, user_id, text, name, avatar, created_at
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at DESC, id
	`
	rows, err := r.db.Query(ctx, q, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var cm Comment
		if err := rows.Scan(&cm.ID, &cm.PostID, &cm.UserID, &cm.Text, &cm.Name, &cm.Avatar, &cm.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, cm)
	}
	return comments, rows.Err()
}
