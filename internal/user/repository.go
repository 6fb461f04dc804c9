package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound         = errors.New("user not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrAlreadyFollowing = errors.New("already following")
	ErrNotFollowing     = errors.New("not following")
)

type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Follow records a single relationship row keyed on (follower, followed),
	// so a repeated follow is a constraint violation rather than a duplicate.
	Follow(ctx context.Context, followerID, followedID uuid.UUID) error
	Unfollow(ctx context.Context, followerID, followedID uuid.UUID) error
	Following(ctx context.Context, id uuid.UUID) ([]Summary, error)
	Followers(ctx context.Context, id uuid.UUID) ([]Summary, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, u User) (User, error) {
	const q = `
		INSERT INTO users (id, name, email, password, avatar, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, q, u.ID, u.Name, u.Email, u.Password, u.Avatar, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return u, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	const q = `SELECT id, name, email, password, avatar, created_at FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, q, id))
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	const q = `SELECT id, name, email, password, avatar, created_at FROM users WHERE email = $1`
	return r.scanOne(r.db.QueryRow(ctx, q, email))
}

func (r *postgresRepository) scanOne(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Avatar, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// Delete removes the user row; profiles, posts, likes, comments, follows and
// notifications go with it via ON DELETE CASCADE.
func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepository) Follow(ctx context.Context, followerID, followedID uuid.UUID) error {
	const q = `INSERT INTO follows (follower_id, followed_id) VALUES ($1, $2)`
	_, err := r.db.Exec(ctx, q, followerID, followedID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrAlreadyFollowing
			case "23503":
				return ErrNotFound
			}
		}
		return err
	}
	return nil
}

func (r *postgresRepository) Unfollow(ctx context.Context, followerID, followedID uuid.UUID) error {
	const q = `DELETE FROM follows WHERE follower_id = $1 AND followed_id = $2`
	tag, err := r.db.Exec(ctx, q, followerID, followedID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFollowing
	}
	return nil
}

func (r *postgresRepository) Following(ctx context.Context, id uuid.UUID) ([]Summary, error) {
	const q = `
		SELECT u.id, u.name, u.avatar
		FROM follows f
		JOIN users u ON u.id = f.followed_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC, u.id
	`
	return r.querySummaries(ctx, q, id)
}

func (r *postgresRepository) Followers(ctx context.Context, id uuid.UUID) ([]Summary, error) {
	const q = `
		SELECT u.id, u.name, u.avatar
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.followed_id = $1
		ORDER BY f.created_at DESC, u.id
	`
	return r.querySummaries(ctx, q, id)
}

func (r *postgresRepository) querySummaries(ctx context.Context, q string, id uuid.UUID) ([]Summary, error) {
	rows, err := r.db.Query(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Name, &s.Avatar); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
