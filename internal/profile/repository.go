package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound     = errors.New("profile not found")
	ErrItemNotFound = errors.New("profile item not found")
)

type Repository interface {
	// Upsert creates the caller's profile or replaces its mutable fields.
	Upsert(ctx context.Context, p Profile) (Profile, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (Profile, error)
	List(ctx context.Context) ([]Profile, error)

	AddExperience(ctx context.Context, profileID uuid.UUID, exp Experience) (Experience, error)
	DeleteExperience(ctx context.Context, profileID, expID uuid.UUID) error
	AddEducation(ctx context.Context, profileID uuid.UUID, edu Education) (Education, error)
	DeleteEducation(ctx context.Context, profileID, eduID uuid.UUID) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Upsert(ctx context.Context, p Profile) (Profile, error) {
	const q = `
		INSERT INTO profiles (
			id, user_id, company, website, location, status, bio, github_username,
			skills, youtube, twitter, facebook, linkedin, instagram
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (user_id) DO UPDATE SET
			company = EXCLUDED.company,
			website = EXCLUDED.website,
			location = EXCLUDED.location,
			status = EXCLUDED.status,
			bio = EXCLUDED.bio,
			github_username = EXCLUDED.github_username,
			skills = EXCLUDED.skills,
			youtube = EXCLUDED.youtube,
			twitter = EXCLUDED.twitter,
			facebook = EXCLUDED.facebook,
			linkedin = EXCLUDED.linkedin,
			instagram = EXCLUDED.instagram
	`
	_, err := r.db.Exec(ctx, q,
		p.ID, p.UserID, p.Company, p.Website, p.Location, p.Status, p.Bio, p.GithubUsername,
		p.Skills, p.Social.Youtube, p.Social.Twitter, p.Social.Facebook, p.Social.Linkedin, p.Social.Instagram,
	)
	if err != nil {
		return Profile{}, err
	}
	return r.GetByUser(ctx, p.UserID)
}

const profileColumns = `
	p.id, p.user_id, p.company, p.website, p.location, p.status, p.bio,
	p.github_username, p.skills, p.youtube, p.twitter, p.facebook,
	p.linkedin, p.instagram, p.created_at, u.name, u.avatar
`

func (r *postgresRepository) scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(
		&p.ID, &p.UserID, &p.Company, &p.Website, &p.Location, &p.Status, &p.Bio,
		&p.GithubUsername, &p.Skills, &p.Social.Youtube, &p.Social.Twitter, &p.Social.Facebook,
		&p.Social.Linkedin, &p.Social.Instagram, &p.CreatedAt, &p.User.Name, &p.User.Avatar,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	p.User.ID = p.UserID
	if p.Skills == nil {
		p.Skills = []string{}
	}
	p.Experience = []Experience{}
	p.Education = []Education{}
	return p, nil
}

func (r *postgresRepository) GetByUser(ctx context.Context, userID uuid.UUID) (Profile, error) {
	const q = `
		SELECT ` + profileColumns + `
		FROM profiles p JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1
	`
	p, err := r.scanProfile(r.db.QueryRow(ctx, q, userID))
	if err != nil {
		return Profile{}, err
	}

	if p.Experience, err = r.experiences(ctx, p.ID); err != nil {
		return Profile{}, err
	}
	if p.Education, err = r.educations(ctx, p.ID); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]Profile, error) {
	const q = `
		SELECT ` + profileColumns + `
		FROM profiles p JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at DESC, p.id
	`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []Profile{}
	index := map[uuid.UUID]int{}
	for rows.Next() {
		p, err := r.scanProfile(rows)
		if err != nil {
			return nil, err
		}
		index[p.ID] = len(profiles)
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachExperiences(ctx, profiles, index); err != nil {
		return nil, err
	}
	if err := r.attachEducations(ctx, profiles, index); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *postgresRepository) experiences(ctx context.Context, profileID uuid.UUID) ([]Experience, error) {
	const q = `
		SELECT id, title, company, location, from_date, to_date, current, description, created_at
		FROM experiences
		WHERE profile_id = $1
		ORDER BY from_date DESC, created_at DESC
	`
	rows, err := r.db.Query(ctx, q, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exps := []Experience{}
	for rows.Next() {
		var e Experience
		if err := rows.Scan(&e.ID, &e.Title, &e.Company, &e.Location, &e.From, &e.To, &e.Current, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		exps = append(exps, e)
	}
	return exps, rows.Err()
}

func (r *postgresRepository) educations(ctx context.Context, profileID uuid.UUID) ([]Education, error) {
	const q = `
		SELECT id, school, degree, field_of_study, from_date, to_date, current, description, created_at
		FROM educations
		WHERE profile_id = $1
		ORDER BY from_date DESC, created_at DESC
	`
	rows, err := r.db.Query(ctx, q, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	edus := []Education{}
	for rows.Next() {
		var e Education
		if err := rows.Scan(&e.ID, &e.School, &e.Degree, &e.FieldOfStudy, &e.From, &e.To, &e.Current, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		edus = append(edus, e)
	}
	return edus, rows.Err()
}

func (r *postgresRepository) attachExperiences(ctx context.Context, profiles []Profile, index map[uuid.UUID]int) error {
	const q = `
		SELECT profile_id, id, title, company, location, from_date, to_date, current, description, created_at
		FROM experiences
		ORDER BY from_date DESC, created_at DESC
	`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var profileID uuid.UUID
		var e Experience
		if err := rows.Scan(&profileID, &e.ID, &e.Title, &e.Company, &e.Location, &e.From, &e.To, &e.Current, &e.Description, &e.CreatedAt); err != nil {
			return err
		}
		if i, ok := index[profileID]; ok {
			profiles[i].Experience = append(profiles[i].Experience, e)
		}
	}
	return rows.Err()
}

func (r *postgresRepository) attachEducations(ctx context.Context, profiles []Profile, index map[uuid.UUID]int) error {
	const q = `
		SELECT profile_id, id, school, degree, field_of_study, from_date, to_date, current, description, created_at
		FROM educations
		ORDER BY from_date DESC, created_at DESC
	`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var profileID uuid.UUID
		var e Education
		if err := rows.Scan(&profileID, &e.ID, &e.School, &e.Degree, &e.FieldOfStudy, &e.From, &e.To, &e.Current, &e.Description, &e.CreatedAt); err != nil {
			return err
		}
		if i, ok := index[profileID]; ok {
			profiles[i].Education = append(profiles[i].Education, e)
		}
	}
	return rows.Err()
}

func (r *postgresRepository) AddExperience(ctx context.Context, profileID uuid.UUID, exp Experience) (Experience, error) {
	const q = `
		INSERT INTO experiences (id, profile_id, title, company, location, from_date, to_date, current, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, q, exp.ID, profileID, exp.Title, exp.Company, exp.Location, exp.From, exp.To, exp.Current, exp.Description, exp.CreatedAt)
	if err != nil {
		return Experience{}, err
	}
	return exp, nil
}

func (r *postgresRepository) DeleteExperience(ctx context.Context, profileID, expID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM experiences WHERE id = $1 AND profile_id = $2`, expID, profileID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *postgresRepository) AddEducation(ctx context.Context, profileID uuid.UUID, edu Education) (Education, error) {
	const q = `
		INSERT INTO educations (id, profile_id, school, degree, field_of_study, from_date, to_date, current, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, q, edu.ID, profileID, edu.School, edu.Degree, edu.FieldOfStudy, edu.From, edu.To, edu.Current, edu.Description, edu.CreatedAt)
	if err != nil {
		return Education{}, err
	}
	return edu, nil
}

func (r *postgresRepository) DeleteEducation(ctx context.Context, profileID, eduID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM educations WHERE id = $1 AND profile_id = $2`, eduID, profileID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}
