package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"quill/internal/models"
)

const profileColumns = `id, user_id, bio, picture_key, website, location, birth_date, created_at, updated_at`

// ProfileStore handles user profiles. Every user has at most one.
type ProfileStore struct {
	db *sql.DB
}

// NewProfileStore creates a new ProfileStore with the given database connection.
func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func scanProfile(row interface{ Scan(...any) error }) (*models.UserProfile, error) {
	p := &models.UserProfile{}
	err := row.Scan(&p.ID, &p.UserID, &p.Bio, &p.PictureKey, &p.Website,
		&p.Location, &p.BirthDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Ensure returns the user's profile, creating an empty one first if
// needed. Concurrent calls for the same user converge on a single row.
func (s *ProfileStore) Ensure(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO user_profiles (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID,
	); err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}

	p, err := scanProfile(s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM user_profiles WHERE user_id = $1`, userID))
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

// Update saves the editable profile fields and bumps updated_at.
func (s *ProfileStore) Update(ctx context.Context, p *models.UserProfile) error {
	err := s.db.QueryRowContext(ctx, `
		UPDATE user_profiles
		SET bio = $1, picture_key = $2, website = $3, location = $4, birth_date = $5, updated_at = now()
		WHERE user_id = $6
		RETURNING updated_at
	`, p.Bio, p.PictureKey, p.Website, p.Location, p.BirthDate, p.UserID).Scan(&p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}
