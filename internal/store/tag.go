// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"quill/internal/models"
	"quill/internal/slug"
)

const tagColumns = `t.id, t.name, t.slug, t.created_at`

// TagStore manages tags in the database.
type TagStore struct {
	db *sql.DB
}

// NewTagStore creates a new TagStore.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

func scanTags(rows *sql.Rows, withCount bool) ([]models.Tag, error) {
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		dest := []any{&t.ID, &t.Name, &t.Slug, &t.CreatedAt}
		if withCount {
			dest = append(dest, &t.PostCount)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// ListWithCounts returns tags with a usable slug, ordered by name, with
// PostCount set to their number of distinct published posts. A positive
// limit caps the result.
func (s *TagStore) ListWithCounts(ctx context.Context, limit int) ([]models.Tag, error) {
	q := `
		SELECT ` + tagColumns + `,
		       COUNT(DISTINCT p.id) FILTER (WHERE p.status = 'published')
		FROM tags t
		LEFT JOIN post_tags pt ON pt.tag_id = t.id
		LEFT JOIN posts p ON p.id = pt.post_id
		WHERE t.slug <> ''
		GROUP BY t.id
		ORDER BY t.name`
	var args []any
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list tags with counts: %w", err)
	}
	return scanTags(rows, true)
}

// List returns all tags ordered by name, for form choices.
func (s *TagStore) List(ctx context.Context) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+tagColumns+` FROM tags t ORDER BY t.name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return scanTags(rows, false)
}

// FindBySlug retrieves a tag by slug. Returns nil if not found.
func (s *TagStore) FindBySlug(ctx context.Context, slugValue string) (*models.Tag, error) {
	if slugValue == "" {
		return nil, nil
	}
	t := &models.Tag{}
	err := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags t WHERE t.slug = $1`, slugValue,
	).Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tag by slug: %w", err)
	}
	return t, nil
}

// FindByIDs returns the tags whose IDs are listed. Unknown IDs are skipped.
func (s *TagStore) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags t WHERE t.id IN (`+strings.Join(placeholders, ", ")+`) ORDER BY t.name`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("find tags by ids: %w", err)
	}
	return scanTags(rows, false)
}

// Create inserts a tag, deriving the slug from the name.
func (s *TagStore) Create(ctx context.Context, name string) (*models.Tag, error) {
	t := &models.Tag{}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tags (name, slug) VALUES ($1, $2)
		RETURNING id, name, slug, created_at
	`, name, slug.Generate(name)).Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt)
	if _, dup := uniqueConstraint(err); dup {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return t, nil
}
