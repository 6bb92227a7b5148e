// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"quill/internal/models"
	"quill/internal/slug"
)

const categoryColumns = `c.id, c.name, c.slug, c.description, c.created_at`

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore creates a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

func scanCategory(row interface{ Scan(...any) error }, extra ...any) (*models.Category, error) {
	c := &models.Category{}
	dest := append([]any{&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return c, nil
}

// ListWithCounts returns every category with a usable slug, ordered by
// name, with PostCount set to its number of distinct published posts.
// Categories without published posts are included with a zero count.
func (s *CategoryStore) ListWithCounts(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+categoryColumns+`,
		       COUNT(DISTINCT p.id) FILTER (WHERE p.status = 'published')
		FROM categories c
		LEFT JOIN posts p ON p.category_id = c.id
		WHERE c.slug <> ''
		GROUP BY c.id
		ORDER BY c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories with counts: %w", err)
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		var count int
		c, err := scanCategory(rows, &count)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.PostCount = count
		cats = append(cats, *c)
	}
	return cats, rows.Err()
}

// List returns all categories ordered by name, for form choices.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories c ORDER BY c.name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, *c)
	}
	return cats, rows.Err()
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(ctx context.Context, slugValue string) (*models.Category, error) {
	if slugValue == "" {
		return nil, nil
	}
	c, err := scanCategory(s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories c WHERE c.slug = $1`, slugValue))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// FindByID retrieves a category by UUID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories c WHERE c.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// Create inserts a category, deriving the slug from the name.
func (s *CategoryStore) Create(ctx context.Context, name, description string) (*models.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug, description) VALUES ($1, $2, $3)
		RETURNING id, name, slug, description, created_at
	`, name, slug.Generate(name), description))
	if _, dup := uniqueConstraint(err); dup {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// Delete removes a category. Its posts keep existing without a category.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
