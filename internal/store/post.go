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
	"time"

	"github.com/google/uuid"

	"quill/internal/models"
	"quill/internal/pagination"
	"quill/internal/query"
)

// postSelect loads a post with its author, category and comment count.
// Category columns are NULL for uncategorized posts.
const postSelect = `
	SELECT p.id, p.title, p.slug, p.author_id, p.category_id, p.content, p.image_key,
	       p.status, p.created_at, p.updated_at, p.published_at, p.views,
	       u.id, u.username, u.email, u.first_name, u.last_name, u.created_at,
	       c.id, c.name, c.slug, c.description, c.created_at,
	       ` + query.CommentCountExpr + `
	` + postFrom

const postFrom = `
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN categories c ON c.id = p.category_id`

// PostStore handles post queries and writes.
type PostStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db, now: time.Now}
}

// PostPage is one page of a post listing.
type PostPage struct {
	Posts []models.Post
	Page  pagination.Page
}

func scanPost(row interface{ Scan(...any) error }) (*models.Post, error) {
	p := &models.Post{Author: &models.User{}}
	var (
		catID                   uuid.NullUUID
		catName, catSlug, catDs sql.NullString
		catCreated              sql.NullTime
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.AuthorID, &p.CategoryID, &p.Content, &p.ImageKey,
		&p.Status, &p.CreatedAt, &p.UpdatedAt, &p.PublishedAt, &p.Views,
		&p.Author.ID, &p.Author.Username, &p.Author.Email, &p.Author.FirstName,
		&p.Author.LastName, &p.Author.CreatedAt,
		&catID, &catName, &catSlug, &catDs, &catCreated,
		&p.CommentCount,
	)
	if err != nil {
		return nil, err
	}
	if catID.Valid {
		p.Category = &models.Category{
			ID:          catID.UUID,
			Name:        catName.String,
			Slug:        catSlug.String,
			Description: catDs.String,
			CreatedAt:   catCreated.Time,
		}
	}
	return p, nil
}

func (s *PostStore) queryPosts(ctx context.Context, q string, args ...any) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	if err := s.attachTags(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// List counts the posts matching f, resolves the requested page against
// that total and fetches only that page.
func (s *PostStore) List(ctx context.Context, f query.Filter, pageParam string, size int) (*PostPage, error) {
	clause := f.Compile()

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) `+postFrom+` `+clause.Where, clause.Args...,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	page := pagination.New(total, size, pageParam)
	if total == 0 {
		return &PostPage{Page: page}, nil
	}

	n := len(clause.Args)
	args := append(append([]any{}, clause.Args...), page.Limit(), page.Offset())
	q := fmt.Sprintf("%s %s %s LIMIT $%d OFFSET $%d", postSelect, clause.Where, clause.OrderBy, n+1, n+2)

	posts, err := s.queryPosts(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return &PostPage{Posts: posts, Page: page}, nil
}

// Find returns up to limit posts matching f, without counting.
func (s *PostStore) Find(ctx context.Context, f query.Filter, limit int) ([]models.Post, error) {
	clause := f.Compile()
	args := append(append([]any{}, clause.Args...), limit)
	q := fmt.Sprintf("%s %s %s LIMIT $%d", postSelect, clause.Where, clause.OrderBy, len(clause.Args)+1)
	return s.queryPosts(ctx, q, args...)
}

// Recent returns the n newest published posts.
func (s *PostStore) Recent(ctx context.Context, n int) ([]models.Post, error) {
	return s.Find(ctx, query.Filter{PublishedOnly: true, Order: query.OrderRecent}, n)
}

// Popular returns the n published posts with the most comments.
func (s *PostStore) Popular(ctx context.Context, n int) ([]models.Post, error) {
	return s.Find(ctx, query.Filter{PublishedOnly: true, Order: query.OrderPopular}, n)
}

// Related returns up to n other published posts from the same category.
// Uncategorized posts have no related posts.
func (s *PostStore) Related(ctx context.Context, post *models.Post, n int) ([]models.Post, error) {
	if post.CategoryID == nil {
		return nil, nil
	}
	return s.Find(ctx, query.Filter{
		PublishedOnly: true,
		CategoryID:    *post.CategoryID,
		ExcludeID:     post.ID,
		Order:         query.OrderRecent,
	}, n)
}

// FindBySlug returns the post with this slug that viewer may see: any
// published post, or the viewer's own draft. Several posts may share a
// slug on different days; the most recent wins. Pass uuid.Nil for an
// anonymous viewer. Returns nil if nothing matches.
func (s *PostStore) FindBySlug(ctx context.Context, slugValue string, viewer uuid.UUID) (*models.Post, error) {
	q := postSelect + `
		WHERE p.slug = $1 AND (p.status = 'published' OR p.author_id = $2)
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT 1`
	posts, err := s.queryPosts(ctx, q, slugValue, viewer)
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	if len(posts) == 0 {
		return nil, nil
	}
	return &posts[0], nil
}

// FindByID retrieves a post by UUID regardless of status. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	posts, err := s.queryPosts(ctx, postSelect+` WHERE p.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	if len(posts) == 0 {
		return nil, nil
	}
	return &posts[0], nil
}

// execQuerier is satisfied by *sql.DB and *sql.Tx.
type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CreateWithTags inserts p and links tagIDs in one transaction, stamping
// published_at on a first publish. Nothing is stored when either step
// fails. A slug already used on the same day yields ErrDuplicateSlug.
func (s *PostStore) CreateWithTags(ctx context.Context, p *models.Post, tagIDs []uuid.UUID) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.insert(ctx, tx, p); err != nil {
			return err
		}
		return replaceTags(ctx, tx, p.ID, tagIDs)
	})
}

// UpdateWithTags saves the editable fields of p and replaces its tags in
// one transaction, bumping updated_at. published_at is set on the first
// publish and never cleared.
func (s *PostStore) UpdateWithTags(ctx context.Context, p *models.Post, tagIDs []uuid.UUID) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.update(ctx, tx, p); err != nil {
			return err
		}
		return replaceTags(ctx, tx, p.ID, tagIDs)
	})
}

// Delete removes a post. Its comments and tag links go with it.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func (s *PostStore) insert(ctx context.Context, q execQuerier, p *models.Post) error {
	p.StampPublished(s.now())

	err := q.QueryRowContext(ctx, `
		INSERT INTO posts (title, slug, author_id, category_id, content, image_key, status, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at, views
	`, p.Title, p.Slug, p.AuthorID, p.CategoryID, p.Content, p.ImageKey, p.Status, p.PublishedAt,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.Views)
	if err != nil {
		if errors.Is(mapPostErr(err), ErrDuplicateSlug) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (s *PostStore) update(ctx context.Context, q execQuerier, p *models.Post) error {
	p.StampPublished(s.now())

	err := q.QueryRowContext(ctx, `
		UPDATE posts
		SET title = $1, slug = $2, category_id = $3, content = $4, image_key = $5,
		    status = $6, published_at = COALESCE(published_at, $7), updated_at = now()
		WHERE id = $8
		RETURNING updated_at, published_at
	`, p.Title, p.Slug, p.CategoryID, p.Content, p.ImageKey, p.Status, p.PublishedAt, p.ID,
	).Scan(&p.UpdatedAt, &p.PublishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update post %s: %w", p.ID, sql.ErrNoRows)
	}
	if err != nil {
		if errors.Is(mapPostErr(err), ErrDuplicateSlug) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// inTx runs fn in a transaction, rolling back when fn fails.
func (s *PostStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin post tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit post tx: %w", err)
	}
	return nil
}

func replaceTags(ctx context.Context, q execQuerier, postID uuid.UUID, tagIDs []uuid.UUID) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("clear post tags: %w", err)
	}
	for _, tagID := range tagIDs {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			postID, tagID,
		); err != nil {
			return fmt.Errorf("add post tag: %w", err)
		}
	}
	return nil
}

// IncrementViews adds one view in a single statement. No other column,
// updated_at included, is touched.
func (s *PostStore) IncrementViews(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE posts SET views = views + 1 WHERE id = $1`, id); err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

// attachTags loads the tags of every post in one query.
func (s *PostStore) attachTags(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	index := make(map[uuid.UUID]int, len(posts))
	placeholders := make([]string, len(posts))
	args := make([]any, len(posts))
	for i := range posts {
		index[posts[i].ID] = i
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = posts[i].ID
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT pt.post_id, t.id, t.name, t.slug, t.created_at
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY t.name
	`, args...)
	if err != nil {
		return fmt.Errorf("load post tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID uuid.UUID
		var t models.Tag
		if err := rows.Scan(&postID, &t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return fmt.Errorf("scan post tag: %w", err)
		}
		if i, ok := index[postID]; ok {
			posts[i].Tags = append(posts[i].Tags, t)
		}
	}
	return rows.Err()
}
