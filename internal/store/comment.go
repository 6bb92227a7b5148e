package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"quill/internal/models"
)

// CommentStore handles comment persistence.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore with the given database connection.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

// Create inserts an active comment and fills in its id and timestamps.
func (s *CommentStore) Create(ctx context.Context, c *models.Comment) error {
	c.Active = true
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO comments (post_id, author_id, content, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, c.PostID, c.AuthorID, c.Content, c.Active).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// ListActive returns the active comments of a post with their authors,
// newest first.
func (s *CommentStore) ListActive(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cm.id, cm.post_id, cm.author_id, cm.content, cm.active, cm.created_at, cm.updated_at,
		       u.id, u.username, u.email, u.first_name, u.last_name, u.created_at
		FROM comments cm
		JOIN users u ON u.id = cm.author_id
		WHERE cm.post_id = $1 AND cm.active
		ORDER BY cm.created_at DESC, cm.id DESC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		c := models.Comment{Author: &models.User{}}
		if err := rows.Scan(
			&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.Active, &c.CreatedAt, &c.UpdatedAt,
			&c.Author.ID, &c.Author.Username, &c.Author.Email, &c.Author.FirstName,
			&c.Author.LastName, &c.Author.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// Deactivate hides a comment without deleting it. It still counts toward
// the post's comment count.
func (s *CommentStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE comments SET active = false, updated_at = now() WHERE id = $1`, id,
	); err != nil {
		return fmt.Errorf("deactivate comment: %w", err)
	}
	return nil
}

// Delete removes a comment.
func (s *CommentStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}
