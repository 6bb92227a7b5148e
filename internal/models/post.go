// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the publishing state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// Valid reports whether s is one of the known statuses.
func (s PostStatus) Valid() bool {
	return s == PostStatusDraft || s == PostStatusPublished
}

// Post is a blog entry written by a single author. Slugs are unique per
// creation day, not globally.
type Post struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	AuthorID    uuid.UUID  `json:"author_id"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	Content     string     `json:"content"`
	ImageKey    *string    `json:"image_key,omitempty"`
	Status      PostStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Views       int        `json:"views"`

	// Relations and annotations filled in by store queries.
	Author       *User     `json:"author,omitempty"`
	Category     *Category `json:"category,omitempty"`
	Tags         []Tag     `json:"tags,omitempty"`
	CommentCount int       `json:"comment_count"`
}

// IsPublished returns true if the post is in published status.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// StampPublished records the first transition into published status.
// An existing timestamp is never overwritten, and reverting to draft does
// not clear it, so a republished post keeps its original publish time.
func (p *Post) StampPublished(now time.Time) {
	if p.Status == PostStatusPublished && p.PublishedAt == nil {
		p.PublishedAt = &now
	}
}

// IsOwnedBy reports whether userID authored the post.
func (p *Post) IsOwnedBy(userID uuid.UUID) bool {
	return userID != uuid.Nil && p.AuthorID == userID
}

// Comment is a reader response attached to a post. Moderation flips
// Active to false instead of deleting the row.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Content   string    `json:"content"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Author *User `json:"author,omitempty"`
}
