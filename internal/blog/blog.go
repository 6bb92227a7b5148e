// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package blog holds the application rules that sit between the HTTP
// handlers and the stores: who may change a post, when a view is counted,
// how forms are validated and which sidebar data is cached.
package blog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"quill/internal/cache"
	"quill/internal/models"
	"quill/internal/query"
	"quill/internal/store"
)

var (
	// ErrNotFound is returned when the requested record does not exist or
	// is not visible to the caller.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied is returned when the caller may see a post but
	// not change it.
	ErrPermissionDenied = errors.New("permission denied")
)

// PostRepository is the post storage used by Service.
type PostRepository interface {
	List(ctx context.Context, f query.Filter, pageParam string, size int) (*store.PostPage, error)
	Recent(ctx context.Context, n int) ([]models.Post, error)
	Popular(ctx context.Context, n int) ([]models.Post, error)
	Related(ctx context.Context, post *models.Post, n int) ([]models.Post, error)
	FindBySlug(ctx context.Context, slug string, viewer uuid.UUID) (*models.Post, error)
	CreateWithTags(ctx context.Context, p *models.Post, tagIDs []uuid.UUID) error
	UpdateWithTags(ctx context.Context, p *models.Post, tagIDs []uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository is the category storage used by Service.
type CategoryRepository interface {
	ListWithCounts(ctx context.Context) ([]models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

// TagRepository is the tag storage used by Service.
type TagRepository interface {
	ListWithCounts(ctx context.Context, limit int) ([]models.Tag, error)
	List(ctx context.Context) ([]models.Tag, error)
	FindBySlug(ctx context.Context, slug string) (*models.Tag, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Tag, error)
}

// CommentRepository is the comment storage used by Service.
type CommentRepository interface {
	Create(ctx context.Context, c *models.Comment) error
	ListActive(ctx context.Context, postID uuid.UUID) ([]models.Comment, error)
}

// UserRepository is the account storage used by Service.
type UserRepository interface {
	Create(ctx context.Context, username, email, password, firstName, lastName string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	EmailExists(ctx context.Context, email string, except uuid.UUID) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateAccount(ctx context.Context, id uuid.UUID, firstName, lastName, email string) error
	CheckPassword(user *models.User, password string) bool
}

// ProfileRepository is the profile storage used by Service.
type ProfileRepository interface {
	Ensure(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	Update(ctx context.Context, p *models.UserProfile) error
}

// Deps lists the collaborators of a Service. Nav may be nil to disable
// sidebar caching.
type Deps struct {
	Posts      PostRepository
	Categories CategoryRepository
	Tags       TagRepository
	Comments   CommentRepository
	Users      UserRepository
	Profiles   ProfileRepository
	Nav        *cache.NavCache
}

// Service implements the blog operations.
type Service struct {
	posts      PostRepository
	categories CategoryRepository
	tags       TagRepository
	comments   CommentRepository
	users      UserRepository
	profiles   ProfileRepository
	nav        *cache.NavCache
}

// New creates a Service from its dependencies.
func New(d Deps) *Service {
	return &Service{
		posts:      d.Posts,
		categories: d.Categories,
		tags:       d.Tags,
		comments:   d.Comments,
		users:      d.Users,
		profiles:   d.Profiles,
		nav:        d.Nav,
	}
}

// NewFromStores wires a Service to the PostgreSQL stores.
func NewFromStores(
	posts *store.PostStore,
	categories *store.CategoryStore,
	tags *store.TagStore,
	comments *store.CommentStore,
	users *store.UserStore,
	profiles *store.ProfileStore,
	nav *cache.NavCache,
) *Service {
	return New(Deps{
		Posts:      posts,
		Categories: categories,
		Tags:       tags,
		Comments:   comments,
		Users:      users,
		Profiles:   profiles,
		Nav:        nav,
	})
}
