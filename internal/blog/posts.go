// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"quill/internal/forms"
	"quill/internal/models"
	"quill/internal/pagination"
	"quill/internal/query"
	"quill/internal/slug"
	"quill/internal/store"
)

const slugMaxLength = 200

// PostDetail is everything the post page shows.
type PostDetail struct {
	Post     *models.Post
	Comments []models.Comment
	Related  []models.Post
}

// ListPosts returns one page of published posts matching f.
func (s *Service) ListPosts(ctx context.Context, f query.Filter, pageParam string) (*store.PostPage, error) {
	f.PublishedOnly = true
	page, err := s.posts.List(ctx, f, pageParam, pagination.PublicPageSize)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return page, nil
}

// MyPosts returns one page of the author's posts, drafts included, newest
// first.
func (s *Service) MyPosts(ctx context.Context, author uuid.UUID, pageParam string) (*store.PostPage, error) {
	page, err := s.posts.List(ctx, query.Filter{AuthorID: author, Order: query.OrderRecent}, pageParam, pagination.AuthorPageSize)
	if err != nil {
		return nil, fmt.Errorf("list author posts: %w", err)
	}
	return page, nil
}

// CategoryPosts resolves a category and one page of its published posts.
func (s *Service) CategoryPosts(ctx context.Context, categorySlug, pageParam string) (*models.Category, *store.PostPage, error) {
	cat, err := s.categories.FindBySlug(ctx, categorySlug)
	if err != nil {
		return nil, nil, fmt.Errorf("find category: %w", err)
	}
	if cat == nil {
		return nil, nil, ErrNotFound
	}
	page, err := s.ListPosts(ctx, query.Filter{CategoryID: cat.ID}, pageParam)
	if err != nil {
		return nil, nil, err
	}
	return cat, page, nil
}

// TagPosts resolves a tag and one page of its published posts.
func (s *Service) TagPosts(ctx context.Context, tagSlug, pageParam string) (*models.Tag, *store.PostPage, error) {
	tag, err := s.tags.FindBySlug(ctx, tagSlug)
	if err != nil {
		return nil, nil, fmt.Errorf("find tag: %w", err)
	}
	if tag == nil {
		return nil, nil, ErrNotFound
	}
	page, err := s.ListPosts(ctx, query.Filter{TagSlug: tag.Slug}, pageParam)
	if err != nil {
		return nil, nil, err
	}
	return tag, page, nil
}

// FormChoices returns the categories and tags offered by the post form.
func (s *Service) FormChoices(ctx context.Context) ([]models.Category, []models.Tag, error) {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list categories: %w", err)
	}
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list tags: %w", err)
	}
	return cats, tags, nil
}

// PostDetail loads a post for viewer and counts one view. Drafts are only
// visible to their author.
func (s *Service) PostDetail(ctx context.Context, postSlug string, viewer uuid.UUID) (*PostDetail, error) {
	d, err := s.loadDetail(ctx, postSlug, viewer)
	if err != nil {
		return nil, err
	}
	if err := s.posts.IncrementViews(ctx, d.Post.ID); err != nil {
		return nil, fmt.Errorf("count view: %w", err)
	}
	d.Post.Views++
	return d, nil
}

func (s *Service) loadDetail(ctx context.Context, postSlug string, viewer uuid.UUID) (*PostDetail, error) {
	post, err := s.findVisible(ctx, postSlug, viewer)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.ListActive(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}
	related, err := s.posts.Related(ctx, post, RelatedLimit)
	if err != nil {
		return nil, fmt.Errorf("load related posts: %w", err)
	}
	return &PostDetail{Post: post, Comments: comments, Related: related}, nil
}

func (s *Service) findVisible(ctx context.Context, postSlug string, viewer uuid.UUID) (*models.Post, error) {
	post, err := s.posts.FindBySlug(ctx, postSlug, viewer)
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	if post == nil {
		return nil, ErrNotFound
	}
	return post, nil
}

// findOwned resolves a post that actor wants to change.
func (s *Service) findOwned(ctx context.Context, actor uuid.UUID, postSlug string) (*models.Post, error) {
	post, err := s.findVisible(ctx, postSlug, actor)
	if err != nil {
		return nil, err
	}
	if !post.IsOwnedBy(actor) {
		return post, ErrPermissionDenied
	}
	return post, nil
}

// PostForEdit returns a post its author is about to edit or delete. On
// ErrPermissionDenied the post is still returned so callers can redirect
// to it.
func (s *Service) PostForEdit(ctx context.Context, actor uuid.UUID, postSlug string) (*models.Post, error) {
	return s.findOwned(ctx, actor, postSlug)
}

// CreatePost validates in and stores a new post by author. An empty slug
// is derived from the title.
func (s *Service) CreatePost(ctx context.Context, author uuid.UUID, in forms.PostInput) (*models.Post, error) {
	if err := forms.Validate(in); err != nil {
		return nil, err
	}

	p := &models.Post{
		Title:      in.Title,
		Slug:       postSlugFor(in),
		AuthorID:   author,
		CategoryID: in.CategoryID,
		Content:    in.Content,
		ImageKey:   in.ImageKey,
		Status:     in.Status,
	}
	if p.Slug == "" {
		return nil, forms.NewValidationError("slug", "Enter a valid slug.")
	}
	if err := s.checkRefs(ctx, in); err != nil {
		return nil, err
	}

	if err := s.posts.CreateWithTags(ctx, p, in.TagIDs); err != nil {
		if errors.Is(err, store.ErrDuplicateSlug) {
			return nil, forms.NewValidationError("slug", "A post with this slug already exists for this date.")
		}
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.invalidateNav(ctx)
	return p, nil
}

// UpdatePost applies in to the post at postSlug when actor owns it.
func (s *Service) UpdatePost(ctx context.Context, actor uuid.UUID, postSlug string, in forms.PostInput) (*models.Post, error) {
	p, err := s.findOwned(ctx, actor, postSlug)
	if err != nil {
		return p, err
	}
	if err := forms.Validate(in); err != nil {
		return p, err
	}
	if err := s.checkRefs(ctx, in); err != nil {
		return p, err
	}

	p.Title = in.Title
	p.Slug = postSlugFor(in)
	p.CategoryID = in.CategoryID
	p.Content = in.Content
	p.Status = in.Status
	if in.ImageKey != nil {
		p.ImageKey = in.ImageKey
	}
	if p.Slug == "" {
		return p, forms.NewValidationError("slug", "Enter a valid slug.")
	}

	if err := s.posts.UpdateWithTags(ctx, p, in.TagIDs); err != nil {
		if errors.Is(err, store.ErrDuplicateSlug) {
			return p, forms.NewValidationError("slug", "A post with this slug already exists for this date.")
		}
		return p, fmt.Errorf("update post: %w", err)
	}

	s.invalidateNav(ctx)
	return p, nil
}

// DeletePost removes the post at postSlug when actor owns it.
func (s *Service) DeletePost(ctx context.Context, actor uuid.UUID, postSlug string) (*models.Post, error) {
	p, err := s.findOwned(ctx, actor, postSlug)
	if err != nil {
		return p, err
	}
	if err := s.posts.Delete(ctx, p.ID); err != nil {
		return p, fmt.Errorf("delete post: %w", err)
	}
	s.invalidateNav(ctx)
	return p, nil
}

// AddComment stores a comment by author on a visible post. On a
// validation error the post detail is returned, without counting a view,
// so the page can be shown again with the error.
func (s *Service) AddComment(ctx context.Context, author uuid.UUID, postSlug string, in forms.CommentInput) (*PostDetail, error) {
	if err := forms.Validate(in); err != nil {
		d, lerr := s.loadDetail(ctx, postSlug, author)
		if lerr != nil {
			return nil, lerr
		}
		return d, err
	}

	post, err := s.findVisible(ctx, postSlug, author)
	if err != nil {
		return nil, err
	}
	c := &models.Comment{PostID: post.ID, AuthorID: author, Content: in.Content}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}

	s.invalidateNav(ctx)
	return &PostDetail{Post: post}, nil
}

// checkRefs rejects a category or tags that do not exist.
func (s *Service) checkRefs(ctx context.Context, in forms.PostInput) error {
	verr := &forms.ValidationError{}
	if in.CategoryID != nil {
		cat, err := s.categories.FindByID(ctx, *in.CategoryID)
		if err != nil {
			return fmt.Errorf("check category: %w", err)
		}
		if cat == nil {
			verr.Add("category", "Select a valid choice. That choice is not one of the available choices.")
		}
	}
	if len(in.TagIDs) > 0 {
		tags, err := s.tags.FindByIDs(ctx, in.TagIDs)
		if err != nil {
			return fmt.Errorf("check tags: %w", err)
		}
		if len(tags) != len(uniqueIDs(in.TagIDs)) {
			verr.Add("tags", "Select a valid choice. One of the tags is not one of the available choices.")
		}
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func postSlugFor(in forms.PostInput) string {
	if in.Slug != "" {
		return in.Slug
	}
	return slug.Limit(slug.Generate(in.Title), slugMaxLength)
}

func uniqueIDs(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
