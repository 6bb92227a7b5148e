package blog

import (
	"context"
	"fmt"

	"quill/internal/cache"
	"quill/internal/models"
)

const (
	// SidebarTags is how many tags the listing sidebar shows.
	SidebarTags = 10
	// SidebarPopular is how many popular posts the listing sidebar shows.
	SidebarPopular = 5
	// HomeLatest is how many posts the landing page shows.
	HomeLatest = 3
	// RelatedLimit is how many related posts a post page shows.
	RelatedLimit = 3
	// ProfileLatest is how many posts a profile page shows.
	ProfileLatest = 5
)

// Sidebar is the navigation shown next to the post listing.
type Sidebar struct {
	Categories []models.Category
	Tags       []models.Tag
	Popular    []models.Post
}

// Sidebar loads the listing sidebar, serving each part from the nav cache
// when possible.
func (s *Service) Sidebar(ctx context.Context) (*Sidebar, error) {
	cats, err := cache.Remember(ctx, s.nav, cache.KeyCategories, s.categories.ListWithCounts)
	if err != nil {
		return nil, fmt.Errorf("sidebar categories: %w", err)
	}

	tags, err := cache.Remember(ctx, s.nav, cache.KeyTopTags, func(ctx context.Context) ([]models.Tag, error) {
		return s.tags.ListWithCounts(ctx, SidebarTags)
	})
	if err != nil {
		return nil, fmt.Errorf("sidebar tags: %w", err)
	}

	popular, err := cache.Remember(ctx, s.nav, cache.PopularKey(SidebarPopular), func(ctx context.Context) ([]models.Post, error) {
		return s.posts.Popular(ctx, SidebarPopular)
	})
	if err != nil {
		return nil, fmt.Errorf("sidebar popular posts: %w", err)
	}

	return &Sidebar{Categories: cats, Tags: tags, Popular: popular}, nil
}

// Home returns the latest published posts for the landing page.
func (s *Service) Home(ctx context.Context) ([]models.Post, error) {
	posts, err := s.posts.Recent(ctx, HomeLatest)
	if err != nil {
		return nil, fmt.Errorf("home posts: %w", err)
	}
	return posts, nil
}

// invalidateNav drops cached navigation after a write that changes counts
// or ordering.
func (s *Service) invalidateNav(ctx context.Context) {
	s.nav.Invalidate(ctx)
}
