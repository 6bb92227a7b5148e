package blog

import (
	"context"

	"github.com/google/uuid"

	"quill/internal/models"
	"quill/internal/pagination"
	"quill/internal/query"
	"quill/internal/store"
)

// fakePosts keeps posts in memory and records calls.
type fakePosts struct {
	posts      map[uuid.UUID]*models.Post
	tags       map[uuid.UUID][]uuid.UUID
	views      map[uuid.UUID]int
	lastFilter query.Filter
	createErr  error
	updateErr  error
	created    int
	updated    int
	deleted    int
	popular    int
}

func newFakePosts(posts ...*models.Post) *fakePosts {
	f := &fakePosts{
		posts: map[uuid.UUID]*models.Post{},
		tags:  map[uuid.UUID][]uuid.UUID{},
		views: map[uuid.UUID]int{},
	}
	for _, p := range posts {
		f.posts[p.ID] = p
	}
	return f
}

func (f *fakePosts) List(_ context.Context, flt query.Filter, pageParam string, size int) (*store.PostPage, error) {
	f.lastFilter = flt
	var out []models.Post
	for _, p := range f.posts {
		if flt.PublishedOnly && !p.IsPublished() {
			continue
		}
		if flt.AuthorID != uuid.Nil && p.AuthorID != flt.AuthorID {
			continue
		}
		out = append(out, *p)
	}
	page := pagination.New(len(out), size, pageParam)
	if len(out) > size {
		out = out[:size]
	}
	return &store.PostPage{Posts: out, Page: page}, nil
}

func (f *fakePosts) Recent(context.Context, int) ([]models.Post, error) { return nil, nil }

func (f *fakePosts) Popular(context.Context, int) ([]models.Post, error) {
	f.popular++
	return []models.Post{{Title: "Most discussed"}}, nil
}

func (f *fakePosts) Related(_ context.Context, post *models.Post, _ int) ([]models.Post, error) {
	if post.CategoryID == nil {
		return nil, nil
	}
	return []models.Post{{Title: "Sibling"}}, nil
}

func (f *fakePosts) FindBySlug(_ context.Context, slug string, viewer uuid.UUID) (*models.Post, error) {
	for _, p := range f.posts {
		if p.Slug == slug && (p.IsPublished() || p.AuthorID == viewer) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakePosts) CreateWithTags(_ context.Context, p *models.Post, tagIDs []uuid.UUID) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created++
	p.ID = uuid.New()
	f.posts[p.ID] = p
	f.tags[p.ID] = tagIDs
	return nil
}

func (f *fakePosts) UpdateWithTags(_ context.Context, p *models.Post, tagIDs []uuid.UUID) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated++
	cp := *p
	f.posts[p.ID] = &cp
	f.tags[p.ID] = tagIDs
	return nil
}

func (f *fakePosts) Delete(_ context.Context, id uuid.UUID) error {
	f.deleted++
	delete(f.posts, id)
	return nil
}

func (f *fakePosts) IncrementViews(_ context.Context, id uuid.UUID) error {
	f.views[id]++
	return nil
}

type fakeCategories struct {
	cats  []models.Category
	calls int
}

func (f *fakeCategories) ListWithCounts(context.Context) ([]models.Category, error) {
	f.calls++
	return f.cats, nil
}

func (f *fakeCategories) List(context.Context) ([]models.Category, error) { return f.cats, nil }

func (f *fakeCategories) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	for i := range f.cats {
		if f.cats[i].Slug == slug && slug != "" {
			return &f.cats[i], nil
		}
	}
	return nil, nil
}

func (f *fakeCategories) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	for i := range f.cats {
		if f.cats[i].ID == id {
			return &f.cats[i], nil
		}
	}
	return nil, nil
}

type fakeTags struct {
	tags []models.Tag
}

func (f *fakeTags) ListWithCounts(_ context.Context, limit int) ([]models.Tag, error) {
	if limit > 0 && len(f.tags) > limit {
		return f.tags[:limit], nil
	}
	return f.tags, nil
}

func (f *fakeTags) List(context.Context) ([]models.Tag, error) { return f.tags, nil }

func (f *fakeTags) FindBySlug(_ context.Context, slug string) (*models.Tag, error) {
	for i := range f.tags {
		if f.tags[i].Slug == slug {
			return &f.tags[i], nil
		}
	}
	return nil, nil
}

func (f *fakeTags) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Tag, error) {
	var out []models.Tag
	for _, t := range f.tags {
		for _, id := range ids {
			if t.ID == id {
				out = append(out, t)
				break
			}
		}
	}
	return out, nil
}

type fakeComments struct {
	created []models.Comment
}

func (f *fakeComments) Create(_ context.Context, c *models.Comment) error {
	c.ID = uuid.New()
	c.Active = true
	f.created = append(f.created, *c)
	return nil
}

func (f *fakeComments) ListActive(_ context.Context, postID uuid.UUID) ([]models.Comment, error) {
	var out []models.Comment
	for _, c := range f.created {
		if c.PostID == postID && c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeUsers struct {
	users     map[uuid.UUID]*models.User
	password  map[uuid.UUID]string
	createErr error
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{users: map[uuid.UUID]*models.User{}, password: map[uuid.UUID]string{}}
	for _, u := range users {
		f.users[u.ID] = u
		f.password[u.ID] = "correct-horse"
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, username, email, password, first, last string) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u := &models.User{ID: uuid.New(), Username: username, Email: email, FirstName: first, LastName: last}
	f.users[u.ID] = u
	f.password[u.ID] = password
	return u, nil
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeUsers) EmailExists(_ context.Context, email string, except uuid.UUID) (bool, error) {
	for _, u := range f.users {
		if u.Email == email && u.ID != except {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) UsernameExists(ctx context.Context, username string) (bool, error) {
	u, _ := f.FindByUsername(ctx, username)
	return u != nil, nil
}

func (f *fakeUsers) UpdateAccount(_ context.Context, id uuid.UUID, first, last, email string) error {
	u := f.users[id]
	u.FirstName, u.LastName, u.Email = first, last, email
	return nil
}

func (f *fakeUsers) CheckPassword(u *models.User, password string) bool {
	return f.password[u.ID] == password
}

type fakeProfiles struct {
	profiles map[uuid.UUID]*models.UserProfile
	ensured  int
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{profiles: map[uuid.UUID]*models.UserProfile{}}
}

func (f *fakeProfiles) Ensure(_ context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	f.ensured++
	p, ok := f.profiles[userID]
	if !ok {
		p = &models.UserProfile{ID: uuid.New(), UserID: userID}
		f.profiles[userID] = p
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) Update(_ context.Context, p *models.UserProfile) error {
	cp := *p
	f.profiles[p.UserID] = &cp
	return nil
}

// fixture bundles a Service with the fakes behind it.
type fixture struct {
	svc        *Service
	posts      *fakePosts
	categories *fakeCategories
	tags       *fakeTags
	comments   *fakeComments
	users      *fakeUsers
	profiles   *fakeProfiles
}

func newFixture(posts ...*models.Post) *fixture {
	f := &fixture{
		posts:      newFakePosts(posts...),
		categories: &fakeCategories{},
		tags:       &fakeTags{},
		comments:   &fakeComments{},
		users:      newFakeUsers(),
		profiles:   newFakeProfiles(),
	}
	f.svc = New(Deps{
		Posts:      f.posts,
		Categories: f.categories,
		Tags:       f.tags,
		Comments:   f.comments,
		Users:      f.users,
		Profiles:   f.profiles,
	})
	return f
}
