// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL is unavailable; sessions and the
// navigation cache run on miniredis.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"quill/internal/blog"
	"quill/internal/cache"
	"quill/internal/database"
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/render"
	"quill/internal/session"
	"quill/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "quill")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "quill")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB       *sql.DB
	Renderer *render.Renderer
	Sessions *session.Store
	Users    *store.UserStore
	Posts    *store.PostStore
	Blog     *blog.Service
	Public   *Public
	Author   *Author
	Auth     *Auth
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	mr := miniredis.RunT(t)
	vk := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { vk.Close() })

	renderer, err := render.New(nil)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	sessions := session.NewStore(vk, false)
	users := store.NewUserStore(db)
	posts := store.NewPostStore(db)
	svc := blog.NewFromStores(
		posts,
		store.NewCategoryStore(db),
		store.NewTagStore(db),
		store.NewCommentStore(db),
		users,
		store.NewProfileStore(db),
		cache.NewNavCache(vk, time.Minute),
	)

	return &testEnv{
		DB:       db,
		Renderer: renderer,
		Sessions: sessions,
		Users:    users,
		Posts:    posts,
		Blog:     svc,
		Public:   NewPublic(renderer, svc),
		Author:   NewAuthor(renderer, svc, nil),
		Auth:     NewAuth(renderer, sessions, svc),
	}
}

// newUser creates a throwaway user that is removed, with everything it
// wrote, when the test ends.
func (env *testEnv) newUser(t *testing.T) *models.User {
	t.Helper()
	name := "h" + strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	u, err := env.Users.Create(context.Background(), name, name+"@handler-test.local", "testpass123", "", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { env.DB.Exec("DELETE FROM users WHERE id = $1", u.ID) })
	return u
}

func (env *testEnv) newPost(t *testing.T, author *models.User, status models.PostStatus) *models.Post {
	t.Helper()
	p := &models.Post{
		Title:    "Handler test post",
		Slug:     "handler-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:10],
		AuthorID: author.ID,
		Content:  strings.Repeat("Handler test body. ", 5),
		Status:   status,
	}
	if err := env.Posts.CreateWithTags(context.Background(), p, nil); err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

// testSession creates a session.Data for user.
func testSession(u *models.User) *session.Data {
	return &session.Data{UserID: u.ID, Username: u.Username, Email: u.Email}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return middleware.WithSession(ctx, data)
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withChiURLParamAndSession adds both chi URL param and session to a request.
func withChiURLParamAndSession(r *http.Request, key, value string, sess *session.Data) *http.Request {
	r = withChiURLParam(r, key, value)
	return r.WithContext(ctxWithSession(r.Context(), sess))
}

// flashes returns the flash messages written to the response.
func flashes(resp *http.Response) []session.Flash {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range resp.Cookies() {
		req.AddCookie(c)
	}
	return session.PopFlashes(httptest.NewRecorder(), req)
}
