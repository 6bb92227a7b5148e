// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"quill/internal/database"
	"quill/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "quill")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "quill")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// uniq returns a short random token for names that must not collide
// with other test runs.
func uniq() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

// newUser creates a throwaway user. Deleting it at cleanup cascades to
// its posts, comments and profile.
func newUser(t *testing.T, db *sql.DB) *models.User {
	t.Helper()
	name := "u" + uniq()
	u, err := NewUserStore(db).Create(context.Background(), name, name+"@store-test.local", "testpass123", "", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE id = $1", u.ID) })
	return u
}

func newCategory(t *testing.T, db *sql.DB) *models.Category {
	t.Helper()
	c, err := NewCategoryStore(db).Create(context.Background(), "Cat "+uniq(), "")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM categories WHERE id = $1", c.ID) })
	return c
}

func newTag(t *testing.T, db *sql.DB, name string) *models.Tag {
	t.Helper()
	tag, err := NewTagStore(db).Create(context.Background(), name)
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM tags WHERE id = $1", tag.ID) })
	return tag
}

// newPost stores a post for author. The slug is random unless title
// already makes one unique.
func newPost(t *testing.T, db *sql.DB, author *models.User, title string, status models.PostStatus, category *models.Category) *models.Post {
	t.Helper()
	p := &models.Post{
		Title:    title,
		Slug:     "post-" + uniq(),
		AuthorID: author.ID,
		Content:  "Body text for " + title,
		Status:   status,
	}
	if category != nil {
		p.CategoryID = &category.ID
	}
	if err := NewPostStore(db).CreateWithTags(context.Background(), p, nil); err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

func addComment(t *testing.T, db *sql.DB, post *models.Post, author *models.User) *models.Comment {
	t.Helper()
	c := &models.Comment{PostID: post.ID, AuthorID: author.ID, Content: "A thoughtful comment"}
	if err := NewCommentStore(db).Create(context.Background(), c); err != nil {
		t.Fatalf("create comment: %v", err)
	}
	return c
}
