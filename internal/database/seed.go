package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"

	"quill/internal/slug"
)

// SampleCategories are created by Seed.
var SampleCategories = []string{
	"Technology", "Lifestyle", "Health", "Education",
	"Travel", "Food", "Sports", "Entertainment",
}

// SampleTags are created by Seed.
var SampleTags = []string{
	"python", "django", "web-development", "programming", "tutorial",
	"tips", "beginner", "advanced", "ai", "machine-learning",
	"healthcare", "fitness", "cooking", "photography", "design",
}

// Demo author credentials used for development posts.
const (
	DemoUsername = "demo"
	DemoEmail    = "demo@quill.local"
	DemoPassword = "demo-password"
)

const demoPostCount = 12

// Seed creates the sample categories and tags. Existing rows are left
// alone, so it is safe to run repeatedly. With withDemo set it also
// creates a demo author and a batch of generated posts, but only while
// the posts table is empty.
func Seed(db *sql.DB, withDemo bool) error {
	for _, name := range SampleCategories {
		res, err := db.Exec(`
			INSERT INTO categories (name, slug, description)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING
		`, name, slug.Generate(name), "Posts about "+strings.ToLower(name))
		if err != nil {
			return fmt.Errorf("seed category %q: %w", name, err)
		}
		logCreated(res, "category", name)
	}

	for _, name := range SampleTags {
		res, err := db.Exec(`
			INSERT INTO tags (name, slug) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, name, slug.Generate(name))
		if err != nil {
			return fmt.Errorf("seed tag %q: %w", name, err)
		}
		logCreated(res, "tag", name)
	}

	if !withDemo {
		return nil
	}
	return seedDemoPosts(db)
}

func logCreated(res sql.Result, kind, name string) {
	if n, _ := res.RowsAffected(); n > 0 {
		slog.Info("seed created "+kind, "name", name)
	}
}

func seedDemoPosts(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM posts").Scan(&count); err != nil {
		return fmt.Errorf("seed check posts: %w", err)
	}
	if count > 0 {
		slog.Info("posts already present, skipping demo content")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	var authorID string
	err = db.QueryRow(`
		INSERT INTO users (username, email, password_hash, first_name, last_name)
		VALUES ($1, $2, $3, 'Demo', 'Author')
		ON CONFLICT (username) DO UPDATE SET username = EXCLUDED.username
		RETURNING id
	`, DemoUsername, DemoEmail, string(hash)).Scan(&authorID)
	if err != nil {
		return fmt.Errorf("seed demo author: %w", err)
	}

	if _, err := db.Exec(
		"INSERT INTO user_profiles (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING", authorID,
	); err != nil {
		return fmt.Errorf("seed demo profile: %w", err)
	}

	categoryIDs, err := collectIDs(db, "SELECT id FROM categories ORDER BY name")
	if err != nil {
		return err
	}
	tagIDs, err := collectIDs(db, "SELECT id FROM tags ORDER BY name")
	if err != nil {
		return err
	}

	faker := gofakeit.New(0)
	for i := 0; i < demoPostCount; i++ {
		title := strings.TrimSuffix(faker.Sentence(6), ".")
		status := "published"
		if i%4 == 3 {
			status = "draft"
		}

		var categoryID any
		if len(categoryIDs) > 0 {
			categoryID = categoryIDs[faker.Number(0, len(categoryIDs)-1)]
		}

		var postID string
		err := db.QueryRow(`
			INSERT INTO posts (title, slug, author_id, category_id, content, status, published_at)
			VALUES ($1, $2, $3, $4, $5, $6, CASE WHEN $6 = 'published' THEN now() END)
			ON CONFLICT DO NOTHING
			RETURNING id
		`, title, slug.Generate(title), authorID, categoryID,
			faker.Paragraph(3, 4, 12, "\n\n"), status,
		).Scan(&postID)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return fmt.Errorf("seed demo post: %w", err)
		}

		for j := 0; j < 2 && len(tagIDs) > 0; j++ {
			tagID := tagIDs[faker.Number(0, len(tagIDs)-1)]
			if _, err := db.Exec(
				"INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
				postID, tagID,
			); err != nil {
				return fmt.Errorf("seed demo post tag: %w", err)
			}
		}
	}

	slog.Info("database seeded with demo posts",
		"username", DemoUsername,
		"password", DemoPassword,
		"posts", demoPostCount,
	)
	return nil
}

func collectIDs(db *sql.DB, q string) ([]string, error) {
	rows, err := db.Query(q)
	if err != nil {
		return nil, fmt.Errorf("seed collect ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("seed scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
