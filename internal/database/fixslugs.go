package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"quill/internal/slug"
)

// FixSlugs fills in empty category and tag slugs from their names and
// reports how many rows of each kind were repaired.
func FixSlugs(db *sql.DB) (categories, tags int, err error) {
	categories, err = fixTableSlugs(db, "categories")
	if err != nil {
		return 0, 0, err
	}
	tags, err = fixTableSlugs(db, "tags")
	if err != nil {
		return categories, 0, err
	}
	return categories, tags, nil
}

// fixTableSlugs is only called with the fixed table names above.
func fixTableSlugs(db *sql.DB, table string) (int, error) {
	rows, err := db.Query("SELECT id, name FROM " + table + " WHERE slug = ''")
	if err != nil {
		return 0, fmt.Errorf("list empty %s slugs: %w", table, err)
	}

	type row struct{ id, name string }
	var pending []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.name); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan %s: %w", table, err)
		}
		pending = append(pending, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate %s: %w", table, err)
	}

	for _, r := range pending {
		s := slug.Generate(r.name)
		if _, err := db.Exec("UPDATE "+table+" SET slug = $1 WHERE id = $2", s, r.id); err != nil {
			return 0, fmt.Errorf("update %s slug: %w", table, err)
		}
		slog.Info("fixed slug", "table", table, "name", r.name, "slug", s)
	}
	return len(pending), nil
}
