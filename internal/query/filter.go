// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package query turns a post listing request into a SQL predicate and
// ordering. The compiled clause expects the posts table aliased as "p" and
// categories LEFT JOINed as "c".
package query

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Order selects how a post listing is sorted.
type Order string

const (
	// OrderRecent sorts newest first. It is the default.
	OrderRecent Order = "recent"
	// OrderPopular sorts by comment count, newest first among ties.
	OrderPopular Order = "popular"
)

// CommentCountExpr counts every comment on the post, active or not.
const CommentCountExpr = `(SELECT COUNT(*) FROM comments cm WHERE cm.post_id = p.id)`

// Filter describes which posts a listing should contain. The zero value
// matches every post, drafts included, ordered by recency.
type Filter struct {
	PublishedOnly bool
	Search        string
	CategorySlug  string
	CategoryID    uuid.UUID
	TagSlug       string
	AuthorID      uuid.UUID
	ExcludeID     uuid.UUID
	Order         Order
}

// Clause is a compiled filter. Where is empty when nothing restricts the
// result; Args hold the values for the $n placeholders in Where.
type Clause struct {
	Where   string
	Args    []any
	OrderBy string
}

// FromValues reads the public listing parameters: search, category, tag and
// sort=popular. It never restricts to published posts; callers decide that.
func FromValues(v url.Values) Filter {
	f := Filter{
		Search:       strings.TrimSpace(v.Get("search")),
		CategorySlug: strings.TrimSpace(v.Get("category")),
		TagSlug:      strings.TrimSpace(v.Get("tag")),
		Order:        OrderRecent,
	}
	if v.Get("sort") == string(OrderPopular) {
		f.Order = OrderPopular
	}
	return f
}

// Values encodes the user-facing parts of the filter so pagination links
// keep the active search and filters.
func (f Filter) Values() url.Values {
	v := url.Values{}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	if f.CategorySlug != "" {
		v.Set("category", f.CategorySlug)
	}
	if f.TagSlug != "" {
		v.Set("tag", f.TagSlug)
	}
	if f.Order == OrderPopular {
		v.Set("sort", string(OrderPopular))
	}
	return v
}

// IsEmpty reports whether no user-facing restriction is active.
func (f Filter) IsEmpty() bool {
	return f.Search == "" && f.CategorySlug == "" && f.TagSlug == ""
}

// Compile builds the WHERE predicate and ORDER BY list for the filter.
// Conditions are ANDed. The tag arm of the search and the tag filter are
// EXISTS subqueries, so a post is produced at most once no matter how many
// of its tags match.
func (f Filter) Compile() Clause {
	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.PublishedOnly {
		conds = append(conds, "p.status = 'published'")
	}
	if f.Search != "" {
		ph := next("%" + escapeLike(f.Search) + "%")
		conds = append(conds, fmt.Sprintf(
			"(p.title ILIKE %[1]s OR p.content ILIKE %[1]s OR EXISTS ("+
				"SELECT 1 FROM post_tags spt JOIN tags st ON st.id = spt.tag_id "+
				"WHERE spt.post_id = p.id AND st.name ILIKE %[1]s))", ph))
	}
	if f.CategorySlug != "" {
		conds = append(conds, "c.slug = "+next(f.CategorySlug))
	}
	if f.CategoryID != uuid.Nil {
		conds = append(conds, "p.category_id = "+next(f.CategoryID))
	}
	if f.TagSlug != "" {
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM post_tags fpt JOIN tags ft ON ft.id = fpt.tag_id "+
				"WHERE fpt.post_id = p.id AND ft.slug = %s)", next(f.TagSlug)))
	}
	if f.AuthorID != uuid.Nil {
		conds = append(conds, "p.author_id = "+next(f.AuthorID))
	}
	if f.ExcludeID != uuid.Nil {
		conds = append(conds, "p.id <> "+next(f.ExcludeID))
	}

	c := Clause{Args: args, OrderBy: f.orderBy()}
	if len(conds) > 0 {
		c.Where = "WHERE " + strings.Join(conds, " AND ")
	}
	return c
}

func (f Filter) orderBy() string {
	if f.Order == OrderPopular {
		return "ORDER BY " + CommentCountExpr + " DESC, p.created_at DESC, p.id DESC"
	}
	return "ORDER BY p.created_at DESC, p.id DESC"
}

// escapeLike neutralizes LIKE metacharacters so the search term matches
// literally. Backslash is the default escape character in PostgreSQL.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
