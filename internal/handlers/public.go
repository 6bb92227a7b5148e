// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"quill/internal/blog"
	"quill/internal/forms"
	"quill/internal/middleware"
	"quill/internal/query"
	"quill/internal/render"
	"quill/internal/session"
)

// Public groups the reader-facing handlers.
type Public struct {
	renderer *render.Renderer
	blog     *blog.Service
}

// NewPublic creates a new Public handler group.
func NewPublic(renderer *render.Renderer, svc *blog.Service) *Public {
	return &Public{renderer: renderer, blog: svc}
}

// Home renders the landing page with the latest posts.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	latest, err := p.blog.Home(r.Context())
	if err != nil {
		serverError(p.renderer, w, r, "load home posts failed", err)
		return
	}
	p.renderer.Page(w, r, http.StatusOK, "home", page("", "home", map[string]any{
		"Latest": latest,
	}))
}

// PostList renders the published post listing with search, category and
// tag filters and the sidebar.
func (p *Public) PostList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := r.URL.Query()
	f := query.FromValues(params)

	posts, err := p.blog.ListPosts(ctx, f, params.Get("page"))
	if err != nil {
		serverError(p.renderer, w, r, "list posts failed", err)
		return
	}
	sidebar, err := p.blog.Sidebar(ctx)
	if err != nil {
		serverError(p.renderer, w, r, "load sidebar failed", err)
		return
	}

	p.renderer.Page(w, r, http.StatusOK, "post_list", page("Posts", "posts", map[string]any{
		"Page":    posts,
		"Filter":  f,
		"Query":   f.Values(),
		"Sidebar": sidebar,
	}))
}

// PostDetail renders a single post and counts the view.
func (p *Public) PostDetail(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.UserIDFromCtx(r.Context())
	d, err := p.blog.PostDetail(r.Context(), chi.URLParam(r, "slug"), viewer)
	if err != nil {
		failLookup(p.renderer, w, r, "load post failed", err)
		return
	}
	p.renderDetail(w, r, http.StatusOK, d, forms.CommentInput{}, nil)
}

// PostComment adds a comment to the post. Invalid comments re-render the
// post with the error.
func (p *Public) PostComment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderStatus(p.renderer, w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}
	slugParam := chi.URLParam(r, "slug")
	in := forms.CommentInput{Content: r.PostFormValue("content")}

	d, err := p.blog.AddComment(r.Context(), middleware.UserIDFromCtx(r.Context()), slugParam, in)
	if errs, ok := fieldErrors(err); ok {
		p.renderDetail(w, r, http.StatusUnprocessableEntity, d, in, errs)
		return
	}
	if err != nil {
		failLookup(p.renderer, w, r, "add comment failed", err)
		return
	}

	session.AddFlash(w, r, session.FlashSuccess, "Your comment has been added successfully!")
	http.Redirect(w, r, "/post/"+d.Post.Slug+"/", http.StatusSeeOther)
}

func (p *Public) renderDetail(w http.ResponseWriter, r *http.Request, status int, d *blog.PostDetail, in forms.CommentInput, errs forms.FieldErrors) {
	viewer := middleware.UserIDFromCtx(r.Context())
	data := page(d.Post.Title, "posts", map[string]any{
		"Detail":  d,
		"Comment": in,
		"IsOwner": d.Post.IsOwnedBy(viewer),
	})
	data.Errors = errs
	p.renderer.Page(w, r, status, "post_detail", data)
}

// CategoryDetail renders the published posts of one category.
func (p *Public) CategoryDetail(w http.ResponseWriter, r *http.Request) {
	cat, posts, err := p.blog.CategoryPosts(r.Context(), chi.URLParam(r, "slug"), r.URL.Query().Get("page"))
	if err != nil {
		failLookup(p.renderer, w, r, "load category failed", err)
		return
	}
	p.renderer.Page(w, r, http.StatusOK, "category_detail", page(cat.Name, "posts", map[string]any{
		"Category": cat,
		"Page":     posts,
	}))
}

// TagDetail renders the published posts carrying one tag.
func (p *Public) TagDetail(w http.ResponseWriter, r *http.Request) {
	tag, posts, err := p.blog.TagPosts(r.Context(), chi.URLParam(r, "slug"), r.URL.Query().Get("page"))
	if err != nil {
		failLookup(p.renderer, w, r, "load tag failed", err)
		return
	}
	p.renderer.Page(w, r, http.StatusOK, "tag_detail", page("#"+tag.Name, "posts", map[string]any{
		"Tag":  tag,
		"Page": posts,
	}))
}

// Profile renders a user's public profile.
func (p *Public) Profile(w http.ResponseWriter, r *http.Request) {
	prof, err := p.blog.Profile(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		failLookup(p.renderer, w, r, "load profile failed", err)
		return
	}
	p.renderer.Page(w, r, http.StatusOK, "profile", page(prof.User.DisplayName(), "profile", map[string]any{
		"Profile": prof,
		"IsSelf":  middleware.UserIDFromCtx(r.Context()) == prof.User.ID,
	}))
}

// NotFound renders the 404 page for unmatched routes.
func (p *Public) NotFound(w http.ResponseWriter, r *http.Request) {
	notFound(p.renderer, w, r)
}
