// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"quill/internal/blog"
	"quill/internal/forms"
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/render"
	"quill/internal/session"
	"quill/internal/storage"
)

// Author groups the handlers that need a signed-in user: writing posts
// and editing the own profile. Routes are wrapped in RequireAuth.
type Author struct {
	renderer      *render.Renderer
	blog          *blog.Service
	storageClient *storage.Client
}

// NewAuthor creates a new Author handler group. storageClient may be nil
// if S3 is not configured; uploads are then ignored.
func NewAuthor(renderer *render.Renderer, svc *blog.Service, storageClient *storage.Client) *Author {
	return &Author{renderer: renderer, blog: svc, storageClient: storageClient}
}

// MyPosts lists the signed-in user's posts, drafts included.
func (a *Author) MyPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := a.blog.MyPosts(r.Context(), middleware.UserIDFromCtx(r.Context()), r.URL.Query().Get("page"))
	if err != nil {
		serverError(a.renderer, w, r, "list author posts failed", err)
		return
	}
	a.renderer.Page(w, r, http.StatusOK, "my_posts", page("My posts", "my-posts", map[string]any{
		"Page": posts,
	}))
}

// PostNew renders an empty post form.
func (a *Author) PostNew(w http.ResponseWriter, r *http.Request) {
	a.renderPostForm(w, r, http.StatusOK, "Create Post", nil, forms.PostInput{Status: models.PostStatusDraft}, nil)
}

// PostCreate stores a new post and redirects to it.
func (a *Author) PostCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := a.readPostForm(w, r, "Create Post", nil)
	if !ok {
		return
	}

	post, err := a.blog.CreatePost(r.Context(), middleware.UserIDFromCtx(r.Context()), in)
	if err != nil {
		a.removeImage(r, in.ImageKey)
	}
	if errs, ok := fieldErrors(err); ok {
		a.renderPostForm(w, r, http.StatusUnprocessableEntity, "Create Post", nil, in, errs)
		return
	}
	if err != nil {
		serverError(a.renderer, w, r, "create post failed", err)
		return
	}

	slog.Info("post created", "post_id", post.ID, "slug", post.Slug)
	session.AddFlash(w, r, session.FlashSuccess, "Post created successfully!")
	http.Redirect(w, r, "/post/"+post.Slug+"/", http.StatusSeeOther)
}

// PostEdit renders the form for an existing post.
func (a *Author) PostEdit(w http.ResponseWriter, r *http.Request) {
	post, ok := a.ownedPost(w, r, "edit")
	if !ok {
		return
	}
	a.renderPostForm(w, r, http.StatusOK, "Update Post", post, forms.PostInputFrom(post), nil)
}

// PostUpdate saves changes to an existing post.
func (a *Author) PostUpdate(w http.ResponseWriter, r *http.Request) {
	post, ok := a.ownedPost(w, r, "edit")
	if !ok {
		return
	}
	in, ok := a.readPostForm(w, r, "Update Post", post)
	if !ok {
		return
	}

	previous := post.ImageKey
	updated, err := a.blog.UpdatePost(r.Context(), middleware.UserIDFromCtx(r.Context()), post.Slug, in)
	if err != nil {
		a.removeImage(r, in.ImageKey)
	}
	if errs, ok := fieldErrors(err); ok {
		a.renderPostForm(w, r, http.StatusUnprocessableEntity, "Update Post", post, in, errs)
		return
	}
	if !a.handleOwnership(w, r, err, updated, "edit") {
		return
	}
	if replaced(previous, in.ImageKey) {
		a.removeImage(r, previous)
	}

	session.AddFlash(w, r, session.FlashSuccess, "Post updated successfully!")
	http.Redirect(w, r, "/post/"+updated.Slug+"/", http.StatusSeeOther)
}

// PostDeleteConfirm asks before deleting a post.
func (a *Author) PostDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	post, ok := a.ownedPost(w, r, "delete")
	if !ok {
		return
	}
	a.renderer.Page(w, r, http.StatusOK, "post_confirm_delete", page("Delete post", "my-posts", map[string]any{
		"Post": post,
	}))
}

// PostDelete removes a post.
func (a *Author) PostDelete(w http.ResponseWriter, r *http.Request) {
	post, err := a.blog.DeletePost(r.Context(), middleware.UserIDFromCtx(r.Context()), chi.URLParam(r, "slug"))
	if !a.handleOwnership(w, r, err, post, "delete") {
		return
	}
	a.removeImage(r, post.ImageKey)

	session.AddFlash(w, r, session.FlashSuccess, "Post deleted successfully!")
	http.Redirect(w, r, "/posts/", http.StatusSeeOther)
}

// ProfileEdit renders the profile form.
func (a *Author) ProfileEdit(w http.ResponseWriter, r *http.Request) {
	u, p, err := a.blog.ProfileForEdit(r.Context(), middleware.UserIDFromCtx(r.Context()))
	if err != nil {
		failLookup(a.renderer, w, r, "load profile failed", err)
		return
	}
	a.renderProfileForm(w, r, http.StatusOK, forms.ProfileInputFrom(u, p), nil)
}

// ProfileUpdate saves the profile form.
func (a *Author) ProfileUpdate(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		renderStatus(a.renderer, w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}
	in := forms.ProfileFromValues(r.PostForm)
	if errs, ok := fieldErrors(forms.Validate(in)); ok {
		a.renderProfileForm(w, r, http.StatusUnprocessableEntity, in, errs)
		return
	}

	actor := middleware.UserIDFromCtx(r.Context())
	_, current, err := a.blog.ProfileForEdit(r.Context(), actor)
	if err != nil {
		failLookup(a.renderer, w, r, "load profile failed", err)
		return
	}

	key, err := uploadImage(r, a.storageClient, "profile_picture", storage.ProfilesPrefix)
	if err != nil {
		slog.Error("profile picture upload failed", "error", err)
		a.renderProfileForm(w, r, http.StatusUnprocessableEntity, in, forms.FieldErrors{
			"profile_picture": "The picture could not be uploaded.",
		})
		return
	}
	in.PictureKey = key

	u, err := a.blog.UpdateProfile(r.Context(), actor, in)
	if err != nil {
		a.removeImage(r, key)
	}
	if errs, ok := fieldErrors(err); ok {
		a.renderProfileForm(w, r, http.StatusUnprocessableEntity, in, errs)
		return
	}
	if err != nil {
		failLookup(a.renderer, w, r, "update profile failed", err)
		return
	}
	if replaced(current.PictureKey, key) {
		a.removeImage(r, current.PictureKey)
	}

	session.AddFlash(w, r, session.FlashSuccess, "Your profile has been updated successfully!")
	http.Redirect(w, r, "/profile/"+u.Username+"/", http.StatusSeeOther)
}

// ownedPost resolves the post in the URL and checks the caller may change
// it. It writes the response and returns false otherwise.
func (a *Author) ownedPost(w http.ResponseWriter, r *http.Request, action string) (*models.Post, bool) {
	post, err := a.blog.PostForEdit(r.Context(), middleware.UserIDFromCtx(r.Context()), chi.URLParam(r, "slug"))
	if !a.handleOwnership(w, r, err, post, action) {
		return nil, false
	}
	return post, true
}

// handleOwnership maps post write errors to responses. Permission errors
// flash a message and send the user back to the post.
func (a *Author) handleOwnership(w http.ResponseWriter, r *http.Request, err error, post *models.Post, action string) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, blog.ErrPermissionDenied) && post != nil:
		session.AddFlash(w, r, session.FlashError, "You do not have permission to "+action+" this post.")
		http.Redirect(w, r, "/post/"+post.Slug+"/", http.StatusSeeOther)
	default:
		failLookup(a.renderer, w, r, action+" post failed", err)
	}
	return false
}

// readPostForm parses and validates the post form, then uploads its
// image. Invalid input is answered directly, nothing is uploaded and ok
// is false.
func (a *Author) readPostForm(w http.ResponseWriter, r *http.Request, title string, post *models.Post) (forms.PostInput, bool) {
	if err := parseForm(w, r); err != nil {
		renderStatus(a.renderer, w, r, http.StatusBadRequest, "The form could not be read.")
		return forms.PostInput{}, false
	}

	in, decodeErr := forms.PostFromValues(r.PostForm)
	if errs, ok := fieldErrors(forms.Merge(decodeErr, forms.Validate(in))); ok {
		a.renderPostForm(w, r, http.StatusUnprocessableEntity, title, post, in, errs)
		return in, false
	}

	key, err := uploadImage(r, a.storageClient, "image", storage.PostsPrefix)
	if err != nil {
		slog.Error("post image upload failed", "error", err)
		a.renderPostForm(w, r, http.StatusUnprocessableEntity, title, post, in, forms.FieldErrors{
			"image": "The image could not be uploaded.",
		})
		return in, false
	}
	in.ImageKey = key
	return in, true
}

// removeImage deletes an uploaded object. Failures are only logged.
func (a *Author) removeImage(r *http.Request, key *string) {
	if key == nil || a.storageClient == nil {
		return
	}
	if err := a.storageClient.Delete(r.Context(), *key); err != nil {
		slog.Warn("delete image failed", "error", err, "key", *key)
	}
}

// replaced reports whether a new upload took the place of an older object.
func replaced(previous, next *string) bool {
	return previous != nil && next != nil && *previous != *next
}

func (a *Author) renderPostForm(w http.ResponseWriter, r *http.Request, status int, title string, post *models.Post, in forms.PostInput, errs forms.FieldErrors) {
	cats, tags, err := a.blog.FormChoices(r.Context())
	if err != nil {
		serverError(a.renderer, w, r, "load form choices failed", err)
		return
	}
	data := page(title, "create", map[string]any{
		"Form":       in,
		"Post":       post,
		"Categories": cats,
		"Tags":       tags,
	})
	data.Errors = errs
	a.renderer.Page(w, r, status, "post_form", data)
}

func (a *Author) renderProfileForm(w http.ResponseWriter, r *http.Request, status int, in forms.ProfileInput, errs forms.FieldErrors) {
	data := page("Edit profile", "profile", map[string]any{"Form": in})
	data.Errors = errs
	a.renderer.Page(w, r, status, "profile_update", data)
}
