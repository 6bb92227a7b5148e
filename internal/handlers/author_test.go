// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/internal/models"
	"quill/internal/slug"
)

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestPostCreate_Valid(t *testing.T) {
	env := newTestEnv(t)
	author := env.newUser(t)
	title := "Created through the form " + uuid.NewString()[:8]

	req := postForm(url.Values{
		"title":   {title},
		"content": {strings.Repeat("Long enough body text. ", 4)},
		"status":  {"published"},
	})
	req = req.WithContext(ctxWithSession(req.Context(), testSession(author)))
	rec := httptest.NewRecorder()

	env.Author.PostCreate(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	want := slug.Generate(title)
	assert.Equal(t, "/post/"+want+"/", rec.Header().Get("Location"))

	post, err := env.Posts.FindBySlug(context.Background(), want, uuid.Nil)
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, author.ID, post.AuthorID)
	assert.NotNil(t, post.PublishedAt)
}

func TestPostCreate_InvalidRerenders(t *testing.T) {
	env := newTestEnv(t)
	author := env.newUser(t)

	req := postForm(url.Values{
		"title":   {"Short"},
		"content": {"Too short"},
		"status":  {"archived"},
	})
	req = req.WithContext(ctxWithSession(req.Context(), testSession(author)))
	rec := httptest.NewRecorder()

	env.Author.PostCreate(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	page, err := env.Blog.MyPosts(context.Background(), author.ID, "")
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
}

func TestPostEdit_Stranger(t *testing.T) {
	env := newTestEnv(t)
	author := env.newUser(t)
	stranger := env.newUser(t)
	published := env.newPost(t, author, models.PostStatusPublished)
	draft := env.newPost(t, author, models.PostStatusDraft)

	// Someone else's published post: flash and back to the post.
	req := withChiURLParamAndSession(httptest.NewRequest(http.MethodGet, "/", nil), "slug", published.Slug, testSession(stranger))
	rec := httptest.NewRecorder()
	env.Author.PostEdit(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/post/"+published.Slug+"/", rec.Header().Get("Location"))
	fl := flashes(rec.Result())
	require.Len(t, fl, 1)
	assert.Equal(t, "You do not have permission to edit this post.", fl[0].Message)

	// Someone else's draft does not exist for the stranger.
	req = withChiURLParamAndSession(httptest.NewRequest(http.MethodGet, "/", nil), "slug", draft.Slug, testSession(stranger))
	rec = httptest.NewRecorder()
	env.Author.PostEdit(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostUpdate_Owner(t *testing.T) {
	env := newTestEnv(t)
	author := env.newUser(t)
	post := env.newPost(t, author, models.PostStatusDraft)

	req := postForm(url.Values{
		"title":   {"An updated handler title"},
		"slug":    {post.Slug},
		"content": {strings.Repeat("Updated body text here. ", 4)},
		"status":  {"published"},
	})
	req = withChiURLParamAndSession(req, "slug", post.Slug, testSession(author))
	rec := httptest.NewRecorder()

	env.Author.PostUpdate(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	got, err := env.Posts.FindByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "An updated handler title", got.Title)
	assert.Equal(t, models.PostStatusPublished, got.Status)
	assert.NotNil(t, got.PublishedAt)
}

func TestPostDelete(t *testing.T) {
	env := newTestEnv(t)
	author := env.newUser(t)
	stranger := env.newUser(t)
	post := env.newPost(t, author, models.PostStatusPublished)

	req := withChiURLParamAndSession(postForm(nil), "slug", post.Slug, testSession(stranger))
	rec := httptest.NewRecorder()
	env.Author.PostDelete(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	got, _ := env.Posts.FindByID(context.Background(), post.ID)
	require.NotNil(t, got, "a stranger must not delete the post")

	req = withChiURLParamAndSession(postForm(nil), "slug", post.Slug, testSession(author))
	rec = httptest.NewRecorder()
	env.Author.PostDelete(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/posts/", rec.Header().Get("Location"))
	got, _ = env.Posts.FindByID(context.Background(), post.ID)
	assert.Nil(t, got)
}

func TestMyPosts_IncludesDrafts(t *testing.T) {
	env := newTestEnv(t)
	author := env.newUser(t)
	draft := env.newPost(t, author, models.PostStatusDraft)

	req := httptest.NewRequest(http.MethodGet, "/my-posts/", nil)
	req = req.WithContext(ctxWithSession(req.Context(), testSession(author)))
	rec := httptest.NewRecorder()

	env.Author.MyPosts(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/post/"+draft.Slug+"/")
}

func TestProfileUpdate(t *testing.T) {
	env := newTestEnv(t)
	u := env.newUser(t)

	req := postForm(url.Values{
		"first_name": {"Ada"},
		"last_name":  {"Lovelace"},
		"email":      {u.Email},
		"bio":        {"Writes about engines."},
		"website":    {"not a url"},
	})
	req = req.WithContext(ctxWithSession(req.Context(), testSession(u)))
	rec := httptest.NewRecorder()
	env.Author.ProfileUpdate(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	req = postForm(url.Values{
		"first_name": {"Ada"},
		"last_name":  {"Lovelace"},
		"email":      {u.Email},
		"bio":        {"Writes about engines."},
		"website":    {"https://example.com"},
		"birth_date": {"1815-12-10"},
	})
	req = req.WithContext(ctxWithSession(req.Context(), testSession(u)))
	rec = httptest.NewRecorder()
	env.Author.ProfileUpdate(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	got, err := env.Users.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.FirstName)
}
