// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package forms

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"quill/internal/models"
)

// DateLayout is the accepted birth date format.
const DateLayout = "2006-01-02"

// PostInput is the create/update post form.
type PostInput struct {
	Title      string            `form:"title" validate:"required,min=10,max=200"`
	Slug       string            `form:"slug" validate:"omitempty,max=200,slug"`
	Content    string            `form:"content" validate:"required,min=50"`
	Status     models.PostStatus `form:"status" validate:"required,oneof=draft published"`
	CategoryID *uuid.UUID        `form:"category"`
	TagIDs     []uuid.UUID       `form:"tags"`

	// ImageKey is set by the handler after an upload; nil keeps the
	// current image.
	ImageKey *string `form:"-"`
}

// PostFromValues reads the post form. Unparseable category or tag ids are
// reported as field errors.
func PostFromValues(v url.Values) (PostInput, *ValidationError) {
	in := PostInput{
		Title:   strings.TrimSpace(v.Get("title")),
		Slug:    strings.TrimSpace(v.Get("slug")),
		Content: v.Get("content"),
		Status:  models.PostStatus(v.Get("status")),
	}

	var verr *ValidationError
	if raw := v.Get("category"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			verr = NewValidationError("category", "Select a valid choice.")
		} else {
			in.CategoryID = &id
		}
	}
	for _, raw := range v["tags"] {
		id, err := uuid.Parse(raw)
		if err != nil {
			if verr == nil {
				verr = &ValidationError{}
			}
			verr.Add("tags", "Select a valid choice.")
			continue
		}
		in.TagIDs = append(in.TagIDs, id)
	}
	return in, verr
}

// PostInputFrom fills the form from an existing post for editing.
func PostInputFrom(p *models.Post) PostInput {
	in := PostInput{
		Title:      p.Title,
		Slug:       p.Slug,
		Content:    p.Content,
		Status:     p.Status,
		CategoryID: p.CategoryID,
	}
	for _, t := range p.Tags {
		in.TagIDs = append(in.TagIDs, t.ID)
	}
	return in
}

// HasTag reports whether id is selected, for rendering checkboxes.
func (in PostInput) HasTag(id uuid.UUID) bool {
	for _, t := range in.TagIDs {
		if t == id {
			return true
		}
	}
	return false
}

// CommentInput is the comment form under a post.
type CommentInput struct {
	Content string `form:"content" validate:"trimmin=5,max=1000"`
}

// RegistrationInput is the sign-up form.
type RegistrationInput struct {
	Username        string `form:"username" validate:"required,min=3,max=150,username"`
	Email           string `form:"email" validate:"required,email,max=254"`
	FirstName       string `form:"first_name" validate:"max=30"`
	LastName        string `form:"last_name" validate:"max=30"`
	Password        string `form:"password1" validate:"required,min=8"`
	PasswordConfirm string `form:"password2" validate:"required,eqfield=Password"`
}

// RegistrationFromValues reads the sign-up form.
func RegistrationFromValues(v url.Values) RegistrationInput {
	return RegistrationInput{
		Username:        strings.TrimSpace(v.Get("username")),
		Email:           strings.TrimSpace(v.Get("email")),
		FirstName:       strings.TrimSpace(v.Get("first_name")),
		LastName:        strings.TrimSpace(v.Get("last_name")),
		Password:        v.Get("password1"),
		PasswordConfirm: v.Get("password2"),
	}
}

// LoginInput is the sign-in form.
type LoginInput struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// ProfileInput is the profile form. It edits the profile and the account
// names and email together.
type ProfileInput struct {
	FirstName string `form:"first_name" validate:"max=30"`
	LastName  string `form:"last_name" validate:"max=30"`
	Email     string `form:"email" validate:"required,email,max=254"`
	Bio       string `form:"bio" validate:"max=500"`
	Website   string `form:"website" validate:"omitempty,url,max=200"`
	Location  string `form:"location" validate:"max=100"`
	BirthDate string `form:"birth_date" validate:"omitempty,datetime=2006-01-02"`

	// PictureKey is set by the handler after an upload.
	PictureKey *string `form:"-"`
}

// ProfileFromValues reads the profile form.
func ProfileFromValues(v url.Values) ProfileInput {
	return ProfileInput{
		FirstName: strings.TrimSpace(v.Get("first_name")),
		LastName:  strings.TrimSpace(v.Get("last_name")),
		Email:     strings.TrimSpace(v.Get("email")),
		Bio:       v.Get("bio"),
		Website:   strings.TrimSpace(v.Get("website")),
		Location:  strings.TrimSpace(v.Get("location")),
		BirthDate: strings.TrimSpace(v.Get("birth_date")),
	}
}

// ProfileInputFrom fills the form from stored data.
func ProfileInputFrom(u *models.User, p *models.UserProfile) ProfileInput {
	in := ProfileInput{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Bio:       p.Bio,
		Website:   p.Website,
		Location:  p.Location,
	}
	if p.BirthDate != nil {
		in.BirthDate = p.BirthDate.Format(DateLayout)
	}
	return in
}

// ParsedBirthDate returns the birth date, or nil when blank. Call after
// Validate.
func (in ProfileInput) ParsedBirthDate() *time.Time {
	if in.BirthDate == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, in.BirthDate)
	if err != nil {
		return nil
	}
	return &t
}

// Merge combines a decoding error with a validation result.
func Merge(decode *ValidationError, validated error) error {
	if decode == nil {
		return validated
	}
	if ve, ok := AsValidation(validated); ok {
		for k, msg := range ve.Fields {
			decode.Add(k, msg)
		}
		return decode
	}
	if validated != nil {
		return validated
	}
	return decode
}
