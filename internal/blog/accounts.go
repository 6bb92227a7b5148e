package blog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"quill/internal/forms"
	"quill/internal/models"
	"quill/internal/query"
	"quill/internal/store"
)

// InvalidLoginMessage is the message shown for any failed sign-in.
const InvalidLoginMessage = "Please enter a correct username and password. Note that both fields may be case-sensitive."

// ProfilePage is a public profile with the user's latest posts.
type ProfilePage struct {
	User    *models.User
	Profile *models.UserProfile
	Posts   []models.Post
}

// Register validates in, creates the account and its empty profile.
func (s *Service) Register(ctx context.Context, in forms.RegistrationInput) (*models.User, error) {
	err := forms.Validate(in)
	verr, _ := forms.AsValidation(err)
	if err != nil && verr == nil {
		return nil, err
	}
	if verr == nil {
		verr = &forms.ValidationError{}
	}

	if in.Username != "" {
		taken, err := s.users.UsernameExists(ctx, in.Username)
		if err != nil {
			return nil, fmt.Errorf("check username: %w", err)
		}
		if taken {
			verr.Add("username", "A user with that username already exists.")
		}
	}
	if in.Email != "" {
		taken, err := s.users.EmailExists(ctx, in.Email, uuid.Nil)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if taken {
			verr.Add("email", "A user with this email already exists.")
		}
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	u, err := s.users.Create(ctx, in.Username, in.Email, in.Password, in.FirstName, in.LastName)
	// Lost a race with a concurrent sign-up.
	if errors.Is(err, store.ErrDuplicateEmail) {
		return nil, forms.NewValidationError("email", "A user with this email already exists.")
	}
	if errors.Is(err, store.ErrDuplicate) {
		return nil, forms.NewValidationError("username", "A user with that username already exists.")
	}
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if _, err := s.profiles.Ensure(ctx, u.ID); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return u, nil
}

// Authenticate checks a username and password. Every failure yields the
// same form-level error.
func (s *Service) Authenticate(ctx context.Context, in forms.LoginInput) (*models.User, error) {
	if err := forms.Validate(in); err != nil {
		return nil, err
	}
	u, err := s.users.FindByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil || !s.users.CheckPassword(u, in.Password) {
		return nil, forms.NewValidationError("form", InvalidLoginMessage)
	}
	return u, nil
}

// Profile loads a public profile, creating an empty one when the user has
// none yet.
func (s *Service) Profile(ctx context.Context, username string) (*ProfilePage, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, ErrNotFound
	}

	profile, err := s.profiles.Ensure(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}
	page, err := s.posts.List(ctx, query.Filter{PublishedOnly: true, AuthorID: u.ID}, "1", ProfileLatest)
	if err != nil {
		return nil, fmt.Errorf("profile posts: %w", err)
	}
	return &ProfilePage{User: u, Profile: profile, Posts: page.Posts}, nil
}

// ProfileForEdit returns the signed-in user's account and profile.
func (s *Service) ProfileForEdit(ctx context.Context, actor uuid.UUID) (*models.User, *models.UserProfile, error) {
	u, err := s.users.FindByID(ctx, actor)
	if err != nil {
		return nil, nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, nil, ErrNotFound
	}
	p, err := s.profiles.Ensure(ctx, actor)
	if err != nil {
		return nil, nil, fmt.Errorf("ensure profile: %w", err)
	}
	return u, p, nil
}

// UpdateProfile saves the profile form for actor, names and email
// included.
func (s *Service) UpdateProfile(ctx context.Context, actor uuid.UUID, in forms.ProfileInput) (*models.User, error) {
	u, p, err := s.ProfileForEdit(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := forms.Validate(in); err != nil {
		return u, err
	}

	taken, err := s.users.EmailExists(ctx, in.Email, actor)
	if err != nil {
		return u, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return u, forms.NewValidationError("email", "A user with this email already exists.")
	}

	p.Bio = in.Bio
	p.Website = in.Website
	p.Location = in.Location
	p.BirthDate = in.ParsedBirthDate()
	if in.PictureKey != nil {
		p.PictureKey = in.PictureKey
	}
	if err := s.profiles.Update(ctx, p); err != nil {
		return u, fmt.Errorf("update profile: %w", err)
	}

	err = s.users.UpdateAccount(ctx, actor, in.FirstName, in.LastName, in.Email)
	if errors.Is(err, store.ErrDuplicate) {
		return u, forms.NewValidationError("email", "A user with this email already exists.")
	}
	if err != nil {
		return u, fmt.Errorf("update account: %w", err)
	}

	u.FirstName, u.LastName, u.Email = in.FirstName, in.LastName, in.Email
	return u, nil
}
