package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"quill/internal/blog"
	"quill/internal/forms"
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/render"
	"quill/internal/session"
)

// afterLoginPath is where sign-in and registration land by default.
const afterLoginPath = "/posts/"

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	renderer *render.Renderer
	sessions *session.Store
	blog     *blog.Service
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions *session.Store, svc *blog.Service) *Auth {
	return &Auth{renderer: renderer, sessions: sessions, blog: svc}
}

// LoginPage renders the login form. Signed-in users are sent on.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"), afterLoginPath)
	if middleware.SessionFromCtx(r.Context()) != nil {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	a.renderLogin(w, r, http.StatusOK, "", next, nil)
}

// LoginSubmit checks the credentials and starts a session.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderStatus(a.renderer, w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}
	in := forms.LoginInput{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	next := safeNext(r.PostFormValue("next"), afterLoginPath)

	user, err := a.blog.Authenticate(r.Context(), in)
	if errs, ok := fieldErrors(err); ok {
		slog.Info("login rejected", "username", in.Username)
		a.renderLogin(w, r, http.StatusUnprocessableEntity, in.Username, next, errs)
		return
	}
	if err != nil {
		serverError(a.renderer, w, r, "login lookup failed", err)
		return
	}

	if err := a.startSession(w, r, user); err != nil {
		serverError(a.renderer, w, r, "session create failed", err)
		return
	}
	session.AddFlash(w, r, session.FlashSuccess, fmt.Sprintf("Welcome back, %s!", user.Username))
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// Logout destroys the session and returns to the post listing.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	session.AddFlash(w, r, session.FlashInfo, "You have been logged out successfully.")
	http.Redirect(w, r, afterLoginPath, http.StatusSeeOther)
}

// RegisterPage renders the sign-up form.
func (a *Auth) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromCtx(r.Context()) != nil {
		http.Redirect(w, r, afterLoginPath, http.StatusSeeOther)
		return
	}
	a.renderRegister(w, r, http.StatusOK, forms.RegistrationInput{}, nil)
}

// RegisterSubmit creates the account and signs the new user in.
func (a *Auth) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromCtx(r.Context()) != nil {
		http.Redirect(w, r, afterLoginPath, http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		renderStatus(a.renderer, w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}
	in := forms.RegistrationFromValues(r.PostForm)

	user, err := a.blog.Register(r.Context(), in)
	if errs, ok := fieldErrors(err); ok {
		in.Password, in.PasswordConfirm = "", ""
		a.renderRegister(w, r, http.StatusUnprocessableEntity, in, errs)
		return
	}
	if err != nil {
		serverError(a.renderer, w, r, "register failed", err)
		return
	}
	slog.Info("user registered", "user_id", user.ID, "username", user.Username)

	if err := a.startSession(w, r, user); err != nil {
		serverError(a.renderer, w, r, "session create failed", err)
		return
	}
	session.AddFlash(w, r, session.FlashSuccess,
		fmt.Sprintf("Welcome %s! Your account has been created successfully.", user.Username))
	http.Redirect(w, r, afterLoginPath, http.StatusSeeOther)
}

func (a *Auth) startSession(w http.ResponseWriter, r *http.Request, user *models.User) error {
	_, err := a.sessions.Create(r.Context(), w, r, &session.Data{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
	return err
}

func (a *Auth) renderLogin(w http.ResponseWriter, r *http.Request, status int, username, next string, errs forms.FieldErrors) {
	data := page("Log in", "login", map[string]any{"Username": username, "Next": next})
	data.Errors = errs
	a.renderer.Page(w, r, status, "login", data)
}

func (a *Auth) renderRegister(w http.ResponseWriter, r *http.Request, status int, in forms.RegistrationInput, errs forms.FieldErrors) {
	data := page("Register", "register", map[string]any{"Form": in})
	data.Errors = errs
	a.renderer.Page(w, r, status, "register", data)
}
