// Package router sets up all HTTP routes and middleware chains for Quill.
// Reader pages are public; writing and profile editing sit behind
// RequireAuth, and every form is CSRF-protected.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"quill/internal/handlers"
	"quill/internal/middleware"
	"quill/internal/session"
)

// Deps holds everything the router wires together. AuthLimiter may be nil
// to disable rate limiting of login and registration.
type Deps struct {
	Sessions      *session.Store
	Public        *handlers.Public
	Author        *handlers.Author
	Auth          *handlers.Auth
	AuthLimiter   *middleware.RateLimiter
	SecureCookies bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(middleware.SecureHeaders)

	// Health check and metrics: no session, no CSRF.
	r.Get("/health", healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.LoadSession(d.Sessions))
		r.Use(middleware.NewCSRF(d.SecureCookies))

		r.Get("/", d.Public.Home)
		r.Get("/posts/", d.Public.PostList)
		r.Get("/post/{slug}/", d.Public.PostDetail)
		r.Get("/category/{slug}/", d.Public.CategoryDetail)
		r.Get("/tag/{slug}/", d.Public.TagDetail)
		r.Get("/profile/{username}/", d.Public.Profile)

		// Sign-in and sign-up, rate limited per client IP.
		r.Group(func(r chi.Router) {
			if d.AuthLimiter != nil {
				r.Use(d.AuthLimiter.Middleware)
			}
			r.Get("/login/", d.Auth.LoginPage)
			r.Post("/login/", d.Auth.LoginSubmit)
			r.Get("/register/", d.Auth.RegisterPage)
			r.Post("/register/", d.Auth.RegisterSubmit)
		})
		r.Post("/logout/", d.Auth.Logout)

		// Signed-in area.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Post("/post/{slug}/", d.Public.PostComment)

			r.Get("/post/create/", d.Author.PostNew)
			r.Post("/post/create/", d.Author.PostCreate)
			r.Get("/post/{slug}/update/", d.Author.PostEdit)
			r.Post("/post/{slug}/update/", d.Author.PostUpdate)
			r.Get("/post/{slug}/delete/", d.Author.PostDeleteConfirm)
			r.Post("/post/{slug}/delete/", d.Author.PostDelete)
			r.Get("/my-posts/", d.Author.MyPosts)

			r.Get("/profile/update/", d.Author.ProfileEdit)
			r.Post("/profile/update/", d.Author.ProfileUpdate)
		})

		r.NotFound(d.Public.NotFound)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
