// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the public site.
// Every page is paired with the base layout and the shared partials.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"quill/internal/forms"
	"quill/internal/markdown"
	"quill/internal/middleware"
	"quill/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// shared are parsed into every page.
var shared = []string{"templates/base.html", "templates/partials.html"}

// PageData holds all data passed to page templates.
type PageData struct {
	Title     string          // Page title for <title> tag
	Section   string          // Active navigation entry
	Session   *session.Data   // Current user session (nil if anonymous)
	CSRFToken string          // CSRF token for forms
	Flashes   []session.Flash // One-time notification messages
	Errors    forms.FieldErrors
	Data      map[string]any // Page-specific data
}

// MediaURL turns a stored object key into a public URL.
type MediaURL func(key string) string

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// New parses every page template from the embedded filesystem. mediaURL
// may be nil when no object storage is configured; images are then hidden.
func New(mediaURL MediaURL) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		funcMap: template.FuncMap{
			"markdown": markdown.Render,
			"date": func(t time.Time) string {
				return t.Format("January 2, 2006")
			},
			// deref safely dereferences a string pointer.
			"deref": func(s *string) string {
				if s == nil {
					return ""
				}
				return *s
			},
			"uuidEq": func(ptr *uuid.UUID, val uuid.UUID) bool {
				return ptr != nil && *ptr == val
			},
			"media": func(key *string) string {
				if key == nil || *key == "" || mediaURL == nil {
					return ""
				}
				return mediaURL(*key)
			},
			"excerpt":  excerpt,
			"pageURL":  pageURL,
			"active":   func(current, target string) bool { return current == target },
			"fieldErr": func(errs forms.FieldErrors, field string) string { return errs[field] },
		},
	}

	entries, err := fs.ReadDir(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "base.html" || name == "partials.html" {
			continue
		}
		tmplName := strings.TrimSuffix(name, ".html")

		files := append(append([]string{}, shared...), "templates/"+name)
		tmpl, err := template.New("base.html").Funcs(r.funcMap).ParseFS(templateFS, files...)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[tmplName] = tmpl
	}

	return r, nil
}

// Page renders a full page with the given status. Session, CSRF token and
// pending flashes are filled in from the request.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}
	if data == nil {
		data = &PageData{}
	}

	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}
	data.Flashes = append(data.Flashes, session.PopFlashes(w, r)...)

	// Render into a buffer so a template error can still produce a clean 500.
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		slog.Error("template execution failed", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// Has reports whether a page template exists.
func (rn *Renderer) Has(name string) bool {
	_, ok := rn.templates[name]
	return ok
}

// pageURL returns the query string for page n, keeping the other
// listing parameters.
func pageURL(v url.Values, n int) string {
	q := url.Values{}
	for k, vals := range v {
		if k != "page" {
			q[k] = vals
		}
	}
	q.Set("page", strconv.Itoa(n))
	return "?" + q.Encode()
}

// excerpt returns at most n words of s.
func excerpt(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "…"
}
