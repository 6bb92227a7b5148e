// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the HTTP handlers of the blog. Handlers are
// grouped by audience: Public for readers, Author for signed-in writers and
// Auth for sign-in, sign-out and registration.
package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"quill/internal/blog"
	"quill/internal/forms"
	"quill/internal/render"
	"quill/internal/storage"
)

// maxUploadSize bounds multipart bodies for post and profile forms.
const maxUploadSize = 10 << 20

// page is a shorthand for building render.PageData.
func page(title, section string, data map[string]any) *render.PageData {
	return &render.PageData{Title: title, Section: section, Data: data}
}

// renderStatus shows the error page with the given status.
func renderStatus(rn *render.Renderer, w http.ResponseWriter, r *http.Request, status int, message string) {
	rn.Page(w, r, status, "error", page(http.StatusText(status), "", map[string]any{
		"Status":  status,
		"Message": message,
	}))
}

func notFound(rn *render.Renderer, w http.ResponseWriter, r *http.Request) {
	renderStatus(rn, w, r, http.StatusNotFound, "The page you are looking for does not exist.")
}

func serverError(rn *render.Renderer, w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg, "error", err, "path", r.URL.Path)
	renderStatus(rn, w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}

// failLookup handles errors from resolving a record: 404 for missing
// records, 500 otherwise.
func failLookup(rn *render.Renderer, w http.ResponseWriter, r *http.Request, msg string, err error) {
	if errors.Is(err, blog.ErrNotFound) {
		notFound(rn, w, r)
		return
	}
	serverError(rn, w, r, msg, err)
}

// fieldErrors returns the field messages of a validation error.
func fieldErrors(err error) (forms.FieldErrors, bool) {
	ve, ok := forms.AsValidation(err)
	if !ok {
		return nil, false
	}
	return ve.Fields, true
}

// parseForm reads urlencoded and multipart bodies alike.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
		return r.ParseMultipartForm(maxUploadSize)
	}
	return r.ParseForm()
}

// uploadImage stores the file in field under prefix and returns its key.
// It returns nil when storage is not configured or no file was sent.
func uploadImage(r *http.Request, client *storage.Client, field, prefix string) (*string, error) {
	if client == nil || r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	// Detect content type by sniffing the first 512 bytes.
	sniff := make([]byte, 512)
	n, err := file.Read(sniff)
	if err != nil && err != io.EOF {
		return nil, err
	}
	contentType := http.DetectContentType(sniff[:n])
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	key := storage.NewKey(prefix, time.Now(), filepath.Base(header.Filename))
	if err := client.Upload(r.Context(), key, contentType, file, header.Size); err != nil {
		return nil, err
	}
	return &key, nil
}

// safeNext returns next when it is a local path, otherwise fallback.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return fallback
	}
	return next
}
