package session

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// FlashCookieName carries one-time messages across a redirect.
const FlashCookieName = "quill_flash"

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashError   = "error"
)

// Flash is a one-time notification shown on the next rendered page.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// AddFlash queues a message for the next page. Messages already queued
// on this response are kept.
func AddFlash(w http.ResponseWriter, r *http.Request, kind, message string) {
	flashes := readFlashes(r)
	flashes = append(flashes, Flash{Kind: kind, Message: message})

	raw, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	value := base64.RawURLEncoding.EncodeToString(raw)
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	// Later AddFlash calls on the same request see this one.
	r.AddCookie(&http.Cookie{Name: FlashCookieName, Value: value})
}

// PopFlashes returns the queued messages and clears them.
func PopFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	flashes := readFlashes(r)
	if len(flashes) == 0 {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	return flashes
}

func readFlashes(r *http.Request) []Flash {
	var c *http.Cookie
	for _, cookie := range r.Cookies() {
		if cookie.Name == FlashCookieName {
			c = cookie
		}
	}
	if c == nil || c.Value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(raw, &flashes); err != nil {
		return nil
	}
	return flashes
}
