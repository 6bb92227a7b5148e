package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func flashCookie(w *httptest.ResponseRecorder) *http.Cookie {
	var found *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == FlashCookieName {
			found = c
		}
	}
	return found
}

func TestFlashRoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/post/create/", nil)

	AddFlash(w, r, FlashSuccess, "Post created successfully!")
	AddFlash(w, r, FlashInfo, "Second message")

	c := flashCookie(w)
	if c == nil {
		t.Fatal("expected flash cookie")
	}

	next := httptest.NewRequest(http.MethodGet, "/post/x/", nil)
	next.AddCookie(c)
	w2 := httptest.NewRecorder()

	got := PopFlashes(w2, next)
	if len(got) != 2 {
		t.Fatalf("PopFlashes returned %d messages, want 2", len(got))
	}
	if got[0].Kind != FlashSuccess || got[0].Message != "Post created successfully!" {
		t.Errorf("first flash = %+v", got[0])
	}
	if got[1].Kind != FlashInfo {
		t.Errorf("second flash = %+v", got[1])
	}

	cleared := flashCookie(w2)
	if cleared == nil || cleared.MaxAge >= 0 {
		t.Error("expected flash cookie to be cleared")
	}
}

func TestPopFlashesEmpty(t *testing.T) {
	w := httptest.NewRecorder()
	if got := PopFlashes(w, httptest.NewRequest(http.MethodGet, "/", nil)); got != nil {
		t.Errorf("PopFlashes = %v, want nil", got)
	}
	if flashCookie(w) != nil {
		t.Error("no cookie should be written when nothing is queued")
	}
}

func TestPopFlashesIgnoresGarbage(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: FlashCookieName, Value: "%%%not-base64"})
	if got := PopFlashes(httptest.NewRecorder(), r); got != nil {
		t.Errorf("PopFlashes = %v, want nil", got)
	}
}
