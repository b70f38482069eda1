package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/content"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/store"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
)

// Session cookie names.
const (
	adminSessionName   = "admin-session"
	visitorSessionName = "visitor-session"
)

// Site carries the dependencies shared by the public and admin handlers.
type Site struct {
	Store          *store.Store
	Templates      *TemplateCache
	SessionStore   *sessions.CookieStore
	Reads          *ReadCache
	BaseURL        string
	WhatsAppNumber string // used when site.config has none
}

// siteConfig reads site.config through the cache. A failed read falls back
// to defaults so pages still render.
func (s *Site) siteConfig(r *http.Request) content.SiteConfig {
	blobs, err := s.Reads.Content(r.Context())
	if err != nil {
		slog.Error("Failed to load site content", "error", err)
		return content.ParseSiteConfig("", s.WhatsAppNumber)
	}
	return content.ParseSiteConfig(blobs[content.KeySiteConfig], s.WhatsAppNumber)
}

func (s *Site) contentBlob(r *http.Request, key string) string {
	blobs, err := s.Reads.Content(r.Context())
	if err != nil {
		slog.Error("Failed to load site content", "key", key, "error", err)
		return ""
	}
	return blobs[key]
}

// pageData builds the values every layout needs. It consumes the flashes
// queued in the admin and visitor sessions.
func (s *Site) pageData(w http.ResponseWriter, r *http.Request) map[string]interface{} {
	var flashes []FlashMessage
	admin, _ := s.SessionStore.Get(r, adminSessionName)
	for _, session := range []*sessions.Session{admin, visitorSession(s.SessionStore, r)} {
		if f := GetFlash(session); len(f) > 0 {
			flashes = append(flashes, f...)
			if err := session.Save(r, w); err != nil {
				slog.Error("Failed to save session", "error", err)
			}
		}
	}

	user := currentUser(s.SessionStore, r)
	return map[string]interface{}{
		"Site":      s.siteConfig(r),
		"CsrfField": csrf.TemplateField(r),
		"CsrfToken": csrf.Token(r),
		"Flashes":   flashes,
		"SignedIn":  user.Authenticated,
		"IsAdmin":   user.IsAdmin(),
		"Path":      r.URL.Path,
		"Year":      time.Now().In(IST).Year(),
	}
}

func (s *Site) notFound(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, http.StatusNotFound, "not_found.html", s.pageData(w, r))
}

func (s *Site) serverError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	http.Error(w, msg, http.StatusInternalServerError)
}

func flash(session *sessions.Session, kind, msg string) {
	session.AddFlash(FlashMessage{Type: kind, Message: msg})
}

// redirect saves session before the redirect so the flashes survive.
func redirect(w http.ResponseWriter, r *http.Request, session *sessions.Session, to string) {
	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}
