package handlers

import (
	"net/http"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

// Session value keys.
const (
	keyAuthenticated = "authenticated"
	keyUserID        = "user_id"
	keyEmail         = "email"
	keyRole          = "role"
	keyVisitorID     = "visitor_id"
	keyDismissed     = "dismissed_popups"
)

// maxDismissed bounds the dismissal list so the cookie stays small. Only ids
// of popups that are still active count against it.
const maxDismissed = 50

type sessionUser struct {
	Authenticated bool
	UserID        int
	Email         string
	Role          string
}

func (u sessionUser) IsAdmin() bool {
	return u.Authenticated && u.Role == models.RoleAdmin
}

func currentUser(store sessions.Store, r *http.Request) sessionUser {
	session, _ := store.Get(r, adminSessionName)
	auth, _ := session.Values[keyAuthenticated].(bool)
	if !auth {
		return sessionUser{}
	}
	u := sessionUser{Authenticated: true}
	u.UserID, _ = session.Values[keyUserID].(int)
	u.Email, _ = session.Values[keyEmail].(string)
	u.Role, _ = session.Values[keyRole].(string)
	return u
}

// visitorSession returns the anonymous visitor's session. It lives until the
// browser closes and carries the analytics session id and popup dismissals.
func visitorSession(store sessions.Store, r *http.Request) *sessions.Session {
	session, _ := store.Get(r, visitorSessionName)
	session.Options.MaxAge = 0
	return session
}

// visitorID returns the session's analytics id, assigning one if needed.
// The second result reports whether the session changed.
func visitorID(session *sessions.Session) (string, bool) {
	if id, ok := session.Values[keyVisitorID].(string); ok && id != "" {
		return id, false
	}
	id := uuid.NewString()
	session.Values[keyVisitorID] = id
	return id, true
}

func dismissedPopups(session *sessions.Session) map[string]bool {
	ids, _ := session.Values[keyDismissed].([]string)
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// addDismissed records id as dismissed. Earlier ids not in active are
// dropped first, since a deleted or expired popup can never show again.
// A nil active keeps every earlier id.
func addDismissed(session *sessions.Session, id string, active map[string]bool) {
	ids, _ := session.Values[keyDismissed].([]string)
	kept := make([]string, 0, len(ids)+1)
	for _, existing := range ids {
		if existing == id {
			continue
		}
		if active == nil || active[existing] {
			kept = append(kept, existing)
		}
	}
	kept = append(kept, id)
	if len(kept) > maxDismissed {
		kept = kept[len(kept)-maxDismissed:]
	}
	session.Values[keyDismissed] = kept
}
