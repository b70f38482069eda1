package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/popup"
)

const maxPopupIDLength = 64

// PopupAPI serves the popups the browser script shows.
type PopupAPI struct {
	*Site
	Now func() time.Time
}

func (h *PopupAPI) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// List returns the popups visible on ?page= for this visitor.
func (h *PopupAPI) List(w http.ResponseWriter, r *http.Request) {
	page := r.URL.Query().Get("page")
	if page == "" {
		page = "/"
	}
	active, err := h.Reads.ActivePopups(r.Context())
	if err != nil {
		slog.Error("Failed to load popups", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not load popups"})
		return
	}

	session := visitorSession(h.SessionStore, r)
	visible := popup.ForPage(active, h.now(), page, dismissedPopups(session))
	if visible == nil {
		visible = []models.Popup{}
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, map[string]interface{}{"popups": visible})
}

// Dismiss hides a popup for the rest of the browser session.
func (h *PopupAPI) Dismiss(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" || len(id) > maxPopupIDLength {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid popup id"})
		return
	}
	var active map[string]bool
	if popups, err := h.Reads.ActivePopups(r.Context()); err != nil {
		slog.Warn("Failed to load popups for dismissal", "error", err)
	} else {
		active = make(map[string]bool, len(popups))
		for _, p := range popups {
			active[p.ID] = true
		}
	}

	session := visitorSession(h.SessionStore, r)
	addDismissed(session, id, active)
	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not save dismissal"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
