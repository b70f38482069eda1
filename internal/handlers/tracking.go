package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/metrics"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
)

const maxUserAgentLength = 512

// TrackPageView records a page view for every successful public page. The
// visitor id is assigned before the handler runs so the cookie goes out with
// the response headers.
func (s *Site) TrackPageView(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := visitorSession(s.SessionStore, r)
		id, changed := visitorID(session)
		if changed {
			if err := session.Save(r, w); err != nil {
				slog.Error("Failed to save visitor session", "error", err)
			}
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)
		if rw.statusCode != http.StatusOK {
			return
		}

		ua := r.UserAgent()
		if len(ua) > maxUserAgentLength {
			ua = ua[:maxUserAgentLength]
		}
		pv := &models.PageView{
			Path:      r.URL.Path,
			Referrer:  r.Referer(),
			UserAgent: ua,
			SessionID: id,
		}
		// The request may already be cancelled once the client has its page.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 2*time.Second)
		defer cancel()
		if err := s.Store.RecordPageView(ctx, pv); err != nil {
			slog.Warn("Failed to record page view", "path", pv.Path, "error", err)
			return
		}
		metrics.RecordPageView(r.URL.Path)
	}
}
