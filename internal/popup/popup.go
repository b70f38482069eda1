// Package popup decides which promotional popups a visitor sees on a page.
package popup

import (
	"sort"
	"strings"
	"time"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
)

// Visible reports whether p should be shown on page at now. dismissed holds
// the popup ids the visitor closed during this session.
func Visible(p models.Popup, now time.Time, page string, dismissed map[string]bool) bool {
	if !p.IsActive {
		return false
	}
	if p.StartDate != nil && now.Before(*p.StartDate) {
		return false
	}
	if p.EndDate != nil && now.After(*p.EndDate) {
		return false
	}
	if dismissed[p.ID] {
		return false
	}
	return MatchesPage(p.TargetPages, page)
}

// MatchesPage reports whether page is one of targets. An empty list or "*"
// matches everything and an entry ending in "/*" matches that path and
// everything below it.
func MatchesPage(targets []string, page string) bool {
	if len(targets) == 0 {
		return true
	}
	page = normalize(page)
	for _, t := range targets {
		t = strings.TrimSpace(t)
		switch {
		case t == "*":
			return true
		case strings.HasSuffix(t, "/*"):
			prefix := normalize(strings.TrimSuffix(t, "/*"))
			if prefix == "/" || page == prefix || strings.HasPrefix(page, prefix+"/") {
				return true
			}
		case t != "" && normalize(t) == page:
			return true
		}
	}
	return false
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

// ForPage returns the popups Visible on page, shortest delay first.
func ForPage(popups []models.Popup, now time.Time, page string, dismissed map[string]bool) []models.Popup {
	out := make([]models.Popup, 0, len(popups))
	for _, p := range popups {
		if Visible(p, now, page, dismissed) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DelaySeconds < out[j].DelaySeconds })
	return out
}
