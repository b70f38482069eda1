package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
)

const (
	recentViewsLimit = 20
	analyticsTopN    = 10
)

var analyticsDayOptions = []int{7, 30, 90}

// AdminHandler serves the CMS under /admin and the sign-in pages.
type AdminHandler struct {
	*Site
	UploadDir string
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.GetDashboardStats(r.Context())
	if err != nil {
		h.serverError(w, "Error fetching stats", err)
		return
	}
	recent, err := h.Store.GetRecentPageViews(r.Context(), recentViewsLimit)
	if err != nil {
		h.serverError(w, "Error fetching page views", err)
		return
	}

	data := h.pageData(w, r)
	data["Stats"] = stats
	data["Recent"] = recent
	h.Templates.Render(w, http.StatusOK, "admin_dashboard.html", data)
}

// Analytics shows traffic for the last ?days= days, 7, 30 or 90.
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v, err := strconv.Atoi(r.URL.Query().Get("days")); err == nil {
		for _, opt := range analyticsDayOptions {
			if v == opt {
				days = v
			}
		}
	}

	since := models.StartOfDay(time.Now()).AddDate(0, 0, -(days - 1))
	stats, err := h.Store.GetPageViewStats(r.Context(), since, analyticsTopN)
	if err != nil {
		h.serverError(w, "Error fetching analytics", err)
		return
	}

	data := h.pageData(w, r)
	data["DayOptions"] = analyticsDayOptions
	data["Days"] = days
	data["Stats"] = stats
	h.Templates.Render(w, http.StatusOK, "admin_analytics.html", data)
}
