package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/store"
	"github.com/go-playground/validator/v10"
)

const (
	defaultPopupBg   = "#4c1d95"
	defaultPopupText = "#ffffff"
	inputTimeLayout  = "2006-01-02T15:04"
)

var popupTypes = []string{models.PopupModal, models.PopupSlideIn, models.PopupBar}

func (h *AdminHandler) ListPopups(w http.ResponseWriter, r *http.Request) {
	popups, err := h.Store.GetAllPopups(r.Context())
	if err != nil {
		h.serverError(w, "Error fetching popups", err)
		return
	}
	data := h.pageData(w, r)
	data["Popups"] = popups
	h.Templates.Render(w, http.StatusOK, "admin_popups.html", data)
}

func (h *AdminHandler) NewPopup(w http.ResponseWriter, r *http.Request) {
	p := &models.Popup{
		PopupType:   models.PopupModal,
		TargetPages: models.StringList{"*"},
		IsActive:    true,
		BgColor:     defaultPopupBg,
		TextColor:   defaultPopupText,
	}
	h.renderPopupForm(w, r, http.StatusOK, p, nil)
}

func (h *AdminHandler) EditPopup(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPopup(w, r)
	if !ok {
		return
	}
	h.renderPopupForm(w, r, http.StatusOK, p, nil)
}

func (h *AdminHandler) CreatePopup(w http.ResponseWriter, r *http.Request) {
	h.savePopup(w, r, &models.Popup{})
}

func (h *AdminHandler) UpdatePopup(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPopup(w, r)
	if !ok {
		return
	}
	h.savePopup(w, r, p)
}

func (h *AdminHandler) savePopup(w http.ResponseWriter, r *http.Request, p *models.Popup) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	if errs := popupFromForm(r, p); len(errs) > 0 {
		h.renderPopupForm(w, r, http.StatusUnprocessableEntity, p, errs)
		return
	}

	var err error
	isNew := p.ID == ""
	if isNew {
		if err = h.Store.CreatePopup(r.Context(), p); err != nil {
			p.ID = ""
		}
	} else {
		err = h.Store.UpdatePopup(r.Context(), p)
	}
	if err != nil {
		h.serverError(w, "Error saving popup", err)
		return
	}
	h.Reads.PurgePopups()

	slog.Info("Popup saved", "id", p.ID, "type", p.PopupType, "active", p.IsActive)
	session, _ := h.SessionStore.Get(r, adminSessionName)
	flash(session, "success", "Popup saved.")
	redirect(w, r, session, "/admin/popups")
}

func (h *AdminHandler) DeletePopup(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)
	err := h.Store.DeletePopup(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, store.ErrNotFound):
		flash(session, "error", "Popup not found.")
	case err != nil:
		slog.Error("Failed to delete popup", "id", r.PathValue("id"), "error", err)
		flash(session, "error", "Error deleting popup.")
	default:
		h.Reads.PurgePopups()
		flash(session, "success", "Popup deleted.")
	}
	redirect(w, r, session, "/admin/popups")
}

func (h *AdminHandler) loadPopup(w http.ResponseWriter, r *http.Request) (*models.Popup, bool) {
	p, err := h.Store.GetPopupByID(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		h.notFound(w, r)
		return nil, false
	}
	if err != nil {
		h.serverError(w, "Error fetching popup", err)
		return nil, false
	}
	return p, true
}

func (h *AdminHandler) renderPopupForm(w http.ResponseWriter, r *http.Request, status int, p *models.Popup, errs map[string]string) {
	data := h.pageData(w, r)
	data["Popup"] = p
	data["PopupTypes"] = popupTypes
	data["Errors"] = errs
	h.Templates.Render(w, status, "admin_popup_form.html", data)
}

type popupForm struct {
	Title        string     `form:"title" validate:"required,max=200"`
	PopupType    string     `form:"popup_type" validate:"required,oneof=modal slide_in bar"`
	BgColor      string     `form:"bg_color" validate:"hexcolor"`
	TextColor    string     `form:"text_color" validate:"hexcolor"`
	ButtonURL    string     `form:"button_url" validate:"omitempty,startswith=/|http_url"`
	DelaySeconds int        `form:"delay_seconds" validate:"min=0,max=600"`
	StartDate    *time.Time `form:"start_date"`
	EndDate      *time.Time `form:"end_date"`
}

var popupMessages = map[string]string{
	"title.required":    "Title is required.",
	"title.max":         "Title must be at most 200 characters.",
	"popup_type":        "Choose modal, slide_in or bar.",
	"bg_color":          "Background must be a hex colour like #4c1d95.",
	"text_color":        "Text colour must be a hex colour like #ffffff.",
	"button_url":        "Button link must be a path or an http(s) URL.",
	"delay_seconds":     "Delay must be between 0 and 600 seconds.",
	"end_date.gtefield": "End date must be after the start date.",
}

// popupDatesInOrder rejects an end date before the start date. Either may
// be left open.
func popupDatesInOrder(sl validator.StructLevel) {
	f := sl.Current().Interface().(popupForm)
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		sl.ReportError(f.EndDate, "end_date", "EndDate", "gtefield", "StartDate")
	}
}

// popupFromForm copies the submitted fields onto p. Dates are entered in IST.
func popupFromForm(r *http.Request, p *models.Popup) map[string]string {
	form := popupForm{
		Title:     strings.TrimSpace(r.FormValue("title")),
		PopupType: r.FormValue("popup_type"),
		BgColor:   colorOr(r.FormValue("bg_color"), defaultPopupBg),
		TextColor: colorOr(r.FormValue("text_color"), defaultPopupText),
		ButtonURL: strings.TrimSpace(r.FormValue("button_url")),
	}

	// Values that do not parse are reported here and left zero for the
	// validator.
	parseErrs := make(map[string]string)
	if v := strings.TrimSpace(r.FormValue("delay_seconds")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			parseErrs["delay_seconds"] = popupMessages["delay_seconds"]
		}
		form.DelaySeconds = n
	}
	var err error
	if form.StartDate, err = parseInputTime(r.FormValue("start_date")); err != nil {
		parseErrs["start_date"] = "Invalid start date."
	}
	if form.EndDate, err = parseInputTime(r.FormValue("end_date")); err != nil {
		parseErrs["end_date"] = "Invalid end date."
	}

	errs := formErrors(form, popupMessages)
	for field, msg := range parseErrs {
		errs[field] = msg
	}

	p.Title = form.Title
	p.Content = strings.TrimSpace(r.FormValue("content"))
	p.PopupType = form.PopupType
	p.TargetPages = parseTargetPages(r.FormValue("target_pages"))
	p.BgColor = form.BgColor
	p.TextColor = form.TextColor
	p.ButtonText = strings.TrimSpace(r.FormValue("button_text"))
	p.ButtonURL = form.ButtonURL
	p.IsActive = r.FormValue("is_active") != ""
	p.DelaySeconds = form.DelaySeconds
	p.StartDate = form.StartDate
	p.EndDate = form.EndDate
	return errs
}

// parseTargetPages splits one path per line or comma. Nothing entered means
// every page.
func parseTargetPages(raw string) models.StringList {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == '\r' || r == ',' })
	var pages models.StringList
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			pages = append(pages, f)
		}
	}
	if len(pages) == 0 {
		return models.StringList{"*"}
	}
	return pages
}

func colorOr(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

// parseInputTime reads a datetime-local value in IST. Empty means unset.
func parseInputTime(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(inputTimeLayout, v, IST)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}
