package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/store"
)

type contentForm struct {
	Key string `form:"key" validate:"required,max=100,contentkey"`
}

var contentMessages = map[string]string{
	"key": "Keys use lowercase letters, digits, dots, dashes and underscores.",
}

func (h *AdminHandler) ListContent(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.GetAllContent(r.Context())
	if err != nil {
		h.serverError(w, "Error fetching content", err)
		return
	}
	data := h.pageData(w, r)
	data["Items"] = items
	h.Templates.Render(w, http.StatusOK, "admin_content.html", data)
}

func (h *AdminHandler) NewContent(w http.ResponseWriter, r *http.Request) {
	item := &models.SiteContent{Key: r.URL.Query().Get("key"), Value: "{}"}
	h.renderContentForm(w, r, http.StatusOK, item, true, nil)
}

func (h *AdminHandler) EditContent(w http.ResponseWriter, r *http.Request) {
	item, err := h.Store.GetContent(r.Context(), r.PathValue("key"))
	if errors.Is(err, store.ErrNotFound) {
		h.notFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, "Error fetching content", err)
		return
	}
	var pretty bytes.Buffer
	if json.Indent(&pretty, []byte(item.Value), "", "  ") == nil {
		item.Value = pretty.String()
	}
	h.renderContentForm(w, r, http.StatusOK, item, false, nil)
}

// SaveContent creates or replaces one key. The value must be valid JSON.
func (h *AdminHandler) SaveContent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	item := &models.SiteContent{
		Key:   strings.TrimSpace(r.FormValue("key")),
		Value: strings.TrimSpace(r.FormValue("value")),
	}
	isNew := r.FormValue("is_new") != ""

	if errs := formErrors(contentForm{Key: item.Key}, contentMessages); len(errs) > 0 {
		h.renderContentForm(w, r, http.StatusUnprocessableEntity, item, isNew, errs)
		return
	}

	err := h.Store.UpsertContent(r.Context(), item.Key, item.Value)
	if errors.Is(err, store.ErrInvalidJSON) {
		h.renderContentForm(w, r, http.StatusUnprocessableEntity, item, isNew,
			map[string]string{"value": "Value is not valid JSON."})
		return
	}
	if err != nil {
		h.serverError(w, "Error saving content", err)
		return
	}
	h.Reads.PurgeContent()

	slog.Info("Content saved", "key", item.Key)
	session, _ := h.SessionStore.Get(r, adminSessionName)
	flash(session, "success", "Saved "+item.Key+".")
	redirect(w, r, session, "/admin/content")
}

func (h *AdminHandler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)
	key := r.PathValue("key")
	err := h.Store.DeleteContent(r.Context(), key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		flash(session, "error", "Content key not found.")
	case err != nil:
		slog.Error("Failed to delete content", "key", key, "error", err)
		flash(session, "error", "Error deleting content.")
	default:
		h.Reads.PurgeContent()
		flash(session, "success", "Deleted "+key+".")
	}
	redirect(w, r, session, "/admin/content")
}

func (h *AdminHandler) renderContentForm(w http.ResponseWriter, r *http.Request, status int, item *models.SiteContent, isNew bool, errs map[string]string) {
	data := h.pageData(w, r)
	data["Item"] = item
	data["IsNew"] = isNew
	data["Errors"] = errs
	h.Templates.Render(w, status, "admin_content_form.html", data)
}
