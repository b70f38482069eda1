package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/store"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lower-cases s and joins its words with hyphens.
func slugify(s string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func (h *AdminHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Store.GetAllPosts(r.Context())
	if err != nil {
		h.serverError(w, "Error fetching posts", err)
		return
	}
	data := h.pageData(w, r)
	data["Posts"] = posts
	h.Templates.Render(w, http.StatusOK, "admin_blog.html", data)
}

func (h *AdminHandler) NewPost(w http.ResponseWriter, r *http.Request) {
	h.renderPostForm(w, r, http.StatusOK, &models.BlogPost{}, nil)
}

func (h *AdminHandler) EditPost(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPost(w, r)
	if !ok {
		return
	}
	h.renderPostForm(w, r, http.StatusOK, p, nil)
}

func (h *AdminHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	h.savePost(w, r, &models.BlogPost{})
}

func (h *AdminHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPost(w, r)
	if !ok {
		return
	}
	h.savePost(w, r, p)
}

type postForm struct {
	Title    string `form:"title" validate:"required,max=200"`
	Slug     string `form:"slug" validate:"required_with=Title,max=200"`
	Category string `form:"category" validate:"max=100"`
	Excerpt  string `form:"excerpt" validate:"max=500"`
}

var postMessages = map[string]string{
	"title.required": "Title is required.",
	"title.max":      "Title must be at most 200 characters.",
	"slug.max":       "Slug must be at most 200 characters.",
	"slug":           "Slug needs at least one letter or digit.",
	"category":       "Category must be at most 100 characters.",
	"excerpt":        "Excerpt must be at most 500 characters.",
}

// savePost validates the form onto p and creates or updates it depending on
// whether p already has an id.
func (h *AdminHandler) savePost(w http.ResponseWriter, r *http.Request, p *models.BlogPost) {
	if err := parseForm(r); err != nil {
		http.Error(w, "Invalid form. Uploads are limited to 10MB.", http.StatusBadRequest)
		return
	}

	p.Title = strings.TrimSpace(r.FormValue("title"))
	p.Slug = slugify(r.FormValue("slug"))
	if p.Slug == "" {
		p.Slug = slugify(p.Title)
	}
	p.Category = strings.TrimSpace(r.FormValue("category"))
	p.Excerpt = strings.TrimSpace(r.FormValue("excerpt"))
	p.Content = r.FormValue("content")
	p.Published = r.FormValue("published") != ""

	form := postForm{Title: p.Title, Slug: p.Slug, Category: p.Category, Excerpt: p.Excerpt}
	if errs := formErrors(form, postMessages); len(errs) > 0 {
		h.renderPostForm(w, r, http.StatusUnprocessableEntity, p, errs)
		return
	}

	imageURL, err := h.saveImage(r)
	if err != nil {
		h.renderPostForm(w, r, http.StatusUnprocessableEntity, p, map[string]string{"image": err.Error()})
		return
	}
	if imageURL != "" {
		p.ImageURL = imageURL
	}

	isNew := p.ID == ""
	if isNew {
		if err = h.Store.CreatePost(r.Context(), p); err != nil {
			p.ID = ""
		}
	} else {
		err = h.Store.UpdatePost(r.Context(), p)
	}
	if errors.Is(err, store.ErrDuplicate) {
		h.renderPostForm(w, r, http.StatusUnprocessableEntity, p, map[string]string{"slug": "Another post already uses this slug."})
		return
	}
	if err != nil {
		h.serverError(w, "Error saving post", err)
		return
	}
	h.Reads.PurgePosts()

	session, _ := h.SessionStore.Get(r, adminSessionName)
	if isNew {
		slog.Info("Post created", "id", p.ID, "slug", p.Slug)
		flash(session, "success", "Post created.")
	} else {
		flash(session, "success", "Post updated.")
	}
	redirect(w, r, session, "/admin/blog")
}

func (h *AdminHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)
	err := h.Store.DeletePost(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, store.ErrNotFound):
		flash(session, "error", "Post not found.")
	case err != nil:
		slog.Error("Failed to delete post", "id", r.PathValue("id"), "error", err)
		flash(session, "error", "Error deleting post.")
	default:
		h.Reads.PurgePosts()
		flash(session, "success", "Post deleted.")
	}
	redirect(w, r, session, "/admin/blog")
}

func (h *AdminHandler) loadPost(w http.ResponseWriter, r *http.Request) (*models.BlogPost, bool) {
	p, err := h.Store.GetPostByID(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		h.notFound(w, r)
		return nil, false
	}
	if err != nil {
		h.serverError(w, "Error fetching post", err)
		return nil, false
	}
	return p, true
}

func (h *AdminHandler) renderPostForm(w http.ResponseWriter, r *http.Request, status int, p *models.BlogPost, errs map[string]string) {
	data := h.pageData(w, r)
	data["Post"] = p
	data["Errors"] = errs
	h.Templates.Render(w, status, "admin_blog_form.html", data)
}
