package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/store"
	"golang.org/x/crypto/bcrypt"
)

type signUpForm struct {
	Email    string `form:"email" validate:"required,email,max=254"`
	Password string `form:"password" validate:"min=8,max=72"`
	Confirm  string `form:"confirm" validate:"eqfield=Password"`
}

var signUpMessages = map[string]string{
	"email.required": "Email is required.",
	"email":          "Please enter a valid email address.",
	"password.min":   "Password must be at least 8 characters.",
	"password.max":   "Password must be at most 72 characters.",
	"confirm":        "Passwords do not match.",
}

func (h *AdminHandler) AuthGet(w http.ResponseWriter, r *http.Request) {
	h.Templates.Render(w, http.StatusOK, "auth.html", h.pageData(w, r))
}

func (h *AdminHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)

	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	password := r.FormValue("password")

	user, err := h.Store.GetUserByEmail(r.Context(), email)
	if err != nil {
		slog.Error("Failed to look up user", "error", err)
		flash(session, "error", "Something went wrong. Please try again.")
		redirect(w, r, session, "/auth")
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		flash(session, "error", "Invalid email or password")
		redirect(w, r, session, "/auth")
		return
	}

	session.Values[keyAuthenticated] = true
	session.Values[keyUserID] = user.ID
	session.Values[keyEmail] = user.Email
	session.Values[keyRole] = user.Role
	session.Options.Path = "/"

	slog.Info("Sign-in successful", "user_id", user.ID, "role", user.Role)
	if user.IsAdmin() {
		flash(session, "success", "Welcome back, "+user.Email+"!")
		redirect(w, r, session, "/admin")
		return
	}
	flash(session, "success", "Signed in as "+user.Email+".")
	redirect(w, r, session, "/")
}

// SignUp creates a customer account. Admin rights are granted from the CLI.
func (h *AdminHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)

	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	password := r.FormValue("password")
	confirm := r.FormValue("confirm")

	form := signUpForm{Email: email, Password: password, Confirm: confirm}
	if problem := firstFormError(form, signUpMessages); problem != "" {
		flash(session, "error", problem)
		redirect(w, r, session, "/auth")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.serverError(w, "Failed to hash password", err)
		return
	}
	if err := h.Store.CreateUser(r.Context(), email, string(hash), models.RoleUser); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			flash(session, "error", "An account with that email already exists. Please sign in.")
			redirect(w, r, session, "/auth")
			return
		}
		h.serverError(w, "Failed to create account", err)
		return
	}

	slog.Info("Account created", "email", email)
	flash(session, "success", "Account created. You can sign in now.")
	redirect(w, r, session, "/auth")
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)
	delete(session.Values, keyAuthenticated)
	delete(session.Values, keyUserID)
	delete(session.Values, keyEmail)
	delete(session.Values, keyRole)
	flash(session, "success", "Signed out.")
	redirect(w, r, session, "/")
}

// AuthMiddleware lets only signed-in admins through.
func (h *AdminHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(h.SessionStore, r)
		if !user.Authenticated {
			slog.Info("AuthMiddleware: not signed in, redirecting to /auth", "path", r.URL.Path)
			session, _ := h.SessionStore.Get(r, adminSessionName)
			flash(session, "error", "Please sign in to continue.")
			redirect(w, r, session, "/auth")
			return
		}
		if !user.IsAdmin() {
			slog.Warn("AuthMiddleware: admin access denied", "user_id", user.UserID, "path", r.URL.Path)
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}
