package handlers

import (
	"io/fs"
	"net/http"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/metrics"
)

// Router wires every handler onto one mux. CSRF and the logging chain are
// applied around it in main.
type Router struct {
	Public      *PublicHandler
	Admin       *AdminHandler
	Popups      *PopupAPI
	Sitemap     http.Handler
	Static      fs.FS // the web/static tree
	AuthLimiter *RateLimiter
	APILimiter  *RateLimiter
}

func (rt *Router) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	public, admin := rt.Public, rt.Admin
	track := public.TrackPageView
	auth := admin.AuthMiddleware

	// Static Files
	mux.Handle("GET /static/", http.StripPrefix("/static", http.FileServerFS(rt.Static)))
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads", http.FileServer(http.Dir(admin.UploadDir))))

	// Public Routes
	mux.HandleFunc("GET /{$}", track(public.Home))
	mux.HandleFunc("GET /products", track(public.Products))
	mux.HandleFunc("GET /product/{id}", track(public.Product))
	mux.HandleFunc("GET /alltools", track(public.AllTools))
	mux.HandleFunc("GET /about", track(public.About))
	mux.HandleFunc("GET /contact", track(public.Contact))
	mux.HandleFunc("GET /faq", track(public.FAQ))
	mux.HandleFunc("GET /refunds", track(public.Refunds))
	mux.HandleFunc("GET /blog", track(public.Blog))
	mux.HandleFunc("GET /blog/{id}", track(public.BlogPost))
	mux.HandleFunc("GET /buy/{id}", public.Buy)
	mux.HandleFunc("GET /whatsapp", public.WhatsApp)
	mux.HandleFunc("GET /whatsapp/{id}", public.WhatsApp)
	mux.HandleFunc("GET /robots.txt", public.Robots)
	mux.Handle("GET /sitemap.xml", rt.Sitemap)
	mux.HandleFunc("GET /healthz", public.Healthz)
	mux.Handle("GET /metrics", metrics.Handler())

	// Popup API
	mux.HandleFunc("GET /api/popups", rt.Popups.List)
	mux.HandleFunc("POST /api/popups/{id}/dismiss", rt.APILimiter.Middleware(rt.Popups.Dismiss))

	// Auth
	mux.HandleFunc("GET /auth", admin.AuthGet)
	mux.HandleFunc("POST /auth/signin", rt.AuthLimiter.Middleware(admin.SignIn))
	mux.HandleFunc("POST /auth/signup", rt.AuthLimiter.Middleware(admin.SignUp))
	mux.HandleFunc("/logout", admin.Logout)

	// Protected Routes
	mux.HandleFunc("GET /admin", auth(admin.Dashboard))
	mux.HandleFunc("GET /admin/analytics", auth(admin.Analytics))

	mux.HandleFunc("GET /admin/products", auth(admin.ListProducts))
	mux.HandleFunc("GET /admin/products/new", auth(admin.NewProduct))
	mux.HandleFunc("POST /admin/products", auth(admin.CreateProduct))
	mux.HandleFunc("POST /admin/products/import", auth(admin.ImportProducts))
	mux.HandleFunc("GET /admin/products/{id}/edit", auth(admin.EditProduct))
	mux.HandleFunc("POST /admin/products/{id}", auth(admin.UpdateProduct))
	mux.HandleFunc("POST /admin/products/{id}/delete", auth(admin.DeleteProduct))

	mux.HandleFunc("GET /admin/blog", auth(admin.ListPosts))
	mux.HandleFunc("GET /admin/blog/new", auth(admin.NewPost))
	mux.HandleFunc("POST /admin/blog", auth(admin.CreatePost))
	mux.HandleFunc("GET /admin/blog/{id}/edit", auth(admin.EditPost))
	mux.HandleFunc("POST /admin/blog/{id}", auth(admin.UpdatePost))
	mux.HandleFunc("POST /admin/blog/{id}/delete", auth(admin.DeletePost))

	mux.HandleFunc("GET /admin/popups", auth(admin.ListPopups))
	mux.HandleFunc("GET /admin/popups/new", auth(admin.NewPopup))
	mux.HandleFunc("POST /admin/popups", auth(admin.CreatePopup))
	mux.HandleFunc("GET /admin/popups/{id}/edit", auth(admin.EditPopup))
	mux.HandleFunc("POST /admin/popups/{id}", auth(admin.UpdatePopup))
	mux.HandleFunc("POST /admin/popups/{id}/delete", auth(admin.DeletePopup))

	mux.HandleFunc("GET /admin/content", auth(admin.ListContent))
	mux.HandleFunc("GET /admin/content/new", auth(admin.NewContent))
	mux.HandleFunc("POST /admin/content", auth(admin.SaveContent))
	mux.HandleFunc("GET /admin/content/{key}/edit", auth(admin.EditContent))
	mux.HandleFunc("POST /admin/content/{key}/delete", auth(admin.DeleteContent))

	mux.HandleFunc("/", public.NotFound)
	return mux
}
