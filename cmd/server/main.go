package main

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/config"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/handlers"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/jobs"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/metrics"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/store"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/migrations"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/web"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Using TextHandler for console readability
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	// 2. Init DB
	db, err := store.NewStore(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run Migrations
	if err := db.Migrate(context.Background(), migrations.FS); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		slog.Error("Failed to create upload directory", "dir", cfg.UploadDir, "error", err)
		os.Exit(1)
	}

	// 3. Session Setup
	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = cfg.CookieSecure
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	sessionStore.Options.Path = "/"
	if cfg.CookieDomain != "" {
		sessionStore.Options.Domain = cfg.CookieDomain
	}

	// 4. Init Templates
	templates := handlers.NewTemplateCache()
	if err := templates.Load(web.FS, "templates"); err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}
	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		slog.Error("Failed to open static files", "error", err)
		os.Exit(1)
	}

	// 5. Sitemap, rebuilt on start and on a schedule
	sitemap := &jobs.Sitemap{Source: db, BaseURL: cfg.BaseURL}
	if err := sitemap.Refresh(context.Background()); err != nil {
		slog.Error("Failed to build sitemap", "error", err)
	}
	scheduler := jobs.NewScheduler()
	if err := scheduler.Add("sitemap", cfg.SitemapSchedule, time.Minute, sitemap.Refresh); err != nil {
		slog.Error("Invalid SITEMAP_SCHEDULE", "schedule", cfg.SitemapSchedule, "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	// 6. Setup Handlers
	site := &handlers.Site{
		Store:          db,
		Templates:      templates,
		SessionStore:   sessionStore,
		Reads:          handlers.NewReadCache(db, cfg.CacheTTL),
		BaseURL:        cfg.BaseURL,
		WhatsAppNumber: cfg.WhatsAppNumber,
	}
	router := &handlers.Router{
		Public:  &handlers.PublicHandler{Site: site},
		Admin:   &handlers.AdminHandler{Site: site, UploadDir: cfg.UploadDir},
		Popups:  &handlers.PopupAPI{Site: site},
		Sitemap: sitemap,
		Static:  static,
		// 5 attempts, then one every 12 seconds
		AuthLimiter: handlers.NewRateLimiter(12*time.Second, 5),
		APILimiter:  handlers.NewRateLimiter(time.Second, 20),
	}

	// 7. Middleware Setup
	CSRF := csrf.Protect(
		cfg.CSRFKey,
		csrf.Secure(cfg.CookieSecure),
		csrf.Path("/"),
		// Trust local development origins and the public host
		csrf.TrustedOrigins(trustedOrigins(cfg)),
	)

	// Chain: Logger -> Security Headers -> Metrics -> CSRF -> Mux
	handler := handlers.LoggingMiddleware(
		handlers.SecurityHeadersMiddleware(
			metrics.InstrumentHandler(
				CSRF(router.Mux()),
			),
		),
	)

	// 8. Start Server with Graceful Shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Server starting", "port", cfg.Port, "driver", cfg.DBDriver, "base_url", cfg.BaseURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-stop

	slog.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	scheduler.Stop(ctx)
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited gracefully.")
}

func trustedOrigins(cfg *config.Config) []string {
	origins := []string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port, "localhost", "127.0.0.1"}
	if u, err := url.Parse(cfg.BaseURL); err == nil && u.Host != "" {
		origins = append(origins, u.Host)
	}
	return origins
}
