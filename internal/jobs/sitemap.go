package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/sitemap"
)

type SitemapSource interface {
	GetPublishedProducts(ctx context.Context) ([]models.Product, error)
	GetPublishedPosts(ctx context.Context) ([]models.BlogPost, error)
}

// Sitemap holds the latest generated sitemap.xml and serves it.
type Sitemap struct {
	Source  SitemapSource
	BaseURL string

	mu        sync.RWMutex
	doc       []byte
	generated time.Time
}

// Refresh rebuilds the document from the published catalog and blog.
func (s *Sitemap) Refresh(ctx context.Context) error {
	products, err := s.Source.GetPublishedProducts(ctx)
	if err != nil {
		return fmt.Errorf("sitemap products: %w", err)
	}
	posts, err := s.Source.GetPublishedPosts(ctx)
	if err != nil {
		return fmt.Errorf("sitemap posts: %w", err)
	}

	entries := append([]sitemap.Entry{}, sitemap.StaticRoutes...)
	entries = append(entries, sitemap.ForProducts(products)...)
	entries = append(entries, sitemap.ForPosts(posts)...)

	doc, err := sitemap.Build(s.BaseURL, entries)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.doc = doc
	s.generated = time.Now()
	s.mu.Unlock()

	slog.Info("Sitemap refreshed", "urls", len(entries))
	return nil
}

func (s *Sitemap) current() ([]byte, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc, s.generated
}

func (s *Sitemap) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	doc, generated := s.current()
	if doc == nil {
		if err := s.Refresh(r.Context()); err != nil {
			slog.Error("Failed to build sitemap", "error", err)
			http.Error(w, "Sitemap unavailable", http.StatusInternalServerError)
			return
		}
		doc, generated = s.current()
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Last-Modified", generated.UTC().Format(http.TimeFormat))
	w.Write(doc)
}
