package store

import (
	"context"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
)

type DashboardStats struct {
	TotalProducts     int
	PublishedProducts int
	FeaturedProducts  int
	TotalPosts        int
	PublishedPosts    int
	ActivePopups      int
	ContentKeys       int
	ViewsToday        int
	Views30Days       int
}

func (s *Store) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	// Timestamps are stored in UTC and compared as text by SQLite.
	startOfDay := models.StartOfDay(s.now()).UTC()

	counts := []struct {
		dest  *int
		query string
		args  []any
	}{
		{&stats.TotalProducts, `SELECT COUNT(*) FROM products`, nil},
		{&stats.PublishedProducts, `SELECT COUNT(*) FROM products WHERE published = ?`, []any{true}},
		{&stats.FeaturedProducts, `SELECT COUNT(*) FROM products WHERE featured = ? AND published = ?`, []any{true, true}},
		{&stats.TotalPosts, `SELECT COUNT(*) FROM blog_posts`, nil},
		{&stats.PublishedPosts, `SELECT COUNT(*) FROM blog_posts WHERE published = ?`, []any{true}},
		{&stats.ActivePopups, `SELECT COUNT(*) FROM popups WHERE is_active = ?`, []any{true}},
		{&stats.ContentKeys, `SELECT COUNT(*) FROM site_content`, nil},
		{&stats.ViewsToday, `SELECT COUNT(*) FROM page_views WHERE created_at >= ?`, []any{startOfDay}},
		{&stats.Views30Days, `SELECT COUNT(*) FROM page_views WHERE created_at >= ?`, []any{startOfDay.AddDate(0, 0, -29)}},
	}

	for _, c := range counts {
		if err := s.DB.GetContext(ctx, c.dest, s.q(c.query), c.args...); err != nil {
			return nil, err
		}
	}

	return stats, nil
}
