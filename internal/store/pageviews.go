package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
)

// DirectReferrer labels page views that arrived without a referrer.
const DirectReferrer = "(direct)"

type Count struct {
	Label string `db:"label" json:"label"`
	Count int    `db:"count" json:"count"`
}

type PageViewStats struct {
	Since          time.Time `json:"since"`
	Total          int       `json:"total"`
	UniqueSessions int       `json:"unique_sessions"`
	ByPath         []Count   `json:"by_path"`
	ByDay          []Count   `json:"by_day"`
	ByReferrer     []Count   `json:"by_referrer"`
}

// RecordPageView appends one analytics event.
func (s *Store) RecordPageView(ctx context.Context, pv *models.PageView) error {
	if pv.CreatedAt.IsZero() {
		pv.CreatedAt = s.now()
	}
	query := s.q(`INSERT INTO page_views (path, referrer, user_agent, session_id, created_at) VALUES (?, ?, ?, ?, ?)`)
	_, err := s.DB.ExecContext(ctx, query, pv.Path, pv.Referrer, pv.UserAgent, pv.SessionID, pv.CreatedAt.UTC())
	return err
}

// GetRecentPageViews returns the latest raw events, newest first.
func (s *Store) GetRecentPageViews(ctx context.Context, limit int) ([]models.PageView, error) {
	var views []models.PageView
	query := s.q(`SELECT id, path, referrer, user_agent, session_id, created_at FROM page_views ORDER BY created_at DESC, id DESC LIMIT ?`)
	err := s.DB.SelectContext(ctx, &views, query, limit)
	return views, err
}

// GetPageViewStats aggregates events recorded at or after since. The path and
// referrer breakdowns keep the top limit entries; the day breakdown is
// complete, oldest first and in IST days.
func (s *Store) GetPageViewStats(ctx context.Context, since time.Time, limit int) (*PageViewStats, error) {
	stats := &PageViewStats{Since: since}
	since = since.UTC()

	err := s.DB.GetContext(ctx, &stats.Total, s.q(`SELECT COUNT(*) FROM page_views WHERE created_at >= ?`), since)
	if err != nil {
		return nil, fmt.Errorf("count page views: %w", err)
	}

	err = s.DB.GetContext(ctx, &stats.UniqueSessions,
		s.q(`SELECT COUNT(DISTINCT session_id) FROM page_views WHERE created_at >= ? AND session_id <> ''`), since)
	if err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}

	err = s.DB.SelectContext(ctx, &stats.ByPath, s.q(`
		SELECT path AS label, COUNT(*) AS count FROM page_views
		WHERE created_at >= ?
		GROUP BY path ORDER BY count DESC, label LIMIT ?`), since, limit)
	if err != nil {
		return nil, fmt.Errorf("group by path: %w", err)
	}

	day := s.dayExpr("created_at")
	err = s.DB.SelectContext(ctx, &stats.ByDay, s.q(`
		SELECT `+day+` AS label, COUNT(*) AS count FROM page_views
		WHERE created_at >= ?
		GROUP BY `+day+` ORDER BY label`), since)
	if err != nil {
		return nil, fmt.Errorf("group by day: %w", err)
	}

	err = s.DB.SelectContext(ctx, &stats.ByReferrer, s.q(`
		SELECT CASE WHEN referrer = '' THEN '`+DirectReferrer+`' ELSE referrer END AS label, COUNT(*) AS count
		FROM page_views
		WHERE created_at >= ?
		GROUP BY label ORDER BY count DESC, label LIMIT ?`), since, limit)
	if err != nil {
		return nil, fmt.Errorf("group by referrer: %w", err)
	}

	return stats, nil
}
