package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
)

func (s *Store) GetAllContent(ctx context.Context) ([]models.SiteContent, error) {
	var items []models.SiteContent
	err := s.DB.SelectContext(ctx, &items, `SELECT key, value, updated_at FROM site_content ORDER BY key`)
	return items, err
}

func (s *Store) GetContent(ctx context.Context, key string) (*models.SiteContent, error) {
	var c models.SiteContent
	err := s.DB.GetContext(ctx, &c, s.q(`SELECT key, value, updated_at FROM site_content WHERE key = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpsertContent stores value under key. Value must be valid JSON.
func (s *Store) UpsertContent(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("content key is required")
	}
	if !json.Valid([]byte(value)) {
		return ErrInvalidJSON
	}
	query := s.q(`
		INSERT INTO site_content (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`)
	_, err := s.DB.ExecContext(ctx, query, key, value, s.now())
	return err
}

func (s *Store) DeleteContent(ctx context.Context, key string) error {
	res, err := s.DB.ExecContext(ctx, s.q(`DELETE FROM site_content WHERE key = ?`), key)
	if err != nil {
		return err
	}
	return checkAffected(res)
}
