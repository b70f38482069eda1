package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
	"github.com/google/uuid"
)

const popupColumns = `id, title, content, popup_type, target_pages, start_date, end_date, is_active,
	bg_color, text_color, button_text, button_url, delay_seconds, created_at, updated_at`

func (s *Store) GetAllPopups(ctx context.Context) ([]models.Popup, error) {
	var popups []models.Popup
	err := s.DB.SelectContext(ctx, &popups, `SELECT `+popupColumns+` FROM popups ORDER BY created_at DESC`)
	return popups, err
}

// GetActivePopups returns popups switched on in the admin panel. Date windows
// and page targeting are applied by the caller.
func (s *Store) GetActivePopups(ctx context.Context) ([]models.Popup, error) {
	var popups []models.Popup
	query := s.q(`SELECT ` + popupColumns + ` FROM popups WHERE is_active = ? ORDER BY delay_seconds, created_at`)
	err := s.DB.SelectContext(ctx, &popups, query, true)
	return popups, err
}

func (s *Store) GetPopupByID(ctx context.Context, id string) (*models.Popup, error) {
	var p models.Popup
	err := s.DB.GetContext(ctx, &p, s.q(`SELECT `+popupColumns+` FROM popups WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreatePopup(ctx context.Context, p *models.Popup) error {
	now := s.now()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO popups (` + popupColumns + `)
		VALUES (:id, :title, :content, :popup_type, :target_pages, :start_date, :end_date, :is_active,
			:bg_color, :text_color, :button_text, :button_url, :delay_seconds, :created_at, :updated_at)
	`
	_, err := s.DB.NamedExecContext(ctx, query, p)
	return err
}

func (s *Store) UpdatePopup(ctx context.Context, p *models.Popup) error {
	p.UpdatedAt = s.now()
	query := `
		UPDATE popups
		SET title = :title, content = :content, popup_type = :popup_type, target_pages = :target_pages,
			start_date = :start_date, end_date = :end_date, is_active = :is_active, bg_color = :bg_color,
			text_color = :text_color, button_text = :button_text, button_url = :button_url,
			delay_seconds = :delay_seconds, updated_at = :updated_at
		WHERE id = :id
	`
	res, err := s.DB.NamedExecContext(ctx, query, p)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (s *Store) DeletePopup(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, s.q(`DELETE FROM popups WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}
