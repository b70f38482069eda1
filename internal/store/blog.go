package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
	"github.com/google/uuid"
)

const postColumns = `id, title, slug, excerpt, content, category, image_url, published, published_at, created_at, updated_at`

func (s *Store) GetAllPosts(ctx context.Context) ([]models.BlogPost, error) {
	var posts []models.BlogPost
	err := s.DB.SelectContext(ctx, &posts, `SELECT `+postColumns+` FROM blog_posts ORDER BY created_at DESC`)
	return posts, err
}

// GetPublishedPosts returns published posts, newest first.
func (s *Store) GetPublishedPosts(ctx context.Context) ([]models.BlogPost, error) {
	var posts []models.BlogPost
	query := s.q(`SELECT ` + postColumns + ` FROM blog_posts WHERE published = ? ORDER BY published_at DESC, created_at DESC`)
	err := s.DB.SelectContext(ctx, &posts, query, true)
	return posts, err
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*models.BlogPost, error) {
	return s.getPost(ctx, `id = ?`, id)
}

func (s *Store) GetPostBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	return s.getPost(ctx, `slug = ?`, slug)
}

func (s *Store) getPost(ctx context.Context, where string, arg any) (*models.BlogPost, error) {
	var p models.BlogPost
	err := s.DB.GetContext(ctx, &p, s.q(`SELECT `+postColumns+` FROM blog_posts WHERE `+where), arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// stampPublished sets published_at the first time a post goes live.
func (s *Store) stampPublished(p *models.BlogPost) {
	if p.Published && p.PublishedAt == nil {
		t := s.now()
		p.PublishedAt = &t
	}
}

func (s *Store) CreatePost(ctx context.Context, p *models.BlogPost) error {
	now := s.now()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	s.stampPublished(p)

	query := `
		INSERT INTO blog_posts (` + postColumns + `)
		VALUES (:id, :title, :slug, :excerpt, :content, :category, :image_url, :published, :published_at, :created_at, :updated_at)
	`
	if _, err := s.DB.NamedExecContext(ctx, query, p); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("slug %q: %w", p.Slug, ErrDuplicate)
		}
		return err
	}
	return nil
}

func (s *Store) UpdatePost(ctx context.Context, p *models.BlogPost) error {
	p.UpdatedAt = s.now()
	s.stampPublished(p)

	query := `
		UPDATE blog_posts
		SET title = :title, slug = :slug, excerpt = :excerpt, content = :content, category = :category,
			image_url = :image_url, published = :published, published_at = :published_at, updated_at = :updated_at
		WHERE id = :id
	`
	res, err := s.DB.NamedExecContext(ctx, query, p)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("slug %q: %w", p.Slug, ErrDuplicate)
		}
		return err
	}
	return checkAffected(res)
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, s.q(`DELETE FROM blog_posts WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}
