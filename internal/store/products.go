package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
	"github.com/google/uuid"
)

const productColumns = `id, legacy_id, name, description, long_description, category, image_url,
	sale_price, regular_price, purchase_url, featured, published, sort_order, created_at, updated_at`

// GetAllProducts returns every product, including unpublished ones, for the admin panel.
func (s *Store) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY sort_order, created_at DESC`
	var products []models.Product
	if err := s.DB.SelectContext(ctx, &products, query); err != nil {
		return nil, err
	}
	return products, nil
}

// GetPublishedProducts returns the public catalog.
func (s *Store) GetPublishedProducts(ctx context.Context) ([]models.Product, error) {
	query := s.q(`SELECT ` + productColumns + ` FROM products WHERE published = ? ORDER BY sort_order, created_at DESC`)
	var products []models.Product
	if err := s.DB.SelectContext(ctx, &products, query, true); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.getProduct(ctx, `id = ?`, id)
}

func (s *Store) GetProductByLegacyID(ctx context.Context, legacyID int64) (*models.Product, error) {
	return s.getProduct(ctx, `legacy_id = ?`, legacyID)
}

func (s *Store) getProduct(ctx context.Context, where string, arg any) (*models.Product, error) {
	var p models.Product
	err := s.DB.GetContext(ctx, &p, s.q(`SELECT `+productColumns+` FROM products WHERE `+where), arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProduct assigns the id and timestamps and inserts the row.
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	now := s.now()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES (:id, :legacy_id, :name, :description, :long_description, :category, :image_url,
			:sale_price, :regular_price, :purchase_url, :featured, :published, :sort_order, :created_at, :updated_at)
	`
	if _, err := s.DB.NamedExecContext(ctx, query, p); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("product legacy id already used: %w", ErrDuplicate)
		}
		return err
	}
	return nil
}

// UpdateProduct saves every editable field except the image, which has its own
// upload path.
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = s.now()
	query := `
		UPDATE products
		SET legacy_id = :legacy_id, name = :name, description = :description, long_description = :long_description,
			category = :category, sale_price = :sale_price, regular_price = :regular_price,
			purchase_url = :purchase_url, featured = :featured, published = :published,
			sort_order = :sort_order, updated_at = :updated_at
		WHERE id = :id
	`
	res, err := s.DB.NamedExecContext(ctx, query, p)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("product legacy id already used: %w", ErrDuplicate)
		}
		return err
	}
	return checkAffected(res)
}

func (s *Store) UpdateProductImage(ctx context.Context, id, imageURL string) error {
	res, err := s.DB.ExecContext(ctx, s.q(`UPDATE products SET image_url = ?, updated_at = ? WHERE id = ?`), imageURL, s.now(), id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, s.q(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// UpsertProductByLegacyID inserts the product or overwrites the row that
// carries the same legacy id. The existing id and sort order are kept.
func (s *Store) UpsertProductByLegacyID(ctx context.Context, p *models.Product) (created bool, err error) {
	if p.LegacyID == nil {
		return false, errors.New("upsert requires a legacy id")
	}

	existing, err := s.GetProductByLegacyID(ctx, *p.LegacyID)
	if errors.Is(err, ErrNotFound) {
		return true, s.CreateProduct(ctx, p)
	}
	if err != nil {
		return false, err
	}

	p.ID = existing.ID
	p.SortOrder = existing.SortOrder
	if p.ImageURL == "" {
		p.ImageURL = existing.ImageURL
	}
	if err := s.UpdateProduct(ctx, p); err != nil {
		return false, err
	}
	if p.ImageURL != existing.ImageURL {
		if err := s.UpdateProductImage(ctx, p.ID, p.ImageURL); err != nil {
			return false, err
		}
	}
	p.CreatedAt = existing.CreatedAt
	return false, nil
}
