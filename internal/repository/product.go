package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/caltrack/caltrack-go/internal/model"
	"github.com/google/uuid"
)

var ErrProductNotFound = errors.New("product not found")

// ProductRepository persists the product catalog. Shared products have a NULL user_id.
type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *model.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	owner := sql.NullString{String: p.UserID, Valid: p.UserID != ""}
	query := `INSERT INTO products (id, name, calories_per_100g, user_id) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.Name, p.CaloriesPer100g, owner)
	return err
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	query := `SELECT id, name, calories_per_100g, user_id FROM products WHERE id = ?`

	p := &model.Product{}
	if err := scanProduct(r.db.QueryRowContext(ctx, query, id), p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListVisible returns the shared catalog plus the custom products of userID.
func (r *ProductRepository) ListVisible(ctx context.Context, userID string) ([]model.Product, error) {
	query := `SELECT id, name, calories_per_100g, user_id FROM products
		WHERE user_id IS NULL OR user_id = ? ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

func scanProduct(s scanner, p *model.Product) error {
	var owner sql.NullString
	if err := s.Scan(&p.ID, &p.Name, &p.CaloriesPer100g, &owner); err != nil {
		return err
	}
	p.UserID = owner.String
	return nil
}
