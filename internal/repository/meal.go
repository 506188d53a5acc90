package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/caltrack/caltrack-go/internal/model"
	"github.com/google/uuid"
)

var ErrMealNotFound = errors.New("meal not found")

const mealColumns = `id, user_id, name, date, items, total_calories, created_at, updated_at`

// MealRepository persists meals. Items are stored as a JSON column.
type MealRepository struct {
	db *sql.DB
}

func NewMealRepository(db *sql.DB) *MealRepository {
	return &MealRepository{db: db}
}

// Create inserts a meal and assigns its ID.
func (r *MealRepository) Create(ctx context.Context, meal *model.Meal) error {
	items, err := json.Marshal(meal.Items)
	if err != nil {
		return fmt.Errorf("encode meal items: %w", err)
	}
	if meal.ID == "" {
		meal.ID = uuid.NewString()
	}

	query := `INSERT INTO meals (id, user_id, name, date, items, total_calories) VALUES (?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query, meal.ID, meal.UserID, meal.Name, meal.Date, items, meal.TotalCalories)
	return err
}

func (r *MealRepository) GetByID(ctx context.Context, id string) (*model.Meal, error) {
	query := `SELECT ` + mealColumns + ` FROM meals WHERE id = ?`

	meal := &model.Meal{}
	if err := scanMeal(r.db.QueryRowContext(ctx, query, id), meal); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMealNotFound
		}
		return nil, err
	}
	return meal, nil
}

// List returns the meals of userID, or every meal when userID is empty.
func (r *MealRepository) List(ctx context.Context, userID string) ([]model.Meal, error) {
	query := `SELECT ` + mealColumns + ` FROM meals`
	var args []any
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY date DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meals := []model.Meal{}
	for rows.Next() {
		var m model.Meal
		if err := scanMeal(rows, &m); err != nil {
			return nil, err
		}
		meals = append(meals, m)
	}

	return meals, rows.Err()
}

func (r *MealRepository) Update(ctx context.Context, meal *model.Meal) error {
	items, err := json.Marshal(meal.Items)
	if err != nil {
		return fmt.Errorf("encode meal items: %w", err)
	}

	query := `UPDATE meals SET name = ?, date = ?, items = ?, total_calories = ? WHERE id = ?`
	_, err = r.db.ExecContext(ctx, query, meal.Name, meal.Date, items, meal.TotalCalories, meal.ID)
	return err
}

func (r *MealRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM meals WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMealNotFound
	}
	return nil
}

func scanMeal(s scanner, m *model.Meal) error {
	var items []byte
	if err := s.Scan(&m.ID, &m.UserID, &m.Name, &m.Date, &items, &m.TotalCalories, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return err
	}
	m.Items = []model.MealItem{}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &m.Items); err != nil {
			return fmt.Errorf("decode meal %s items: %w", m.ID, err)
		}
	}
	return nil
}
