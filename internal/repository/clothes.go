package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/wardrobix/internal/models"
)

// PostgresClothesRepository stores clothing items in a PostgreSQL database.
// Every query is scoped to the owning user.
type PostgresClothesRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresClothesRepository creates a new PostgresClothesRepository using the provided *sql.DB.
func NewPostgresClothesRepository(db *sql.DB) *PostgresClothesRepository {
	return &PostgresClothesRepository{DB: db}
}

// ListByUser returns all items of the user ordered by id.
func (r *PostgresClothesRepository) ListByUser(ctx context.Context, userID int64) ([]models.ClothingItem, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, formality, color, type, subtype FROM clothing_items WHERE user_id = $1 ORDER BY id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	defer rows.Close()

	items := []models.ClothingItem{}
	for rows.Next() {
		var it models.ClothingItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Formality, &it.Color, &it.Type, &it.Subtype); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	return items, nil
}

// GetByID fetches one item of the user.
func (r *PostgresClothesRepository) GetByID(ctx context.Context, userID, id int64) (models.ClothingItem, error) {
	it := models.ClothingItem{}
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, name, formality, color, type, subtype FROM clothing_items
		WHERE user_id = $1 AND id = $2
	`, userID, id).Scan(&it.ID, &it.Name, &it.Formality, &it.Color, &it.Type, &it.Subtype)
	if errors.Is(err, sql.ErrNoRows) {
		return it, ErrNotFound
	}
	if err != nil {
		return it, fmt.Errorf("GetByID: %w", err)
	}
	return it, nil
}

// Create inserts an item for the user and returns it with its new id.
func (r *PostgresClothesRepository) Create(ctx context.Context, userID int64, f models.ClothingFields) (models.ClothingItem, error) {
	it := models.ClothingItem{ClothingFields: f}
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO clothing_items (user_id, name, formality, color, type, subtype)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, userID, f.Name, f.Formality, f.Color, f.Type, f.Subtype).Scan(&it.ID)
	if err != nil {
		return models.ClothingItem{}, fmt.Errorf("Create: %w", err)
	}
	return it, nil
}

// Update replaces the fields of an item owned by the user.
func (r *PostgresClothesRepository) Update(ctx context.Context, userID, id int64, f models.ClothingFields) (models.ClothingItem, error) {
	it := models.ClothingItem{ClothingFields: f}
	err := r.DB.QueryRowContext(ctx, `
		UPDATE clothing_items SET name = $3, formality = $4, color = $5, type = $6, subtype = $7
		WHERE user_id = $1 AND id = $2
		RETURNING id
	`, userID, id, f.Name, f.Formality, f.Color, f.Type, f.Subtype).Scan(&it.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ClothingItem{}, ErrNotFound
	}
	if err != nil {
		return models.ClothingItem{}, fmt.Errorf("Update: %w", err)
	}
	return it, nil
}

// Delete removes an item owned by the user.
func (r *PostgresClothesRepository) Delete(ctx context.Context, userID, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM clothing_items WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
