package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/shoplytic/reminder-api/internal/model"
)

// Get returns (nil, nil) for an unknown product; condition evaluation
// treats a missing product as a failed condition, not an error.
func (r *productRepository) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `
		SELECT id, name, category_ids, manufacturer_ids, price,
			   created_at, updated_at
		FROM products
		WHERE id = $1
	`
	var product model.Product
	err := r.db.GetContext(ctx, &product, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}
