package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/shoplytic/reminder-api/internal/model"
)

func (r *customerRepository) Get(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	query := `
		SELECT id, email, username, first_name, last_name,
			   has_cart_items, cart_product_ids, cart_updated_at,
			   role_ids, tags, generic_attributes,
			   created_at, updated_at
		FROM customers
		WHERE id = $1
	`
	var customer model.Customer
	err := r.db.GetContext(ctx, &customer, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &customer, nil
}

func (r *customerRepository) ListEligible(ctx context.Context, reminder *model.Reminder) ([]*model.Customer, error) {
	query := `
		SELECT id, email, username, first_name, last_name,
			   has_cart_items, cart_product_ids, cart_updated_at,
			   role_ids, tags, generic_attributes,
			   created_at, updated_at
		FROM customers
		WHERE has_cart_items = true
		  AND email <> ''
		  AND cart_updated_at > $1
	`
	var customers []*model.Customer
	err := r.db.SelectContext(ctx, &customers, query, reminder.LastUpdateDate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible customers: %w", err)
	}
	return customers, nil
}
