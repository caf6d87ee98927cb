package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shoplytic/reminder-api/internal/model"
)

func (r *historyRepository) ListForPair(ctx context.Context, customerID, reminderID uuid.UUID) ([]*model.ReminderHistory, error) {
	query := `
		SELECT id, customer_id, reminder_id, status, start_date, end_date,
			   levels, created_at, updated_at
		FROM reminder_histories
		WHERE customer_id = $1 AND reminder_id = $2
		ORDER BY start_date ASC
	`
	var histories []*model.ReminderHistory
	err := r.db.SelectContext(ctx, &histories, query, customerID, reminderID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list histories for pair: %w", err)
	}
	return histories, nil
}

func (r *historyRepository) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]*model.ReminderHistory, error) {
	query := `
		SELECT id, customer_id, reminder_id, status, start_date, end_date,
			   levels, created_at, updated_at
		FROM reminder_histories
		WHERE customer_id = $1
		ORDER BY start_date DESC
	`
	var histories []*model.ReminderHistory
	err := r.db.SelectContext(ctx, &histories, query, customerID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list histories for customer: %w", err)
	}
	return histories, nil
}

func (r *historyRepository) Insert(ctx context.Context, history *model.ReminderHistory) error {
	query := `
		INSERT INTO reminder_histories (
			id, customer_id, reminder_id, status, start_date, end_date,
			levels, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if history.ID == uuid.Nil {
		history.ID = uuid.New()
	}
	history.CreatedAt = time.Now()
	history.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		history.ID,
		history.CustomerID,
		history.ReminderID,
		history.Status,
		history.StartDate,
		history.EndDate,
		history.Levels,
		history.CreatedAt,
		history.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reminder history: %w", err)
	}
	return nil
}

func (r *historyRepository) Update(ctx context.Context, history *model.ReminderHistory) error {
	query := `
		UPDATE reminder_histories
		SET status = $1, end_date = $2, levels = $3, updated_at = $4
		WHERE id = $5
	`
	history.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		history.Status,
		history.EndDate,
		history.Levels,
		history.UpdatedAt,
		history.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reminder history: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("reminder history not found")
	}
	return nil
}
