package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shoplytic/reminder-api/internal/model"
)

func (r *reminderRepository) Create(ctx context.Context, reminder *model.Reminder) error {
	query := `
		INSERT INTO reminders (
			id, name, rule_type, active, display_order,
			start_date_utc, end_date_utc, last_update_date,
			allow_renew, renewed_day, levels, conditions,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	reminder.ID = uuid.New()
	reminder.CreatedAt = time.Now()
	reminder.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		reminder.ID,
		reminder.Name,
		reminder.RuleType,
		reminder.Active,
		reminder.DisplayOrder,
		reminder.StartDateUTC,
		reminder.EndDateUTC,
		reminder.LastUpdateDate,
		reminder.AllowRenew,
		reminder.RenewedDay,
		reminder.Levels,
		reminder.Conditions,
		reminder.CreatedAt,
		reminder.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}
	return nil
}

func (r *reminderRepository) Get(ctx context.Context, id uuid.UUID) (*model.Reminder, error) {
	query := `
		SELECT id, name, rule_type, active, display_order,
			   start_date_utc, end_date_utc, last_update_date,
			   allow_renew, renewed_day, levels, conditions,
			   created_at, updated_at
		FROM reminders
		WHERE id = $1
	`
	var reminder model.Reminder
	err := r.db.GetContext(ctx, &reminder, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	return &reminder, nil
}

func (r *reminderRepository) List(ctx context.Context) ([]*model.Reminder, error) {
	query := `
		SELECT id, name, rule_type, active, display_order,
			   start_date_utc, end_date_utc, last_update_date,
			   allow_renew, renewed_day, levels, conditions,
			   created_at, updated_at
		FROM reminders
		ORDER BY display_order ASC
	`
	var reminders []*model.Reminder
	if err := r.db.SelectContext(ctx, &reminders, query); err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, nil
}

func (r *reminderRepository) ListActive(ctx context.Context, now time.Time) ([]*model.Reminder, error) {
	query := `
		SELECT id, name, rule_type, active, display_order,
			   start_date_utc, end_date_utc, last_update_date,
			   allow_renew, renewed_day, levels, conditions,
			   created_at, updated_at
		FROM reminders
		WHERE active = true
		  AND start_date_utc <= $1
		  AND end_date_utc >= $1
		ORDER BY display_order ASC
	`
	var reminders []*model.Reminder
	err := r.db.SelectContext(ctx, &reminders, query, now)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list active reminders: %w", err)
	}
	return reminders, nil
}

func (r *reminderRepository) Update(ctx context.Context, reminder *model.Reminder) error {
	query := `
		UPDATE reminders
		SET name = $1, rule_type = $2, active = $3, display_order = $4,
			start_date_utc = $5, end_date_utc = $6, last_update_date = $7,
			allow_renew = $8, renewed_day = $9, levels = $10, conditions = $11,
			updated_at = $12
		WHERE id = $13
	`
	reminder.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		reminder.Name,
		reminder.RuleType,
		reminder.Active,
		reminder.DisplayOrder,
		reminder.StartDateUTC,
		reminder.EndDateUTC,
		reminder.LastUpdateDate,
		reminder.AllowRenew,
		reminder.RenewedDay,
		reminder.Levels,
		reminder.Conditions,
		reminder.UpdatedAt,
		reminder.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("reminder not found")
	}
	return nil
}

func (r *reminderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("reminder not found")
	}
	return nil
}
