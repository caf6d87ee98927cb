package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shoplytic/reminder-api/internal/model"
)

func (r *activityLogRepository) Insert(ctx context.Context, entry *model.ActivityLog) error {
	query := `
		INSERT INTO activity_logs (id, kind, customer_id, comment, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.Kind,
		entry.CustomerID,
		entry.Comment,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity log: %w", err)
	}
	return nil
}
