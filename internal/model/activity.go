package model

import (
	"time"

	"github.com/google/uuid"
)

// ActivityKindAbandonedCart is logged when an abandoned-cart level is sent.
const ActivityKindAbandonedCart = "CustomerReminder.AbandonedCart"

// ActivityLog is a fire-and-forget audit entry; failures to write one never
// affect reminder progression.
type ActivityLog struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Kind       string    `json:"kind" db:"kind"`
	CustomerID uuid.UUID `json:"customer_id" db:"customer_id"`
	Comment    string    `json:"comment" db:"comment"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
