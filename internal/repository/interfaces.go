package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/shoplytic/reminder-api/internal/model"
)

// ReminderRepository is the rule store.
type ReminderRepository interface {
	Create(ctx context.Context, reminder *model.Reminder) error
	Get(ctx context.Context, id uuid.UUID) (*model.Reminder, error)
	// List returns all reminders ordered by display order.
	List(ctx context.Context) ([]*model.Reminder, error)
	// ListActive returns reminders whose active flag is set and whose
	// validity window contains now.
	ListActive(ctx context.Context, now time.Time) ([]*model.Reminder, error)
	Update(ctx context.Context, reminder *model.Reminder) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReminderHistoryRepository is the progression history store.
type ReminderHistoryRepository interface {
	// ListForPair returns every history record for the (customer, reminder)
	// pair, completed cycles included.
	ListForPair(ctx context.Context, customerID, reminderID uuid.UUID) ([]*model.ReminderHistory, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]*model.ReminderHistory, error)
	Insert(ctx context.Context, history *model.ReminderHistory) error
	Update(ctx context.Context, history *model.ReminderHistory) error
}

// CustomerRepository is the read-only customer store.
type CustomerRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	// ListEligible returns customers with cart items, a non-empty email and
	// a cart updated after the reminder's watermark.
	ListEligible(ctx context.Context, reminder *model.Reminder) ([]*model.Customer, error)
}

// ProductRepository is the catalog lookup used by condition evaluation.
// A missing product yields (nil, nil), never an error.
type ProductRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Product, error)
}

// EmailAccountRepository resolves the SMTP identity a level sends from.
type EmailAccountRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.EmailAccount, error)
}

// ActivityLogRepository persists fire-and-forget activity entries.
type ActivityLogRepository interface {
	Insert(ctx context.Context, entry *model.ActivityLog) error
}

// OutboxRepository stores entity events for asynchronous publication.
type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string, retryAt *time.Time) error
	BeginTx(ctx context.Context) (*sql.Tx, error)
}
