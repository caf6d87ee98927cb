package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/shoplytic/reminder-api/internal/repository"
)

type reminderRepository struct {
	db *sqlx.DB
}

type historyRepository struct {
	db *sqlx.DB
}

type customerRepository struct {
	db *sqlx.DB
}

type productRepository struct {
	db *sqlx.DB
}

type emailAccountRepository struct {
	db *sqlx.DB
}

type activityLogRepository struct {
	db *sqlx.DB
}

func NewReminderRepository(db *sqlx.DB) repository.ReminderRepository {
	return &reminderRepository{db: db}
}

func NewHistoryRepository(db *sqlx.DB) repository.ReminderHistoryRepository {
	return &historyRepository{db: db}
}

func NewCustomerRepository(db *sqlx.DB) repository.CustomerRepository {
	return &customerRepository{db: db}
}

func NewProductRepository(db *sqlx.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

func NewEmailAccountRepository(db *sqlx.DB) repository.EmailAccountRepository {
	return &emailAccountRepository{db: db}
}

func NewActivityLogRepository(db *sqlx.DB) repository.ActivityLogRepository {
	return &activityLogRepository{db: db}
}
