package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/shoplytic/reminder-api/internal/model"
)

func (r *emailAccountRepository) Get(ctx context.Context, id uuid.UUID) (*model.EmailAccount, error) {
	query := `
		SELECT id, email, display_name, host, port, username, password,
			   use_tls, created_at, updated_at
		FROM email_accounts
		WHERE id = $1
	`
	var account model.EmailAccount
	err := r.db.GetContext(ctx, &account, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get email account: %w", err)
	}
	return &account, nil
}
