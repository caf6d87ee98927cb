package activity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shoplytic/reminder-api/internal/model"
	"github.com/shoplytic/reminder-api/internal/repository"
)

// Service writes activity log entries. Logging is fire-and-forget: a
// failed write never affects the caller.
type Service struct {
	repo   repository.ActivityLogRepository
	logger zerolog.Logger
}

func NewService(repo repository.ActivityLogRepository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Log records an activity entry for a customer. The reminder name is
// folded into the comment the way the admin UI displays it.
func (s *Service) Log(ctx context.Context, kind string, customerID uuid.UUID, comment, reminderName string) {
	entry := &model.ActivityLog{
		Kind:       kind,
		CustomerID: customerID,
		Comment:    fmt.Sprintf("%s: %s", comment, reminderName),
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		s.logger.Warn().Err(err).
			Str("kind", kind).
			Str("customer_id", customerID.String()).
			Msg("failed to write activity log")
	}
}
