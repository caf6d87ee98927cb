package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shoplytic/reminder-api/internal/model"
	"github.com/shoplytic/reminder-api/internal/repository"
	"github.com/shoplytic/reminder-api/pkg/errors"
)

// Service manages reminder rules. Writes also record an outbox event so
// downstream consumers see every rule change.
type Service struct {
	reminders repository.ReminderRepository
	histories repository.ReminderHistoryRepository
	outbox    repository.OutboxRepository
	logger    zerolog.Logger
}

func NewService(
	reminders repository.ReminderRepository,
	histories repository.ReminderHistoryRepository,
	outbox repository.OutboxRepository,
	logger zerolog.Logger,
) *Service {
	return &Service{
		reminders: reminders,
		histories: histories,
		outbox:    outbox,
		logger:    logger.With().Str("component", "reminder_service").Logger(),
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateReminderRequest) (*model.Reminder, error) {
	if req == nil {
		return nil, errors.BadRequest("request is required", nil)
	}
	if len(req.Levels) == 0 {
		return nil, errors.BadRequest("at least one level is required", nil)
	}
	if !req.EndDateUTC.After(req.StartDateUTC) {
		return nil, errors.BadRequest("end date must be after start date", nil)
	}

	now := time.Now().UTC()
	rem := &model.Reminder{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:           req.Name,
		RuleType:       req.RuleType,
		Active:         req.Active,
		DisplayOrder:   req.DisplayOrder,
		StartDateUTC:   req.StartDateUTC,
		EndDateUTC:     req.EndDateUTC,
		LastUpdateDate: req.LastUpdateDate,
		AllowRenew:     req.AllowRenew,
		RenewedDay:     req.RenewedDay,
		Levels:         req.Levels,
		Conditions:     req.Conditions,
	}
	if rem.RuleType == "" {
		rem.RuleType = model.RuleTypeAbandonedCart
	}
	if rem.LastUpdateDate.IsZero() {
		rem.LastUpdateDate = now
	}
	assignLevelIDs(rem.Levels)

	if err := s.reminders.Create(ctx, rem); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}
	s.emitEvent(ctx, model.EventReminderCreated, rem)
	return rem, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Reminder, error) {
	rem, err := s.reminders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return rem, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Reminder, error) {
	return s.reminders.List(ctx)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateReminderRequest) (*model.Reminder, error) {
	if req == nil {
		return nil, errors.BadRequest("request is required", nil)
	}

	rem, err := s.reminders.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		rem.Name = *req.Name
	}
	if req.Active != nil {
		rem.Active = *req.Active
	}
	if req.DisplayOrder != nil {
		rem.DisplayOrder = *req.DisplayOrder
	}
	if req.StartDateUTC != nil {
		rem.StartDateUTC = *req.StartDateUTC
	}
	if req.EndDateUTC != nil {
		rem.EndDateUTC = *req.EndDateUTC
	}
	if req.LastUpdateDate != nil {
		rem.LastUpdateDate = *req.LastUpdateDate
	}
	if req.AllowRenew != nil {
		rem.AllowRenew = *req.AllowRenew
	}
	if req.RenewedDay != nil {
		rem.RenewedDay = *req.RenewedDay
	}
	if req.Levels != nil {
		if len(*req.Levels) == 0 {
			return nil, errors.BadRequest("at least one level is required", nil)
		}
		rem.Levels = *req.Levels
		assignLevelIDs(rem.Levels)
	}
	if req.Conditions != nil {
		rem.Conditions = *req.Conditions
	}
	if !rem.EndDateUTC.After(rem.StartDateUTC) {
		return nil, errors.BadRequest("end date must be after start date", nil)
	}
	rem.UpdatedAt = time.Now().UTC()

	if err := s.reminders.Update(ctx, rem); err != nil {
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}
	s.emitEvent(ctx, model.EventReminderUpdated, rem)
	return rem, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	rem, err := s.reminders.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.reminders.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	s.emitEvent(ctx, model.EventReminderDeleted, rem)
	return nil
}

// Histories returns the progression history for one customer.
func (s *Service) Histories(ctx context.Context, customerID uuid.UUID) ([]*model.ReminderHistory, error) {
	return s.histories.ListForCustomer(ctx, customerID)
}

// emitEvent writes an outbox record for a rule change. A failed write is
// logged but does not fail the operation; the entity change already
// committed.
func (s *Service) emitEvent(ctx context.Context, eventType string, rem *model.Reminder) {
	payload, err := json.Marshal(rem)
	if err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal outbox payload")
		return
	}

	now := time.Now().UTC()
	event := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   payload,
		Status:    string(model.OutboxStatusPending),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		s.logger.Error().Err(err).
			Str("event_type", eventType).
			Str("reminder_id", rem.ID.String()).
			Msg("failed to write outbox event")
	}
}

// assignLevelIDs gives identities to levels submitted without one.
func assignLevelIDs(levels model.ReminderLevels) {
	for i := range levels {
		if levels[i].ID == uuid.Nil {
			levels[i].ID = uuid.New()
		}
	}
}
