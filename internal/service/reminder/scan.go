package reminder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shoplytic/reminder-api/internal/model"
	"github.com/shoplytic/reminder-api/internal/repository"
	"github.com/shoplytic/reminder-api/pkg/metrics"
)

// Dispatcher delivers one reminder level to a customer. It reports plain
// success or failure; on failure the pair's history is left untouched and
// the send is retried on the next scan pass.
type Dispatcher interface {
	SendLevel(ctx context.Context, customer *model.Customer, rem *model.Reminder, levelID uuid.UUID) bool
}

// Scanner drives one pass over all active reminders and their eligible
// customers. The reference behavior is sequential; every pair's state is
// self-contained, so a failure for one pair never aborts the rest.
type Scanner struct {
	reminders repository.ReminderRepository
	customers repository.CustomerRepository
	histories repository.ReminderHistoryRepository
	engine    *Engine
	tracker   *HistoryTracker
	dispatch  Dispatcher
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

func NewScanner(
	reminders repository.ReminderRepository,
	customers repository.CustomerRepository,
	histories repository.ReminderHistoryRepository,
	engine *Engine,
	tracker *HistoryTracker,
	dispatch Dispatcher,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Scanner {
	return &Scanner{
		reminders: reminders,
		customers: customers,
		histories: histories,
		engine:    engine,
		tracker:   tracker,
		dispatch:  dispatch,
		metrics:   m,
		logger:    logger,
	}
}

// Scan runs one pass. It returns an error only when the rule catalog
// itself cannot be loaded; per-reminder and per-customer failures are
// logged and skipped.
func (s *Scanner) Scan(ctx context.Context) error {
	started := time.Now()
	now := time.Now().UTC()

	reminders, err := s.reminders.ListActive(ctx, now)
	if err != nil {
		return err
	}

	for _, rem := range reminders {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.scanReminder(ctx, rem)
	}

	s.metrics.ScanDuration.Observe(time.Since(started).Seconds())
	s.metrics.ScanPasses.Inc()
	return nil
}

func (s *Scanner) scanReminder(ctx context.Context, rem *model.Reminder) {
	customers, err := s.customers.ListEligible(ctx, rem)
	if err != nil {
		s.logger.Error().Err(err).Str("reminder_id", rem.ID.String()).Msg("failed to load eligible customers")
		return
	}

	for _, customer := range customers {
		if ctx.Err() != nil {
			return
		}
		if err := s.processPair(ctx, rem, customer); err != nil {
			s.logger.Error().Err(err).
				Str("reminder_id", rem.ID.String()).
				Str("customer_id", customer.ID.String()).
				Msg("failed to process pair")
		}
	}
}

// processPair makes at most one send decision for the pair and applies it.
func (s *Scanner) processPair(ctx context.Context, rem *model.Reminder, customer *model.Customer) error {
	s.metrics.PairsEvaluated.Inc()

	histories, err := s.histories.ListForPair(ctx, customer.ID, rem.ID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	d := s.engine.Decide(ctx, rem, customer, histories, now)

	switch d.action {
	case actionSend:
		if !s.dispatch.SendLevel(ctx, customer, rem, d.level.ID) {
			// No history mutation: the pair stays eligible and the same
			// send is attempted again next pass.
			s.metrics.SendFailures.Inc()
			s.logger.Warn().
				Str("reminder_id", rem.ID.String()).
				Str("customer_id", customer.ID.String()).
				Int("level", d.level.Level).
				Msg("level dispatch failed")
			return nil
		}
		if _, err := s.tracker.RecordSend(ctx, customer, rem, d.level.ID, d.history); err != nil {
			return err
		}
		s.metrics.LevelsSent.Inc()
		s.logger.Info().
			Str("reminder_id", rem.ID.String()).
			Str("customer_id", customer.ID.String()).
			Int("level", d.level.Level).
			Bool("cycle_start", d.initial).
			Msg("reminder level sent")
	case actionClose:
		if err := s.tracker.CloseAsCompleted(ctx, d.history); err != nil {
			return err
		}
	}
	return nil
}
