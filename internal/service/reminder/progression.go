package reminder

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shoplytic/reminder-api/internal/model"
	"github.com/shoplytic/reminder-api/internal/repository"
	"github.com/shoplytic/reminder-api/pkg/errors"
)

// action is what a progression decision asks the scanner to do for one
// (customer, reminder) pair.
type action int

const (
	actionNone action = iota
	// actionSend sends decision.level and records it against
	// decision.history (nil history means start a new cycle).
	actionSend
	// actionClose marks the active history completed without sending;
	// the record is stuck at the terminal level.
	actionClose
)

type decision struct {
	action  action
	level   *model.ReminderLevel
	history *model.ReminderHistory
	// initial is set when the send starts a cycle (first send or renewal)
	// and therefore required a condition check.
	initial bool
}

// Engine decides the next progression step for a (customer, reminder)
// pair. It never mutates state; the scanner applies its decisions.
type Engine struct {
	evaluator *Evaluator
}

func NewEngine(evaluator *Evaluator) *Engine {
	return &Engine{evaluator: evaluator}
}

// Decide inspects the pair's full history and returns at most one send (or
// close) decision per scan pass. Levels are considered in ascending order
// and never skipped.
func (e *Engine) Decide(ctx context.Context, rem *model.Reminder, customer *model.Customer, histories []*model.ReminderHistory, now time.Time) decision {
	active := activeHistory(histories)
	if active != nil {
		return e.decideEscalation(rem, active, now)
	}
	if len(histories) > 0 {
		return e.decideRenewal(ctx, rem, customer, histories, now)
	}
	return e.decideInitial(ctx, rem, customer, now)
}

// decideInitial handles a pair with no history at all: the first level is
// due once the cart has been idle for the level's offset and conditions
// hold.
func (e *Engine) decideInitial(ctx context.Context, rem *model.Reminder, customer *model.Customer, now time.Time) decision {
	level := rem.FirstLevel()
	if level == nil || customer.CartUpdatedAt == nil {
		return decision{action: actionNone}
	}
	if !now.After(customer.CartUpdatedAt.Add(level.Offset())) {
		return decision{action: actionNone}
	}
	if !e.evaluator.Evaluate(ctx, rem.Conditions, customer) {
		return decision{action: actionNone}
	}
	return decision{action: actionSend, level: level, initial: true}
}

// decideEscalation advances an active cycle. Conditions are not
// re-checked: once a cycle has started, later levels send on timing alone.
func (e *Engine) decideEscalation(rem *model.Reminder, active *model.ReminderHistory, now time.Time) decision {
	last := active.Levels.LastSent()
	if last == nil {
		return decision{action: actionNone}
	}

	next := rem.NextLevelAfter(last.Level)
	if next == nil {
		// Already past the terminal level; close the record defensively.
		return decision{action: actionClose, history: active}
	}
	if !now.After(last.SendDate.Add(next.Offset())) {
		return decision{action: actionNone}
	}
	return decision{action: actionSend, level: next, history: active}
}

// decideRenewal restarts a completed pair from level one after the renewal
// cooldown, provided the customer is eligible again. The completed records
// are left untouched; a renewal send starts a brand-new cycle.
func (e *Engine) decideRenewal(ctx context.Context, rem *model.Reminder, customer *model.Customer, histories []*model.ReminderHistory, now time.Time) decision {
	if !rem.AllowRenew {
		return decision{action: actionNone}
	}

	latestEnd := maxEndDate(histories)
	if latestEnd == nil || !now.After(latestEnd.AddDate(0, 0, rem.RenewedDay)) {
		return decision{action: actionNone}
	}

	level := rem.FirstLevel()
	if level == nil || customer.CartUpdatedAt == nil {
		return decision{action: actionNone}
	}
	if !now.After(customer.CartUpdatedAt.Add(level.Offset())) {
		return decision{action: actionNone}
	}
	if !e.evaluator.Evaluate(ctx, rem.Conditions, customer) {
		return decision{action: actionNone}
	}
	return decision{action: actionSend, level: level, initial: true}
}

func activeHistory(histories []*model.ReminderHistory) *model.ReminderHistory {
	for _, h := range histories {
		if h.Status == model.HistoryStatusStarted {
			return h
		}
	}
	return nil
}

func maxEndDate(histories []*model.ReminderHistory) *time.Time {
	var latest *time.Time
	for _, h := range histories {
		if h.EndDate == nil {
			continue
		}
		if latest == nil || h.EndDate.After(*latest) {
			latest = h.EndDate
		}
	}
	return latest
}

// HistoryTracker applies send decisions to the history store. HistoryLevel
// entries are append-only; nothing is ever removed or reordered.
type HistoryTracker struct {
	histories repository.ReminderHistoryRepository
}

func NewHistoryTracker(histories repository.ReminderHistoryRepository) *HistoryTracker {
	return &HistoryTracker{histories: histories}
}

// RecordSend appends the sent level to the existing active record, or
// creates a fresh started record when existing is nil. When the sent level
// is the reminder's terminal level the record is completed in the same
// write.
func (t *HistoryTracker) RecordSend(ctx context.Context, customer *model.Customer, rem *model.Reminder, levelID uuid.UUID, existing *model.ReminderHistory) (*model.ReminderHistory, error) {
	if rem == nil {
		return nil, errors.BadRequest("reminder is required", nil)
	}
	if customer == nil {
		return nil, errors.BadRequest("customer is required", nil)
	}
	level := rem.LevelByID(levelID)
	if level == nil {
		return nil, errors.BadRequest("level does not belong to reminder", nil)
	}

	now := time.Now().UTC()
	entry := model.HistoryLevel{
		LevelID:  level.ID,
		Level:    level.Level,
		SendDate: now,
	}

	if existing != nil {
		existing.Levels = append(existing.Levels, entry)
		if level.Level == rem.MaxLevel() {
			existing.Status = model.HistoryStatusCompletedReminder
			existing.EndDate = &now
		}
		if err := t.histories.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	// A fresh record always starts in the started state, even when the
	// reminder has a single level; the next scan closes it through the
	// no-further-level path.
	history := &model.ReminderHistory{
		CustomerID: customer.ID,
		ReminderID: rem.ID,
		Status:     model.HistoryStatusStarted,
		StartDate:  now,
		Levels:     model.HistoryLevels{entry},
	}
	if err := t.histories.Insert(ctx, history); err != nil {
		return nil, err
	}
	return history, nil
}

// CloseAsCompleted forces a record into the completed state without a
// send. Used when progression finds no further level for it.
func (t *HistoryTracker) CloseAsCompleted(ctx context.Context, history *model.ReminderHistory) error {
	if history == nil {
		return errors.BadRequest("history is required", nil)
	}
	now := time.Now().UTC()
	history.Status = model.HistoryStatusCompletedReminder
	history.EndDate = &now
	return t.histories.Update(ctx, history)
}
