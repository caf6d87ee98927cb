package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplytic/reminder-api/internal/model"
)

func newTestEngine() *Engine {
	return NewEngine(newTestEvaluator(newFakeCatalog()))
}

func TestDecideInitialSendWhenDue(t *testing.T) {
	engine := newTestEngine()
	rem := threeLevelReminder()
	customer := testCustomer(2 * time.Hour)

	d := engine.Decide(context.Background(), rem, customer, nil, time.Now().UTC())
	require.Equal(t, actionSend, d.action)
	assert.Equal(t, 1, d.level.Level)
	assert.True(t, d.initial)
	assert.Nil(t, d.history)
}

func TestDecideInitialNotYetDue(t *testing.T) {
	engine := newTestEngine()
	rem := threeLevelReminder()
	customer := testCustomer(30 * time.Minute)

	d := engine.Decide(context.Background(), rem, customer, nil, time.Now().UTC())
	assert.Equal(t, actionNone, d.action)
}

func TestDecideInitialConditionsGateTheFirstSend(t *testing.T) {
	engine := newTestEngine()
	rem := threeLevelReminder()
	rem.Conditions = model.ReminderConditions{{
		Type:         model.ConditionTypeCustomerTag,
		Mode:         model.MatchOneOfThem,
		CustomerTags: []string{"vip"},
	}}
	customer := testCustomer(2 * time.Hour)

	d := engine.Decide(context.Background(), rem, customer, nil, time.Now().UTC())
	assert.Equal(t, actionNone, d.action)

	customer.Tags = model.StringSlice{"vip"}
	d = engine.Decide(context.Background(), rem, customer, nil, time.Now().UTC())
	assert.Equal(t, actionSend, d.action)
}

func TestDecideEscalationSendsNextLevelOnTimingAlone(t *testing.T) {
	engine := newTestEngine()
	rem := threeLevelReminder()
	// Conditions the customer does not meet: escalation must still fire.
	rem.Conditions = model.ReminderConditions{{
		Type:         model.ConditionTypeCustomerTag,
		Mode:         model.MatchOneOfThem,
		CustomerTags: []string{"vip"},
	}}
	customer := testCustomer(26 * time.Hour)

	now := time.Now().UTC()
	active := &model.ReminderHistory{
		CustomerID: customer.ID,
		ReminderID: rem.ID,
		Status:     model.HistoryStatusStarted,
		StartDate:  now.Add(-25 * time.Hour),
		Levels: model.HistoryLevels{
			{LevelID: rem.Levels[0].ID, Level: 1, SendDate: now.Add(-25 * time.Hour)},
		},
	}

	d := engine.Decide(context.Background(), rem, customer, []*model.ReminderHistory{active}, now)
	require.Equal(t, actionSend, d.action)
	assert.Equal(t, 2, d.level.Level)
	assert.False(t, d.initial)
	assert.Same(t, active, d.history)
}

func TestDecideEscalationWaitsForOffset(t *testing.T) {
	engine := newTestEngine()
	rem := threeLevelReminder()
	customer := testCustomer(3 * time.Hour)

	now := time.Now().UTC()
	active := &model.ReminderHistory{
		Status: model.HistoryStatusStarted,
		Levels: model.HistoryLevels{
			{LevelID: rem.Levels[0].ID, Level: 1, SendDate: now.Add(-2 * time.Hour)},
		},
	}

	d := engine.Decide(context.Background(), rem, customer, []*model.ReminderHistory{active}, now)
	assert.Equal(t, actionNone, d.action)
}

func TestDecideClosesRecordPastTerminalLevel(t *testing.T) {
	engine := newTestEngine()
	rem := threeLevelReminder()
	customer := testCustomer(80 * time.Hour)

	now := time.Now().UTC()
	active := &model.ReminderHistory{
		Status: model.HistoryStatusStarted,
		Levels: model.HistoryLevels{
			{LevelID: rem.Levels[2].ID, Level: 3, SendDate: now.Add(-time.Hour)},
		},
	}

	d := engine.Decide(context.Background(), rem, customer, []*model.ReminderHistory{active}, now)
	require.Equal(t, actionClose, d.action)
	assert.Same(t, active, d.history)
}

func TestDecideRenewalAfterCooldown(t *testing.T) {
	engine := newTestEngine()
	rem := threeLevelReminder()
	customer := testCustomer(2 * time.Hour)

	now := time.Now().UTC()
	completed := &model.ReminderHistory{
		Status:  model.HistoryStatusCompletedReminder,
		EndDate: timePtr(now.AddDate(0, 0, -8)),
		Levels: model.HistoryLevels{
			{LevelID: rem.Levels[2].ID, Level: 3, SendDate: now.AddDate(0, 0, -8)},
		},
	}

	d := engine.Decide(context.Background(), rem, customer, []*model.ReminderHistory{completed}, now)
	require.Equal(t, actionSend, d.action)
	assert.Equal(t, 1, d.level.Level)
	assert.True(t, d.initial)
	// Renewal starts a brand-new cycle; the completed record stays closed.
	assert.Nil(t, d.history)
}

func TestDecideRenewalRespectsCooldownAndFlag(t *testing.T) {
	engine := newTestEngine()
	rem := threeLevelReminder()
	customer := testCustomer(2 * time.Hour)

	now := time.Now().UTC()
	completed := &model.ReminderHistory{
		Status:  model.HistoryStatusCompletedReminder,
		EndDate: timePtr(now.AddDate(0, 0, -3)),
	}

	// Cooldown (7 days) not yet elapsed.
	d := engine.Decide(context.Background(), rem, customer, []*model.ReminderHistory{completed}, now)
	assert.Equal(t, actionNone, d.action)

	// Cooldown elapsed but renewal disabled.
	completed.EndDate = timePtr(now.AddDate(0, 0, -8))
	rem.AllowRenew = false
	d = engine.Decide(context.Background(), rem, customer, []*model.ReminderHistory{completed}, now)
	assert.Equal(t, actionNone, d.action)
}

func TestRecordSendCreatesStartedRecord(t *testing.T) {
	repo := &fakeHistoryRepo{}
	tracker := NewHistoryTracker(repo)
	rem := threeLevelReminder()
	customer := testCustomer(2 * time.Hour)

	h, err := tracker.RecordSend(context.Background(), customer, rem, rem.Levels[0].ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.inserts)
	assert.Equal(t, model.HistoryStatusStarted, h.Status)
	assert.Nil(t, h.EndDate)
	require.Len(t, h.Levels, 1)
	assert.Equal(t, 1, h.Levels[0].Level)
}

func TestRecordSendSingleLevelRuleStaysStarted(t *testing.T) {
	repo := &fakeHistoryRepo{}
	tracker := NewHistoryTracker(repo)

	rem := threeLevelReminder()
	rem.Levels = rem.Levels[:1]
	customer := testCustomer(2 * time.Hour)

	// Even when the only level is also the terminal one, a fresh record is
	// not completed in the same write; the next scan closes it.
	h, err := tracker.RecordSend(context.Background(), customer, rem, rem.Levels[0].ID, nil)
	require.NoError(t, err)
	assert.Equal(t, model.HistoryStatusStarted, h.Status)
}

func TestRecordSendAppendsAndCompletesAtTerminalLevel(t *testing.T) {
	repo := &fakeHistoryRepo{}
	tracker := NewHistoryTracker(repo)
	rem := threeLevelReminder()
	customer := testCustomer(80 * time.Hour)

	now := time.Now().UTC()
	active := &model.ReminderHistory{
		Status: model.HistoryStatusStarted,
		Levels: model.HistoryLevels{
			{LevelID: rem.Levels[0].ID, Level: 1, SendDate: now.Add(-50 * time.Hour)},
			{LevelID: rem.Levels[1].ID, Level: 2, SendDate: now.Add(-26 * time.Hour)},
		},
	}

	h, err := tracker.RecordSend(context.Background(), customer, rem, rem.Levels[2].ID, active)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.updates)
	assert.Equal(t, model.HistoryStatusCompletedReminder, h.Status)
	require.NotNil(t, h.EndDate)
	assert.Len(t, h.Levels, 3)
}

func TestRecordSendRejectsForeignLevel(t *testing.T) {
	tracker := NewHistoryTracker(&fakeHistoryRepo{})
	rem := threeLevelReminder()

	_, err := tracker.RecordSend(context.Background(), testCustomer(0), rem, uuid.New(), nil)
	assert.Error(t, err)
}

func TestCloseAsCompleted(t *testing.T) {
	repo := &fakeHistoryRepo{}
	tracker := NewHistoryTracker(repo)

	h := &model.ReminderHistory{Status: model.HistoryStatusStarted}
	require.NoError(t, tracker.CloseAsCompleted(context.Background(), h))
	assert.Equal(t, model.HistoryStatusCompletedReminder, h.Status)
	assert.NotNil(t, h.EndDate)
	assert.Equal(t, 1, repo.updates)
}
