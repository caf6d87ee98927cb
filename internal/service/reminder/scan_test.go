package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplytic/reminder-api/internal/model"
	"github.com/shoplytic/reminder-api/pkg/metrics"
)

func newTestScanner(rem *model.Reminder, customer *model.Customer, histories *fakeHistoryRepo, dispatch *fakeDispatcher) *Scanner {
	engine := newTestEngine()
	return NewScanner(
		&fakeReminderRepo{active: []*model.Reminder{rem}},
		&fakeCustomerRepo{eligible: []*model.Customer{customer}},
		histories,
		engine,
		NewHistoryTracker(histories),
		dispatch,
		metrics.NewUnregistered("test"),
		zerolog.Nop(),
	)
}

func TestScanSendsFirstLevelAndRecordsIt(t *testing.T) {
	rem := threeLevelReminder()
	customer := testCustomer(2 * time.Hour)
	histories := &fakeHistoryRepo{}
	dispatch := &fakeDispatcher{result: true}

	s := newTestScanner(rem, customer, histories, dispatch)
	require.NoError(t, s.Scan(context.Background()))

	require.Len(t, dispatch.calls, 1)
	assert.Equal(t, rem.Levels[0].ID, dispatch.calls[0].levelID)
	assert.Equal(t, customer.ID, dispatch.calls[0].customerID)
	require.Equal(t, 1, histories.inserts)
	assert.Equal(t, model.HistoryStatusStarted, histories.records[0].Status)
}

func TestScanSecondPassWithinOffsetSendsNothing(t *testing.T) {
	rem := threeLevelReminder()
	customer := testCustomer(2 * time.Hour)
	histories := &fakeHistoryRepo{}
	dispatch := &fakeDispatcher{result: true}

	s := newTestScanner(rem, customer, histories, dispatch)
	require.NoError(t, s.Scan(context.Background()))
	require.NoError(t, s.Scan(context.Background()))

	// The second pass sees the active record with level 1 just sent; level 2
	// is a day away.
	assert.Len(t, dispatch.calls, 1)
	assert.Equal(t, 1, histories.inserts)
}

func TestScanDispatchFailureLeavesHistoryUntouched(t *testing.T) {
	rem := threeLevelReminder()
	customer := testCustomer(2 * time.Hour)
	histories := &fakeHistoryRepo{}
	dispatch := &fakeDispatcher{result: false}

	s := newTestScanner(rem, customer, histories, dispatch)
	require.NoError(t, s.Scan(context.Background()))

	assert.Len(t, dispatch.calls, 1)
	assert.Zero(t, histories.inserts)

	// The pair stays eligible: the next pass retries the same level.
	require.NoError(t, s.Scan(context.Background()))
	assert.Len(t, dispatch.calls, 2)
}

func TestScanEscalatesActiveCycle(t *testing.T) {
	rem := threeLevelReminder()
	customer := testCustomer(26 * time.Hour)

	now := time.Now().UTC()
	histories := &fakeHistoryRepo{records: []*model.ReminderHistory{{
		CustomerID: customer.ID,
		ReminderID: rem.ID,
		Status:     model.HistoryStatusStarted,
		StartDate:  now.Add(-25 * time.Hour),
		Levels: model.HistoryLevels{
			{LevelID: rem.Levels[0].ID, Level: 1, SendDate: now.Add(-25 * time.Hour)},
		},
	}}}
	dispatch := &fakeDispatcher{result: true}

	s := newTestScanner(rem, customer, histories, dispatch)
	require.NoError(t, s.Scan(context.Background()))

	require.Len(t, dispatch.calls, 1)
	assert.Equal(t, rem.Levels[1].ID, dispatch.calls[0].levelID)
	assert.Equal(t, 1, histories.updates)
	assert.Len(t, histories.records[0].Levels, 2)
	assert.Equal(t, model.HistoryStatusStarted, histories.records[0].Status)
}

func TestScanCompletesCycleAtTerminalLevel(t *testing.T) {
	rem := threeLevelReminder()
	customer := testCustomer(50 * time.Hour)

	now := time.Now().UTC()
	histories := &fakeHistoryRepo{records: []*model.ReminderHistory{{
		CustomerID: customer.ID,
		ReminderID: rem.ID,
		Status:     model.HistoryStatusStarted,
		Levels: model.HistoryLevels{
			{LevelID: rem.Levels[0].ID, Level: 1, SendDate: now.Add(-49 * time.Hour)},
			{LevelID: rem.Levels[1].ID, Level: 2, SendDate: now.Add(-25 * time.Hour)},
		},
	}}}
	dispatch := &fakeDispatcher{result: true}

	s := newTestScanner(rem, customer, histories, dispatch)
	require.NoError(t, s.Scan(context.Background()))

	require.Len(t, dispatch.calls, 1)
	assert.Equal(t, rem.Levels[2].ID, dispatch.calls[0].levelID)
	record := histories.records[0]
	assert.Equal(t, model.HistoryStatusCompletedReminder, record.Status)
	assert.NotNil(t, record.EndDate)
	assert.Len(t, record.Levels, 3)
}

func TestScanClosesStrandedRecordWithoutSending(t *testing.T) {
	rem := threeLevelReminder()
	customer := testCustomer(80 * time.Hour)

	now := time.Now().UTC()
	histories := &fakeHistoryRepo{records: []*model.ReminderHistory{{
		CustomerID: customer.ID,
		ReminderID: rem.ID,
		Status:     model.HistoryStatusStarted,
		Levels: model.HistoryLevels{
			{LevelID: rem.Levels[2].ID, Level: 3, SendDate: now.Add(-time.Hour)},
		},
	}}}
	dispatch := &fakeDispatcher{result: true}

	s := newTestScanner(rem, customer, histories, dispatch)
	require.NoError(t, s.Scan(context.Background()))

	assert.Empty(t, dispatch.calls)
	assert.Equal(t, model.HistoryStatusCompletedReminder, histories.records[0].Status)
}

func TestScanRenewalStartsFreshCycle(t *testing.T) {
	rem := threeLevelReminder()
	customer := testCustomer(2 * time.Hour)

	now := time.Now().UTC()
	histories := &fakeHistoryRepo{records: []*model.ReminderHistory{{
		CustomerID: customer.ID,
		ReminderID: rem.ID,
		Status:     model.HistoryStatusCompletedReminder,
		EndDate:    timePtr(now.AddDate(0, 0, -8)),
		Levels: model.HistoryLevels{
			{LevelID: rem.Levels[2].ID, Level: 3, SendDate: now.AddDate(0, 0, -8)},
		},
	}}}
	dispatch := &fakeDispatcher{result: true}

	s := newTestScanner(rem, customer, histories, dispatch)
	require.NoError(t, s.Scan(context.Background()))

	require.Len(t, dispatch.calls, 1)
	assert.Equal(t, rem.Levels[0].ID, dispatch.calls[0].levelID)
	require.Len(t, histories.records, 2)
	fresh := histories.records[1]
	assert.Equal(t, model.HistoryStatusStarted, fresh.Status)
	require.Len(t, fresh.Levels, 1)
	assert.Equal(t, 1, fresh.Levels[0].Level)
}
