package postgres

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplytic/reminder-api/internal/model"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

var reminderColumns = []string{
	"id", "name", "rule_type", "active", "display_order",
	"start_date_utc", "end_date_utc", "last_update_date",
	"allow_renew", "renewed_day", "levels", "conditions",
	"created_at", "updated_at",
}

func reminderRow(id uuid.UUID, name string, now time.Time) []driver.Value {
	return []driver.Value{
		id.String(), name, "abandoned_cart", true, 1,
		now.Add(-time.Hour), now.AddDate(0, 1, 0), now.Add(-time.Hour),
		true, 7, []byte(`[{"id":"` + uuid.New().String() + `","level":1,"hour":1}]`), []byte(`[]`),
		now, now,
	}
}

func TestReminderRepositoryGet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReminderRepository(db)

	id := uuid.New()
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM reminders").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(reminderColumns).AddRow(reminderRow(id, "Abandoned cart", now)...))

	rem, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, rem.ID)
	assert.Equal(t, "Abandoned cart", rem.Name)
	assert.Equal(t, model.RuleTypeAbandonedCart, rem.RuleType)
	require.Len(t, rem.Levels, 1)
	assert.Equal(t, 1, rem.Levels[0].Level)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderRepositoryListActive(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReminderRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM reminders").
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows(reminderColumns).
			AddRow(reminderRow(uuid.New(), "First", now)...).
			AddRow(reminderRow(uuid.New(), "Second", now)...))

	reminders, err := repo.ListActive(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, reminders, 2)
	assert.Equal(t, "First", reminders[0].Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderRepositoryCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReminderRepository(db)

	mock.ExpectExec("INSERT INTO reminders").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rem := &model.Reminder{
		Name:         "Abandoned cart",
		RuleType:     model.RuleTypeAbandonedCart,
		StartDateUTC: time.Now().UTC(),
		EndDateUTC:   time.Now().UTC().AddDate(0, 1, 0),
		Levels:       model.ReminderLevels{{ID: uuid.New(), Level: 1, Hour: 1}},
	}
	require.NoError(t, repo.Create(context.Background(), rem))
	assert.NotEqual(t, uuid.Nil, rem.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderRepositoryUpdateNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReminderRepository(db)

	mock.ExpectExec("UPDATE reminders").
		WillReturnResult(sqlmock.NewResult(0, 0))

	rem := &model.Reminder{Name: "Gone"}
	rem.ID = uuid.New()
	err := repo.Update(context.Background(), rem)
	assert.ErrorContains(t, err, "not found")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderRepositoryDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReminderRepository(db)

	id := uuid.New()
	mock.ExpectExec("DELETE FROM reminders").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}
