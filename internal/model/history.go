package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// HistoryStatus is the lifecycle state of a reminder history record.
type HistoryStatus string

const (
	HistoryStatusStarted           HistoryStatus = "started"
	HistoryStatusCompletedReminder HistoryStatus = "completed_reminder"
)

// HistoryLevel records one level send. Entries are append-only, ordered by
// send date.
type HistoryLevel struct {
	LevelID  uuid.UUID `json:"level_id"`
	Level    int       `json:"level"`
	SendDate time.Time `json:"send_date"`
}

// HistoryLevels is stored as a JSONB column.
type HistoryLevels []HistoryLevel

func (l HistoryLevels) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *HistoryLevels) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unexpected type %T for history levels", src)
	}
	return json.Unmarshal(b, l)
}

// LastSent returns the most recently sent entry, or nil when nothing was
// sent yet.
func (l HistoryLevels) LastSent() *HistoryLevel {
	var last *HistoryLevel
	for i := range l {
		if last == nil || !l[i].SendDate.Before(last.SendDate) {
			last = &l[i]
		}
	}
	return last
}

// ReminderHistory tracks one escalation cycle for a (customer, reminder)
// pair. At most one record per pair is in the started state at any time;
// renewal always creates a fresh record.
type ReminderHistory struct {
	Base
	CustomerID uuid.UUID     `json:"customer_id" db:"customer_id"`
	ReminderID uuid.UUID     `json:"reminder_id" db:"reminder_id"`
	Status     HistoryStatus `json:"status" db:"status"`
	StartDate  time.Time     `json:"start_date" db:"start_date"`
	EndDate    *time.Time    `json:"end_date,omitempty" db:"end_date"`
	Levels     HistoryLevels `json:"levels" db:"levels"`
}
