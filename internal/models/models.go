package models

import (
	"bytes"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrEmptyTask is returned when a task has no text besides whitespace.
var ErrEmptyTask = errors.New("task must not be empty")

// Task statuses derived from the done flag.
const (
	StatusPending = "pending"
	StatusDone    = "done"
)

// Task represents a single to-do item stored in todo_table.
type Task struct {
	ID        int64         `json:"id"`
	Task      string        `json:"task"`
	IsDone    bool          `json:"is_done"`
	CreatedAt LocalDateTime `json:"created_at"`
}

// PrePersist fills the defaults a new task needs right before it is inserted.
// It must not be applied on update.
func (t *Task) PrePersist(now time.Time) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = NewLocalDateTime(now)
	}
}

// Validate reports whether the task can be stored.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Task) == "" {
		return ErrEmptyTask
	}
	return nil
}

// Status returns the state of the task.
func (t Task) Status() string {
	if t.IsDone {
		return StatusDone
	}
	return StatusPending
}

// MarkDone moves the task to the done state. Done tasks stay done.
func (t *Task) MarkDone() {
	t.IsDone = true
}

// Rename replaces the task text when the new text is not blank and
// reports whether anything changed.
func (t *Task) Rename(text string) bool {
	if strings.TrimSpace(text) == "" || text == t.Task {
		return false
	}
	t.Task = text
	return true
}

// LocalDateTimeLayout is the wire format of a date-time without zone offset.
const LocalDateTimeLayout = "2006-01-02T15:04:05"

const sqlDateTimeLayout = "2006-01-02 15:04:05"

var sqlDateTimeLayouts = []string{
	sqlDateTimeLayout,
	"2006-01-02 15:04:05.999999999",
	LocalDateTimeLayout,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
}

// LocalDateTime is a wall-clock date-time in the local zone. It is written
// to JSON and SQL without any offset.
type LocalDateTime struct {
	time.Time
}

// NewLocalDateTime returns t in the local zone truncated to whole seconds.
func NewLocalDateTime(t time.Time) LocalDateTime {
	return LocalDateTime{Time: t.Local().Truncate(time.Second)}
}

// MarshalJSON encodes the value as "2006-01-02T15:04:05", or null when zero.
func (d LocalDateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(LocalDateTimeLayout) + `"`), nil
}

// UnmarshalJSON accepts the layout with optional fractional seconds.
func (d *LocalDateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("local date-time must be a JSON string")
	}
	parsed, err := time.ParseInLocation(LocalDateTimeLayout, string(data[1:len(data)-1]), time.Local)
	if err != nil {
		return fmt.Errorf("parse local date-time: %w", err)
	}
	d.Time = parsed
	return nil
}

// Value implements driver.Valuer.
func (d LocalDateTime) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Format(sqlDateTimeLayout), nil
}

// Scan implements sql.Scanner. Drivers that hand back time.Time values keep
// their wall clock; the zone they attach is discarded.
func (d *LocalDateTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		d.Time = time.Time{}
		return nil
	case time.Time:
		d.Time = wallClock(v)
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into local date-time", src)
	}
}

func (d *LocalDateTime) parse(s string) error {
	for _, layout := range sqlDateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = wallClock(t)
			return nil
		}
	}
	return fmt.Errorf("unrecognized date-time %q", s)
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.Local)
}
