package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestPrePersist(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 30, 0, 987654321, time.Local)

	t.Run("fills created_at and keeps pending", func(t *testing.T) {
		task := Task{Task: "buy milk"}
		task.PrePersist(now)

		want := time.Date(2025, 1, 15, 10, 30, 0, 0, time.Local)
		if !task.CreatedAt.Equal(want) {
			t.Errorf("CreatedAt: got %v, want %v", task.CreatedAt.Time, want)
		}
		if task.IsDone {
			t.Error("expected new task to be pending")
		}
		if task.Status() != StatusPending {
			t.Errorf("Status: got %q, want %q", task.Status(), StatusPending)
		}
	})

	t.Run("keeps an existing created_at", func(t *testing.T) {
		earlier := NewLocalDateTime(now.Add(-time.Hour))
		task := Task{Task: "buy milk", CreatedAt: earlier}
		task.PrePersist(now)

		if !task.CreatedAt.Equal(earlier.Time) {
			t.Errorf("CreatedAt: got %v, want %v", task.CreatedAt.Time, earlier.Time)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"plain", "buy milk", nil},
		{"padded", "  buy milk ", nil},
		{"empty", "", ErrEmptyTask},
		{"spaces", "   ", ErrEmptyTask},
		{"tabs and newlines", "\t\n", ErrEmptyTask},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Task{Task: tt.text}.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate(%q): got %v, want %v", tt.text, err, tt.want)
			}
		})
	}
}

func TestMarkDoneIsIdempotent(t *testing.T) {
	task := Task{Task: "write spec"}
	task.MarkDone()
	task.MarkDone()

	if !task.IsDone {
		t.Fatal("expected task to be done")
	}
	if task.Status() != StatusDone {
		t.Errorf("Status: got %q, want %q", task.Status(), StatusDone)
	}
}

func TestRename(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		changed bool
		want    string
	}{
		{"new text", "write better spec", true, "write better spec"},
		{"same text", "write spec", false, "write spec"},
		{"empty", "", false, "write spec"},
		{"blank", "  ", false, "write spec"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := Task{Task: "write spec", IsDone: true}
			if got := task.Rename(tt.text); got != tt.changed {
				t.Errorf("Rename(%q): got %v, want %v", tt.text, got, tt.changed)
			}
			if task.Task != tt.want {
				t.Errorf("Task: got %q, want %q", task.Task, tt.want)
			}
			if !task.IsDone {
				t.Error("Rename must not touch is_done")
			}
		})
	}
}

func TestTaskJSON(t *testing.T) {
	task := Task{
		ID:        1,
		Task:      "buy milk",
		CreatedAt: LocalDateTime{time.Date(2025, 1, 15, 10, 30, 0, 0, time.Local)},
	}

	data, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":1,"task":"buy milk","is_done":false,"created_at":"2025-01-15T10:30:00"}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}

	var zero Task
	data, err = json.Marshal(zero)
	if err != nil {
		t.Fatalf("marshal zero: %v", err)
	}
	if !strings.Contains(string(data), `"created_at":null`) {
		t.Errorf("expected null created_at, got %s", data)
	}
}

func TestLocalDateTimeUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"whole seconds", `"2025-01-15T10:30:00"`, time.Date(2025, 1, 15, 10, 30, 0, 0, time.Local), false},
		{"fractional seconds", `"2025-01-15T10:30:00.250"`, time.Date(2025, 1, 15, 10, 30, 0, 250000000, time.Local), false},
		{"null", `null`, time.Time{}, false},
		{"number", `12`, time.Time{}, true},
		{"garbage", `"yesterday"`, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d LocalDateTime
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !d.Equal(tt.want) {
				t.Errorf("got %v, want %v", d.Time, tt.want)
			}
		})
	}
}

func TestLocalDateTimeScan(t *testing.T) {
	want := time.Date(2025, 1, 15, 10, 30, 0, 0, time.Local)

	tests := []struct {
		name string
		src  any
	}{
		{"sql text", "2025-01-15 10:30:00"},
		{"bytes", []byte("2025-01-15 10:30:00")},
		{"iso text", "2025-01-15T10:30:00"},
		{"driver time in utc", time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"driver time with zone", time.Date(2025, 1, 15, 10, 30, 0, 0, time.FixedZone("X", 5*3600))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d LocalDateTime
			if err := d.Scan(tt.src); err != nil {
				t.Fatalf("Scan: %v", err)
			}
			if !d.Equal(want) {
				t.Errorf("got %v, want %v", d.Time, want)
			}
		})
	}

	t.Run("nil", func(t *testing.T) {
		d := NewLocalDateTime(time.Now())
		if err := d.Scan(nil); err != nil {
			t.Fatalf("Scan: %v", err)
		}
		if !d.IsZero() {
			t.Errorf("expected zero value, got %v", d.Time)
		}
	})

	t.Run("unsupported type", func(t *testing.T) {
		var d LocalDateTime
		if err := d.Scan(42); err == nil {
			t.Fatal("expected error for int source")
		}
	})
}

func TestLocalDateTimeValue(t *testing.T) {
	d := LocalDateTime{time.Date(2025, 1, 15, 10, 30, 0, 0, time.Local)}
	v, err := d.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != "2025-01-15 10:30:00" {
		t.Errorf("got %v, want %q", v, "2025-01-15 10:30:00")
	}

	v, err = LocalDateTime{}.Value()
	if err != nil {
		t.Fatalf("Value zero: %v", err)
	}
	if v != nil {
		t.Errorf("expected nil for zero value, got %v", v)
	}
}
