package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"todoapi/internal/models"
)

const taskColumns = `id, task, is_done, created_at`

// Insert applies the pre-persist defaults to t and stores it as a new row.
func (s *Store) Insert(ctx context.Context, t models.Task) (models.Task, error) {
	if err := t.Validate(); err != nil {
		return models.Task{}, err
	}
	t.PrePersist(time.Now())

	var id int64
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(`INSERT INTO todo_table(task, is_done, created_at) VALUES(?, ?, ?) RETURNING id`),
		t.Task, t.IsDone, t.CreatedAt).Scan(&id)
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return s.FindByID(ctx, id)
}

// FindAll returns every task in the database's natural order.
func (s *Store) FindAll(ctx context.Context) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM todo_table`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// FindByID fetches a single task. It returns ErrNotFound when the id is unknown.
func (s *Store) FindByID(ctx context.Context, id int64) (models.Task, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.rebind(`SELECT `+taskColumns+` FROM todo_table WHERE id = ?`), id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

// Update writes back the mutable fields of t and returns the stored row.
// The id and created_at columns are never touched.
func (s *Store) Update(ctx context.Context, t models.Task) (models.Task, error) {
	if err := t.Validate(); err != nil {
		return models.Task{}, err
	}

	res, err := s.db.ExecContext(ctx, s.dialect.rebind(`UPDATE todo_table SET task = ?, is_done = ? WHERE id = ?`), t.Task, t.IsDone, t.ID)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task %d: %w", t.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Task{}, fmt.Errorf("update task %d: %w", t.ID, err)
	}
	if affected == 0 {
		return models.Task{}, ErrNotFound
	}
	return s.FindByID(ctx, t.ID)
}

// ExistsByID reports whether a task with the given id is stored.
func (s *Store) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(`SELECT EXISTS(SELECT 1 FROM todo_table WHERE id = ?)`), id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check task %d: %w", id, err)
	}
	return exists, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (models.Task, error) {
	var (
		t      models.Task
		isDone sql.NullBool
	)
	if err := row.Scan(&t.ID, &t.Task, &isDone, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, err
		}
		return models.Task{}, fmt.Errorf("scan task: %w", err)
	}
	t.IsDone = isDone.Valid && isDone.Bool
	return t, nil
}
