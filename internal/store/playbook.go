package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/changedesk/internal/apperr"
	"github.com/starford/changedesk/internal/models"
)

// Playbook tasks are an arena keyed by (project_id, position). Positions are
// kept dense (0..n-1) by every mutation.

func insertTasks(ctx context.Context, tx *sql.Tx, projectID string, tasks []models.PlaybookTask) error {
	if len(tasks) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO playbook_tasks (project_id, position, category, description, status) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare task insert: %w", err)
	}
	defer stmt.Close()
	for i, t := range tasks {
		if _, err := stmt.ExecContext(ctx, projectID, i, t.Category, t.Description, t.Status); err != nil {
			return fmt.Errorf("store: insert task: %w", err)
		}
	}
	return nil
}

// ListTasks returns a project's playbook in position order.
func (db *DB) ListTasks(ctx context.Context, projectID string) ([]models.PlaybookTask, error) {
	return listTasks(ctx, db.conn, projectID)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listTasks(ctx context.Context, q querier, projectID string) ([]models.PlaybookTask, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, project_id, position, category, description, status
		FROM playbook_tasks WHERE project_id = ? ORDER BY position, id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: list tasks: %w", err)
	}
	defer rows.Close()

	out := []models.PlaybookTask{}
	for rows.Next() {
		var t models.PlaybookTask
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Position, &t.Category, &t.Description, &t.Status); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ReplacePlaybook discards a project's tasks and writes tasks in their place.
func (db *DB) ReplacePlaybook(ctx context.Context, projectID string, tasks []models.PlaybookTask) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := projectExists(ctx, tx, projectID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM playbook_tasks WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("store: clear playbook: %w", err)
	}
	if err := insertTasks(ctx, tx, projectID, tasks); err != nil {
		return err
	}
	return tx.Commit()
}

// AddTask appends a task to the end of a project's playbook.
func (db *DB) AddTask(ctx context.Context, task models.PlaybookTask) (models.PlaybookTask, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return task, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := projectExists(ctx, tx, task.ProjectID); err != nil {
		return task, err
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM playbook_tasks WHERE project_id = ?`, task.ProjectID).Scan(&task.Position); err != nil {
		return task, fmt.Errorf("store: count tasks: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO playbook_tasks (project_id, position, category, description, status) VALUES (?, ?, ?, ?, ?)`,
		task.ProjectID, task.Position, task.Category, task.Description, task.Status)
	if err != nil {
		return task, fmt.Errorf("store: add task: %w", err)
	}
	if task.ID, err = res.LastInsertId(); err != nil {
		return task, fmt.Errorf("store: task id: %w", err)
	}
	return task, tx.Commit()
}

// UpdateTaskStatus changes the status of one task only.
func (db *DB) UpdateTaskStatus(ctx context.Context, projectID string, taskID int64, status string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE playbook_tasks SET status = ? WHERE id = ? AND project_id = ?`, status, taskID, projectID)
	if err != nil {
		return fmt.Errorf("store: update task: %w", err)
	}
	return requireAffected(res)
}

// RemoveTask deletes a task and closes the gap in positions.
func (db *DB) RemoveTask(ctx context.Context, projectID string, taskID int64) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `DELETE FROM playbook_tasks WHERE id = ? AND project_id = ?`, taskID, projectID)
	if err != nil {
		return fmt.Errorf("store: remove task: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	if err := renumber(ctx, tx, projectID, nil); err != nil {
		return err
	}
	return tx.Commit()
}

// MoveTask places a task at position, shifting the others. Positions past
// the end are clamped to the last slot.
func (db *DB) MoveTask(ctx context.Context, projectID string, taskID int64, position int) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	tasks, err := listTasks(ctx, tx, projectID)
	if err != nil {
		return err
	}
	from := -1
	for i, t := range tasks {
		if t.ID == taskID {
			from = i
			break
		}
	}
	if from < 0 {
		return apperr.ErrNotFound
	}
	position = max(0, min(position, len(tasks)-1))

	moved := tasks[from]
	order := append(tasks[:from:from], tasks[from+1:]...)
	order = append(order[:position], append([]models.PlaybookTask{moved}, order[position:]...)...)

	if err := renumber(ctx, tx, projectID, order); err != nil {
		return err
	}
	return tx.Commit()
}

// renumber rewrites positions densely. When order is nil the current order
// is reloaded from the table.
func renumber(ctx context.Context, tx *sql.Tx, projectID string, order []models.PlaybookTask) error {
	if order == nil {
		var err error
		if order, err = listTasks(ctx, tx, projectID); err != nil {
			return err
		}
	}
	for i, t := range order {
		if _, err := tx.ExecContext(ctx, `UPDATE playbook_tasks SET position = ? WHERE id = ?`, i, t.ID); err != nil {
			return fmt.Errorf("store: renumber: %w", err)
		}
	}
	return nil
}

func projectExists(ctx context.Context, tx *sql.Tx, id string) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("store: project lookup: %w", err)
	}
	return nil
}
