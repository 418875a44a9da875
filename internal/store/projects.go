package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/changedesk/internal/apperr"
	"github.com/starford/changedesk/internal/models"
)

const projectColumns = `id, project_name, sponsor, change_type, scale, impact_depth, change_history,
	strategic_goal, impacted_units, behavioural_barrier, status, impact_score, change_tier,
	effort_score, created_at, updated_at`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// prefixed qualifies every column of a column list with p.
func prefixed(p, columns string) string {
	cols := strings.Split(columns, ",")
	for i, c := range cols {
		cols[i] = p + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(s rowScanner) (models.IntakeRecord, error) {
	var (
		r      models.IntakeRecord
		units  string
		effort sql.NullInt64
	)
	err := s.Scan(&r.ID, &r.ProjectName, &r.Sponsor, &r.ChangeType, &r.Scale, &r.ImpactDepth,
		&r.ChangeHistory, &r.StrategicGoal, &units, &r.BehaviouralBarrier, &r.Status,
		&r.ImpactScore, &r.ChangeTier, &effort, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return r, err
	}
	if err := json.Unmarshal([]byte(units), &r.ImpactedUnits); err != nil {
		r.ImpactedUnits = nil
	}
	if effort.Valid {
		v := int(effort.Int64)
		r.EffortScore = &v
	}
	return r, nil
}

func nullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func unitsJSON(units []string) string {
	if units == nil {
		units = []string{}
	}
	b, _ := json.Marshal(units)
	return string(b)
}

// InsertProject writes a triaged project and its seed playbook in one
// transaction.
func (db *DB) InsertProject(ctx context.Context, rec models.IntakeRecord, playbook []models.PlaybookTask) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.ProjectName, rec.Sponsor, rec.ChangeType, rec.Scale, rec.ImpactDepth,
		rec.ChangeHistory, rec.StrategicGoal, unitsJSON(rec.ImpactedUnits), rec.BehaviouralBarrier,
		rec.Status, rec.ImpactScore, rec.ChangeTier, nullableInt(rec.EffortScore),
		rec.CreatedAt.UTC(), rec.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("store: insert project: %w", err)
	}
	if err := insertTasks(ctx, tx, rec.ID, playbook); err != nil {
		return err
	}
	if err := ftsUpsert(ctx, tx, rec); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateAssessment rewrites the intake fields and derived triage values of
// a project. The playbook and lifecycle status are left untouched.
func (db *DB) UpdateAssessment(ctx context.Context, rec models.IntakeRecord) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE projects SET
			project_name = ?, sponsor = ?, change_type = ?, scale = ?, impact_depth = ?,
			change_history = ?, strategic_goal = ?, impacted_units = ?, behavioural_barrier = ?,
			impact_score = ?, change_tier = ?, effort_score = ?, updated_at = ?
		WHERE id = ?
	`, rec.ProjectName, rec.Sponsor, rec.ChangeType, rec.Scale, rec.ImpactDepth,
		rec.ChangeHistory, rec.StrategicGoal, unitsJSON(rec.ImpactedUnits), rec.BehaviouralBarrier,
		rec.ImpactScore, rec.ChangeTier, nullableInt(rec.EffortScore), rec.UpdatedAt.UTC(), rec.ID)
	if err != nil {
		return fmt.Errorf("store: update assessment: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	return ftsUpsert(ctx, db.conn, rec)
}

// UpdateProjectStatus moves a project to another lifecycle status.
func (db *DB) UpdateProjectStatus(ctx context.Context, id, status string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE projects SET status = ?, updated_at = ? WHERE id = ?`, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("store: update status: %w", err)
	}
	return requireAffected(res)
}

// GetProject returns a project with its playbook.
func (db *DB) GetProject(ctx context.Context, id string) (*models.IntakeRecord, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	rec, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("store: get project: %w", err)
	}
	tasks, err := db.ListTasks(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.Playbook = tasks
	return &rec, nil
}

// ListProjects returns every project without playbooks, oldest first.
func (db *DB) ListProjects(ctx context.Context) ([]models.IntakeRecord, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("store: list projects: %w", err)
	}
	defer rows.Close()

	var out []models.IntakeRecord
	for rows.Next() {
		r, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteProject removes a project, its playbook and its snapshots.
func (db *DB) DeleteProject(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM playbook_tasks WHERE project_id = ?`, id); err != nil {
		return fmt.Errorf("store: delete playbook: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM health_snapshots WHERE project_id = ?`, id); err != nil {
		return fmt.Errorf("store: delete snapshots: %w", err)
	}
	ftsDelete(ctx, tx, id)
	res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete project: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

// SearchProjects searches names, sponsors, goals and units. It uses FTS5
// when built with the sqlite_fts5 tag and LIKE otherwise.
func (db *DB) SearchProjects(ctx context.Context, query string, limit int) ([]models.IntakeRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.searchProjects(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	defer rows.Close()

	var out []models.IntakeRecord
	for rows.Next() {
		r, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
