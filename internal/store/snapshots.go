package store

import (
	"context"
	"fmt"

	"github.com/starford/changedesk/internal/models"
)

// InsertSnapshot appends a health snapshot and returns its id.
func (db *DB) InsertSnapshot(ctx context.Context, s models.HealthSnapshot) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO health_snapshots (project_id, log_date, readiness, sentiment, manager_confidence,
			adoption_rate_pct, behavior_adoption_pct, staff_turnover_pct, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ProjectID, s.LogDate.UTC(), s.Readiness, s.Sentiment, s.ManagerConfidence,
		s.AdoptionRatePct, s.BehaviorAdoptionPct, s.StaffTurnoverPct, s.Notes)
	if err != nil {
		return 0, fmt.Errorf("store: insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: snapshot id: %w", err)
	}
	return id, nil
}

// ListSnapshots returns snapshots in insertion order. An empty projectID
// returns the snapshots of every project.
func (db *DB) ListSnapshots(ctx context.Context, projectID string) ([]models.HealthSnapshot, error) {
	q := `SELECT id, project_id, log_date, readiness, sentiment, manager_confidence,
		adoption_rate_pct, behavior_adoption_pct, staff_turnover_pct, notes
		FROM health_snapshots`
	var args []any
	if projectID != "" {
		q += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	q += ` ORDER BY id`

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list snapshots: %w", err)
	}
	defer rows.Close()

	var out []models.HealthSnapshot
	for rows.Next() {
		var s models.HealthSnapshot
		if err := rows.Scan(&s.ID, &s.ProjectID, &s.LogDate, &s.Readiness, &s.Sentiment,
			&s.ManagerConfidence, &s.AdoptionRatePct, &s.BehaviorAdoptionPct,
			&s.StaffTurnoverPct, &s.Notes); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
