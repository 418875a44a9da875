package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/changedesk/internal/apperr"
	"github.com/starford/changedesk/internal/models"
)

const cohortColumns = `id, cohort_name, department, region, audience_level, maturity_level,
	cohort_size_band, learning_focus, behavioural_shift, selected_vendor, recommended_vendor,
	recommended_pathway, urgency_score, estimated_budget, governance_status, governance_json,
	baseline_score, target_score, execution_status, workstream, created_at`

func scanCohort(s rowScanner) (models.CohortRecord, error) {
	var (
		c   models.CohortRecord
		gov string
	)
	err := s.Scan(&c.ID, &c.CohortName, &c.Department, &c.Region, &c.AudienceLevel,
		&c.MaturityLevel, &c.CohortSizeBand, &c.LearningFocus, &c.BehaviouralShift,
		&c.SelectedVendor, &c.RecommendedVendor, &c.RecommendedPathway, &c.UrgencyScore,
		&c.EstimatedBudget, &c.GovernanceStatus, &gov, &c.BaselineScore, &c.TargetScore,
		&c.ExecutionStatus, &c.Workstream, &c.CreatedAt)
	if err != nil {
		return c, err
	}
	_ = json.Unmarshal([]byte(gov), &c.Governance)
	return c, nil
}

// InsertCohort stores a curated cohort.
func (db *DB) InsertCohort(ctx context.Context, c models.CohortRecord) error {
	gov, err := json.Marshal(c.Governance)
	if err != nil {
		return fmt.Errorf("store: encode governance: %w", err)
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO cohorts (`+cohortColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.CohortName, c.Department, c.Region, c.AudienceLevel, c.MaturityLevel,
		c.CohortSizeBand, c.LearningFocus, c.BehaviouralShift, c.SelectedVendor,
		c.RecommendedVendor, c.RecommendedPathway, c.UrgencyScore, c.EstimatedBudget,
		c.GovernanceStatus, string(gov), c.BaselineScore, c.TargetScore, c.ExecutionStatus,
		c.Workstream, c.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("store: insert cohort: %w", err)
	}
	return nil
}

// GetCohort returns a single cohort by id.
func (db *DB) GetCohort(ctx context.Context, id string) (*models.CohortRecord, error) {
	c, err := scanCohort(db.conn.QueryRowContext(ctx, `SELECT `+cohortColumns+` FROM cohorts WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("store: get cohort: %w", err)
	}
	return &c, nil
}

// ListCohorts returns every cohort, oldest first.
func (db *DB) ListCohorts(ctx context.Context) ([]models.CohortRecord, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+cohortColumns+` FROM cohorts ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("store: list cohorts: %w", err)
	}
	defer rows.Close()

	var out []models.CohortRecord
	for rows.Next() {
		c, err := scanCohort(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateCohortExecution sets the program execution status of a cohort.
func (db *DB) UpdateCohortExecution(ctx context.Context, id, status string) error {
	res, err := db.conn.ExecContext(ctx, `UPDATE cohorts SET execution_status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("store: update cohort: %w", err)
	}
	return requireAffected(res)
}
