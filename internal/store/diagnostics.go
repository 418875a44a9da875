package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/starford/changedesk/internal/models"
)

type diagnosticAnswers struct {
	EthicalA int    `json:"ethical_a"`
	EthicalB string `json:"ethical_b"`
	SafetyA  int    `json:"safety_a"`
	SafetyB  int    `json:"safety_b"`
	CollabA  int    `json:"collab_a"`
	CollabB  int    `json:"collab_b"`
	GrowthA  int    `json:"growth_a"`
	GrowthB  int    `json:"growth_b"`
}

// InsertDiagnostic stores a leader diagnostic with its protocol.
func (db *DB) InsertDiagnostic(ctx context.Context, d models.LeaderDiagnostic) error {
	answers, err := json.Marshal(diagnosticAnswers{
		EthicalA: d.EthicalA, EthicalB: d.EthicalB,
		SafetyA: d.SafetyA, SafetyB: d.SafetyB,
		CollabA: d.CollabA, CollabB: d.CollabB,
		GrowthA: d.GrowthA, GrowthB: d.GrowthB,
	})
	if err != nil {
		return fmt.Errorf("store: encode answers: %w", err)
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO leader_diagnostics (id, leader_name, role_level, loc_score, ambidextrous_score,
			com_b_score, primary_barrier, development_theme, answers_json, protocol, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.LeaderName, d.RoleLevel, d.LOCScore, d.AmbidextrousScore, d.COMBScore,
		d.PrimaryBarrier, d.DevelopmentTheme, string(answers), d.Protocol, d.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("store: insert diagnostic: %w", err)
	}
	return nil
}

// ListDiagnostics returns diagnostics newest first.
func (db *DB) ListDiagnostics(ctx context.Context) ([]models.LeaderDiagnostic, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, leader_name, role_level, loc_score, ambidextrous_score, com_b_score,
			primary_barrier, development_theme, answers_json, protocol, created_at
		FROM leader_diagnostics ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list diagnostics: %w", err)
	}
	defer rows.Close()

	var out []models.LeaderDiagnostic
	for rows.Next() {
		var (
			d   models.LeaderDiagnostic
			raw string
			a   diagnosticAnswers
		)
		if err := rows.Scan(&d.ID, &d.LeaderName, &d.RoleLevel, &d.LOCScore, &d.AmbidextrousScore,
			&d.COMBScore, &d.PrimaryBarrier, &d.DevelopmentTheme, &raw, &d.Protocol, &d.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(raw), &a); err == nil {
			d.EthicalA, d.EthicalB = a.EthicalA, a.EthicalB
			d.SafetyA, d.SafetyB = a.SafetyA, a.SafetyB
			d.CollabA, d.CollabB = a.CollabA, a.CollabB
			d.GrowthA, d.GrowthB = a.GrowthA, a.GrowthB
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
