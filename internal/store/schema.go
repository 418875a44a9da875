// Package store persists projects, playbooks, snapshots, cohorts and the
// vendor registry in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS projects (
	id                  TEXT PRIMARY KEY,
	project_name        TEXT NOT NULL DEFAULT '',
	sponsor             TEXT NOT NULL DEFAULT '',
	change_type         TEXT NOT NULL DEFAULT '',
	scale               TEXT NOT NULL DEFAULT '',
	impact_depth        TEXT NOT NULL DEFAULT '',
	change_history      TEXT NOT NULL DEFAULT '',
	strategic_goal      TEXT NOT NULL DEFAULT '',
	impacted_units      TEXT NOT NULL DEFAULT '[]',
	behavioural_barrier TEXT NOT NULL DEFAULT '',
	status              TEXT NOT NULL DEFAULT 'Intake',
	impact_score        INTEGER NOT NULL DEFAULT 0,
	change_tier         TEXT NOT NULL DEFAULT '',
	effort_score        INTEGER,
	created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS playbook_tasks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id  TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	category    TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'To Do'
);

CREATE INDEX IF NOT EXISTS idx_playbook_project ON playbook_tasks(project_id, position);

CREATE TABLE IF NOT EXISTS health_snapshots (
	id                    INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id            TEXT NOT NULL,
	log_date              DATETIME NOT NULL,
	readiness             INTEGER NOT NULL,
	sentiment             INTEGER NOT NULL,
	manager_confidence    INTEGER NOT NULL,
	adoption_rate_pct     REAL NOT NULL,
	behavior_adoption_pct REAL NOT NULL,
	staff_turnover_pct    REAL NOT NULL,
	notes                 TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_snapshots_project ON health_snapshots(project_id);

CREATE TABLE IF NOT EXISTS cohorts (
	id                  TEXT PRIMARY KEY,
	cohort_name         TEXT NOT NULL DEFAULT '',
	department          TEXT NOT NULL DEFAULT '',
	region              TEXT NOT NULL DEFAULT '',
	audience_level      TEXT NOT NULL DEFAULT '',
	maturity_level      TEXT NOT NULL DEFAULT '',
	cohort_size_band    TEXT NOT NULL DEFAULT '',
	learning_focus      TEXT NOT NULL DEFAULT '',
	behavioural_shift   TEXT NOT NULL DEFAULT '',
	selected_vendor     TEXT NOT NULL DEFAULT '',
	recommended_vendor  TEXT NOT NULL DEFAULT '',
	recommended_pathway TEXT NOT NULL DEFAULT '',
	urgency_score       INTEGER NOT NULL DEFAULT 0,
	estimated_budget    INTEGER NOT NULL DEFAULT 0,
	governance_status   TEXT NOT NULL DEFAULT 'Incomplete',
	governance_json     TEXT NOT NULL DEFAULT '{}',
	baseline_score      INTEGER NOT NULL DEFAULT 0,
	target_score        INTEGER NOT NULL DEFAULT 0,
	execution_status    TEXT NOT NULL DEFAULT 'Proposed',
	workstream          TEXT NOT NULL DEFAULT '',
	created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS vendors (
	name                TEXT PRIMARY KEY,
	specialty           TEXT NOT NULL DEFAULT '',
	daily_rate          INTEGER NOT NULL DEFAULT 0,
	performance_rating  INTEGER NOT NULL DEFAULT 0,
	compliance_rating   TEXT NOT NULL DEFAULT '',
	data_residency_cert TEXT NOT NULL DEFAULT 'None',
	status              TEXT NOT NULL DEFAULT 'Active'
);

CREATE TABLE IF NOT EXISTS leader_diagnostics (
	id                 TEXT PRIMARY KEY,
	leader_name        TEXT NOT NULL,
	role_level         TEXT NOT NULL DEFAULT '',
	loc_score          INTEGER NOT NULL DEFAULT 0,
	ambidextrous_score INTEGER NOT NULL DEFAULT 0,
	com_b_score        INTEGER NOT NULL DEFAULT 0,
	primary_barrier    TEXT NOT NULL DEFAULT '',
	development_theme  TEXT NOT NULL DEFAULT '',
	answers_json       TEXT NOT NULL DEFAULT '{}',
	protocol           TEXT NOT NULL DEFAULT '',
	created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// DB wraps a sql.DB with changedesk persistence operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks the database connection.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}
