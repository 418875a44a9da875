//go:build sqlite_fts5

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/changedesk/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS projects_fts USING fts5(
			id UNINDEXED,
			project_name,
			sponsor,
			strategic_goal,
			units,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(ctx context.Context, ex execer, rec models.IntakeRecord) error {
	_, _ = ex.ExecContext(ctx, `DELETE FROM projects_fts WHERE id = ?`, rec.ID)
	_, err := ex.ExecContext(ctx,
		`INSERT INTO projects_fts (id, project_name, sponsor, strategic_goal, units) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.ProjectName, rec.Sponsor, rec.StrategicGoal, strings.Join(rec.ImpactedUnits, " "))
	if err != nil {
		return fmt.Errorf("store: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(ctx context.Context, ex execer, id string) {
	_, _ = ex.ExecContext(ctx, `DELETE FROM projects_fts WHERE id = ?`, id)
}

// matchQuery quotes every term so user input cannot hit FTS5 syntax.
func matchQuery(q string) string {
	terms := strings.Fields(q)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}

func (db *DB) searchProjects(ctx context.Context, query string, limit int) (*sql.Rows, error) {
	return db.conn.QueryContext(ctx, `
		SELECT `+prefixed("p.", projectColumns)+`
		FROM projects_fts
		JOIN projects p ON p.id = projects_fts.id
		WHERE projects_fts MATCH ?
		ORDER BY projects_fts.rank
		LIMIT ?
	`, matchQuery(query), limit)
}
