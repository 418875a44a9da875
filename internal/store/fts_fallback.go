//go:build !sqlite_fts5

package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/starford/changedesk/internal/models"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE over the projects table.
	return nil
}

func ftsUpsert(_ context.Context, _ execer, _ models.IntakeRecord) error { return nil }

func ftsDelete(_ context.Context, _ execer, _ string) {}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (db *DB) searchProjects(ctx context.Context, query string, limit int) (*sql.Rows, error) {
	like := "%" + likeEscaper.Replace(query) + "%"
	return db.conn.QueryContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE project_name LIKE ? ESCAPE '\' OR sponsor LIKE ? ESCAPE '\'
			OR strategic_goal LIKE ? ESCAPE '\' OR impacted_units LIKE ? ESCAPE '\'
		ORDER BY updated_at DESC
		LIMIT ?
	`, like, like, like, like, limit)
}
