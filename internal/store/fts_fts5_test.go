//go:build sqlite_fts5

package store

import (
	"context"
	"testing"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM projects_fts`).Scan(&count); err != nil {
		t.Fatalf("projects_fts table missing: %v", err)
	}
}

func TestFTS5_RetriageReindexes(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	rec := seedProject(t, db, "p1")

	rec.ImpactedUnits = []string{"Logistics"}
	if err := db.UpdateAssessment(ctx, rec); err != nil {
		t.Fatalf("UpdateAssessment: %v", err)
	}
	if res, _ := db.SearchProjects(ctx, "Finance", 10); len(res) != 0 {
		t.Errorf("stale unit still indexed: %d results", len(res))
	}
	if res, _ := db.SearchProjects(ctx, "logistics", 10); len(res) != 1 {
		t.Errorf("new unit not indexed: %d results", len(res))
	}
}

func TestFTS5_DeleteRemovesFromFTS(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedProject(t, db, "gone")
	if err := db.DeleteProject(ctx, "gone"); err != nil {
		t.Fatal(err)
	}
	var count int
	_ = db.conn.QueryRow(`SELECT count(*) FROM projects_fts WHERE id = 'gone'`).Scan(&count)
	if count != 0 {
		t.Errorf("fts rows = %d after delete", count)
	}
}

func TestFTS5_QuotesOperators(t *testing.T) {
	db := testDB(t)
	seedProject(t, db, "p1")
	if _, err := db.SearchProjects(context.Background(), `Fin"ance AND (`, 10); err != nil {
		t.Fatalf("operator input should not error: %v", err)
	}
}
