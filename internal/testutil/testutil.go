// Package testutil provides shared test helpers for databases and report
// archives.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/changedesk/internal/reports"
	"github.com/starford/changedesk/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "changedesk-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestArchive creates a report archive in a temporary directory.
func TestArchive(t *testing.T) *reports.Archive {
	t.Helper()
	a, err := reports.NewArchive(filepath.Join(t.TempDir(), "reports"))
	if err != nil {
		t.Fatal(err)
	}
	return a
}
