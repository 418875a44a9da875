// Package reports archives generated narratives as Markdown files with
// YAML frontmatter.
package reports

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/changedesk/internal/apperr"
	"github.com/starford/changedesk/internal/models"
)

// Archive stores reports under a root directory, one folder per kind.
type Archive struct {
	root string
}

// NewArchive creates the root directory if needed and returns an Archive.
func NewArchive(root string) (*Archive, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("reports: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("reports: create root: %w", err)
	}
	return &Archive{root: abs}, nil
}

// Root returns the absolute archive directory.
func (a *Archive) Root() string { return a.root }

// safePath resolves rel against the root and rejects traversal.
func (a *Archive) safePath(rel string) (string, error) {
	cleaned := filepath.Clean(rel)
	if rel == "" || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("reports: invalid path %q: %w", rel, apperr.ErrInvalid)
	}
	abs := filepath.Join(a.root, cleaned)
	if !strings.HasPrefix(abs, a.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("reports: path escapes archive: %q: %w", rel, apperr.ErrInvalid)
	}
	return abs, nil
}

// Save writes r to <kind>/<date>-<id>.md and returns it with Path and
// Checksum filled in.
func (a *Archive) Save(r models.Report) (models.Report, error) {
	if r.Kind == "" {
		return r, fmt.Errorf("reports: kind is required: %w", apperr.ErrInvalid)
	}
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = time.Now().UTC()
	}
	if r.Path == "" {
		r.Path = filepath.ToSlash(filepath.Join(r.Kind,
			r.GeneratedAt.Format("20060102-150405")+"-"+uuid.NewString()[:8]+".md"))
	}
	data, err := render(r)
	if err != nil {
		return r, err
	}
	abs, err := a.safePath(r.Path)
	if err != nil {
		return r, err
	}
	if err := writeAtomic(abs, data); err != nil {
		return r, err
	}
	r.Checksum = checksum(data)
	return r, nil
}

// Get reads and parses a single report.
func (a *Archive) Get(path string) (models.Report, error) {
	abs, err := a.safePath(path)
	if err != nil {
		return models.Report{}, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.Report{}, apperr.ErrNotFound
		}
		return models.Report{}, fmt.Errorf("reports: read %s: %w", path, err)
	}
	r := parse(data)
	r.Path = filepath.ToSlash(path)
	r.Checksum = checksum(data)
	return r, nil
}

// List returns reports of kind (all kinds when empty), newest first.
// Bodies are omitted.
func (a *Archive) List(kind string) ([]models.Report, error) {
	base := a.root
	if kind != "" {
		var err error
		if base, err = a.safePath(kind); err != nil {
			return nil, err
		}
	}
	out := []models.Report{}
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(a.root, p)
		r := parse(data)
		r.Path = filepath.ToSlash(rel)
		r.Checksum = checksum(data)
		r.Body = ""
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reports: list: %w", err)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].GeneratedAt.Equal(out[j].GeneratedAt) {
			return out[i].GeneratedAt.After(out[j].GeneratedAt)
		}
		return out[i].Path < out[j].Path
	})
	return out, nil
}

// Delete removes a report file.
func (a *Archive) Delete(path string) error {
	abs, err := a.safePath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("reports: delete %s: %w", path, err)
	}
	return nil
}

// writeAtomic writes data via tmp file, fsync and rename.
func writeAtomic(abs string, data []byte) error {
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("reports: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".changedesk-tmp-*")
	if err != nil {
		return fmt.Errorf("reports: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("reports: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("reports: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("reports: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("reports: rename: %w", err)
	}
	success = true
	return nil
}
