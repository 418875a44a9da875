package store

import (
	"context"
	"fmt"

	"github.com/starford/changedesk/internal/models"
)

const upsertVendorSQL = `
	INSERT INTO vendors (name, specialty, daily_rate, performance_rating, compliance_rating, data_residency_cert, status)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET
		specialty = excluded.specialty,
		daily_rate = excluded.daily_rate,
		performance_rating = excluded.performance_rating,
		compliance_rating = excluded.compliance_rating,
		data_residency_cert = excluded.data_residency_cert,
		status = excluded.status
`

// ListVendors returns the registry ordered by name.
func (db *DB) ListVendors(ctx context.Context) ([]models.VendorRecord, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT name, specialty, daily_rate, performance_rating, compliance_rating, data_residency_cert, status
		FROM vendors ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list vendors: %w", err)
	}
	defer rows.Close()

	var out []models.VendorRecord
	for rows.Next() {
		var v models.VendorRecord
		if err := rows.Scan(&v.Name, &v.Specialty, &v.DailyRate, &v.PerformanceRating,
			&v.ComplianceRating, &v.DataResidencyCert, &v.Status); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// UpsertVendor inserts or replaces a registry entry by name.
func (db *DB) UpsertVendor(ctx context.Context, v models.VendorRecord) error {
	_, err := db.conn.ExecContext(ctx, upsertVendorSQL, v.Name, v.Specialty, v.DailyRate,
		v.PerformanceRating, v.ComplianceRating, v.DataResidencyCert, v.Status)
	if err != nil {
		return fmt.Errorf("store: upsert vendor: %w", err)
	}
	return nil
}

// DeleteVendor removes a registry entry.
func (db *DB) DeleteVendor(ctx context.Context, name string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM vendors WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("store: delete vendor: %w", err)
	}
	return requireAffected(res)
}

// ReplaceVendors swaps the whole registry atomically.
func (db *DB) ReplaceVendors(ctx context.Context, vendors []models.VendorRecord) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM vendors`); err != nil {
		return fmt.Errorf("store: clear vendors: %w", err)
	}
	for _, v := range vendors {
		if _, err := tx.ExecContext(ctx, upsertVendorSQL, v.Name, v.Specialty, v.DailyRate,
			v.PerformanceRating, v.ComplianceRating, v.DataResidencyCert, v.Status); err != nil {
			return fmt.Errorf("store: insert vendor %s: %w", v.Name, err)
		}
	}
	return tx.Commit()
}
