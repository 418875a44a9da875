package changeservice

import (
	"context"
	"log/slog"
	"strings"

	"github.com/starford/changedesk/internal/models"
	"github.com/starford/changedesk/internal/registry"
	"github.com/starford/changedesk/internal/sse"
)

func validateVendor(v models.VendorRecord) error {
	if err := registry.ValidateVendor(v); err != nil {
		return invalidErr(err)
	}
	return nil
}

// ListVendors returns the registry.
func (s *Service) ListVendors(ctx context.Context) ([]models.VendorRecord, error) {
	out, err := s.store.ListVendors(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.VendorRecord{}
	}
	return out, nil
}

// UpsertVendor adds or replaces one registry entry.
func (s *Service) UpsertVendor(ctx context.Context, v models.VendorRecord) error {
	v.Name = strings.TrimSpace(v.Name)
	if v.DataResidencyCert == "" {
		v.DataResidencyCert = "None"
	}
	if v.Status == "" {
		v.Status = "Active"
	}
	if err := validateVendor(v); err != nil {
		return err
	}
	if err := s.store.UpsertVendor(ctx, v); err != nil {
		return err
	}
	s.publish(sse.VendorsReloaded, map[string]string{"vendor": v.Name})
	return nil
}

// DeleteVendor removes a registry entry.
func (s *Service) DeleteVendor(ctx context.Context, name string) error {
	if err := s.store.DeleteVendor(ctx, name); err != nil {
		return err
	}
	s.publish(sse.VendorsReloaded, map[string]string{"vendor": name})
	return nil
}

// ReloadVendors replaces the whole registry.
func (s *Service) ReloadVendors(ctx context.Context, vendors []models.VendorRecord) error {
	for _, v := range vendors {
		if err := validateVendor(v); err != nil {
			return err
		}
	}
	if err := s.store.ReplaceVendors(ctx, vendors); err != nil {
		return err
	}
	s.logger.Info("vendor registry replaced", slog.Int("vendors", len(vendors)))
	s.publish(sse.VendorsReloaded, map[string]int{"count": len(vendors)})
	return nil
}

// SeedVendors installs vendors only when the registry is empty.
func (s *Service) SeedVendors(ctx context.Context, vendors []models.VendorRecord) (bool, error) {
	existing, err := s.store.ListVendors(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	return true, s.ReloadVendors(ctx, vendors)
}
