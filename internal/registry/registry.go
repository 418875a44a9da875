// Package registry loads the vendor registry seed and watches it for edits.
package registry

import (
	"fmt"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/changedesk/internal/models"
)

// Defaults is the built-in registry used when no vendors file is configured.
func Defaults() []models.VendorRecord {
	return []models.VendorRecord{
		{Name: "Gartner", Specialty: "Executive strategy & governance", DailyRate: 4500, PerformanceRating: 5, ComplianceRating: models.ComplianceGreen, DataResidencyCert: "EU-GDPR", Status: "Active"},
		{Name: "Microsoft", Specialty: "Technical AI enablement", DailyRate: 3200, PerformanceRating: 4, ComplianceRating: models.ComplianceGreen, DataResidencyCert: "EU-GDPR", Status: "Active"},
		{Name: "LinkedIn Learning", Specialty: "Digital learning at scale", DailyRate: 900, PerformanceRating: 4, ComplianceRating: models.ComplianceYellow, DataResidencyCert: "AUS-Privacy", Status: "Active"},
		{Name: "Center for Creative Leadership", Specialty: "Leadership development", DailyRate: 3800, PerformanceRating: 5, ComplianceRating: models.ComplianceGreen, DataResidencyCert: "None", Status: "Active"},
		{Name: "Internal Academy", Specialty: "In-house facilitation", DailyRate: 600, PerformanceRating: 3, ComplianceRating: models.ComplianceGreen, DataResidencyCert: "Internal", Status: "Active"},
		{Name: "QuickSkill Partners", Specialty: "Low-cost bootcamps", DailyRate: 400, PerformanceRating: 2, ComplianceRating: models.ComplianceRed, DataResidencyCert: "None", Status: "Under Review"},
	}
}

type file struct {
	Vendors []models.VendorRecord `yaml:"vendors"`
}

// LoadFile parses a YAML vendors file of the form `vendors: [...]`.
func LoadFile(path string) ([]models.VendorRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates vendor YAML.
func Parse(data []byte) ([]models.VendorRecord, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("registry: decode: %w", err)
	}
	seen := make(map[string]struct{}, len(f.Vendors))
	for i := range f.Vendors {
		v := &f.Vendors[i]
		v.Name = strings.TrimSpace(v.Name)
		if v.DataResidencyCert == "" {
			v.DataResidencyCert = "None"
		}
		if v.Status == "" {
			v.Status = "Active"
		}
		if err := ValidateVendor(*v); err != nil {
			return nil, fmt.Errorf("registry: vendor %d: %w", i, err)
		}
		if _, dup := seen[v.Name]; dup {
			return nil, fmt.Errorf("registry: duplicate vendor %q", v.Name)
		}
		seen[v.Name] = struct{}{}
	}
	return f.Vendors, nil
}

// ValidateVendor checks a registry entry. A zero PerformanceRating means
// unrated; otherwise it must be 1..5.
func ValidateVendor(v models.VendorRecord) error {
	return validation.ValidateStruct(&v,
		validation.Field(&v.Name, validation.Required),
		validation.Field(&v.ComplianceRating, validation.Required,
			validation.In(models.ComplianceGreen, models.ComplianceYellow, models.ComplianceRed)),
		validation.Field(&v.PerformanceRating, validation.Min(1), validation.Max(5)),
		validation.Field(&v.DailyRate, validation.Min(0)),
	)
}
