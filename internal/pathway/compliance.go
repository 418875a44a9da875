package pathway

import (
	"fmt"
	"strings"

	"github.com/starford/changedesk/internal/models"
)

// Severity of a compliance finding.
type Severity string

const (
	SeverityMajor    Severity = "major"
	SeverityMismatch Severity = "mismatch"
)

// Finding codes.
const (
	CodeRedVendor      = "vendor_red_rating"
	CodeGDPRMissing    = "residency_gdpr_missing"
	CodePrivacyMissing = "residency_privacy_missing"
)

// RiskFinding is a compliance risk raised for a region/vendor pair.
type RiskFinding struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// RegionRule is a data-residency requirement for one region.
type RegionRule struct {
	Region    string
	Code      string
	Require   string
	Satisfied func(cert string) bool
}

// RegionRules are evaluated independently of the vendor trust rating.
var RegionRules = []RegionRule{
	{
		Region:    "Europe",
		Code:      CodeGDPRMissing,
		Require:   "a GDPR residency certification",
		Satisfied: func(cert string) bool { return strings.Contains(strings.ToUpper(cert), "GDPR") },
	},
	{
		Region:  "AUSPAC",
		Code:    CodePrivacyMissing,
		Require: "a Privacy residency certification or Internal delivery",
		Satisfied: func(cert string) bool {
			return strings.Contains(strings.ToLower(cert), "privacy") || strings.EqualFold(cert, "Internal")
		},
	},
}

// Registry resolves vendors by name.
type Registry map[string]models.VendorRecord

// NewRegistry indexes vendors by name.
func NewRegistry(vendors []models.VendorRecord) Registry {
	r := make(Registry, len(vendors))
	for _, v := range vendors {
		r[v.Name] = v
	}
	return r
}

// CheckComplianceRisk returns a finding for the vendor in region, or nil.
// A vendor missing from the registry yields nil.
func CheckComplianceRisk(region, vendorName string, registry Registry) *RiskFinding {
	v, ok := registry[vendorName]
	if !ok {
		return nil
	}
	if v.ComplianceRating == models.ComplianceRed {
		return &RiskFinding{
			Code:     CodeRedVendor,
			Severity: SeverityMajor,
			Message:  fmt.Sprintf("vendor %s holds a Red compliance rating and must not be engaged", v.Name),
		}
	}
	for _, rule := range RegionRules {
		if rule.Region != region {
			continue
		}
		if rule.Satisfied(v.DataResidencyCert) {
			return nil
		}
		cert := v.DataResidencyCert
		if cert == "" {
			cert = "None"
		}
		return &RiskFinding{
			Code:     rule.Code,
			Severity: SeverityMismatch,
			Message:  fmt.Sprintf("region %s requires %s; vendor %s holds %s", region, rule.Require, v.Name, cert),
		}
	}
	return nil
}
