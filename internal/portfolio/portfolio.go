// Package portfolio rolls triaged projects, health snapshots and curated
// cohorts up into fleet-level metrics.
package portfolio

import (
	"math"
	"sort"

	"github.com/starford/changedesk/internal/models"
)

// Capacity levels.
const (
	LevelNormal   = "normal"
	LevelWarning  = "warning"
	LevelCritical = "critical"
)

// Filter narrows the project set. Empty fields match everything.
type Filter struct {
	StrategicGoal string `json:"strategic_goal,omitempty"`
	Sponsor       string `json:"sponsor,omitempty"`
	Status        string `json:"status,omitempty"`
	IncludeClosed bool   `json:"include_closed,omitempty"`
}

// Match reports whether r passes the goal, sponsor and status filters.
func (f Filter) Match(r models.IntakeRecord) bool {
	if f.StrategicGoal != "" && r.StrategicGoal != f.StrategicGoal {
		return false
	}
	if f.Sponsor != "" && r.Sponsor != f.Sponsor {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return true
}

// Policy holds the tunable constants of the aggregation.
type Policy struct {
	CapacityPoints      int                `yaml:"capacity_points"`
	WarningRatio        float64            `yaml:"warning_ratio"`
	CriticalRatio       float64            `yaml:"critical_ratio"`
	SaturationThreshold int                `yaml:"saturation_threshold"`
	ExecutionWeights    map[string]float64 `yaml:"execution_weights"`
}

// DefaultPolicy returns the standard aggregation policy.
func DefaultPolicy() Policy {
	return Policy{
		CapacityPoints:      250,
		WarningRatio:        0.7,
		CriticalRatio:       0.9,
		SaturationThreshold: 3,
		ExecutionWeights: map[string]float64{
			models.StatusIntake:     0,
			models.StatusPlanning:   0.25,
			models.StatusActive:     0.5,
			models.StatusMonitoring: 0.85,
			models.StatusClosed:     1,
		},
	}
}

// Capacity is the change-team workload against the fixed ceiling.
//
// Ratio is the raw used/total value and may exceed 1; DisplayRatio is
// clamped to [0,1] for progress bars.
type Capacity struct {
	UsedPoints    int     `json:"used_points"`
	TotalPoints   int     `json:"total_points"`
	Ratio         float64 `json:"ratio"`
	DisplayRatio  float64 `json:"display_ratio"`
	Level         string  `json:"level"`
	Counted       int     `json:"counted"`
	MissingEffort int     `json:"missing_effort"`
}

// UnitSaturation is the number of filtered projects touching one unit.
type UnitSaturation struct {
	Unit      string `json:"unit"`
	Count     int    `json:"count"`
	Saturated bool   `json:"saturated"`
}

// ProjectHealth joins a project with its latest snapshot.
type ProjectHealth struct {
	ProjectID   string                `json:"project_id"`
	ProjectName string                `json:"project_name"`
	Snapshot    models.HealthSnapshot `json:"snapshot"`
}

// HealthAverages are means over the latest snapshot of each project.
// Averages are nil when no project has a snapshot.
type HealthAverages struct {
	Projects            int      `json:"projects"`
	Readiness           *float64 `json:"readiness"`
	Sentiment           *float64 `json:"sentiment"`
	ManagerConfidence   *float64 `json:"manager_confidence"`
	AdoptionRatePct     *float64 `json:"adoption_rate_pct"`
	BehaviorAdoptionPct *float64 `json:"behavior_adoption_pct"`
	StaffTurnoverPct    *float64 `json:"staff_turnover_pct"`
}

// Metrics is the fleet view of the project portfolio.
type Metrics struct {
	TotalProjects  int              `json:"total_projects"`
	ByStatus       map[string]int   `json:"by_status"`
	ByTier         map[string]int   `json:"by_tier"`
	Capacity       Capacity         `json:"capacity"`
	Saturation     []UnitSaturation `json:"saturation"`
	LatestHealth   []ProjectHealth  `json:"latest_health"`
	Health         HealthAverages   `json:"health"`
	ExecutionScore *float64         `json:"execution_score"`
}

// Aggregate computes portfolio metrics. It never fails; an empty input
// yields zero counts and nil averages.
func Aggregate(records []models.IntakeRecord, snapshots []models.HealthSnapshot, f Filter, p Policy) Metrics {
	m := Metrics{
		ByStatus:     map[string]int{},
		ByTier:       map[string]int{},
		Saturation:   []UnitSaturation{},
		LatestHealth: []ProjectHealth{},
	}

	filtered := make([]models.IntakeRecord, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			filtered = append(filtered, r)
		}
	}
	m.TotalProjects = len(filtered)

	units := map[string]int{}
	var weightSum float64
	for _, r := range filtered {
		m.ByStatus[r.Status]++
		if r.ChangeTier != "" {
			m.ByTier[r.ChangeTier]++
		}
		seen := make(map[string]struct{}, len(r.ImpactedUnits))
		for _, u := range r.ImpactedUnits {
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			units[u]++
		}
		weightSum += p.ExecutionWeights[r.Status]
	}

	m.Capacity = capacity(filtered, f.IncludeClosed, p)
	m.Saturation = saturation(units, p.SaturationThreshold)
	if len(filtered) > 0 {
		m.ExecutionScore = ptr(round1(weightSum / float64(len(filtered)) * 100))
	}

	m.LatestHealth, m.Health = health(filtered, snapshots)
	return m
}

func capacity(records []models.IntakeRecord, includeClosed bool, p Policy) Capacity {
	c := Capacity{TotalPoints: p.CapacityPoints, Level: LevelNormal}
	for _, r := range records {
		if r.Status == models.StatusClosed && !includeClosed {
			continue
		}
		if r.EffortScore == nil {
			c.MissingEffort++
			continue
		}
		c.UsedPoints += *r.EffortScore
		c.Counted++
	}
	if c.TotalPoints > 0 {
		c.Ratio = float64(c.UsedPoints) / float64(c.TotalPoints)
	}
	c.DisplayRatio = math.Max(0, math.Min(c.Ratio, 1))
	c.Level = CapacityLevel(c.Ratio, p)
	return c
}

// CapacityLevel classifies a raw utilisation ratio.
func CapacityLevel(ratio float64, p Policy) string {
	switch {
	case ratio >= p.CriticalRatio:
		return LevelCritical
	case ratio >= p.WarningRatio:
		return LevelWarning
	default:
		return LevelNormal
	}
}

func saturation(units map[string]int, threshold int) []UnitSaturation {
	out := make([]UnitSaturation, 0, len(units))
	for u, n := range units {
		out = append(out, UnitSaturation{Unit: u, Count: n, Saturated: threshold > 0 && n >= threshold})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Unit < out[j].Unit
	})
	return out
}

// LatestSnapshots returns the most recent snapshot per project. On equal
// LogDate the later-inserted snapshot wins: higher ID when both carry one,
// otherwise later position in the slice.
func LatestSnapshots(snapshots []models.HealthSnapshot) map[string]models.HealthSnapshot {
	latest := make(map[string]models.HealthSnapshot)
	for _, s := range snapshots {
		cur, ok := latest[s.ProjectID]
		if !ok || s.LogDate.After(cur.LogDate) || (s.LogDate.Equal(cur.LogDate) && insertedAfter(s, cur)) {
			latest[s.ProjectID] = s
		}
	}
	return latest
}

func insertedAfter(s, cur models.HealthSnapshot) bool {
	if s.ID != 0 && cur.ID != 0 {
		return s.ID > cur.ID
	}
	return true
}

func health(records []models.IntakeRecord, snapshots []models.HealthSnapshot) ([]ProjectHealth, HealthAverages) {
	latest := LatestSnapshots(snapshots)
	joined := []ProjectHealth{}
	var avg HealthAverages
	var readiness, sentiment, confidence, adoption, behavior, turnover float64
	for _, r := range records {
		s, ok := latest[r.ID]
		if !ok {
			continue
		}
		joined = append(joined, ProjectHealth{ProjectID: r.ID, ProjectName: r.ProjectName, Snapshot: s})
		readiness += float64(s.Readiness)
		sentiment += float64(s.Sentiment)
		confidence += float64(s.ManagerConfidence)
		adoption += s.AdoptionRatePct
		behavior += s.BehaviorAdoptionPct
		turnover += s.StaffTurnoverPct
	}
	avg.Projects = len(joined)
	if n := float64(len(joined)); n > 0 {
		avg.Readiness = ptr(round1(readiness / n))
		avg.Sentiment = ptr(round1(sentiment / n))
		avg.ManagerConfidence = ptr(round1(confidence / n))
		avg.AdoptionRatePct = ptr(round1(adoption / n))
		avg.BehaviorAdoptionPct = ptr(round1(behavior / n))
		avg.StaffTurnoverPct = ptr(round1(turnover / n))
	}
	return joined, avg
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func ptr[T any](v T) *T {
	return &v
}
