package portfolio

import (
	"github.com/starford/changedesk/internal/models"
	"github.com/starford/changedesk/internal/pathway"
)

// DefaultCohortWeights favours scaling and complete programs.
func DefaultCohortWeights() map[string]float64 {
	return map[string]float64{
		models.ExecutionProposed: 0,
		models.ExecutionDesign:   0.25,
		models.ExecutionPilot:    0.5,
		models.ExecutionScaling:  0.85,
		models.ExecutionComplete: 1,
	}
}

// CohortMetrics is the fleet view of curated leadership cohorts.
type CohortMetrics struct {
	TotalCohorts         int                `json:"total_cohorts"`
	TotalInvestment      int                `json:"total_investment"`
	ExecutionScore       *float64           `json:"execution_score"`
	CompleteCount        int                `json:"complete_count"`
	GovernanceIncomplete int                `json:"governance_incomplete"`
	ByExecutionStatus    map[string]int     `json:"by_execution_status"`
	ByWorkstream         map[string]int     `json:"by_workstream"`
	MaturityByRegion     map[string]float64 `json:"maturity_by_region"`
}

// SummarizeCohorts computes cohort metrics with the given status weights.
func SummarizeCohorts(cohorts []models.CohortRecord, weights map[string]float64) CohortMetrics {
	m := CohortMetrics{
		TotalCohorts:      len(cohorts),
		ByExecutionStatus: map[string]int{},
		ByWorkstream:      map[string]int{},
		MaturityByRegion:  map[string]float64{},
	}
	if len(cohorts) == 0 {
		return m
	}

	var weightSum float64
	maturitySum := map[string]int{}
	maturityN := map[string]int{}
	for _, c := range cohorts {
		m.TotalInvestment += c.EstimatedBudget
		weightSum += weights[c.ExecutionStatus]
		if c.ExecutionStatus == models.ExecutionComplete {
			m.CompleteCount++
		}
		if c.GovernanceStatus != models.GovernanceComplete {
			m.GovernanceIncomplete++
		}
		if c.ExecutionStatus != "" {
			m.ByExecutionStatus[c.ExecutionStatus]++
		}
		if c.Workstream != "" {
			m.ByWorkstream[c.Workstream]++
		}
		if c.Region != "" {
			maturitySum[c.Region] += pathway.MaturityRank(c.MaturityLevel)
			maturityN[c.Region]++
		}
	}
	m.ExecutionScore = ptr(round1(weightSum / float64(len(cohorts)) * 100))
	for region, sum := range maturitySum {
		m.MaturityByRegion[region] = round1(float64(sum) / float64(maturityN[region]))
	}
	return m
}
