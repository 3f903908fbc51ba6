package analytics

import "sprintdesk/internal/models"

// RiskSummary aggregates a set of risks by status and impact.
type RiskSummary struct {
	Total           int                       `json:"total"`
	Open            int                       `json:"open"`
	ByStatus        map[models.RiskStatus]int `json:"byStatus"`
	ByImpact        map[models.RiskImpact]int `json:"byImpact"`
	AverageSeverity float64                   `json:"averageSeverity"`
	HighestSeverity float64                   `json:"highestSeverity"`
}

// SummarizeRisks counts risks per status and impact and reports severity statistics.
func SummarizeRisks(risks []models.SprintRisk) RiskSummary {
	summary := RiskSummary{
		Total:    len(risks),
		ByStatus: make(map[models.RiskStatus]int),
		ByImpact: make(map[models.RiskImpact]int),
	}

	var severityTotal float64
	for _, risk := range risks {
		summary.ByStatus[risk.Status]++
		summary.ByImpact[risk.Impact]++
		if risk.Status.IsOpen() {
			summary.Open++
		}
		severityTotal += risk.SeverityScore
		if risk.SeverityScore > summary.HighestSeverity {
			summary.HighestSeverity = risk.SeverityScore
		}
	}
	if len(risks) > 0 {
		summary.AverageSeverity = Round2(severityTotal / float64(len(risks)))
	}
	summary.HighestSeverity = Round2(summary.HighestSeverity)
	return summary
}

// DeriveSeverity scores a risk from its probability and impact on a 0-100 scale.
func DeriveSeverity(probability float64, impact models.RiskImpact) float64 {
	return Round2(probability * impact.Weight() * models.MaxSeverity)
}
