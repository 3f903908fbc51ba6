package analytics

import (
	"math"

	"sprintdesk/internal/models"
)

// TimeSummary aggregates logged time for a task or task set.
type TimeSummary struct {
	TotalMinutes       int     `json:"totalMinutes"`
	BillableMinutes    int     `json:"billableMinutes"`
	NonBillableMinutes int     `json:"nonBillableMinutes"`
	TotalHours         float64 `json:"totalHours"`
	BillableHours      float64 `json:"billableHours"`
	NonBillableHours   float64 `json:"nonBillableHours"`
	BillableAmount     float64 `json:"billableAmount"`
}

// SummarizeTime rolls time entries up into billable and non-billable totals.
func SummarizeTime(entries []models.TimeEntry) TimeSummary {
	var summary TimeSummary
	var amount float64
	for _, entry := range entries {
		minutes := entry.MinutesSpent
		if minutes < 0 {
			minutes = 0
		}
		summary.TotalMinutes += minutes
		if entry.Billable {
			summary.BillableMinutes += minutes
			amount += float64(minutes) / 60 * entry.HourlyRate
		} else {
			summary.NonBillableMinutes += minutes
		}
	}

	summary.TotalHours = minutesToHours(summary.TotalMinutes)
	summary.BillableHours = minutesToHours(summary.BillableMinutes)
	summary.NonBillableHours = minutesToHours(summary.NonBillableMinutes)
	summary.BillableAmount = Round2(amount)
	return summary
}

// Round2 rounds to two decimal places.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func minutesToHours(minutes int) float64 {
	return Round2(float64(minutes) / 60)
}
