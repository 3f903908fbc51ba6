package analytics

import (
	"math"
	"time"

	"sprintdesk/internal/models"
)

const dateKeyLayout = "2006-01-02"

// BurndownEntry is one day of a sprint burndown.
type BurndownEntry struct {
	Date            string  `json:"date"`
	RemainingPoints float64 `json:"remainingPoints"`
	CompletedToday  float64 `json:"completedToday"`
	IdealRemaining  float64 `json:"idealRemaining"`
}

// Burndown is the actual-vs-ideal remaining work trajectory of a sprint.
type Burndown struct {
	TotalPoints     float64         `json:"totalPoints"`
	UsesStoryPoints bool            `json:"usesStoryPoints"`
	Entries         []BurndownEntry `json:"entries"`
}

// ProjectBurndown computes a day-resolution burndown between start and end.
// start and end are calendar dates held as UTC midnight; completions are instants bucketed by their day in loc.
// When no task carries story points, each task counts as one unit.
// It returns false when end precedes start.
func ProjectBurndown(start, end time.Time, tasks []models.SprintTask, loc *time.Location) (*Burndown, bool) {
	if loc == nil {
		loc = time.UTC
	}
	startDay := calendarDay(start, loc)
	endDay := calendarDay(end, loc)
	if endDay.Before(startDay) {
		return nil, false
	}

	var rawPoints float64
	for _, task := range tasks {
		rawPoints += task.Points()
	}
	usesStoryPoints := rawPoints > 0
	totalPoints := float64(len(tasks))
	if usesStoryPoints {
		totalPoints = Round2(rawPoints)
	}

	completions := make(map[string]float64)
	for _, task := range tasks {
		if task.CompletedAt == nil {
			continue
		}
		value := 1.0
		if usesStoryPoints {
			value = task.Points()
		}
		completions[dateKey(*task.CompletedAt, loc)] += value
	}

	days := int(math.Round(endDay.Sub(startDay).Hours() / 24))
	if days < 1 {
		days = 1
	}
	totalSlots := days + 1
	step := totalPoints / float64(max(totalSlots-1, 1))

	entries := make([]BurndownEntry, 0, totalSlots)
	remaining := totalPoints
	for i := 0; i < totalSlots; i++ {
		current := startDay.AddDate(0, 0, i)
		key := current.Format(dateKeyLayout)
		completedToday := completions[key]
		remaining = math.Max(0, remaining-completedToday)
		ideal := math.Max(0, totalPoints-step*float64(i))

		entries = append(entries, BurndownEntry{
			Date:            key,
			RemainingPoints: Round2(remaining),
			CompletedToday:  Round2(completedToday),
			IdealRemaining:  Round2(ideal),
		})
	}

	return &Burndown{
		TotalPoints:     totalPoints,
		UsesStoryPoints: usesStoryPoints,
		Entries:         entries,
	}, true
}

// calendarDay places the date of a UTC-midnight calendar value at midnight in loc.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func dateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateKeyLayout)
}
