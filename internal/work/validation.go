package work

import (
	"strings"
	"time"

	"sprintdesk/internal/api"
)

func requiredText(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", validationErrorf("%s is required", field)
	}
	return value, nil
}

func valueOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func checkNonNegative(field string, value *float64) error {
	if value != nil && *value < 0 {
		return validationErrorf("%s must be >= 0", field)
	}
	return nil
}

func checkDateRange(start, end *time.Time) error {
	if start != nil && end != nil && start.After(*end) {
		return validationErrorf("startDate must be on or before endDate")
	}
	return nil
}

// positiveID picks the first positive id, used to fall back from a payload id to the actor.
func positiveID(ids ...*int64) *int64 {
	for _, id := range ids {
		if id != nil && *id > 0 {
			v := *id
			return &v
		}
	}
	return nil
}

// instant resolves a request time to a UTC instant. Date-only values are midnight in the service location.
func (s *Service) instant(ts *api.Timestamp) *time.Time {
	if ts == nil {
		return nil
	}
	v := ts.Instant(s.loc)
	return &v
}

// calendarDay resolves a request time to its calendar date, held as UTC midnight.
func (s *Service) calendarDay(ts *api.Timestamp) *time.Time {
	if ts == nil {
		return nil
	}
	v := ts.CalendarDay(s.loc)
	return &v
}
