package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/mealtrack/meal-tracker/internal/domain"
)

const dayLayout = "2006-01-02"

// parseDay accepts YYYY-MM-DD or an RFC 3339 timestamp and returns midnight
// UTC of that calendar day.
func parseDay(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", domain.ErrValidation, field)
	}
	if t, err := time.Parse(dayLayout, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return time.Time(domain.DateOnly(t)), nil
	}
	return time.Time{}, fmt.Errorf("%w: %s must be a date in YYYY-MM-DD format", domain.ErrValidation, field)
}

// parseStrictDay only accepts YYYY-MM-DD.
func parseStrictDay(field, value string) (time.Time, error) {
	t, err := time.Parse(dayLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a date in YYYY-MM-DD format", domain.ErrValidation, field)
	}
	return t, nil
}
