// Package validation provides the shared request validator and enum/format
// checks applied at the request boundary. Store-level code stays
// permissive; only the edit-form surface rejects bad input.
package validation

import (
	"fmt"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pequenospassos/habit-api/internal/models"
)

// Validate is the shared validator instance for request DTOs
var Validate = validator.New()

var timeOfDayRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidatePriority checks a priority enum value
func ValidatePriority(value string) error {
	if !models.Priority(value).Valid() {
		return fmt.Errorf("invalid priority %q: must be low, medium or high", value)
	}
	return nil
}

// ValidateDate checks a YYYY-MM-DD calendar date. Empty is allowed: a task
// without a due date is an inbox task.
func ValidateDate(value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return fmt.Errorf("invalid date %q: must be YYYY-MM-DD", value)
	}
	return nil
}

// ValidateTimeOfDay checks an HH:MM value. Empty is allowed: the task is
// all-day.
func ValidateTimeOfDay(value string) error {
	if value == "" {
		return nil
	}
	if !timeOfDayRe.MatchString(value) {
		return fmt.Errorf("invalid time %q: must be HH:MM", value)
	}
	return nil
}
