package mealplan

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the wire format for plan dates
	DateLayout = "2006-01-02"

	nameLayout = "02/01/2006"

	// LastMealTime is the bucket every slot past the fourth falls into
	LastMealTime = 4
)

// MealTimeFor maps a 0-based slot position onto its meal_time bucket: the
// first four slots get 1 to 4 and everything after shares 4.
func MealTimeFor(index int) int {
	if index < LastMealTime {
		return index + 1
	}
	return LastMealTime
}

// Name is the display name of the plan for date
func Name(date time.Time) string {
	return fmt.Sprintf("Meal Plan %s", date.Format(nameLayout))
}

// DateOf truncates t to its calendar day, expressed as midnight UTC so that
// stored dates compare equal regardless of the caller's zone.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the calendar day of now in loc
func Today(now time.Time, loc *time.Location) time.Time {
	return DateOf(now.In(loc))
}

// StartDate is the first day a new batch of plans may use: the day after the
// latest existing plan when that plan is today or later, otherwise today.
func StartDate(today time.Time, latest *time.Time) time.Time {
	today = DateOf(today)
	if latest == nil {
		return today
	}
	last := DateOf(*latest)
	if !last.Before(today) {
		return last.AddDate(0, 0, 1)
	}
	return today
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}
