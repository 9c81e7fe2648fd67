package parser

import (
	"fmt"
	"strings"
	"time"
)

// ParseDateArg parses a date argument from the CLI
// Supported formats:
// - yyyy-mm-dd (e.g., "2025-03-01")
// - "today", "yesterday"
// - "week" (start of the current ISO week, Monday)
func ParseDateArg(input string) (*time.Time, error) {
	if input == "" {
		return nil, nil
	}

	input = strings.ToLower(strings.TrimSpace(input))
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)

	switch input {
	case "today":
		return &today, nil
	case "yesterday":
		d := today.AddDate(0, 0, -1)
		return &d, nil
	case "week":
		d := StartOfWeek(now)
		return &d, nil
	}

	if t, err := time.ParseInLocation(DateLayout, input, time.Local); err == nil {
		return &t, nil
	}

	return nil, fmt.Errorf("invalid date format. Use: yyyy-mm-dd, today, yesterday, or week")
}

// StartOfWeek returns midnight on the Monday of t's week, local time.
func StartOfWeek(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
	weekday := int(day.Weekday())
	if weekday == 0 { // Sunday belongs to the previous Monday
		weekday = 7
	}
	return day.AddDate(0, 0, -(weekday - 1))
}
