package utils

import (
	"fmt"
	"time"
)

// MonthFormat is the key format used for month-scoped records.
const MonthFormat = "2006-01"

// ParseMonth validates a YYYY-MM month key.
func ParseMonth(month string) (time.Time, error) {
	t, err := time.Parse(MonthFormat, month)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, want format YYYY-MM: %w", month, err)
	}
	return t, nil
}

// CurrentMonth returns the month key for the current date.
func CurrentMonth() string {
	return time.Now().Format(MonthFormat)
}

// AddMonths shifts a month key by n calendar months.
func AddMonths(month string, n int) (string, error) {
	t, err := ParseMonth(month)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, n, 0).Format(MonthFormat), nil
}

// PrevMonth returns the month key one calendar month earlier.
func PrevMonth(month string) (string, error) {
	return AddMonths(month, -1)
}

// FirstDay returns midnight UTC on the first day of the month.
func FirstDay(month string) (time.Time, error) {
	return ParseMonth(month)
}

// DaysIn returns the number of calendar days in the month.
func DaysIn(month string) (int, error) {
	t, err := ParseMonth(month)
	if err != nil {
		return 0, err
	}
	return t.AddDate(0, 1, -1).Day(), nil
}

// MonthLabel formats a month key as a human readable label, e.g. "August 2025".
func MonthLabel(month string) (string, error) {
	t, err := ParseMonth(month)
	if err != nil {
		return "", err
	}
	return t.Format("January 2006"), nil
}
