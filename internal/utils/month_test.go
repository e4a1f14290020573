package utils

import "testing"

func TestPrevMonthCrossesYearBoundary(t *testing.T) {
	prev, err := PrevMonth("2025-01")
	if err != nil {
		t.Fatalf("PrevMonth() error = %v", err)
	}
	if prev != "2024-12" {
		t.Fatalf("PrevMonth(2025-01) = %s, want 2024-12", prev)
	}
}

func TestAddMonths(t *testing.T) {
	cases := []struct {
		month string
		n     int
		want  string
	}{
		{"2025-01", 0, "2025-01"},
		{"2025-01", 11, "2025-12"},
		{"2025-01", 12, "2026-01"},
		{"2025-08", -8, "2024-12"},
	}
	for _, tc := range cases {
		got, err := AddMonths(tc.month, tc.n)
		if err != nil {
			t.Fatalf("AddMonths(%s, %d) error = %v", tc.month, tc.n, err)
		}
		if got != tc.want {
			t.Errorf("AddMonths(%s, %d) = %s, want %s", tc.month, tc.n, got, tc.want)
		}
	}
}

func TestDaysIn(t *testing.T) {
	cases := []struct {
		month string
		want  int
	}{
		{"2025-02", 28},
		{"2024-02", 29},
		{"2025-01", 31},
		{"2025-04", 30},
	}
	for _, tc := range cases {
		got, err := DaysIn(tc.month)
		if err != nil {
			t.Fatalf("DaysIn(%s) error = %v", tc.month, err)
		}
		if got != tc.want {
			t.Errorf("DaysIn(%s) = %d, want %d", tc.month, got, tc.want)
		}
	}
}

func TestMonthLabel(t *testing.T) {
	label, err := MonthLabel("2025-08")
	if err != nil {
		t.Fatalf("MonthLabel() error = %v", err)
	}
	if label != "August 2025" {
		t.Fatalf("MonthLabel(2025-08) = %s, want August 2025", label)
	}
}

func TestParseMonthRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"", "2025", "2025-13", "Aug 2025", "2025-08-01"} {
		if _, err := ParseMonth(bad); err == nil {
			t.Errorf("ParseMonth(%q) accepted invalid month", bad)
		}
	}
}

func TestFirstDay(t *testing.T) {
	day, err := FirstDay("2025-08")
	if err != nil {
		t.Fatalf("FirstDay() error = %v", err)
	}
	if day.Day() != 1 || day.Month() != 8 || day.Year() != 2025 {
		t.Fatalf("FirstDay(2025-08) = %v, want 2025-08-01", day)
	}
}
