// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package common

import (
	"testing"
	"time"
	_ "time/tzdata"
)

func TestTruncateToDate(t *testing.T) {
	pst := time.FixedZone("PST", -8*60*60)

	tests := []struct {
		name     string
		input    time.Time
		expected time.Time
	}{
		{
			name:     "truncate afternoon time",
			input:    time.Date(2025, 10, 17, 14, 23, 45, 123456789, time.UTC),
			expected: time.Date(2025, 10, 17, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "truncate midnight (already truncated)",
			input:    time.Date(2025, 10, 17, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2025, 10, 17, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "truncate just before midnight",
			input:    time.Date(2025, 10, 17, 23, 59, 59, 999999999, time.UTC),
			expected: time.Date(2025, 10, 17, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "keeps the input location",
			input:    time.Date(2025, 10, 17, 23, 30, 0, 0, pst),
			expected: time.Date(2025, 10, 17, 0, 0, 0, 0, pst),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := TruncateToDate(tt.input)

			if !result.Equal(tt.expected) {
				t.Errorf("TruncateToDate(%v) = %v, want %v", tt.input, result, tt.expected)
			}

			if result.Hour() != 0 || result.Minute() != 0 || result.Second() != 0 || result.Nanosecond() != 0 {
				t.Errorf("Expected truncated time (00:00:00.000000000), got %02d:%02d:%02d.%09d",
					result.Hour(), result.Minute(), result.Second(), result.Nanosecond())
			}
		})
	}
}

func TestTruncateToDate_DSTDay(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}

	// 2025-03-09 is 23 hours long in New York.
	input := time.Date(2025, 3, 9, 15, 0, 0, 0, ny)
	result := TruncateToDate(input)

	if result.Day() != 9 || result.Hour() != 0 {
		t.Errorf("TruncateToDate(%v) = %v, want 2025-03-09 00:00 local", input, result)
	}
}

func TestDateKey(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{"zero padded month and day", time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC), "2025-01-05"},
		{"end of year", time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC), "2025-12-31"},
		{"uses local calendar day", time.Date(2025, 10, 17, 23, 30, 0, 0, time.FixedZone("PST", -8*60*60)), "2025-10-17"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DateKey(tt.input); got != tt.expected {
				t.Errorf("DateKey(%v) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseDateKey(t *testing.T) {
	got, err := ParseDateKey("2025-10-17", time.UTC)
	if err != nil {
		t.Fatalf("ParseDateKey() unexpected error = %v", err)
	}
	if !got.Equal(time.Date(2025, 10, 17, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ParseDateKey() = %v", got)
	}

	if _, err := ParseDateKey("2025-10-17T00:00:00Z", time.UTC); err == nil {
		t.Error("ParseDateKey() expected error for non date key")
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{"sunday is its own week start", time.Date(2025, 10, 19, 12, 0, 0, 0, time.UTC), "2025-10-19"},
		{"saturday belongs to previous sunday", time.Date(2025, 10, 25, 23, 59, 0, 0, time.UTC), "2025-10-19"},
		{"wednesday", time.Date(2025, 10, 22, 8, 0, 0, 0, time.UTC), "2025-10-19"},
		{"crosses month boundary", time.Date(2025, 11, 1, 8, 0, 0, 0, time.UTC), "2025-10-26"},
		{"crosses year boundary", time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC), "2025-12-28"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := WeekStart(tt.input)
			if start.Weekday() != time.Sunday {
				t.Errorf("WeekStart(%v) weekday = %v, want Sunday", tt.input, start.Weekday())
			}
			if got := DateKey(start); got != tt.expected {
				t.Errorf("WeekStart(%v) = %q, want %q", tt.input, got, tt.expected)
			}
			if got := WeekKey(tt.input); got != tt.expected {
				t.Errorf("WeekKey(%v) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same day", time.Date(2025, 10, 17, 1, 0, 0, 0, time.UTC), time.Date(2025, 10, 17, 23, 0, 0, 0, time.UTC), 0},
		{"next day, less than 24h apart", time.Date(2025, 10, 17, 23, 0, 0, 0, time.UTC), time.Date(2025, 10, 18, 0, 30, 0, 0, time.UTC), 1},
		{"two days", time.Date(2025, 10, 17, 12, 0, 0, 0, time.UTC), time.Date(2025, 10, 19, 12, 0, 0, 0, time.UTC), 2},
		{"backwards", time.Date(2025, 10, 17, 12, 0, 0, 0, time.UTC), time.Date(2025, 10, 16, 12, 0, 0, 0, time.UTC), -1},
		{"across leap day", time.Date(2024, 2, 28, 12, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.a, tt.b); got != tt.want {
				t.Errorf("DaysBetween() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDaysBetween_AcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}

	// Spring forward: local midnights are only 23h apart.
	a := time.Date(2025, 3, 9, 0, 0, 0, 0, ny)
	b := time.Date(2025, 3, 10, 0, 0, 0, 0, ny)
	if got := DaysBetween(a, b); got != 1 {
		t.Errorf("DaysBetween across spring-forward = %d, want 1", got)
	}

	// Fall back: local midnights are 25h apart.
	a = time.Date(2025, 11, 2, 0, 0, 0, 0, ny)
	b = time.Date(2025, 11, 3, 0, 0, 0, 0, ny)
	if got := DaysBetween(a, b); got != 1 {
		t.Errorf("DaysBetween across fall-back = %d, want 1", got)
	}
}

func TestDaysBetweenKeys(t *testing.T) {
	got, err := DaysBetweenKeys("2025-12-31", "2026-01-01")
	if err != nil {
		t.Fatalf("DaysBetweenKeys() unexpected error = %v", err)
	}
	if got != 1 {
		t.Errorf("DaysBetweenKeys() = %d, want 1", got)
	}

	if _, err := DaysBetweenKeys("garbage", "2026-01-01"); err == nil {
		t.Error("DaysBetweenKeys() expected error for invalid key")
	}
}

func TestManualClock(t *testing.T) {
	start := time.Date(2025, 10, 17, 9, 0, 0, 0, time.UTC)
	clock := NewManualClock(start)

	if !clock.Now().Equal(start) {
		t.Fatalf("Now() = %v, want %v", clock.Now(), start)
	}

	clock.Advance(90 * time.Minute)
	if got := clock.Now(); !got.Equal(start.Add(90 * time.Minute)) {
		t.Errorf("after Advance Now() = %v", got)
	}

	clock.AddDays(-2)
	if got := DateKey(clock.Now()); got != "2025-10-15" {
		t.Errorf("after AddDays(-2) DateKey = %q, want 2025-10-15", got)
	}
}
