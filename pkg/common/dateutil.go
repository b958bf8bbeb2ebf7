// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package common

import (
	"fmt"
	"time"
)

// DateKeyLayout is the layout of every persisted calendar-day marker
// (daily reset date, week start date, last login date).
const DateKeyLayout = "2006-01-02"

// TruncateToDate returns midnight (00:00:00) of the calendar day containing t,
// in t's own location.
//
// Unlike t.Truncate(24*time.Hour), this is DST-safe: the result is built from
// the (year, month, day) triple, so a day that is 23 or 25 hours long still
// truncates to its own local midnight.
//
// Example:
//   - Input: 2025-10-17 14:23:45 -07:00
//   - Output: 2025-10-17 00:00:00 -07:00
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DateKey formats the calendar day containing t as "YYYY-MM-DD" (zero padded),
// in t's own location.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// ParseDateKey parses a "YYYY-MM-DD" key into midnight of that day in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return t, nil
}

// WeekStart returns local midnight of the most recent Sunday on or before t.
func WeekStart(t time.Time) time.Time {
	day := TruncateToDate(t)
	y, m, d := day.Date()
	return time.Date(y, m, d-int(day.Weekday()), 0, 0, 0, 0, t.Location())
}

// WeekKey returns the date key of WeekStart(t).
func WeekKey(t time.Time) string {
	return DateKey(WeekStart(t))
}

// DaysBetween returns the whole number of calendar days from a to b
// (negative when b is before a).
//
// Both times are reduced to their (year, month, day) in their own location and
// re-anchored at UTC midnight before subtracting, so the difference is always
// an exact multiple of 24h regardless of DST transitions in between.
//
// Example:
//   - a: 2025-03-08 23:00 America/New_York, b: 2025-03-09 00:30 America/New_York
//   - Output: 1
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// DaysBetweenKeys is DaysBetween for two persisted date keys.
func DaysBetweenKeys(from, to string) (int, error) {
	a, err := ParseDateKey(from, time.UTC)
	if err != nil {
		return 0, err
	}
	b, err := ParseDateKey(to, time.UTC)
	if err != nil {
		return 0, err
	}
	return DaysBetween(a, b), nil
}
